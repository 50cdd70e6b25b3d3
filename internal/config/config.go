// Package config folds the apt configuration sources (environment, flags,
// config file) into the typed settings the POS needs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
)

const (
	Namespace = "TACOPOS"

	DriverFile   = "file"
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	DefaultLogLevel  = "info"
	DefaultStoreDir  = "./data"
	DefaultMongoURL  = "mongodb://localhost:27017"
	DefaultMongoName = "tacopos"
	DefaultTimezone  = "Local"
	DefaultDateFmt   = "2/1/2006"
	DefaultTimeFmt   = "15:04:05"
)

// Config is the resolved POS configuration.
type Config struct {
	LogLevel    string
	Store       StoreConfig
	Mongo       MongoConfig
	CatalogFile string
	NATSURL     string
	Timezone    string
	CSV         CSVConfig
}

// StoreConfig selects the persistence gateway.
type StoreConfig struct {
	// Driver is one of file, mongo or memory.
	Driver string
	// Dir is where the file driver keeps its slot files.
	Dir string
}

type MongoConfig struct {
	URL  string
	Name string
}

type CSVConfig struct {
	DateFormat string
	TimeFormat string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Store: StoreConfig{
			Driver: DriverFile,
			Dir:    DefaultStoreDir,
		},
		Mongo: MongoConfig{
			URL:  DefaultMongoURL,
			Name: DefaultMongoName,
		},
		Timezone: DefaultTimezone,
		CSV: CSVConfig{
			DateFormat: DefaultDateFmt,
			TimeFormat: DefaultTimeFmt,
		},
	}
}

// Load reads the POS keys from an apt configuration, falling back to the
// defaults for anything unset.
func Load(ac *apt.Config) Config {
	cfg := Default()
	if ac == nil {
		return cfg
	}

	cfg.LogLevel = ac.GetStringOrDef("log.level", cfg.LogLevel)
	cfg.Store.Driver = strings.ToLower(ac.GetStringOrDef("store.driver", cfg.Store.Driver))
	cfg.Store.Dir = ac.GetStringOrDef("store.dir", cfg.Store.Dir)
	cfg.Mongo.URL = ac.GetStringOrDef("db.mongo.url", cfg.Mongo.URL)
	cfg.Mongo.Name = ac.GetStringOrDef("db.mongo.name", cfg.Mongo.Name)
	cfg.CatalogFile, _ = ac.GetString("catalog.file")
	cfg.NATSURL, _ = ac.GetString("nats.url")
	cfg.Timezone = ac.GetStringOrDef("pos.timezone", cfg.Timezone)
	cfg.CSV.DateFormat = ac.GetStringOrDef("csv.date.format", cfg.CSV.DateFormat)
	cfg.CSV.TimeFormat = ac.GetStringOrDef("csv.time.format", cfg.CSV.TimeFormat)

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the file driver")
		}
	case DriverMongo:
		if c.Mongo.URL == "" {
			return fmt.Errorf("db.mongo.url is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.CSV.DateFormat == "" || c.CSV.TimeFormat == "" {
		return fmt.Errorf("csv.date.format and csv.time.format cannot be empty")
	}

	return nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid pos.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
