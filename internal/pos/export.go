package pos

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	DefaultCSVDateFormat = "2/1/2006"
	DefaultCSVTimeFormat = "15:04:05"

	exportHeader = "Fecha,Hora,Ubicación,Productos,Total,Pagado,Cambio"
)

// CSVFormat controls how payment timestamps are rendered in an export.
type CSVFormat struct {
	DateLayout string
	TimeLayout string
	Location   *time.Location
}

func DefaultCSVFormat() CSVFormat {
	return CSVFormat{
		DateLayout: DefaultCSVDateFormat,
		TimeLayout: DefaultCSVTimeFormat,
		Location:   time.Local,
	}
}

// ExportCSV writes the sales history table. Text columns are always quoted;
// amounts are written as plain numbers.
func ExportCSV(w io.Writer, records []SalesRecord, f CSVFormat) error {
	if f.DateLayout == "" {
		f.DateLayout = DefaultCSVDateFormat
	}
	if f.TimeLayout == "" {
		f.TimeLayout = DefaultCSVTimeFormat
	}
	if f.Location == nil {
		f.Location = time.Local
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(exportHeader + "\n"); err != nil {
		return fmt.Errorf("cannot write export header: %w", err)
	}

	for _, r := range records {
		paid := r.PaymentDate.In(f.Location)
		line := strings.Join([]string{
			quoteField(paid.Format(f.DateLayout)),
			quoteField(paid.Format(f.TimeLayout)),
			quoteField(r.Location),
			quoteField(summarizeItems(r.Items, "; ")),
			r.Total.String(),
			r.PaidAmount.String(),
			r.Change.String(),
		}, ",")

		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("cannot write export row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cannot flush export: %w", err)
	}
	return nil
}

// ExportFilename names the download for a filtered or full export.
func ExportFilename(day Day) string {
	suffix := "completo"
	if !day.IsZero() {
		suffix = day.String()
	}
	return fmt.Sprintf("historial_tacos_%s.csv", suffix)
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
