// Package shell is the interactive counter terminal: one line per operator
// action, each mapped to a Session call.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/shopspring/decimal"

	"github.com/appetiteclub/tacopos/internal/pos"
)

const prompt = "pos> "

// Shell reads commands from in and writes results to out.
type Shell struct {
	session   *pos.Session
	in        io.Reader
	out       io.Writer
	exportDir string
	logger    apt.Logger
}

type Options struct {
	In  io.Reader
	Out io.Writer
	// ExportDir receives CSV files written by the export command.
	ExportDir string
}

func New(session *pos.Session, opts Options, logger apt.Logger) *Shell {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	return &Shell{
		session:   session,
		in:        opts.In,
		out:       opts.Out,
		exportDir: opts.ExportDir,
		logger:    logger,
	}
}

// Run processes lines until EOF, quit, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	s.printf("Taco POS. Type 'help' for commands.\n")

	for {
		s.printf(prompt)
		if !scanner.Scan() {
			s.printf("\n")
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := s.Exec(ctx, line)
		if err != nil {
			s.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs a single command line. It reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "menu", "catalog":
		s.printCatalog()
	case "add":
		return false, s.add(args)
	case "loc", "location":
		return false, s.setLocation(args)
	case "show", "draft":
		s.printDraft(s.session.State().Draft)
	case "clear", "new":
		s.session.ClearDraft()
		s.printf("Draft cleared.\n")
	case "park", "save":
		return false, s.park(ctx)
	case "orders", "queue":
		s.printQueue(s.session.State().Queue)
	case "edit", "resume":
		return false, s.resume(ctx, args)
	case "change", "quote":
		return false, s.quote(args)
	case "pay":
		return false, s.pay(ctx, args)
	case "paynow", "checkout":
		return false, s.payDraft(ctx, args)
	case "history":
		return false, s.history(args)
	case "export":
		return false, s.export(args)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", cmd)
	}

	return false, nil
}

func (s *Shell) add(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <product-id> [quantity]")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	qty := 1
	if len(args) == 2 {
		qty, err = strconv.Atoi(args[1])
		if err != nil || qty < 1 {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}

	var state pos.State
	for i := 0; i < qty; i++ {
		state, err = s.session.AddItem(id)
		if err != nil {
			return err
		}
	}

	s.printDraft(state.Draft)
	return nil
}

func (s *Shell) setLocation(args []string) error {
	state, err := s.session.SetLocation(strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.printf("Location: %s\n", state.Draft.Location)
	return nil
}

func (s *Shell) park(ctx context.Context) error {
	order, _, err := s.session.Park(ctx)
	if err != nil {
		return err
	}
	s.printf("Order %d saved for %s, total %s.\n", order.ID, order.Location, pos.FormatMoney(order.Total))
	return nil
}

func (s *Shell) resume(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: edit <order-id>")
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}

	state, err := s.session.Resume(ctx, id)
	if err != nil {
		return err
	}
	s.printDraft(state.Draft)
	return nil
}

func (s *Shell) quote(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: change <order-id> [amount|total|total+10]")
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}
	order, err := s.session.FindOrder(id)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		s.printf("Due %s. Quick amounts:", pos.FormatMoney(order.Total))
		for _, p := range pos.TenderPresets(order.Total) {
			s.printf(" %s", pos.FormatMoney(p))
		}
		s.printf("\n")
		return nil
	}

	tendered, err := parseTender(args[1], order.Total)
	if err != nil {
		return err
	}

	s.printChange(pos.ComputeChange(order.Total, tendered))
	return nil
}

func (s *Shell) pay(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: pay <order-id> <amount|total|total+10>")
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}
	order, err := s.session.FindOrder(id)
	if err != nil {
		return err
	}
	tendered, err := parseTender(args[1], order.Total)
	if err != nil {
		return err
	}

	rec, change, err := s.session.Pay(ctx, id, tendered)
	if err != nil {
		return err
	}
	s.printSale(rec, change)
	return nil
}

func (s *Shell) payDraft(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: paynow <amount|total|total+10>")
	}
	tendered, err := parseTender(args[0], s.session.State().Draft.Total)
	if err != nil {
		return err
	}

	rec, change, err := s.session.PayDraft(ctx, tendered)
	if err != nil {
		return err
	}
	s.printSale(rec, change)
	return nil
}

func (s *Shell) history(args []string) error {
	day, err := parseDayArg(args)
	if err != nil {
		return err
	}

	records := s.session.History(day)
	if len(records) == 0 {
		s.printf("No sales.\n")
		return nil
	}

	if err := WriteHistory(s.out, records, s.session.Location()); err != nil {
		return err
	}

	s.printf("%d sales, %s\n", len(records), pos.FormatMoney(pos.Revenue(records)))
	return nil
}

func (s *Shell) export(args []string) error {
	day, err := parseDayArg(args)
	if err != nil {
		return err
	}

	name, data, err := s.session.Export(day)
	if err != nil {
		return err
	}

	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write export: %w", err)
	}

	s.logger.Info("history exported", "path", path)
	s.printf("Exported to %s\n", path)
	return nil
}

func (s *Shell) printCatalog() {
	_ = WriteCatalog(s.out, s.session.Catalog())
}

func (s *Shell) printDraft(d pos.Draft) {
	location := d.Location
	if location == "" {
		location = "(no location)"
	}
	s.printf("Location: %s\n", location)

	if len(d.Items) == 0 {
		s.printf("  (empty)\n")
	}
	for _, li := range d.Items {
		s.printf("  %-16s %3dx %10s\n", li.Name, li.Quantity, pos.FormatMoney(li.Subtotal()))
	}
	s.printf("Total: %s\n", pos.FormatMoney(d.Total))
}

func (s *Shell) printQueue(orders []pos.Order) {
	if len(orders) == 0 {
		s.printf("No pending orders.\n")
		return
	}
	for _, o := range orders {
		s.printf("[%d] %s  %s  %s\n", o.ID, o.Location, pos.FormatMoney(o.Total), o.Summary())
	}
}

func (s *Shell) printChange(c pos.Change) {
	WriteChange(s.out, c)
}

func (s *Shell) printSale(rec pos.SalesRecord, c pos.Change) {
	s.printf("Paid order %d (%s): total %s, received %s.\n",
		rec.ID, rec.Location, pos.FormatMoney(rec.Total), pos.FormatMoney(rec.PaidAmount))
	s.printChange(c)
}

func (s *Shell) printHelp() {
	s.printf(`Commands:
  menu                          list products
  add <product-id> [qty]        add products to the current order
  loc <name>                    set the order location
  show                          show the current order
  clear                         discard the current order
  park                          save the current order for later payment
  orders                        list pending orders
  edit <order-id>               take a pending order back for editing
  change <order-id> [amount]    preview change, or quick amounts, for a pending order
  pay <order-id> <amount>       settle a pending order
  paynow <amount>               settle the current order without parking it
  history [YYYY-MM-DD]          list sales, newest first
  export [YYYY-MM-DD]           write the sales history as CSV
  quit                          leave the shell
Amounts accept a number, "total" or "total+10".
`)
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func parseOrderID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	return id, nil
}

// parseTender understands the quick-amount keywords of the payment screen.
func parseTender(s string, due decimal.Decimal) (decimal.Decimal, error) {
	switch strings.ToLower(s) {
	case "total":
		return due, nil
	case "total+10":
		return due.Add(decimal.NewFromInt(10)), nil
	}
	return pos.ParseAmount(s)
}

func parseDayArg(args []string) (pos.Day, error) {
	if len(args) > 1 {
		return pos.Day{}, errors.New("expected at most one date")
	}
	if len(args) == 0 {
		return pos.Day{}, nil
	}
	return pos.ParseDay(args[0])
}

// WriteCatalog prints the products as a table.
func WriteCatalog(w io.Writer, items []pos.CatalogItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.Name, pos.FormatMoney(item.UnitPrice))
	}
	return tw.Flush()
}

// WriteHistory prints sales as a table with payment times in loc.
func WriteHistory(w io.Writer, records []pos.SalesRecord, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAID AT\tLOCATION\tPRODUCTS\tTOTAL\tPAID\tCHANGE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.PaymentDate.In(loc).Format("2006-01-02 15:04:05"),
			r.Location,
			r.Summary(),
			pos.FormatMoney(r.Total),
			pos.FormatMoney(r.PaidAmount),
			pos.FormatMoney(r.Change),
		)
	}
	return tw.Flush()
}

// WriteChange prints the change due, its breakdown and the upsell hint.
func WriteChange(w io.Writer, c pos.Change) {
	if !c.Sufficient {
		fmt.Fprintf(w, "Short by %s.\n", pos.FormatMoney(c.Due.Sub(c.Tendered)))
		return
	}

	fmt.Fprintf(w, "Change: %s\n", pos.FormatMoney(c.ChangeDue))
	for _, dc := range c.Breakdown {
		fmt.Fprintf(w, "  %d x %s\n", dc.Count, pos.FormatMoney(dc.Value))
	}
	if c.Upsell != nil {
		fmt.Fprintf(w, "Ask for %s more to give %s exactly?\n",
			pos.FormatMoney(c.Upsell.Request), pos.FormatMoney(c.Upsell.ResultingChange))
	}
}
