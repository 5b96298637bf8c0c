package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/erp/retail/internal/application/demo"
	appreport "github.com/erp/retail/internal/application/report"
	apptrade "github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

var errUsage = errors.New("invalid usage")

// app holds the wired services a command runs against
type app struct {
	sales   *apptrade.SalesService
	reports *appreport.ReportService
	seeder  func(opts ...demo.Option) *demo.Seeder
	out     io.Writer
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string, out io.Writer) error {
	ctx = logger.WithContext(ctx, log)
	repo := persistence.NewFileRepository(cfg.Storage, log)
	if loaded := repo.Load(ctx); loaded.Err != nil {
		logger.L(ctx).Warn("Records skipped while loading",
			zap.Int("skipped", loaded.Skipped),
			zap.String("data_dir", cfg.Storage.DataDir),
		)
	}

	a := &app{
		sales:   apptrade.NewSalesService(repo, log),
		reports: appreport.NewReportService(repo, appreport.NewAggregationService(cfg.Report.TopN, log)),
		seeder: func(opts ...demo.Option) *demo.Seeder {
			return demo.NewSeeder(repo, log, opts...)
		},
		out: out,
	}

	command, rest := args[0], args[1:]
	switch command {
	case "clients":
		return a.listClients(ctx)
	case "orders":
		return a.listOrders(ctx)
	case "catalog":
		return a.listCatalog(ctx)
	case "add-client":
		return a.addClient(ctx, rest)
	case "sell":
		return a.sell(ctx, rest)
	case "weigh":
		return a.weigh(ctx, rest)
	case "report":
		return a.report(ctx, rest)
	case "import-catalog":
		return a.importCatalog(ctx, rest)
	case "seed":
		return a.seed(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func (a *app) listClients(ctx context.Context) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFIO\tPhone\tEmail")
	for _, c := range a.sales.ListClients(ctx) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.Number, c.FIO, c.Phone, c.Email)
	}
	return w.Flush()
}

func (a *app) listOrders(ctx context.Context) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDate\tClient\tLines\tTotal")
	for _, o := range a.sales.ListOrders(ctx) {
		fmt.Fprintf(w, "%d\t%s\t%d %s\t%d\t%s\n",
			o.Number, o.Date.Format("2006-01-02 15:04"), o.ClientNumber, o.ClientFIO, len(o.Items), o.Total)
	}
	return w.Flush()
}

func (a *app) listCatalog(ctx context.Context) error {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Product\tPrice\tUnit")
	for _, p := range a.sales.ListCatalog(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Price.StringFixed(2), p.Unit)
	}
	return w.Flush()
}

func (a *app) addClient(ctx context.Context, args []string) error {
	var req apptrade.RegisterClientRequest
	fs := newFlagSet("add-client")
	fs.StringVar(&req.FIO, "fio", "", "Full name")
	fs.StringVar(&req.Phone, "phone", "", "Phone, +7 followed by 10 digits")
	fs.StringVar(&req.Email, "email", "", "Email address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	client, err := a.sales.RegisterClient(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Client %d registered: %s\n", client.Number, client.FIO)
	return nil
}

func (a *app) sell(ctx context.Context, args []string) error {
	var req apptrade.RecordSaleRequest
	fs := newFlagSet("sell")
	fs.IntVar(&req.ClientNumber, "client", 0, "Client number")
	fs.StringVar(&req.Products, "products", "", `Product list, "Name, price; Name2, price2"`)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	order, err := a.sales.RecordSale(ctx, req)
	if err != nil {
		return err
	}
	a.printOrder(order)
	return nil
}

// weightFlags collects repeated -item name=kg values
type weightFlags []apptrade.WeightEntry

func (f *weightFlags) String() string {
	parts := make([]string, len(*f))
	for i, e := range *f {
		parts[i] = e.Product + "=" + e.Kilograms
	}
	return strings.Join(parts, ", ")
}

func (f *weightFlags) Set(value string) error {
	name, kg, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=kg, got %q", value)
	}
	*f = append(*f, apptrade.WeightEntry{Product: name, Kilograms: kg})
	return nil
}

func (a *app) weigh(ctx context.Context, args []string) error {
	var (
		req   apptrade.RecordWeightSaleRequest
		items weightFlags
	)
	fs := newFlagSet("weigh")
	fs.IntVar(&req.ClientNumber, "client", 0, "Client number")
	fs.Var(&items, "item", "Weighed product as name=kg; repeatable")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	req.Items = items

	order, err := a.sales.RecordWeightSale(ctx, req)
	if err != nil {
		return err
	}
	a.printOrder(order)
	return nil
}

func (a *app) printOrder(o *apptrade.OrderResponse) {
	fmt.Fprintf(a.out, "Order %d for %s: %s\n", o.Number, o.ClientFIO, o.Total)
}

func (a *app) report(ctx context.Context, args []string) error {
	var (
		filter   appreport.SalesReportFilter
		from, to string
	)
	fs := newFlagSet("report")
	fs.IntVar(&filter.TopN, "top", 0, "Ranking length (default: report.top_n)")
	fs.StringVar(&from, "from", "", "First day, YYYY-MM-DD")
	fs.StringVar(&to, "to", "", "Last day, YYYY-MM-DD")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if filter.TopN < 0 {
		return shared.NewFieldError(shared.CodeInvalidInput, "top", fmt.Sprint(filter.TopN), "Ranking length must not be negative")
	}

	var err error
	if filter.StartDate, err = parseDay("from", from); err != nil {
		return err
	}
	if filter.EndDate, err = parseDay("to", to); err != nil {
		return err
	}

	return appreport.Render(a.out, a.reports.Analyze(ctx, filter))
}

func parseDay(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(appreport.DateLayout, value, time.Local)
	if err != nil {
		return nil, shared.NewFieldError(shared.CodeInvalidDate, field, value,
			fmt.Sprintf("Invalid date %q: expected YYYY-MM-DD", value))
	}
	return &day, nil
}

func (a *app) importCatalog(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import-catalog takes one CSV file", errUsage)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return shared.WrapDomainError(shared.CodeStorageRead, err, "Cannot open %s", args[0])
	}
	defer f.Close()

	result, err := a.sales.ImportCatalog(ctx, f)
	if result != nil {
		for _, msg := range result.RowErrors {
			fmt.Fprintln(a.out, "  rejected:", msg)
		}
		for _, msg := range result.Conflicts {
			fmt.Fprintln(a.out, "  conflict:", msg)
		}
		fmt.Fprintf(a.out, "Rows: %d, imported: %d, unchanged: %d\n", result.Rows, result.Imported, result.Unchanged)
	}
	return err
}

func (a *app) seed(ctx context.Context, args []string) error {
	var (
		clients, orders int
		seed            uint64
	)
	fs := newFlagSet("seed")
	fs.IntVar(&clients, "clients", 10, "Clients to create")
	fs.IntVar(&orders, "orders", 50, "Orders to create")
	fs.Uint64Var(&seed, "seed", 0, "Random seed; 0 picks one")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var opts []demo.Option
	if seed != 0 {
		opts = append(opts, demo.WithSeed(seed))
	}
	result, err := a.seeder(opts...).Seed(ctx, clients, orders)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Seeded %d clients, %d orders, %d products\n", result.Clients, result.Orders, result.Products)
	return nil
}
