package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/erp/retail/internal/domain/report"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DateLayout is how report dates are printed
const DateLayout = "2006-01-02"

// Render writes a plain-text rendering of the summary: totals, the three
// rankings and the daily series. Amounts use the ruble display convention.
func Render(w io.Writer, s *report.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if s == nil || s.IsEmpty() {
		fmt.Fprintln(tw, "No orders to analyze")
		return tw.Flush()
	}

	fmt.Fprintf(tw, "Orders:\t%d\n", s.OrderCount)
	fmt.Fprintf(tw, "Revenue:\t%s\n", money(s.TotalRevenue))

	fmt.Fprintf(tw, "\nTop %d clients by orders\n", s.TopN)
	fmt.Fprintln(tw, "#\tClient\tFIO\tOrders")
	for i, c := range s.TopClientsByOrders {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", i+1, c.ClientNumber, c.ClientFIO, c.OrderCount)
	}

	fmt.Fprintf(tw, "\nTop %d clients by revenue\n", s.TopN)
	fmt.Fprintln(tw, "#\tClient\tFIO\tRevenue")
	for i, c := range s.TopClientsByRevenue {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, c.ClientNumber, c.ClientFIO, money(c.Revenue))
	}

	fmt.Fprintf(tw, "\nTop %d products by revenue\n", s.TopN)
	fmt.Fprintln(tw, "#\tProduct\tRevenue")
	for i, p := range s.TopProducts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, p.ProductName, money(p.Revenue))
	}

	fmt.Fprintln(tw, "\nOrders per day")
	fmt.Fprintln(tw, "Date\tOrders")
	for _, d := range s.DailyOrders {
		fmt.Fprintf(tw, "%s\t%d\n", d.Date.Format(DateLayout), d.OrderCount)
	}

	return tw.Flush()
}

func money(amount decimal.Decimal) string {
	return valueobject.FormatAmount(amount, valueobject.DefaultCurrency)
}
