// internal/dashboard/render.go
package dashboard

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/balaguruva/admin-backend/internal/models"
)

var resourceBanners = map[Resource]string{
	ResourceProducts: "Failed to load product count. Please try again.",
	ResourceContacts: "Failed to load contacts count. Please try again.",
	ResourceUsers:    "Failed to load users count. Please try again.",
	ResourceOrders:   "Failed to load orders count. Please try again.",
}

// Render writes the cards as plain text. Resources that failed to load get a
// banner in place of their numbers.
func Render(w io.Writer, snap *Snapshot, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	card := func(resource Resource, label string, value interface{}) {
		if snap.Failed(resource) {
			fmt.Fprintf(tw, "%s\t! %s\n", label, resourceBanners[resource])
			return
		}
		fmt.Fprintf(tw, "%s\t%v\n", label, value)
	}

	fmt.Fprintf(tw, "Dashboard\t%s\n", s.GeneratedAt.Format("2006-01-02 15:04"))
	card(ResourceProducts, "Products", s.Products)
	card(ResourceOrders, "Orders", s.Orders)
	card(ResourceUsers, "Users", s.Users)
	card(ResourceContacts, "Contacts", s.Contacts)
	card(ResourceOrders, "Revenue", fmt.Sprintf("%.2f", s.Revenue))
	card(ResourceOrders, "Refunds pending", s.PendingRefunds)
	card(ResourceUsers, "User growth", fmt.Sprintf("%d%% (%d this month, %d last month)",
		s.UserGrowth.GrowthRate, s.UserGrowth.ThisMonth, s.UserGrowth.LastMonth))

	if !snap.Failed(ResourceOrders) && len(s.OrdersByStatus) > 0 {
		fmt.Fprintln(tw, "\nOrders by status\t")
		statuses := make([]string, 0, len(s.OrdersByStatus))
		for status := range s.OrdersByStatus {
			statuses = append(statuses, string(status))
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			fmt.Fprintf(tw, "  %s\t%d\n", status, s.OrdersByStatus[models.OrderStatus(status)])
		}
	}

	if !snap.Failed(ResourceProducts) && len(s.LowStock) > 0 {
		fmt.Fprintln(tw, "\nLow stock\t")
		for _, item := range s.LowStock {
			fmt.Fprintf(tw, "  #%d %s\t%d\n", item.ID, item.Name, item.Stock)
		}
	}

	if !snap.Failed(ResourceUsers) {
		fmt.Fprintln(tw, "\nSignups\t")
		for _, m := range s.UserGrowth.MonthlySignups {
			fmt.Fprintf(tw, "  %s\t%d\n", m.Month, m.Count)
		}
		if len(s.UserGrowth.EmailDomains) > 0 {
			fmt.Fprintln(tw, "\nEmail domains\t")
			for _, d := range s.UserGrowth.EmailDomains {
				fmt.Fprintf(tw, "  %s\t%d\n", d.Domain, d.Count)
			}
		}
	}

	return tw.Flush()
}
