// internal/dashboard/summary.go
package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/balaguruva/admin-backend/internal/models"
)

const (
	LowStockThreshold = 5
	topDomainCount    = 5
	signupMonths      = 12
)

// Data is everything the dashboard renders. A nil slice means the resource
// was not loaded.
type Data struct {
	Products []models.Product
	Orders   []models.Order
	Users    []models.UserSummary
	Contacts []models.Contact
}

type Summary struct {
	GeneratedAt    time.Time                  `json:"generatedAt"`
	Products       int                        `json:"products"`
	Orders         int                        `json:"orders"`
	Users          int                        `json:"users"`
	Contacts       int                        `json:"contacts"`
	Revenue        float64                    `json:"revenue"`
	OrdersByStatus map[models.OrderStatus]int `json:"ordersByStatus"`
	PendingRefunds int                        `json:"pendingRefunds"`
	LowStock       []LowStockItem             `json:"lowStock"`
	UserGrowth     UserGrowth                 `json:"userGrowth"`
}

type LowStockItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type UserGrowth struct {
	ThisMonth      int           `json:"thisMonth"`
	LastMonth      int           `json:"lastMonth"`
	GrowthRate     int           `json:"growthRate"` // percent, 0 when last month had no signups
	MonthlySignups []MonthCount  `json:"monthlySignups"`
	EmailDomains   []DomainCount `json:"emailDomains"`
}

type MonthCount struct {
	Month string `json:"month"` // "Jan 2006"
	Count int    `json:"count"`
}

type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Summarize computes the dashboard cards. Revenue counts every order that
// was not cancelled.
func Summarize(data Data, now time.Time) Summary {
	s := Summary{
		GeneratedAt:    now,
		Products:       len(data.Products),
		Orders:         len(data.Orders),
		Users:          len(data.Users),
		Contacts:       len(data.Contacts),
		OrdersByStatus: make(map[models.OrderStatus]int),
		LowStock:       []LowStockItem{},
	}

	revenue := decimal.Zero
	for _, o := range data.Orders {
		s.OrdersByStatus[o.OrderStatus]++
		if o.RefundRequired {
			s.PendingRefunds++
		}
		if o.OrderStatus != models.OrderStatusCancelled {
			revenue = revenue.Add(decimal.NewFromFloat(o.TotalPrice))
		}
	}
	s.Revenue = revenue.Round(2).InexactFloat64()

	for _, p := range data.Products {
		if p.Stock <= LowStockThreshold {
			s.LowStock = append(s.LowStock, LowStockItem{ID: p.Number, Name: p.Name, Stock: p.Stock})
		}
	}
	sort.SliceStable(s.LowStock, func(i, j int) bool {
		return s.LowStock[i].Stock < s.LowStock[j].Stock
	})

	s.UserGrowth = userGrowth(data.Users, now)
	return s
}

func userGrowth(users []models.UserSummary, now time.Time) UserGrowth {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	months := make([]MonthCount, signupMonths)
	index := make(map[string]int, signupMonths)
	for i := 0; i < signupMonths; i++ {
		key := thisMonth.AddDate(0, i-(signupMonths-1), 0).Format("Jan 2006")
		months[i] = MonthCount{Month: key}
		index[key] = i
	}

	g := UserGrowth{MonthlySignups: months}
	domains := make(map[string]int)
	for _, u := range users {
		created := u.CreatedAt.In(now.Location())
		if i, ok := index[created.Format("Jan 2006")]; ok {
			months[i].Count++
		}
		switch {
		case !created.Before(thisMonth):
			g.ThisMonth++
		case !created.Before(lastMonth):
			g.LastMonth++
		}
		if at := strings.LastIndex(u.Email, "@"); at >= 0 && at < len(u.Email)-1 {
			domains[strings.ToLower(u.Email[at+1:])]++
		}
	}

	if g.LastMonth > 0 {
		g.GrowthRate = int(decimal.NewFromInt(int64(g.ThisMonth - g.LastMonth)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(g.LastMonth))).
			Round(0).IntPart())
	}
	g.EmailDomains = topDomains(domains)
	return g
}

// topDomains keeps the largest domains and folds the rest into "Other".
func topDomains(counts map[string]int) []DomainCount {
	all := make([]DomainCount, 0, len(counts))
	for domain, n := range counts {
		all = append(all, DomainCount{Domain: domain, Count: n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Domain < all[j].Domain
	})

	if len(all) <= topDomainCount {
		return all
	}
	other := 0
	for _, d := range all[topDomainCount:] {
		other += d.Count
	}
	return append(all[:topDomainCount:topDomainCount], DomainCount{Domain: "Other", Count: other})
}
