package analytics

import (
	"sort"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/fekuna/omnipos-order-service/internal/pkg/money"
)

// GroupBy aggregates settled payments per method and per day.
type GroupBy struct{}

func (GroupBy) Aggregate(window payment.Window, payments []model.PaymentTransaction) *model.PaymentAnalytics {
	report := summarize(window, payments)

	byMethod := map[string]*model.MethodShare{}
	byDay := map[string]*model.DailyTotal{}
	for _, d := range days(window) {
		byDay[d] = &model.DailyTotal{Date: d}
	}

	for _, p := range payments {
		if !Settled(p.Status) {
			continue
		}
		m, ok := byMethod[p.PaymentMethod]
		if !ok {
			m = &model.MethodShare{Method: p.PaymentMethod}
			byMethod[p.PaymentMethod] = m
		}
		m.Count++
		m.Amount = money.Sum(m.Amount, p.Amount)

		day := p.TransactionDate.UTC().Format(dayLayout)
		d, ok := byDay[day]
		if !ok {
			d = &model.DailyTotal{Date: day}
			byDay[day] = d
		}
		d.Count++
		d.Revenue = money.Sum(d.Revenue, p.Amount)
	}

	for _, m := range byMethod {
		m.Share = share(m.Amount, report.TotalRevenue)
		report.MethodDistribution = append(report.MethodDistribution, *m)
	}
	sortShares(report.MethodDistribution)

	report.DailyBreakdown = sortedDays(byDay)
	return report
}

func sortedDays(byDay map[string]*model.DailyTotal) []model.DailyTotal {
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.DailyTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byDay[k])
	}
	return out
}
