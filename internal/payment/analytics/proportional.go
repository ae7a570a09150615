package analytics

import (
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/fekuna/omnipos-order-service/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Proportional estimates the method mix with a fixed 60/25/15 split and spreads revenue
// evenly over the days of the window. It skips the per-payment grouping, which makes it
// cheap on large windows.
type Proportional struct{}

var fixedSplit = []struct {
	method string
	share  float64
}{
	{"credit_card", 60},
	{"debit_card", 25},
	{"digital_wallet", 15},
}

func (Proportional) Aggregate(window payment.Window, payments []model.PaymentTransaction) *model.PaymentAnalytics {
	report := summarize(window, payments)

	for _, s := range fixedSplit {
		report.MethodDistribution = append(report.MethodDistribution, model.MethodShare{
			Method: s.method,
			Count:  int(decimal.NewFromInt(int64(report.SuccessfulCount)).Mul(decimal.NewFromFloat(s.share / 100)).Round(0).IntPart()),
			Amount: money.Mul(report.TotalRevenue, s.share/100),
			Share:  s.share,
		})
	}

	span := days(window)
	if len(span) == 0 {
		return report
	}
	perDay := decimal.NewFromFloat(report.TotalRevenue).Div(decimal.NewFromInt(int64(len(span)))).Round(2).InexactFloat64()
	perDayCount := report.SuccessfulCount / len(span)
	for _, d := range span {
		report.DailyBreakdown = append(report.DailyBreakdown, model.DailyTotal{Date: d, Count: perDayCount, Revenue: perDay})
	}
	return report
}
