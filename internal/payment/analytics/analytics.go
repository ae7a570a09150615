// Package analytics turns the payments of a time window into revenue reports.
package analytics

import (
	"sort"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/payment"
	"github.com/fekuna/omnipos-order-service/internal/pkg/money"
	"github.com/shopspring/decimal"
)

const dayLayout = "2006-01-02"

// Settled reports whether a payment counts towards revenue.
func Settled(status model.TransactionStatus) bool {
	return status == model.StatusCompleted || status == model.StatusCaptured
}

// summarize fills the headline figures shared by every aggregator.
func summarize(window payment.Window, payments []model.PaymentTransaction) *model.PaymentAnalytics {
	report := &model.PaymentAnalytics{
		Timeframe:          window.Timeframe,
		Start:              window.Start,
		End:                window.End,
		TransactionCount:   len(payments),
		MethodDistribution: []model.MethodShare{},
		DailyBreakdown:     []model.DailyTotal{},
	}

	var revenue, fees []float64
	for _, p := range payments {
		if !Settled(p.Status) {
			continue
		}
		report.SuccessfulCount++
		revenue = append(revenue, p.Amount)
		fees = append(fees, p.ProcessingFee)
	}
	report.TotalRevenue = money.Sum(revenue...)
	report.ProcessingFees = money.Sum(fees...)

	if report.TransactionCount > 0 {
		report.SuccessRate = ratio(report.SuccessfulCount, report.TransactionCount)
	}
	if report.SuccessfulCount > 0 {
		report.AverageValue = decimal.NewFromFloat(report.TotalRevenue).
			Div(decimal.NewFromInt(int64(report.SuccessfulCount))).
			Round(2).InexactFloat64()
	}
	return report
}

// ratio returns part/whole as a percentage with two decimals.
func ratio(part, whole int) float64 {
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).InexactFloat64()
}

func share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromFloat(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(whole)).
		Round(2).InexactFloat64()
}

// days lists the calendar days touched by the window, in UTC.
func days(window payment.Window) []string {
	var out []string
	start := window.Start.UTC().Truncate(24 * time.Hour)
	for d := start; d.Before(window.End); d = d.Add(24 * time.Hour) {
		out = append(out, d.Format(dayLayout))
	}
	return out
}

func sortShares(shares []model.MethodShare) {
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Method < shares[j].Method
	})
}
