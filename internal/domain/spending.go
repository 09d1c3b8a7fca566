package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// RenewalWindow is how far ahead UpcomingRenewals looks (inclusive).
	RenewalWindow = 7 * 24 * time.Hour
	// MaxUpcomingRenewals caps the UpcomingRenewals result.
	MaxUpcomingRenewals = 5
)

var (
	weeksPerMonth = decimal.NewFromInt(4)
	monthsPerYear = decimal.NewFromInt(12)
	daysPerMonth  = decimal.NewFromInt(30)
)

// CategorySpend is the monthly-equivalent spend of one category.
type CategorySpend struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Renewal is a subscription due inside the renewal window.
type Renewal struct {
	Subscription Subscription `json:"subscription"`
	BillingDate  time.Time    `json:"billing_date"`
	DaysLeft     int          `json:"days_left"`
}

// SpendingSummary bundles every aggregate shown on the spending dashboard.
type SpendingSummary struct {
	Monthly    decimal.Decimal `json:"monthly"`
	Yearly     decimal.Decimal `json:"yearly"`
	ByCategory []CategorySpend `json:"by_category"`
	Upcoming   []Renewal       `json:"upcoming"`
}

// MonthlyEquivalent normalizes a subscription cost to a 30-day period.
//
//	weekly  -> amount * 4
//	monthly -> amount
//	yearly  -> amount / 12
//	custom  -> amount * 30 / days (BillingCycleValue counts days)
//
// BillingCycleValue only matters for custom cycles; below one it counts as one.
func MonthlyEquivalent(s Subscription) decimal.Decimal {
	switch s.BillingCycleType {
	case CycleWeekly:
		return s.Amount.Mul(weeksPerMonth)
	case CycleYearly:
		return s.Amount.Div(monthsPerYear)
	case CycleCustom:
		days := max(s.BillingCycleValue, 1)
		return s.Amount.Mul(daysPerMonth).Div(decimal.NewFromInt(int64(days)))
	default:
		return s.Amount
	}
}

// Totals returns the summed monthly-equivalent spend and its yearly projection.
func Totals(subs []Subscription) (monthly, yearly decimal.Decimal) {
	monthly = decimal.Zero
	for _, s := range subs {
		monthly = monthly.Add(MonthlyEquivalent(s))
	}
	return monthly, monthly.Mul(monthsPerYear)
}

// SpendByCategory groups monthly-equivalents by category, largest first.
func SpendByCategory(subs []Subscription) []CategorySpend {
	byCat := make(map[Category]decimal.Decimal)
	for _, s := range subs {
		byCat[s.Category] = byCat[s.Category].Add(MonthlyEquivalent(s))
	}

	out := make([]CategorySpend, 0, len(byCat))
	for c, amount := range byCat {
		out = append(out, CategorySpend{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// UpcomingRenewals returns the subscriptions billed between today and
// today+7 days (both inclusive, day granularity), nearest first, at most five.
// Subscriptions with an unparseable date are skipped.
func UpcomingRenewals(subs []Subscription, today time.Time) []Renewal {
	start := DateOf(today)
	end := start.Add(RenewalWindow)

	out := make([]Renewal, 0)
	for _, s := range subs {
		date, err := ParseBillingDate(s.NextBillingDate)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		out = append(out, Renewal{
			Subscription: s,
			BillingDate:  date,
			DaysLeft:     int(date.Sub(start).Hours() / 24),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BillingDate.Before(out[j].BillingDate)
	})
	if len(out) > MaxUpcomingRenewals {
		out = out[:MaxUpcomingRenewals]
	}
	return out
}

// Summarize computes every dashboard aggregate from one snapshot.
func Summarize(subs []Subscription, today time.Time) SpendingSummary {
	monthly, yearly := Totals(subs)
	return SpendingSummary{
		Monthly:    monthly,
		Yearly:     yearly,
		ByCategory: SpendByCategory(subs),
		Upcoming:   UpcomingRenewals(subs, today),
	}
}

// DueForReminder reports whether today falls within ReminderDays before the
// next billing date (the billing day itself included).
func DueForReminder(s Subscription, today time.Time) bool {
	date, err := ParseBillingDate(s.NextBillingDate)
	if err != nil {
		return false
	}
	day := DateOf(today)
	from := date.AddDate(0, 0, -s.ReminderDays)
	return !day.Before(from) && !day.After(date)
}
