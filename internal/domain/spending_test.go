package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sub(name string, cycle BillingCycle, amount string, next string) Subscription {
	return Subscription{
		ID:                name,
		Name:              name,
		Category:          CategoryOther,
		Amount:            decimal.RequireFromString(amount),
		Currency:          "USD",
		BillingCycleType:  cycle,
		BillingCycleValue: 1,
		NextBillingDate:   next,
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name   string
		cycle  BillingCycle
		amount string
		value  int
		want   string
	}{
		{name: "weekly times four", cycle: CycleWeekly, amount: "10", value: 1, want: "40"},
		{name: "monthly unchanged", cycle: CycleMonthly, amount: "15", value: 1, want: "15"},
		{name: "yearly divided by twelve", cycle: CycleYearly, amount: "120", value: 1, want: "10"},
		{name: "custom counts days", cycle: CycleCustom, amount: "6", value: 15, want: "12"},
		{name: "custom zero days counts as one", cycle: CycleCustom, amount: "1", value: 0, want: "30"},
		{name: "weekly ignores cycle value", cycle: CycleWeekly, amount: "10", value: 2, want: "40"},
		{name: "monthly ignores cycle value", cycle: CycleMonthly, amount: "30", value: 3, want: "30"},
		{name: "yearly ignores cycle value", cycle: CycleYearly, amount: "120", value: 5, want: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sub(tt.name, tt.cycle, tt.amount, "")
			s.BillingCycleValue = tt.value
			got := MonthlyEquivalent(s)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("MonthlyEquivalent() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTotals(t *testing.T) {
	subs := []Subscription{
		sub("Netflix", CycleMonthly, "15.00", "2026-01-01"),
		sub("Domain", CycleYearly, "120.00", "2026-01-01"),
		sub("Gym", CycleWeekly, "10.00", "2026-01-01"),
	}

	monthly, yearly := Totals(subs)
	if !monthly.Equal(decimal.RequireFromString("65.00")) {
		t.Errorf("monthly = %s, want 65.00", monthly)
	}
	if !yearly.Equal(decimal.RequireFromString("780.00")) {
		t.Errorf("yearly = %s, want 780.00", yearly)
	}
}

func TestTotalsEmpty(t *testing.T) {
	monthly, yearly := Totals(nil)
	if !monthly.IsZero() || !yearly.IsZero() {
		t.Errorf("Totals(nil) = %s, %s, want zero", monthly, yearly)
	}
}

func TestSpendByCategory(t *testing.T) {
	a := sub("a", CycleMonthly, "5", "")
	a.Category = CategoryHealth
	b := sub("b", CycleWeekly, "10", "")
	b.Category = CategoryEntertainment
	c := sub("c", CycleMonthly, "3", "")
	c.Category = CategoryHealth

	got := SpendByCategory([]Subscription{a, b, c})
	if len(got) != 2 {
		t.Fatalf("SpendByCategory() returned %d groups, want 2", len(got))
	}
	if got[0].Category != CategoryEntertainment || !got[0].Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("first group = %+v, want Entertainment 40", got[0])
	}
	if got[1].Category != CategoryHealth || !got[1].Amount.Equal(decimal.NewFromInt(8)) {
		t.Errorf("second group = %+v, want Health 8", got[1])
	}
}

func TestUpcomingRenewals(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	subs := []Subscription{
		sub("yesterday", CycleMonthly, "1", "2026-03-09"),
		sub("today", CycleMonthly, "1", "2026-03-10"),
		sub("d3", CycleMonthly, "1", "2026-03-13"),
		sub("d7", CycleMonthly, "1", "2026-03-17"),
		sub("d8", CycleMonthly, "1", "2026-03-18"),
		sub("d1", CycleMonthly, "1", "2026-03-11"),
		sub("d2", CycleMonthly, "1", "2026-03-12T08:00:00Z"),
		sub("d5", CycleMonthly, "1", "2026-03-15"),
		sub("broken", CycleMonthly, "1", "not a date"),
	}

	got := UpcomingRenewals(subs, today)
	want := []string{"today", "d1", "d2", "d3", "d5"}
	if len(got) != len(want) {
		t.Fatalf("UpcomingRenewals() returned %d items, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Subscription.ID != want[i] {
			t.Errorf("item %d = %s, want %s", i, r.Subscription.ID, want[i])
		}
	}
	if got[0].DaysLeft != 0 || got[3].DaysLeft != 3 {
		t.Errorf("DaysLeft = %d/%d, want 0/3", got[0].DaysLeft, got[3].DaysLeft)
	}
}

func TestUpcomingRenewalsIncludesWindowEnd(t *testing.T) {
	today := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	got := UpcomingRenewals([]Subscription{sub("d7", CycleMonthly, "1", "2026-03-17")}, today)
	if len(got) != 1 {
		t.Fatalf("expected the renewal on day 7 to be included, got %d", len(got))
	}
}

func TestDueForReminder(t *testing.T) {
	s := sub("a", CycleMonthly, "1", "2026-03-20")
	s.ReminderDays = 3

	tests := []struct {
		day  string
		want bool
	}{
		{"2026-03-16", false},
		{"2026-03-17", true},
		{"2026-03-20", true},
		{"2026-03-21", false},
	}
	for _, tt := range tests {
		day, _ := time.Parse(BillingDateLayout, tt.day)
		if got := DueForReminder(s, day); got != tt.want {
			t.Errorf("DueForReminder(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := Summarize([]Subscription{sub("a", CycleMonthly, "9.99", "2026-03-12")}, today)

	if !s.Monthly.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("Monthly = %s, want 9.99", s.Monthly)
	}
	if len(s.ByCategory) != 1 || len(s.Upcoming) != 1 {
		t.Errorf("summary = %+v, want one category and one renewal", s)
	}
}
