package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a subscription for the spending breakdown.
type Category string

const (
	CategoryEducation     Category = "Education"
	CategoryProductivity  Category = "Productivity"
	CategoryEntertainment Category = "Entertainment"
	CategoryFinance       Category = "Finance"
	CategoryHealth        Category = "Health"
	CategoryOther         Category = "Other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryEducation,
	CategoryProductivity,
	CategoryEntertainment,
	CategoryFinance,
	CategoryHealth,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// BillingCycle is the unit a subscription renews on.
type BillingCycle string

const (
	CycleWeekly  BillingCycle = "weekly"
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
	// CycleCustom renews every BillingCycleValue days.
	CycleCustom BillingCycle = "custom"
)

func (b BillingCycle) Valid() bool {
	switch b {
	case CycleWeekly, CycleMonthly, CycleYearly, CycleCustom:
		return true
	}
	return false
}

// BillingDateLayout is the calendar date format of NextBillingDate.
const BillingDateLayout = "2006-01-02"

// Subscription is a recurring payment.
type Subscription struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`

	// ─────────────────────────────
	// Billing
	// ─────────────────────────────

	// Amount is never negative.
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	BillingCycleType  BillingCycle `json:"billing_cycle_type"`
	BillingCycleValue int          `json:"billing_cycle_value"`

	// NextBillingDate is a calendar date (YYYY-MM-DD).
	NextBillingDate string `json:"next_billing_date"`

	// ─────────────────────────────
	// Reminders & notes
	// ─────────────────────────────

	ReminderDays int    `json:"reminder_days"`
	Notes        string `json:"notes,omitempty"`
	IsFreeTrial  bool   `json:"is_free_trial"`

	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionInput carries the caller-supplied fields of a new subscription.
type SubscriptionInput struct {
	Name              string
	Category          Category
	Amount            decimal.Decimal
	Currency          string
	BillingCycleType  BillingCycle
	BillingCycleValue int
	NextBillingDate   string
	ReminderDays      int
	Notes             string
	IsFreeTrial       bool
}

// SubscriptionPatch is a partial update; nil fields are left untouched.
type SubscriptionPatch struct {
	Name              *string
	Category          *Category
	Amount            *decimal.Decimal
	Currency          *string
	BillingCycleType  *BillingCycle
	BillingCycleValue *int
	NextBillingDate   *string
	ReminderDays      *int
	Notes             *string
	IsFreeTrial       *bool
}

// Apply merges the non-nil fields of p into s and returns the result.
func (p SubscriptionPatch) Apply(s Subscription) Subscription {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.BillingCycleType != nil {
		s.BillingCycleType = *p.BillingCycleType
	}
	if p.BillingCycleValue != nil {
		s.BillingCycleValue = *p.BillingCycleValue
	}
	if p.NextBillingDate != nil {
		s.NextBillingDate = *p.NextBillingDate
	}
	if p.ReminderDays != nil {
		s.ReminderDays = *p.ReminderDays
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.IsFreeTrial != nil {
		s.IsFreeTrial = *p.IsFreeTrial
	}
	return s
}

// ParseBillingDate parses a next-billing date. Plain calendar dates are the
// stored format; RFC3339 timestamps are accepted and truncated to their day.
// The result is midnight UTC of that calendar day.
func ParseBillingDate(s string) (time.Time, error) {
	if t, err := time.Parse(BillingDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid billing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns midnight UTC of the calendar day t falls on in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
