package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
)

// Amounts are rendered with two decimals ("65.00").
type categorySpendView struct {
	Category domain.Category `json:"category"`
	Amount   string          `json:"amount"`
}

type renewalView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	NextBillingDate string `json:"next_billing_date"`
	DaysLeft        int    `json:"days_left"`
	IsFreeTrial     bool   `json:"is_free_trial"`
}

type spendingResponse struct {
	Monthly    string              `json:"monthly"`
	Yearly     string              `json:"yearly"`
	ByCategory []categorySpendView `json:"by_category"`
	Upcoming   []renewalView       `json:"upcoming"`
	Count      int                 `json:"count"`
}

// Spending returns the aggregates of the subscription dashboard, computed
// from the current subscriptions on every call.
func Spending(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs := d.Subscriptions.List()
		sum := domain.Summarize(subs, d.Now())

		resp := spendingResponse{
			Monthly:    sum.Monthly.StringFixed(2),
			Yearly:     sum.Yearly.StringFixed(2),
			ByCategory: make([]categorySpendView, len(sum.ByCategory)),
			Upcoming:   make([]renewalView, len(sum.Upcoming)),
			Count:      len(subs),
		}
		for i, c := range sum.ByCategory {
			resp.ByCategory[i] = categorySpendView{Category: c.Category, Amount: c.Amount.StringFixed(2)}
		}
		for i, u := range sum.Upcoming {
			resp.Upcoming[i] = renewalView{
				ID:              u.Subscription.ID,
				Name:            u.Subscription.Name,
				Amount:          u.Subscription.Amount.StringFixed(2),
				Currency:        u.Subscription.Currency,
				NextBillingDate: u.BillingDate.Format(domain.BillingDateLayout),
				DaysLeft:        u.DaysLeft,
				IsFreeTrial:     u.Subscription.IsFreeTrial,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
