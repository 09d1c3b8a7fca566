package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/logger"
)

type createSubscriptionRequest struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Category          string          `json:"category" validate:"required,oneof=Education Productivity Entertainment Finance Health Other"`
	Amount            decimal.Decimal `json:"amount" validate:"gte=0"`
	Currency          string          `json:"currency" validate:"required,len=3,alpha"`
	BillingCycleType  string          `json:"billing_cycle_type" validate:"required,oneof=weekly monthly yearly custom"`
	BillingCycleValue int             `json:"billing_cycle_value" validate:"gte=0"`
	NextBillingDate   string          `json:"next_billing_date" validate:"required,datetime=2006-01-02"`
	ReminderDays      int             `json:"reminder_days" validate:"gte=0,lte=365"`
	Notes             string          `json:"notes" validate:"max=2000"`
	IsFreeTrial       bool            `json:"is_free_trial"`
}

type updateSubscriptionRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category          *string          `json:"category" validate:"omitempty,oneof=Education Productivity Entertainment Finance Health Other"`
	Amount            *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
	Currency          *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	BillingCycleType  *string          `json:"billing_cycle_type" validate:"omitempty,oneof=weekly monthly yearly custom"`
	BillingCycleValue *int             `json:"billing_cycle_value" validate:"omitempty,gte=1"`
	NextBillingDate   *string          `json:"next_billing_date" validate:"omitempty,datetime=2006-01-02"`
	ReminderDays      *int             `json:"reminder_days" validate:"omitempty,gte=0,lte=365"`
	Notes             *string          `json:"notes" validate:"omitempty,max=2000"`
	IsFreeTrial       *bool            `json:"is_free_trial"`
}

func (u updateSubscriptionRequest) patch() domain.SubscriptionPatch {
	p := domain.SubscriptionPatch{
		Name:              u.Name,
		Amount:            u.Amount,
		BillingCycleValue: u.BillingCycleValue,
		NextBillingDate:   u.NextBillingDate,
		ReminderDays:      u.ReminderDays,
		Notes:             u.Notes,
		IsFreeTrial:       u.IsFreeTrial,
	}
	if u.Category != nil {
		c := domain.Category(*u.Category)
		p.Category = &c
	}
	if u.Currency != nil {
		c := strings.ToUpper(*u.Currency)
		p.Currency = &c
	}
	if u.BillingCycleType != nil {
		b := domain.BillingCycle(*u.BillingCycleType)
		p.BillingCycleType = &b
	}
	return p
}

// ListSubscriptions returns subscriptions ordered by next billing date.
func ListSubscriptions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Subscriptions.SortedByNextBilling())
	}
}

func GetSubscription(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.Subscriptions.Subscription(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func CreateSubscription(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSubscriptionRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}
		// the cycle value counts days for custom cycles and is always 1 otherwise
		if req.BillingCycleValue < 1 || domain.BillingCycle(req.BillingCycleType) != domain.CycleCustom {
			req.BillingCycleValue = 1
		}

		s := d.Subscriptions.AddSubscription(domain.SubscriptionInput{
			Name:              strings.TrimSpace(req.Name),
			Category:          domain.Category(req.Category),
			Amount:            req.Amount,
			Currency:          strings.ToUpper(req.Currency),
			BillingCycleType:  domain.BillingCycle(req.BillingCycleType),
			BillingCycleValue: req.BillingCycleValue,
			NextBillingDate:   req.NextBillingDate,
			ReminderDays:      req.ReminderDays,
			Notes:             req.Notes,
			IsFreeTrial:       req.IsFreeTrial,
		})

		d.Logger.Info("subscription created",
			logger.String("subscription_id", s.ID),
			logger.String("name", s.Name),
			logger.String("cycle", string(s.BillingCycleType)))
		writeJSON(w, http.StatusCreated, s)
	}
}

func UpdateSubscription(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := d.Subscriptions.Subscription(id); !ok {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}

		var req updateSubscriptionRequest
		if !decodeAndValidate(w, r, d, &req) {
			return
		}

		s, ok := d.Subscriptions.UpdateSubscription(id, req.patch())
		if !ok {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func DeleteSubscription(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := d.Subscriptions.Subscription(id); !ok {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		d.Subscriptions.DeleteSubscription(id)
		w.WriteHeader(http.StatusNoContent)
	}
}
