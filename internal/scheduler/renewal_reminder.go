// Package scheduler runs the periodic background jobs: renewal reminders and
// the Homepage bookmark import.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

// DefaultReminderInterval is how often due subscriptions are evaluated.
const DefaultReminderInterval = time.Hour

// Notifier delivers a reminder message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes reminders to the log. Used when no bot chat is configured.
type LogNotifier struct {
	Logger logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, text string) error {
	n.Logger.Info("renewal reminder", logger.String("message", text))
	return nil
}

// RenewalReminder notifies once per subscription and billing date when the
// date enters the subscription's reminder window.
type RenewalReminder struct {
	subs          *store.SubscriptionStore
	notifier      Notifier
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu   sync.Mutex
	sent map[string]struct{} // "<id>|<next_billing_date>"
}

// NewRenewalReminder creates a reminder job. manualTrigger may be nil.
func NewRenewalReminder(
	subs *store.SubscriptionStore,
	notifier Notifier,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RenewalReminder {
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	return &RenewalReminder{
		subs:          subs,
		notifier:      notifier,
		logger:        log.With(logger.String("job", "renewal_reminder")),
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		sent:          make(map[string]struct{}),
	}
}

// Start runs a first check immediately, then one per interval or manual trigger.
func (rr *RenewalReminder) Start(ctx context.Context) {
	rr.run(ctx)

	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rr.run(ctx)
			case <-rr.manualTrigger:
				rr.logger.Info("manual reminder run triggered")
				rr.run(ctx)
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the periodic checks. Safe to call more than once.
func (rr *RenewalReminder) Stop() {
	rr.stopOnce.Do(func() { close(rr.stopCh) })
}

func (rr *RenewalReminder) run(ctx context.Context) {
	n, err := rr.Check(ctx)
	if err != nil {
		rr.logger.Warn("some reminders could not be delivered", logger.Error(err))
	}
	if n > 0 {
		rr.logger.Info("renewal reminders sent", logger.Int("count", n))
	}
}

// Check notifies every due subscription not notified yet for its current
// billing date. It returns how many reminders were delivered. Failed
// deliveries are retried on the next check.
func (rr *RenewalReminder) Check(ctx context.Context) (int, error) {
	today := rr.now()
	subs := rr.subs.List()

	rr.mu.Lock()
	defer rr.mu.Unlock()

	live := make(map[string]struct{}, len(subs))
	sent := 0
	var failures []error

	for _, s := range subs {
		key := s.ID + "|" + s.NextBillingDate
		live[key] = struct{}{}

		if _, done := rr.sent[key]; done || !domain.DueForReminder(s, today) {
			continue
		}

		if err := rr.notifier.Notify(ctx, ReminderText(s, today)); err != nil {
			failures = append(failures, fmt.Errorf("failed to notify %s: %w", s.ID, err))
			continue
		}
		rr.sent[key] = struct{}{}
		sent++
	}

	// Forget keys of deleted subscriptions and past billing dates.
	for key := range rr.sent {
		if _, ok := live[key]; !ok {
			delete(rr.sent, key)
		}
	}

	if len(failures) > 0 {
		return sent, fmt.Errorf("%d reminder(s) failed, first: %w", len(failures), failures[0])
	}
	return sent, nil
}

// ReminderText renders the reminder for s as seen on today.
func ReminderText(s domain.Subscription, today time.Time) string {
	when := s.NextBillingDate
	if date, err := domain.ParseBillingDate(s.NextBillingDate); err == nil {
		switch days := int(date.Sub(domain.DateOf(today)).Hours() / 24); days {
		case 0:
			when = "today"
		case 1:
			when = "tomorrow"
		default:
			when = fmt.Sprintf("in %d days (%s)", days, s.NextBillingDate)
		}
	}

	if s.IsFreeTrial {
		return fmt.Sprintf("Free trial of %s ends %s.", s.Name, when)
	}
	return fmt.Sprintf("%s renews %s: %s %s.", s.Name, when, s.Amount.StringFixed(2), s.Currency)
}
