package deps

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/preview"
	"github.com/MrSnakeDoc/yodda/internal/store"
)

// Pinger reports whether the durable storage answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PreviewFetcher fetches link previews on demand.
type PreviewFetcher interface {
	Fetch(ctx context.Context, target string) (*preview.Preview, bool)
}

// LinkEnricher fills link previews in the background.
type LinkEnricher interface {
	Schedule(linkID, url string)
	Forget(linkID string)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts  []string // Host headers allowed to access the API
	AllowedCIDRS  []string // IPs allowed to access readyz/infra/reload
	TrustProxy    bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins   []string // origins allowed to call the API
	PreviewBurst  int      // preview rate limit burst per client IP
	PreviewPerMin int      // preview rate limit refill per client IP per minute

	StorageMode string // "redis" | "memory"
	Storage     Pinger // nil for memory storage

	Links         *store.LinkStore
	Subscriptions *store.SubscriptionStore
	Language      *store.LanguageStore
	Theme         *store.ThemeStore
	Profile       *store.ProfileStore

	Previews PreviewFetcher
	Enricher LinkEnricher // nil disables background previews
	Validate *validator.Validate

	ReminderTrigger chan struct{} // manual renewal reminder run
	ImportTrigger   chan struct{} // manual bookmark import (nil when no import file)
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
