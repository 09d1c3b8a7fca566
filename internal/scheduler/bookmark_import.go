package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/sources/homepage"
)

// BookmarkImport re-imports the Homepage bookmarks file at startup, on each
// manual trigger and, when interval > 0, periodically. Links already present
// are skipped, so repeated runs only pick up new bookmarks.
type BookmarkImport struct {
	importer      *homepage.Importer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

func NewBookmarkImport(importer *homepage.Importer, log logger.Logger, interval time.Duration, manualTrigger chan struct{}) *BookmarkImport {
	return &BookmarkImport{
		importer:      importer,
		logger:        log.With(logger.String("job", "bookmark_import")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once, then waits for triggers. A failing import is logged,
// never fatal: the app runs fine without it.
func (bi *BookmarkImport) Start(ctx context.Context) {
	bi.run()

	go func() {
		var tick <-chan time.Time
		if bi.interval > 0 {
			ticker := time.NewTicker(bi.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				bi.run()
			case <-bi.manualTrigger:
				bi.logger.Info("manual bookmark import triggered")
				bi.run()
			case <-bi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the job. Safe to call more than once.
func (bi *BookmarkImport) Stop() {
	bi.stopOnce.Do(func() { close(bi.stopCh) })
}

func (bi *BookmarkImport) run() {
	if _, err := bi.importer.Import(); err != nil {
		bi.logger.Error("failed to import bookmarks", logger.Error(err))
	}
}
