package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/yodda/internal/bot"
	"github.com/MrSnakeDoc/yodda/internal/config"
	"github.com/MrSnakeDoc/yodda/internal/httpserver"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yodda/internal/logger"
	"github.com/MrSnakeDoc/yodda/internal/preview"
	"github.com/MrSnakeDoc/yodda/internal/redis"
	"github.com/MrSnakeDoc/yodda/internal/scheduler"
	"github.com/MrSnakeDoc/yodda/internal/sources/homepage"
	"github.com/MrSnakeDoc/yodda/internal/store"
	redisstore "github.com/MrSnakeDoc/yodda/internal/store/redis"
	"github.com/MrSnakeDoc/yodda/internal/utils"
	"github.com/MrSnakeDoc/yodda/internal/version"
)

// binding is the lifecycle part of a store.Binding, whatever its state type.
type binding interface {
	Flush()
	Close()
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	bindings    []binding
	enricher    *preview.Enricher
	bot         *bot.Bot
	reminder    *scheduler.RenewalReminder
	importer    *scheduler.BookmarkImport
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{
		cfg:    cfg,
		logger: loggerClient,
	}

	// Storage: redis is the durable default, memory is for local runs.
	var (
		repo    store.Repository
		storage deps.Pinger
	)
	switch cfg.Storage {
	case config.StorageRedis:
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		a.redisClient = client
		redisRepo := redisstore.NewRepository(client, cfg.KeyPrefix)
		repo, storage = redisRepo, redisRepo
	default:
		loggerClient.Warn("using in-memory storage, state is lost on restart")
		repo = store.NewMemoryRepository()
	}

	// State containers, each hydrated from and persisted to its own key.
	links := store.NewLinkStore()
	subs := store.NewSubscriptionStore()
	language := store.NewLanguageStore()
	theme := store.NewThemeStore()
	profile := store.NewProfileStore()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.bindings = []binding{
		store.Bind[store.LinkState](ctx, repo, store.KeyLinks, links, loggerClient),
		store.Bind[store.SubscriptionState](ctx, repo, store.KeySubs, subs, loggerClient),
		store.Bind[store.LanguageState](ctx, repo, store.KeyLanguage, language, loggerClient),
		store.Bind[store.ThemeState](ctx, repo, store.KeyTheme, theme, loggerClient),
		store.Bind[store.ProfileState](ctx, repo, store.KeyProfile, profile, loggerClient),
	}

	// Previews
	var previewClient *http.Client
	if cfg.PreviewTimeout > 0 {
		previewClient = &http.Client{Timeout: cfg.PreviewTimeout}
	}
	fetcher := preview.NewFetcher(cfg.PreviewProxyURL, previewClient, loggerClient)
	a.enricher = preview.NewEnricher(fetcher, links, cfg.PreviewDebounce, cfg.PreviewTimeout, loggerClient)

	// Telegram bot and reminder delivery
	var notifier scheduler.Notifier = scheduler.LogNotifier{Logger: loggerClient}
	if cfg.BotToken != "" {
		b, err := bot.New(cfg.BotToken, bot.Options{
			WebAppURL:    cfg.WebAppURL,
			NotifyChatID: cfg.BotNotifyChatID,
		}, links, a.enricher, loggerClient)
		if err != nil {
			a.closeStorage()
			return nil, fmt.Errorf("failed to start telegram bot: %w", err)
		}
		a.bot = b
		if cfg.BotNotifyChatID != 0 {
			notifier = b
		} else {
			loggerClient.Info("YODDA_BOT_NOTIFY_CHAT_ID not set, renewal reminders go to the log")
		}
	} else {
		loggerClient.Info("bot token not configured, telegram bot disabled")
	}

	reminderTrigger := make(chan struct{}, 1)
	a.reminder = scheduler.NewRenewalReminder(subs, notifier, loggerClient, cfg.ReminderInterval, reminderTrigger)

	var importTrigger chan struct{}
	if cfg.ImportFile != "" {
		loggerClient.Info("import file configured, initializing bookmark import",
			logger.String("file", cfg.ImportFile))
		importTrigger = make(chan struct{}, 1)
		importer := homepage.NewImporter(cfg.ImportFile, links, a.enricher, loggerClient)
		a.importer = scheduler.NewBookmarkImport(importer, loggerClient, 0, importTrigger)
	}

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		CORSOrigins:     cfg.CORSOrigins,
		PreviewBurst:    cfg.PreviewBurst,
		PreviewPerMin:   cfg.PreviewPerMin,
		StorageMode:     cfg.Storage,
		Storage:         storage,
		Links:           links,
		Subscriptions:   subs,
		Language:        language,
		Theme:           theme,
		Profile:         profile,
		Previews:        fetcher,
		Enricher:        a.enricher,
		Validate:        handlers.NewValidator(),
		ReminderTrigger: reminderTrigger,
		ImportTrigger:   importTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Yodda %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobsCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	if a.importer != nil {
		a.importer.Start(jobsCtx)
		a.logger.Info("bookmark import started")
	}

	a.reminder.Start(jobsCtx)
	a.logger.Info("renewal reminder started",
		logger.Duration("interval", a.cfg.ReminderInterval))

	var botDone sync.WaitGroup
	if a.bot != nil {
		botDone.Add(1)
		go func() {
			defer botDone.Done()
			a.bot.Run(jobsCtx)
		}()
		a.logger.Info("telegram bot started")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
		a.logger.Error("http server stopped", logger.Error(runErr))
	}

	a.reminder.Stop()
	if a.importer != nil {
		a.importer.Stop()
	}
	cancelJobs()
	botDone.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	// Nothing schedules previews anymore; wait for running fetches so their
	// results are part of the final flush.
	a.enricher.Stop()
	a.closeStorage()

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Yodda stopped cleanly")
	return nil
}

// closeStorage writes pending snapshots, then releases the redis client.
func (a *App) closeStorage() {
	for _, b := range a.bindings {
		b.Flush()
		b.Close()
	}
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}
}
