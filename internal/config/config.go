package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout (chi middleware)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage   string // "redis" (default) | "memory"
	KeyPrefix string // prefix of every document key in redis

	// Link preview
	PreviewProxyURL string        // allorigins-compatible fetch proxy
	PreviewDebounce time.Duration // quiet period before a preview is requested
	PreviewTimeout  time.Duration // 0 = client default, no extra timeout

	// Telegram
	WebAppURL       string // URL opened by the bot's mini-app button
	BotToken        string // optional, empty = bot disabled
	BotNotifyChatID int64  // chat receiving renewal reminders (0 = log only)

	// Background jobs
	ImportFile       string        // optional Homepage bookmarks.yaml imported at startup
	ReminderInterval time.Duration // how often renewal reminders are evaluated

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts  []string // optional, restrict API access to specific Host headers
	AllowedCIDRS  []string // optional, restrict /readyz, /infra and /reload to these IPs/CIDRs
	TrustProxy    bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins   []string // origins allowed to call the API (mini-app host)
	PreviewBurst  int      // preview rate limit burst per client IP
	PreviewPerMin int      // preview rate limit refill per client IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("YODDA_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("YODDA_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("YODDA_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("YODDA_LOG_LEVEL", "info"),
		PrettyLog: mustBool("YODDA_PRETTY_LOG", true),

		// Storage
		Storage:   strings.ToLower(getenv("YODDA_STORAGE", StorageRedis)),
		KeyPrefix: getenv("YODDA_KEY_PREFIX", "yodda:"),

		// Preview
		PreviewProxyURL: getenv("YODDA_PREVIEW_PROXY_URL", "https://api.allorigins.win/get"),
		PreviewDebounce: mustDuration("YODDA_PREVIEW_DEBOUNCE", time.Second),
		PreviewTimeout:  mustDuration("YODDA_PREVIEW_TIMEOUT", 0),

		// Telegram
		WebAppURL:       getenv("YODDA_WEB_APP_URL", ""),
		BotToken:        getenv("YODDA_BOT_TOKEN", ""),
		BotNotifyChatID: getenvInt64("YODDA_BOT_NOTIFY_CHAT_ID", 0),

		// Background jobs
		ImportFile:       getenv("YODDA_IMPORT_FILE", ""),
		ReminderInterval: mustDuration("YODDA_REMINDER_INTERVAL", time.Hour),

		// Access restrictions
		AllowedHosts:  splitAndTrim(getenv("YODDA_ALLOWED_HOSTS", "")),
		AllowedCIDRS:  parseAllowedIPs(getenv("YODDA_ALLOWED_CIDRS", "")),
		TrustProxy:    mustBool("YODDA_TRUST_PROXY", true),
		CORSOrigins:   splitAndTrim(getenv("YODDA_CORS_ORIGINS", "*")),
		PreviewBurst:  getenvInt("YODDA_PREVIEW_BURST", 10),
		PreviewPerMin: getenvInt("YODDA_PREVIEW_PER_MIN", 30),
	}

	switch cfg.Storage {
	case StorageMemory:
	case StorageRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: YODDA_STORAGE must be %q or %q, got %q", StorageRedis, StorageMemory, cfg.Storage))
	}

	if cfg.BotToken != "" && cfg.WebAppURL == "" {
		panic("❌ FATAL: YODDA_WEB_APP_URL is required when YODDA_BOT_TOKEN is set")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		if cfg.BotToken != "" {
			cfgCopy.BotToken = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadRedis reads the redis settings, which are only required for the redis backend.
func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("YODDA_REDIS_ADDR")
	cfg.RedisUser = getenv("YODDA_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("YODDA_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("YODDA_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("YODDA_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: YODDA_REDIS_PASSWORD is required when YODDA_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// getenvInt64 panics on a malformed value: a wrong chat id would silently
// drop every reminder.
func getenvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
