package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Sources
	SiteURL        string        // SharePoint site base URL (ex: https://contoso.sharepoint.com/sites/law)
	AccessToken    string        // optional bearer token sent to both sources
	NavList        string        // title of the list holding the navigation records
	NavPageSize    int           // $top bound for the navigation query
	NavFile        string        // optional local YAML/JSON navigation file, replaces the list when set
	NavFileWatch   bool          // reload as soon as NavFile changes on disk
	NavItemsPath   string        // JSONPath selecting record objects in the list response
	SitesEndpoint  string        // discovery endpoint path, relative to SiteURL
	SitesItemsPath string        // JSONPath selecting {Text, Value} objects in the discovery response
	FetchTimeout   time.Duration // per-source timeout for one refresh
	ReloadInterval time.Duration // interval between refreshes (default: 15m)

	// Redis (optional, empty RedisAddr disables it)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// HTTP access
	AllowedHosts       []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS       []string // optional, restrict admin/probe routes to specific IPs
	TrustProxy         bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins        []string // origins allowed to fetch the menu from a browser
	SearchBurst        int      // search rate limit bucket size per IP
	SearchRefillPerMin int      // search tokens regained per minute per IP
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MEGAMENU_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MEGAMENU_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MEGAMENU_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MEGAMENU_PRETTY_LOG", true),

		// Sources
		SiteURL:        trimSiteURL(requireEnv("MEGAMENU_SITE_URL")),
		AccessToken:    getenv("MEGAMENU_ACCESS_TOKEN", ""),
		NavList:        getenv("MEGAMENU_NAV_LIST", "MegaMenu"),
		NavPageSize:    getenvInt("MEGAMENU_NAV_PAGE_SIZE", 500),
		NavFile:        getenv("MEGAMENU_NAV_FILE", ""),
		NavFileWatch:   mustBool("MEGAMENU_NAV_FILE_WATCH", true),
		NavItemsPath:   getenv("MEGAMENU_NAV_ITEMS_PATH", "$.value[*]"),
		SitesEndpoint:  getenv("MEGAMENU_SITES_ENDPOINT", "/_layouts/15/FLS_Claims/applicationpage1.aspx/GetSiteCollections"),
		SitesItemsPath: getenv("MEGAMENU_SITES_ITEMS_PATH", "$.d[*]"),
		FetchTimeout:   mustDuration("MEGAMENU_FETCH_TIMEOUT", 10*time.Second),
		ReloadInterval: mustDuration("MEGAMENU_RELOAD_INTERVAL", 15*time.Minute),

		// Redis settings
		RedisAddr:           getenv("MEGAMENU_REDIS_ADDR", ""),
		RedisUser:           getenv("MEGAMENU_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("MEGAMENU_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MEGAMENU_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:       splitAndTrim(getenv("MEGAMENU_ALLOWED_HOSTS", "")),
		AllowedCIDRS:       splitAndTrim(getenv("MEGAMENU_ALLOWED_CIDRS", "")),
		TrustProxy:         mustBool("MEGAMENU_TRUST_PROXY", true),
		CORSOrigins:        splitAndTrim(getenv("MEGAMENU_CORS_ORIGINS", "*")),
		SearchBurst:        getenvInt("MEGAMENU_SEARCH_BURST", 30),
		SearchRefillPerMin: getenvInt("MEGAMENU_SEARCH_REFILL_PER_MIN", 60),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.AccessToken != "" {
		cp.AccessToken = "***REDACTED***"
	}
	return cp
}

func (c *Config) validate() error {
	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("MEGAMENU_SITE_URL must be an absolute URL, got %q", c.SiteURL)
	}
	if c.NavPageSize <= 0 {
		return fmt.Errorf("MEGAMENU_NAV_PAGE_SIZE must be > 0, got %d", c.NavPageSize)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("MEGAMENU_FETCH_TIMEOUT must be > 0, got %v", c.FetchTimeout)
	}
	if c.ReloadInterval <= 0 {
		return fmt.Errorf("MEGAMENU_RELOAD_INTERVAL must be > 0, got %v", c.ReloadInterval)
	}
	return nil
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

// trimSiteURL drops trailing slashes so paths can be appended directly.
// Example: "https://contoso.sharepoint.com/sites/law/" -> "https://contoso.sharepoint.com/sites/law"
func trimSiteURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
