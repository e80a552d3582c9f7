package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/megamenu/internal/config"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/index"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/redis"
	"github.com/MrSnakeDoc/megamenu/internal/scheduler"
	"github.com/MrSnakeDoc/megamenu/internal/sources"
	"github.com/MrSnakeDoc/megamenu/internal/sources/navfile"
	"github.com/MrSnakeDoc/megamenu/internal/sources/sharepoint"
	redisstore "github.com/MrSnakeDoc/megamenu/internal/store/redis"
	"github.com/MrSnakeDoc/megamenu/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    *redisstore.Store // nil when Redis is disabled or unreachable
	reloader *scheduler.MenuReloader
	relay    *scheduler.ReloadRelay    // nil without store
	watcher  *scheduler.NavFileWatcher // nil unless a watched nav file is set
}

// New wires the service. Redis is optional: when configured but unreachable
// the service starts anyway, without cluster broadcasts.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	collector, err := NewCollector(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	instance := instanceName()
	log := loggerClient.With(logger.String("instance", instance))

	var store *redisstore.Store
	if cfg.RedisEnabled() {
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			log.Warn("continuing without redis, reloads stay local", logger.Error(err))
		} else {
			store = redisstore.NewStore(client)
		}
	} else {
		log.Info("redis not configured, reloads stay local")
	}

	menuIndex := index.NewMenuIndex()

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	// A typed nil store must not reach the reloader as a non-nil interface.
	var statusStore scheduler.StatusStore
	var relay *scheduler.ReloadRelay
	if store != nil {
		statusStore = store
		relay = scheduler.NewReloadRelay(store, instance, reloadTrigger, log)
	}

	var watcher *scheduler.NavFileWatcher
	if cfg.NavFile != "" && cfg.NavFileWatch {
		watcher = scheduler.NewNavFileWatcher(cfg.NavFile, reloadTrigger, log, scheduler.DefaultWatchDebounce)
	}

	reloader := scheduler.NewMenuReloader(
		collector,
		menuIndex,
		statusStore,
		instance,
		log,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:             log,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		Instance:           instance,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		SearchBurst:        cfg.SearchBurst,
		SearchRefillPerMin: cfg.SearchRefillPerMin,
		MenuIndex:          menuIndex,
		Store:              store,
		ReloadTrigger:      reloadTrigger,
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		server:   httpserver.New(cfg, log, d),
		store:    store,
		reloader: reloader,
		relay:    relay,
		watcher:  watcher,
	}, nil
}

// NewCollector builds the two sources from cfg. A navigation file, when set,
// replaces the SharePoint list; site discovery always goes to SharePoint.
func NewCollector(cfg *config.Config, log logger.Logger) (*sources.Collector, error) {
	client, err := sharepoint.NewClient(sharepoint.Options{
		SiteURL:        cfg.SiteURL,
		AccessToken:    cfg.AccessToken,
		NavList:        cfg.NavList,
		PageSize:       cfg.NavPageSize,
		NavItemsPath:   cfg.NavItemsPath,
		SitesEndpoint:  cfg.SitesEndpoint,
		SitesItemsPath: cfg.SitesItemsPath,
		Timeout:        cfg.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sharepoint client: %w", err)
	}

	var nav sources.NavSource = client
	if cfg.NavFile != "" {
		log.Info("navigation records read from file", logger.String("file", cfg.NavFile))
		nav = navfile.NewLoader(cfg.NavFile)
	}

	return sources.NewCollector(nav, client, cfg.FetchTimeout, log), nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting megamenu %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads the menu once, then refreshes periodically
	a.reloader.Start(ctx)
	a.logger.Info("menu reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.relay != nil {
		if err := a.relay.Start(ctx); err != nil {
			a.logger.Warn("failed to subscribe to reload broadcasts", logger.Error(err))
		}
	}

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("navigation file changes will wait for the next refresh", logger.Error(err))
		}
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
	}

	a.reloader.Stop()
	if a.relay != nil {
		a.relay.Stop()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if runErr == nil {
		a.logger.Info("✅ megamenu stopped cleanly")
	}
	return runErr
}

// instanceName identifies this process in reload broadcasts and refresh statuses.
// The random suffix keeps restarted pods with a reused hostname apart.
func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "-" + uuid.NewString()[:8]
}
