package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"devhub-engine/internal/cache"
	"devhub-engine/internal/config"
	"devhub-engine/internal/events"
	"devhub-engine/internal/github"
	"devhub-engine/internal/httpapi"
	"devhub-engine/internal/search"
	"devhub-engine/internal/search/adzuna"
	"devhub-engine/internal/search/jooble"
	"devhub-engine/internal/search/remotive"
	"devhub-engine/internal/search/types"
	"devhub-engine/internal/search/util"
	"devhub-engine/internal/secrets"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	defaultQueryTTL    = 5 * time.Minute
	defaultResourceTTL = 10 * time.Minute
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	// Engine data dir: use env if provided (the desktop shell passes one),
	// else local folder.
	dataDir := os.Getenv("DEVHUB_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	// One engine per data dir: two instances would double-hit the shared
	// GitHub quota.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running in %s", dataDir)
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	token, err := secrets.GetGithubToken(cfg.Github.KeyringAccount, cfg.Github.Token)
	if err != nil {
		// unauthenticated works, just with a tiny quota
		log.Warnf("github token: %v", err)
	}

	reqPerSec := cfg.RateLimit.HostReqPerSec
	if reqPerSec <= 0 {
		reqPerSec = 2
	}
	burst := cfg.RateLimit.HostBurst
	if burst <= 0 {
		burst = 1
	}
	hostLimiter := util.NewHostLimiter(reqPerSec, burst)

	var fetchers []types.Fetcher
	if cfg.Sources.Remotive.Enabled {
		fetchers = append(fetchers, remotive.New(remotive.Config{
			BaseURL: cfg.Sources.Remotive.BaseURL,
		}, hostLimiter, log))
	}
	if cfg.Sources.Adzuna.Enabled {
		fetchers = append(fetchers, adzuna.New(adzuna.Config{
			BaseURL: cfg.Sources.Adzuna.BaseURL,
			AppID:   cfg.Sources.Adzuna.AppID,
			AppKey:  cfg.Sources.Adzuna.AppKey,
			Country: cfg.Sources.Adzuna.Country,
		}, hostLimiter, log))
	}
	if cfg.Sources.Jooble.Enabled {
		fetchers = append(fetchers, jooble.New(jooble.Config{
			BaseURL: cfg.Sources.Jooble.BaseURL,
			APIKey:  cfg.Sources.Jooble.APIKey,
		}, hostLimiter, log))
	}

	queryTTL := defaultQueryTTL
	if cfg.Cache.QueryTTLMinutes > 0 {
		queryTTL = time.Duration(cfg.Cache.QueryTTLMinutes) * time.Minute
	}
	resourceTTL := defaultResourceTTL
	if cfg.Cache.ResourceTTLMinutes > 0 {
		resourceTTL = time.Duration(cfg.Cache.ResourceTTLMinutes) * time.Minute
	}

	aggregator := search.NewAggregator(fetchers, log)
	searchSvc := search.NewService(aggregator, cache.New(queryTTL))

	ghClient := github.NewClient(cfg.Github.BaseURL, token, log)
	repoSvc := github.NewRepoService(ghClient, resourceTTL, cfg.Technologies.Defaults, log)
	activity := github.NewActivity(ghClient, log)

	hub := events.NewHub()

	mux := httpapi.NewMux(httpapi.Deps{
		Log:         log,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Search:      searchSvc,
		Repos:       repoSvc,
		Activity:    activity,
	})

	port := cfg.App.Port
	if port <= 0 {
		port = 38472
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover(log),
		httpapi.AccessLog(log),
		httpapi.Cors,
	)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("engine listening on http://%s (sources=%d)", addr, len(fetchers))
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Infof("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
