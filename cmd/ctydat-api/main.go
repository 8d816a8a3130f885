package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/user00265/ctydatapi/internal/config"
	"github.com/user00265/ctydatapi/internal/ctyfile"
	"github.com/user00265/ctydatapi/internal/db"
	"github.com/user00265/ctydatapi/internal/logging"
	"github.com/user00265/ctydatapi/internal/redisclient"
	"github.com/user00265/ctydatapi/internal/server"
	"github.com/user00265/ctydatapi/version"
)

func main() {
	status := RunApplication(context.Background(), os.Args[1:])
	if status != 0 {
		os.Exit(status)
	}
}

// RunApplication runs the API until ctx is cancelled or a shutdown signal
// arrives and returns the process exit status.
func RunApplication(ctx context.Context, args []string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startupTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err)
		return 1
	}

	if len(args) > 0 && strings.ToLower(args[0]) == "healthcheck" {
		return healthcheck(ctx, cfg)
	}

	setupLogging(cfg)
	defer postCleanupDump()
	logConfiguration(cfg)

	rdb := initializeRedis(ctx, cfg)
	defer func() {
		if rdb != nil {
			rdb.Close()
		}
	}()

	ctyClient, err := initializeCty(ctx, cfg)
	if err != nil {
		logging.Crit("Failed to load country data: %v", err)
		return 1
	}
	defer func() {
		if err := ctyClient.Close(); err != nil {
			logging.Error("Error closing country file client: %v", err)
		}
	}()

	// rdb is checked here so a nil *LookupCache never reaches the interface.
	var cache server.LookupCache
	if rdb != nil {
		cache = redisclient.NewLookupCache(rdb, cfg.Redis.LookupExpiry)
	} else {
		cache = server.NewMemoryCache(server.DefaultMemoryCacheSize)
	}

	gin.SetMode(gin.ReleaseMode)
	router, api := server.NewRouter(cfg)
	server.SetupRoutes(api, ctyClient, cache, cfg.MaxBatch)

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.WebPort),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	logging.Info("HTTP API listening on 0.0.0.0:%d (BaseURL: %s)", cfg.WebPort, cfg.BaseURL)

	go statusReporter(ctx, startupTime, ctyClient)

	return gracefulShutdown(ctx, srv, serveErr)
}

func setupLogging(cfg *config.Config) {
	if cfg.LogLevel != "" {
		lvl, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			logging.Warn("Unrecognized LOG_LEVEL=%q; valid: crit,error,warn,notice,info,debug or 0-5. Using default (NOTICE).", cfg.LogLevel)
		} else {
			logging.SetLevel(lvl)
		}
	}

	logging.Notice("Starting %s %s (+%s)", version.ProjectName, version.ProjectVersion, version.ProjectGitHubURL)
}

// postCleanupDump prints all goroutine stacks after shutdown when
// CTYDAT_API_DUMP_POST_CLEANUP is set. Useful for finding leaked goroutines.
func postCleanupDump() {
	if v := os.Getenv("CTYDAT_API_DUMP_POST_CLEANUP"); !(v == "1" || strings.ToLower(v) == "true") {
		logging.Debug("Debug (post-cleanup): goroutines final: %d (set CTYDAT_API_DUMP_POST_CLEANUP=1 to see full stacks)", runtime.NumGoroutine())
		return
	}
	time.Sleep(150 * time.Millisecond)
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	log.Printf("=== goroutine stack dump (post-cleanup len=%d) ===\n%s\n=== end goroutine stack dump ===", n, string(buf[:n]))
}

func logConfiguration(cfg *config.Config) {
	logging.Notice("Configuration loaded. WebPort: %d, MaxBatch: %d, DataDir: %s", cfg.WebPort, cfg.MaxBatch, cfg.DataDir)
	if cfg.CtyFile != "" {
		logging.Notice("Country file: %s (charset %s), reloaded every %s", cfg.CtyFile, cfg.CtyCharset, cfg.CtyUpdateInterval)
	} else {
		logging.Notice("Country file: %s (charset %s), refreshed every %s", cfg.CtyURL, cfg.CtyCharset, cfg.CtyUpdateInterval)
	}
	if cfg.Redis.Enabled {
		logging.Notice("Redis cache enabled. Host: %s:%s, DB: %d, TLS: %t", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB, cfg.Redis.UseTLS)
	} else {
		logging.Info("Redis cache disabled (using in-memory).")
	}
}

func initializeRedis(ctx context.Context, cfg *config.Config) *redisclient.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := redisclient.NewClient(ctx, cfg.Redis)
	if err != nil {
		logging.Warn("Redis client initialization failed: %v. Continuing without Redis (in-memory mode).", err)
		return nil
	}
	logging.Notice("Redis client initialized and connected.")
	return rdb
}

func initializeCty(ctx context.Context, cfg *config.Config) (*ctyfile.Client, error) {
	dbClient, err := db.NewSQLiteClient(cfg.DataDir, ctyfile.DBFileName, ctyfile.Schema...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize country file database: %w", err)
	}

	client, err := ctyfile.NewClient(ctx, *cfg, dbClient)
	if err != nil {
		dbClient.Close()
		return nil, err
	}

	logging.Notice("Checking country file status...")
	if err := client.Initialize(ctx); err != nil {
		client.Close()
		return nil, err
	}

	client.StartUpdater(ctx)
	logging.Info("Country file client ready. Background updater started for periodic checks.")
	return client, nil
}

func statusReporter(ctx context.Context, startupTime time.Time, client *ctyfile.Client) {
	firstTimer := time.NewTimer(1 * time.Minute)
	select {
	case <-firstTimer.C:
		generateStatusReport(startupTime, client)
	case <-ctx.Done():
		firstTimer.Stop()
		return
	}

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			generateStatusReport(startupTime, client)
		case <-ctx.Done():
			return
		}
	}
}

func generateStatusReport(startupTime time.Time, client *ctyfile.Client) {
	uptime := time.Since(startupTime)
	uptimeStr := fmt.Sprintf("%dh%dm", int(uptime.Hours()), int(uptime.Minutes())%60)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryMB := m.Alloc / 1024 / 1024

	st := client.Index().Stats()
	logging.Notice("%s up %s using %dMB of memory. Country file %s: %d countries, %d callsigns, %d prefixes",
		version.ProjectName, uptimeStr, memoryMB, st.Version, st.Countries, st.Callsigns, st.Prefixes)
}

func gracefulShutdown(ctx context.Context, srv *http.Server, serveErr <-chan error) int {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		logging.Info("Received OS shutdown signal. Shutting down server...")
	case <-ctx.Done():
		logging.Info("Context cancelled. Shutting down server...")
	case err := <-serveErr:
		logging.Crit("HTTP server failed: %v", err)
		return 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Crit("Server forced to shutdown: %v", err)
		return 3
	}
	logging.Info("Server exited gracefully.")
	return 0
}

// healthcheck probes the running instance's /healthz endpoint so container
// health checks need nothing but the binary.
func healthcheck(ctx context.Context, cfg *config.Config) int {
	base := strings.TrimRight("/"+strings.Trim(cfg.BaseURL, "/"), "/")
	url := "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.WebPort)) + base + "/healthz"

	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.RetryWaitMin = 200 * time.Millisecond
	hc.RetryWaitMax = time.Second
	hc.HTTPClient.Timeout = 5 * time.Second
	hc.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fmt.Printf("Health check failed: %v\n", err)
		return 1
	}
	req.Header.Set("User-Agent", version.UserAgent)

	resp, err := hc.Do(req)
	if err != nil {
		fmt.Printf("Health check failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Health check failed: %s returned %s\n", url, resp.Status)
		return 1
	}
	fmt.Println("Health check successful")
	return 0
}
