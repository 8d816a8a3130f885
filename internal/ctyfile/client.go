package ctyfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/user00265/ctydatapi/internal/config"
	"github.com/user00265/ctydatapi/internal/db"
	"github.com/user00265/ctydatapi/internal/dxcc"
	"github.com/user00265/ctydatapi/internal/logging"
	"github.com/user00265/ctydatapi/version"
)

const (
	DBFileName = "cty.db"
	filesTable = "cty_files"
	dataType   = "cty"
	apiTimeout = 60 * time.Second
)

// Schema creates the tables the client needs. Pass it to db.NewSQLiteClient.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + filesTable + ` (
		data_type TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		last_updated TEXT NOT NULL,
		file_size INTEGER,
		source_url TEXT,
		version TEXT
	);`,
}

// Client owns the current resolver index and keeps it up to date.
type Client struct {
	cfg        config.Config
	dbClient   db.DBClient
	httpClient *retryablehttp.Client

	index atomic.Pointer[dxcc.Index]
	// refreshMu serializes refreshes so two builds never race on store and swap.
	refreshMu sync.Mutex

	updateStop chan struct{}
	updateDone chan struct{}
}

// NewClient creates the client and its tables. No country file is loaded
// until Initialize, LoadFile, LoadFromDB or FetchAndStore is called.
func NewClient(ctx context.Context, cfg config.Config, dbClient db.DBClient) (*Client, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	if err := dbClient.Init(); err != nil {
		return nil, fmt.Errorf("failed to create country file tables: %w", err)
	}
	if err := dbClient.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach country file database: %w", err)
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.DownloadRetries
	hc.RetryWaitMin = 2 * time.Second
	hc.RetryWaitMax = 30 * time.Second
	hc.HTTPClient.Timeout = apiTimeout
	hc.Logger = retryLogger{}

	return &Client{
		cfg:        cfg,
		dbClient:   dbClient,
		httpClient: hc,
	}, nil
}

// Index returns the index currently in service, or nil before the first
// successful load. The returned index never changes; refreshes replace it.
func (c *Client) Index() *dxcc.Index {
	return c.index.Load()
}

// HTTPClient exposes the download client so callers can tune retries.
func (c *Client) HTTPClient() *retryablehttp.Client {
	return c.httpClient
}

// Initialize loads the first index at startup. A configured local file always
// wins. Otherwise fresh stored data is used, and stale or missing data is
// downloaded; when the download fails, stale stored data is still served.
func (c *Client) Initialize(ctx context.Context) error {
	if c.cfg.CtyFile != "" {
		return c.LoadFile(ctx, c.cfg.CtyFile)
	}

	needsUpdate, err := c.NeedsUpdate(ctx)
	if err != nil {
		logging.Warn("Failed to check country file age, downloading: %v", err)
		needsUpdate = true
	}

	if !needsUpdate {
		err := c.LoadFromDB(ctx)
		if err == nil {
			return nil
		}
		logging.Warn("Stored country file unusable (%v). Downloading now...", err)
	}

	fetchErr := c.FetchAndStore(ctx)
	if fetchErr == nil {
		return nil
	}
	logging.Error("Country file download failed: %v", fetchErr)

	if err := c.LoadFromDB(ctx); err != nil {
		return fmt.Errorf("no usable country file: download: %v; database: %w", fetchErr, err)
	}
	logging.Warn("Serving previously stored country file until the next successful download.")
	return nil
}

// LoadFile reads, parses and installs a local country file, then stores it.
func (c *Client) LoadFile(ctx context.Context, path string) error {
	text, err := ReadFile(path, c.cfg.CtyCharset)
	if err != nil {
		return err
	}
	return c.install(ctx, text, "file://"+path)
}

// FetchAndStore downloads the country file and installs it. The new file is
// fully parsed before anything is stored or swapped; on any error the index in
// service stays as it was.
func (c *Client) FetchAndStore(ctx context.Context) error {
	logging.Info("Fetching country file from %s...", c.cfg.CtyURL)
	data, err := c.download(ctx, c.cfg.CtyURL)
	if err != nil {
		return err
	}
	text, err := Decode(data, c.cfg.CtyCharset)
	if err != nil {
		return fmt.Errorf("failed to decode country file from %s: %w", c.cfg.CtyURL, err)
	}
	return c.install(ctx, text, c.cfg.CtyURL)
}

// LoadFromDB rebuilds the index from the stored country file.
func (c *Client) LoadFromDB(ctx context.Context) error {
	query := fmt.Sprintf(`SELECT content FROM %s WHERE data_type = ?`, filesTable)
	var content string
	err := c.dbClient.GetDB().QueryRowContext(ctx, query, dataType).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoData
	}
	if err != nil {
		return fmt.Errorf("failed to read stored country file: %w", err)
	}

	idx, err := dxcc.Build(content)
	if err != nil {
		return fmt.Errorf("failed to parse stored country file: %w", err)
	}
	c.index.Store(idx)
	st := idx.Stats()
	logging.Notice("Loaded stored country file %s: %d countries, %d callsigns, %d prefixes",
		st.Version, st.Countries, st.Callsigns, st.Prefixes)
	return nil
}

func (c *Client) install(ctx context.Context, text, source string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	idx, err := dxcc.Build(text)
	if err != nil {
		return fmt.Errorf("failed to parse country file from %s: %w", source, err)
	}

	prev := c.index.Swap(idx)
	st := idx.Stats()
	if prev != nil && prev.Version() == idx.Version() {
		logging.Info("Country file from %s unchanged (%s)", source, st.Version)
	} else {
		logging.Notice("Installed country file %s from %s: %d countries, %d callsigns, %d prefixes",
			st.Version, source, st.Countries, st.Callsigns, st.Prefixes)
	}

	return c.store(ctx, text, source, idx.Version())
}

func (c *Client) store(ctx context.Context, text, source, version string) error {
	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (data_type, content, last_updated, file_size, source_url, version)
		VALUES (?, ?, ?, ?, ?, ?)
	`, filesTable)
	_, err := c.dbClient.GetDB().ExecContext(ctx, query,
		dataType, text, time.Now().UTC().Format(time.RFC3339), len(text), source, version)
	if err != nil {
		return fmt.Errorf("failed to store country file: %w", err)
	}

	if _, err := c.dbClient.GetDB().ExecContext(ctx, "PRAGMA wal_checkpoint(FULL);"); err != nil {
		logging.Warn("Failed to checkpoint WAL after country file update: %v", err)
	}
	return nil
}

// GetLastDownloadTime returns when the stored country file was saved, or the
// zero time when nothing is stored.
func (c *Client) GetLastDownloadTime(ctx context.Context) (time.Time, error) {
	query := fmt.Sprintf(`SELECT last_updated FROM %s WHERE data_type = ?`, filesTable)

	var lastUpdated string
	err := c.dbClient.GetDB().QueryRowContext(ctx, query, dataType).Scan(&lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to query country file metadata: %w", err)
	}

	t, err := time.Parse(time.RFC3339, lastUpdated)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last download time: %w", err)
	}
	return t, nil
}

// NeedsUpdate reports whether the stored country file is missing or older
// than the update interval.
func (c *Client) NeedsUpdate(ctx context.Context) (bool, error) {
	lastUpdate, err := c.GetLastDownloadTime(ctx)
	if err != nil {
		return false, err
	}
	if lastUpdate.IsZero() {
		return true, nil
	}
	return time.Since(lastUpdate) >= c.cfg.CtyUpdateInterval, nil
}

// StartUpdater refreshes the country file every CtyUpdateInterval until ctx
// is cancelled or Close is called. A failed refresh is logged and the current
// index stays in service.
func (c *Client) StartUpdater(ctx context.Context) {
	if c.updateStop != nil {
		return // already running
	}
	c.updateStop = make(chan struct{})
	c.updateDone = make(chan struct{})

	go func() {
		defer close(c.updateDone)
		ticker := time.NewTicker(c.cfg.CtyUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.refresh(ctx)
			case <-c.updateStop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	logging.Notice("Country file updater started. Will check for updates every %s.", c.cfg.CtyUpdateInterval)
}

func (c *Client) refresh(ctx context.Context) {
	var err error
	if c.cfg.CtyFile != "" {
		err = c.LoadFile(ctx, c.cfg.CtyFile)
	} else {
		err = c.FetchAndStore(ctx)
	}
	if err != nil {
		logging.Error("Country file refresh failed, keeping current data: %v", err)
	}
}

// Close stops the updater and closes the database.
func (c *Client) Close() error {
	if c.updateStop != nil {
		close(c.updateStop)
		<-c.updateDone
		c.updateStop = nil
		c.updateDone = nil
	}
	return c.dbClient.Close()
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request for country file: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request for country file failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("country file download returned non-OK status: %s", resp.Status)
	}

	data, err := readLimited(resp.Body, "country file download")
	if err != nil {
		return nil, fmt.Errorf("failed to read country file download: %w", err)
	}
	return gunzipIfNeeded(data)
}

// retryLogger routes retryablehttp's leveled messages into our logger.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) { logging.Error("%s %v", msg, kv) }
func (retryLogger) Warn(msg string, kv ...interface{})  { logging.Warn("%s %v", msg, kv) }
func (retryLogger) Info(msg string, kv ...interface{})  { logging.Debug("%s %v", msg, kv) }
func (retryLogger) Debug(msg string, kv ...interface{}) { logging.Debug("%s %v", msg, kv) }
