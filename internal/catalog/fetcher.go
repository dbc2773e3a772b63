// Package catalog keeps the local plan catalog file in sync with its published copy
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/noot-app/mealplan-scaler/internal/config"
	"github.com/noot-app/mealplan-scaler/internal/types"
	"github.com/schollz/progressbar/v3"
)

const (
	waitPollInterval = 2 * time.Second
	waitTimeout      = 10 * time.Minute

	defaultProgressThrottle = 100 * time.Millisecond
)

// Metadata describes the downloaded catalog
type Metadata struct {
	SHA256       string    `json:"sha256"`
	DownloadedAt time.Time `json:"downloaded_at"`
	ETag         string    `json:"etag,omitempty"`
	Size         int64     `json:"size"`
	Plans        int       `json:"plans"`
}

// Fetcher downloads the plan catalog and tracks its freshness
type Fetcher struct {
	url          string
	plansPath    string
	metadataPath string
	lockPath     string
	config       *config.Config
	progress     io.Writer
	// progressThrottle is the minimum time between progress redraws
	progressThrottle time.Duration
	client           *http.Client
	log              *slog.Logger
}

// NewFetcher creates a fetcher for the catalog locations in cfg.
// Download progress is drawn on progress; pass nil to disable it.
func NewFetcher(cfg *config.Config, progress io.Writer, logger *slog.Logger) *Fetcher {
	if progress == nil {
		progress = io.Discard
	}
	return &Fetcher{
		url:              cfg.PlansURL,
		plansPath:        cfg.PlansPath,
		metadataPath:     cfg.MetadataPath,
		lockPath:         cfg.LockFile,
		config:           cfg,
		progress:         progress,
		progressThrottle: defaultProgressThrottle,
		client:           &http.Client{Timeout: 5 * time.Minute},
		log:              logger,
	}
}

// EnsureCatalog makes sure the catalog file exists and matches the remote copy.
// Without a PLANS_URL the local file is used as is.
func (f *Fetcher) EnsureCatalog(ctx context.Context) error {
	start := time.Now()

	if f.url == "" {
		if _, err := os.Stat(f.plansPath); err != nil {
			return fmt.Errorf("no PLANS_URL configured and catalog %s is not readable: %w", f.plansPath, err)
		}
		f.log.Info("Using local plan catalog", "plans_path", f.plansPath)
		return nil
	}

	f.log.Info("Ensuring plan catalog is available", "plans_path", f.plansPath)

	if _, err := os.Stat(f.plansPath); err == nil {
		if f.config.DisableRemoteCheck {
			f.log.Info("Remote checks disabled, using local catalog", "duration", time.Since(start))
			return nil
		}

		upToDate, err := f.isUpToDate(ctx)
		if err != nil {
			f.log.Warn("Failed to verify catalog freshness", "error", err)
		}
		if upToDate {
			f.log.Info("Plan catalog is up-to-date", "duration", time.Since(start))
			return nil
		}
	}

	if err := f.downloadWithLock(ctx); err != nil {
		return fmt.Errorf("failed to download plan catalog: %w", err)
	}

	f.log.Info("Plan catalog ensured", "duration", time.Since(start))
	return nil
}

// isUpToDate compares the stored metadata with a HEAD of the remote catalog
func (f *Fetcher) isUpToDate(ctx context.Context) (bool, error) {
	localMeta, err := f.loadMetadata()
	if err != nil {
		f.log.Debug("No local metadata found", "error", err)
		return false, nil
	}

	remoteMeta, err := f.getRemoteMetadata(ctx)
	if err != nil {
		return false, err
	}

	if remoteMeta.ETag != "" && localMeta.ETag != "" {
		upToDate := remoteMeta.ETag == localMeta.ETag
		f.log.Debug("ETag comparison", "local", localMeta.ETag, "remote", remoteMeta.ETag, "up_to_date", upToDate)
		return upToDate, nil
	}

	upToDate := remoteMeta.Size == localMeta.Size
	f.log.Debug("Size comparison", "local", localMeta.Size, "remote", remoteMeta.Size, "up_to_date", upToDate)
	return upToDate, nil
}

func (f *Fetcher) getRemoteMetadata(ctx context.Context) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HEAD request failed with status: %d", resp.StatusCode)
	}

	return &Metadata{
		ETag: resp.Header.Get("ETag"),
		Size: resp.ContentLength,
	}, nil
}

// downloadWithLock downloads the catalog while holding the lock file.
// When another instance holds the lock it waits for that instance to finish instead.
func (f *Fetcher) downloadWithLock(ctx context.Context) error {
	start := time.Now()

	if f.config.IgnoreLock {
		if _, err := os.Stat(f.lockPath); err == nil {
			f.log.Warn("IGNORE_LOCK enabled, forcefully removing existing lock file", "lock_path", f.lockPath)
			if err := os.Remove(f.lockPath); err != nil {
				f.log.Warn("Failed to remove lock file", "error", err)
			}
		}
	}

	lockFile, err := acquireLock(f.lockPath)
	if err != nil {
		if !f.config.IgnoreLock {
			f.log.Info("Another instance is downloading, waiting", "lock_path", f.lockPath)
			return f.waitForDownload(ctx)
		}
		f.log.Warn("IGNORE_LOCK enabled but still failed to acquire lock, proceeding anyway", "error", err)
	}
	if lockFile != nil {
		defer releaseLock(lockFile, f.lockPath)
	}

	if err := os.MkdirAll(filepath.Dir(f.plansPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// the temp file sits next to the target so the final rename stays on one filesystem
	tmpPath := f.plansPath + ".tmp"
	etag, err := f.downloadFile(ctx, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	count, err := validateCatalog(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	sha, err := computeSHA256(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to compute SHA256: %w", err)
	}

	stat, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if err := os.Rename(tmpPath, f.plansPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	meta := &Metadata{
		SHA256:       sha,
		DownloadedAt: time.Now().UTC(),
		ETag:         etag,
		Size:         stat.Size(),
		Plans:        count,
	}
	if err := f.saveMetadata(meta); err != nil {
		f.log.Warn("Failed to save metadata", "error", err)
	}

	f.log.Info("Plan catalog downloaded", "plans", count, "size", stat.Size(), "sha256", sha[:16]+"...", "duration", time.Since(start))
	return nil
}

// downloadFile streams the catalog to path and returns the response ETag
func (f *Fetcher) downloadFile(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(f.progress),
		progressbar.OptionSetDescription("downloading plan catalog"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(f.progressThrottle),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(f.progress)
		}),
	)
	defer bar.Close()

	written, err := io.Copy(io.MultiWriter(file, bar), resp.Body)
	if err != nil {
		return "", err
	}

	f.log.Debug("Download completed", "bytes", written)
	return resp.Header.Get("ETag"), nil
}

// waitForDownload polls until another instance has written the catalog
func (f *Fetcher) waitForDownload(ctx context.Context) error {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	timeout := time.After(waitTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for download by other instance")
		case <-ticker.C:
			if _, err := os.Stat(f.plansPath); err == nil {
				f.log.Info("Plan catalog now available after other instance completed")
				return nil
			}
		}
	}
}

// validateCatalog checks that path decodes as a list of plans and returns the count
func validateCatalog(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var plans []types.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return 0, fmt.Errorf("downloaded catalog is not a valid plan list: %w", err)
	}
	for i, p := range plans {
		if p.ID == "" {
			return 0, fmt.Errorf("downloaded catalog has a plan without id at index %d", i)
		}
	}
	return len(plans), nil
}

func (f *Fetcher) loadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(f.metadataPath)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (f *Fetcher) saveMetadata(meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.metadataPath, data, 0644)
}

// acquireLock creates the lock file, failing if it already exists
func acquireLock(lockPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	return os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
}

func releaseLock(f *os.File, lockPath string) {
	f.Close()
	os.Remove(lockPath)
}

func computeSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
