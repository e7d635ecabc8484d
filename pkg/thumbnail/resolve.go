package thumbnail

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/warmans/demonlist/pkg/content"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	maxProbeBytes      = 1 << 20
	maxConcurrentProbe = 8
)

type Config struct {
	// AssetsDir is where level thumbnail assets live. When empty assets are assumed to exist.
	AssetsDir string
	// ImageBase replaces the YouTube image host, mostly useful for testing.
	ImageBase string
	// Probe enables walking the candidate chain over HTTP. Without it the best candidate is
	// used as is.
	Probe bool
}

func NewResolver(logger *slog.Logger, cfg Config, client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Resolver{
		logger: logger,
		cfg:    cfg,
		client: client,
		cache:  make(map[string]string),
	}
}

type Resolver struct {
	logger *slog.Logger
	cfg    Config
	client *http.Client

	cacheLock sync.RWMutex
	cache     map[string]string
}

// Resolve returns the image source to show for the level: its own asset, then the best
// working video thumbnail, then the default placeholder.
func (r *Resolver) Resolve(ctx context.Context, lvl *content.Level) string {
	if lvl == nil {
		return DefaultPath
	}
	if lvl.Thumbnail != "" {
		if r.assetExists(lvl.Thumbnail) {
			return path.Join("/assets", path.Clean("/"+lvl.Thumbnail))
		}
		return DefaultPath
	}
	candidates := YouTubeCandidates(r.cfg.ImageBase, lvl.Verification)
	if len(candidates) == 0 {
		return DefaultPath
	}
	if !r.cfg.Probe {
		return candidates[0]
	}

	cacheKey := candidates[0]
	r.cacheLock.RLock()
	cached, ok := r.cache[cacheKey]
	r.cacheLock.RUnlock()
	if ok {
		return cached
	}

	chain := NewChain(candidates)
	transient := false
	for !chain.Done() {
		outcome, retry := r.probe(ctx, chain.Src())
		transient = transient || retry
		chain.Report(outcome)
	}
	if ctx.Err() != nil || transient {
		// failures caused by cancellation or an unavailable host say nothing about the images
		return chain.Src()
	}

	r.cacheLock.Lock()
	r.cache[cacheKey] = chain.Src()
	r.cacheLock.Unlock()

	return chain.Src()
}

// ResolveAll resolves every level concurrently, keyed by level key.
func (r *Resolver) ResolveAll(ctx context.Context, levels []*content.Level) map[string]string {
	out := make(map[string]string, len(levels))
	var outLock sync.Mutex

	eg := errgroup.Group{}
	eg.SetLimit(maxConcurrentProbe)
	for _, lvl := range levels {
		if lvl == nil {
			continue
		}
		eg.Go(func() error {
			src := r.Resolve(ctx, lvl)
			outLock.Lock()
			out[lvl.Key()] = src
			outLock.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// probe loads src and reports its width. The bool is true when the failure may not happen
// again (transport errors, throttling, server errors) so the result must not be cached.
func (r *Resolver) probe(ctx context.Context, src string) (Outcome, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return Failure(), false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("thumbnail probe failed", slog.String("src", src), slog.String("err", err.Error()))
		return Failure(), true
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		r.logger.Debug("thumbnail host unavailable", slog.String("src", src), slog.Int("status", resp.StatusCode))
		return Failure(), true
	}
	if resp.StatusCode != http.StatusOK {
		return Failure(), false
	}
	cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, maxProbeBytes))
	if err != nil {
		r.logger.Debug("thumbnail decode failed", slog.String("src", src), slog.String("err", err.Error()))
		return Failure(), false
	}
	return Loaded(cfg.Width), false
}

func (r *Resolver) assetExists(name string) bool {
	if r.cfg.AssetsDir == "" {
		return true
	}
	info, err := os.Stat(filepath.Join(r.cfg.AssetsDir, filepath.FromSlash(path.Clean("/"+name))))
	if err != nil {
		return false
	}
	return !info.IsDir()
}
