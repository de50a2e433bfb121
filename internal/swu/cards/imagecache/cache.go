// Package imagecache keeps card artwork on disk, keyed by identity key and
// side, downloading on first use.
package imagecache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
)

var (
	// ErrDecode marks artwork that was stored but could not be decoded.
	ErrDecode = errors.New("image could not be decoded")

	// ErrNoArtwork is returned when a card has no URI for the requested side.
	ErrNoArtwork = errors.New("card has no artwork for this side")
)

// CacheError reports a failed artwork lookup. Callers treat it as "no image".
type CacheError struct {
	Key  string
	Side cards.Side
	Err  error
}

// Error implements the error interface for CacheError.
func (e *CacheError) Error() string {
	return fmt.Sprintf("artwork %s (%s): %v", e.Key, e.Side, e.Err)
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// Artwork is a cached image: where it lives, its raw bytes, and the decoded
// bitmap.
type Artwork struct {
	Path   string
	Data   []byte
	Image  image.Image
	Format string
}

// Options configures the image cache.
type Options struct {
	Root       string        // Directory holding cached files
	Timeout    time.Duration // HTTP request timeout
	HTTPClient *http.Client  // Overrides the default client
	Logger     *slog.Logger
}

// Stats describes the cache contents.
type Stats struct {
	Files int
	Bytes int64
	Root  string
}

// Cache is a fetch-if-absent artwork cache. Entries are never invalidated.
type Cache struct {
	root       string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates the cache, creating its root directory if needed.
func New(options Options) (*Cache, error) {
	if options.Root == "" {
		return nil, fmt.Errorf("image cache root is empty")
	}
	if err := os.MkdirAll(options.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}
	if options.HTTPClient == nil {
		options.HTTPClient = &http.Client{Timeout: options.Timeout}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Cache{
		root:       options.Root,
		httpClient: options.HTTPClient,
		logger:     options.Logger,
	}, nil
}

// Path returns the file an entry is stored under.
func (c *Cache) Path(key string, side cards.Side) string {
	return filepath.Join(c.root, fmt.Sprintf("%s_%s.jpg", key, side))
}

// Has reports whether an entry is present on disk.
func (c *Cache) Has(key string, side cards.Side) bool {
	info, err := os.Stat(c.Path(key, side))
	return err == nil && !info.IsDir()
}

// Get returns the artwork for (key, side), downloading it from uri on a
// miss. A hit is served from disk without any freshness check.
func (c *Cache) Get(ctx context.Context, key string, side cards.Side, uri string) (*Artwork, error) {
	if err := checkKey(key, side); err != nil {
		return nil, &CacheError{Key: key, Side: side, Err: err}
	}

	path := c.Path(key, side)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c.logger.Debug("Artwork cache hit", "key", key, "side", side)
	case errors.Is(err, os.ErrNotExist):
		if uri == "" {
			return nil, &CacheError{Key: key, Side: side, Err: ErrNoArtwork}
		}
		data, err = c.download(ctx, uri, path)
		if err != nil {
			c.logger.Warn("Artwork download failed", "key", key, "side", side, "error", err)
			return nil, &CacheError{Key: key, Side: side, Err: err}
		}
	default:
		return nil, &CacheError{Key: key, Side: side, Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &CacheError{Key: key, Side: side, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}

	return &Artwork{Path: path, Data: data, Image: img, Format: format}, nil
}

// GetCard resolves the source URI from the card itself.
func (c *Cache) GetCard(ctx context.Context, card cards.Card, side cards.Side) (*Artwork, error) {
	uri := card.ArtURI(side)
	if uri == "" {
		return nil, &CacheError{Key: card.IdentityKey, Side: side, Err: ErrNoArtwork}
	}
	return c.Get(ctx, card.IdentityKey, side, uri)
}

// Stats scans the cache directory.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{Root: c.root}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return stats, fmt.Errorf("failed to scan cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) == ".tmp" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Files++
		stats.Bytes += info.Size()
	}

	return stats, nil
}

// download fetches uri into a temp file and renames it onto path, so a
// failed transfer never leaves a partial entry behind.
func (c *Cache) download(ctx context.Context, uri, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	tempFile, err := os.CreateTemp(c.root, "download-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(tempFile, &buf), resp.Body); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to move cached file: %w", err)
	}

	c.logger.Debug("Cached artwork", "path", path, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func checkKey(key string, side cards.Side) error {
	if !side.Valid() {
		return fmt.Errorf("unknown side %q", side)
	}
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("unusable cache key %q", key)
	}
	return nil
}
