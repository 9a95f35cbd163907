// Package assets loads image assets asynchronously and caches them by
// reference. Lookups never block: every reference is in exactly one State,
// so renderers can handle pending and failed assets without special cases.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// State is the load state of a single asset reference.
type State int

const (
	StateMissing State = iota // empty reference, nothing to load
	StatePending              // load in flight
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrMissing is returned by Wait for an empty reference.
var ErrMissing = errors.New("assets: empty reference")

// Fetcher reads the raw bytes behind a reference.
type Fetcher func(ctx context.Context, ref string) ([]byte, error)

type entry struct {
	state State
	img   *Image
	err   error
	done  chan struct{}
}

// Cache is a future-backed image cache keyed by reference.
// Entries are loaded once and never invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	fetch   Fetcher
	logger  *log.Logger
	maxW    int
	maxH    int
	ctx     context.Context
	cancel  context.CancelFunc
}

// Option configures a Cache.
type Option func(*Cache)

// WithFetcher replaces the default file/HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(c *Cache) { c.fetch = f }
}

// WithLogger sets the logger used to report load failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMaxSize bounds the decoded image resolution.
func WithMaxSize(w, h int) Option {
	return func(c *Cache) {
		if w > 0 && h > 0 {
			c.maxW, c.maxH = w, h
		}
	}
}

// NewCache creates a cache that resolves relative references against root.
func NewCache(root string, opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		entries: make(map[string]*entry),
		fetch:   DefaultFetcher(root, 10*time.Second),
		logger:  log.Default(),
		maxW:    192,
		maxH:    108,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close cancels in-flight network loads.
func (c *Cache) Close() {
	c.cancel()
}

// Request starts loading ref if it has not been requested before.
func (c *Cache) Request(ref string) {
	c.lookup(ref)
}

// Get returns the image for ref and its state, starting a load if needed.
// The image is non-nil only in StateLoaded.
func (c *Cache) Get(ref string) (*Image, State) {
	e := c.lookup(ref)
	if e == nil {
		return nil, StateMissing
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return e.img, e.state
}

// Wait blocks until ref has finished loading or ctx is done.
func (c *Cache) Wait(ctx context.Context, ref string) (*Image, error) {
	e := c.lookup(ref)
	if e == nil {
		return nil, ErrMissing
	}

	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return e.img, e.err
}

func (c *Cache) lookup(ref string) *entry {
	if ref == "" {
		return nil
	}

	c.mu.Lock()
	e, ok := c.entries[ref]
	if !ok {
		e = &entry{state: StatePending, done: make(chan struct{})}
		c.entries[ref] = e
	}
	c.mu.Unlock()

	if !ok {
		go c.load(ref, e)
	}
	return e
}

func (c *Cache) load(ref string, e *entry) {
	img, err := c.decode(ref)

	c.mu.Lock()
	if err != nil {
		e.state = StateFailed
		e.err = err
	} else {
		e.state = StateLoaded
		e.img = img
	}
	c.mu.Unlock()
	close(e.done)

	if err != nil {
		c.logger.Warn("asset load failed", "ref", ref, "error", err)
		return
	}
	c.logger.Debug("asset loaded", "ref", ref, "w", img.W, "h", img.H)
}

func (c *Cache) decode(ref string) (*Image, error) {
	data, err := c.fetch(c.ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(data, c.maxW, c.maxH)
}

// DefaultFetcher reads http(s) URLs over the network and anything else from
// disk. Web-root references like "/bg1.png" resolve under root when the
// absolute path does not exist.
func DefaultFetcher(root string, timeout time.Duration) Fetcher {
	client := &http.Client{Timeout: timeout}

	return func(ctx context.Context, ref string) ([]byte, error) {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			return fetchHTTP(ctx, client, ref)
		}
		return os.ReadFile(resolvePath(root, ref))
	}
}

func resolvePath(root, ref string) string {
	if filepath.IsAbs(ref) {
		if _, err := os.Stat(ref); err == nil || root == "" {
			return ref
		}
		return filepath.Join(root, strings.TrimLeft(ref, "/"))
	}
	if root == "" {
		return ref
	}
	return filepath.Join(root, ref)
}

func fetchHTTP(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assets: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assets: fetch %s: status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", url, err)
	}
	return data, nil
}
