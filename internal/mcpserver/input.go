package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/restparams"
	"github.com/erraggy/restparams/internal/options"
	"github.com/erraggy/restparams/params"
)

// declInput represents the three ways a declaration document can be provided
// to a tool. Exactly one of File, URL, or Content must be set.
type declInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a YAML declaration file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a YAML declaration document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline YAML declarations, one key per line (e.g. my_int: int)"`
}

// cacheEntry holds a cached declaration document with LRU ordering and TTL expiry.
type cacheEntry struct {
	data      []byte
	insertAt  time.Time
	expiresAt time.Time
}

// docCacheStore caches raw declaration documents read from files and URLs.
// Files are keyed by (absolutePath, modTime) and URLs by the URL string.
// Documents are cached before parsing because the models they reference are
// bound to per-call record stores.
type docCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var docCache = &docCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached document or nil. Expired entries are lazily removed.
func (c *docCacheStore) get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		e.insertAt = time.Now()
		return e.data
	}
	return nil
}

// putWithTTL stores a document, evicting the least recently used entry if at capacity.
func (c *docCacheStore) putWithTTL(key string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{data: data, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *docCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a goroutine that periodically removes expired
// entries until ctx is cancelled. Only the first call spawns a sweeper.
func (c *docCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *docCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *docCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// load returns the raw document, consulting the cache for file and URL inputs.
func (d declInput) load(ctx context.Context) ([]byte, error) {
	if err := options.ExactlyOne([]string{"file", "url", "content"}, d.File, d.URL, d.Content); err != nil {
		return nil, err
	}

	if d.Content != "" {
		if int64(len(d.Content)) > cfg.MaxInlineSize {
			return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set RESTPARAMS_MAX_INLINE_SIZE to increase",
				len(d.Content), cfg.MaxInlineSize)
		}
		return []byte(d.Content), nil
	}

	var (
		key string
		ttl time.Duration
	)
	if cfg.CacheEnabled {
		key, ttl = d.cacheKey()
	}
	if key != "" {
		if data := docCache.get(key); data != nil {
			return data, nil
		}
	}

	var (
		data []byte
		err  error
	)
	if d.File != "" {
		data, err = os.ReadFile(d.File) //nolint:gosec // G304: reading caller-named declaration files is the point of the file input
	} else {
		data, err = fetchURL(ctx, d.URL)
	}
	if err != nil {
		return nil, err
	}

	if key != "" {
		docCache.putWithTTL(key, data, ttl)
	}
	return data, nil
}

// cacheKey returns the cache key and TTL for file and URL inputs, or an
// empty key when the input must not be cached.
func (d declInput) cacheKey() (string, time.Duration) {
	switch {
	case d.File != "":
		absPath, err := filepath.Abs(d.File)
		if err != nil {
			return "", 0
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "", 0
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano()), cfg.CacheFileTTL
	case d.URL != "":
		return "url:" + d.URL, cfg.CacheURLTTL
	}
	return "", 0
}

// fetchURL downloads a declaration document, refusing private addresses
// unless RESTPARAMS_ALLOW_PRIVATE_IPS is set.
func fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := http.DefaultClient
	if !cfg.AllowPrivateIPs {
		client = newSafeHTTPClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", restparams.UserAgent())

	resp, err := client.Do(req) //nolint:gosec // G107: URL is guarded by the safe client
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxInlineSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("document at %s exceeds maximum %d bytes", url, cfg.MaxInlineSize)
	}
	return data, nil
}

// resolve loads the document and converts it to declarations. Every model
// the document references gets an in-memory store seeded from records.
func (d declInput) resolve(ctx context.Context, records map[string][]map[string]any) (params.Declarations, error) {
	data, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing declarations: %w", err)
	}
	if doc.Kind == 0 {
		return params.Declarations{}, nil
	}

	total := 0
	for _, rs := range records {
		total += len(rs)
	}
	if total > cfg.MaxRecords {
		return nil, fmt.Errorf("%d records exceeds maximum %d; set RESTPARAMS_MAX_RECORDS to increase", total, cfg.MaxRecords)
	}

	models := make(map[string]params.Model)
	for _, name := range referencedModels(&doc) {
		models[name] = params.Model{Name: name, Store: params.NewMemoryStore(records[name]...)}
	}
	return params.MappingDeclarations(&doc, models)
}

// referencedModels returns the model names used by {model: Name} values, in
// document order.
func referencedModels(doc *yaml.Node) []string {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for i := 1; i < len(node.Content); i += 2 {
		val := node.Content[i]
		if val.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(val.Content); j += 2 {
			if val.Content[j].Value == "model" && val.Content[j+1].Kind == yaml.ScalarNode {
				name := val.Content[j+1].Value
				if name != "" && !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	return names
}
