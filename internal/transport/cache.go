package transport

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	gocache "github.com/patrickmn/go-cache"
	"github.com/peterbourgon/diskv"
	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/logging"
)

// Cache backends.
const (
	BackendDisk   = "disk"
	BackendMemory = "memory"
)

// Cache is an HTTP response store with a capacity ceiling.
type Cache interface {
	httpcache.Cache

	// Backend returns the backend name (disk or memory).
	Backend() string

	// Dir returns the directory holding cached responses, empty for memory.
	Dir() string

	// MaxSize returns the capacity ceiling in bytes.
	MaxSize() int64

	// Size returns the bytes currently stored.
	Size() int64
}

// bounded keeps a store at or below its ceiling. Writing a response evicts
// the oldest stored entries until the new one fits. A response larger than
// the whole ceiling is not stored.
type bounded struct {
	mu      sync.Mutex
	store   httpcache.Cache
	maxSize int64
	size    func() int64
	// evictOldest removes the oldest entry and reports the bytes freed.
	// It returns false when nothing could be removed.
	evictOldest func() (int64, bool)
	logger      *zerolog.Logger
}

func (b *bounded) Get(key string) ([]byte, bool) {
	return b.store.Get(key)
}

func (b *bounded) Set(key string, resp []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	need := int64(len(resp))
	if need > b.maxSize {
		b.logger.Debug().
			Int("entry", len(resp)).
			Int64("max_size", b.maxSize).
			Msg("Response exceeds cache ceiling, not stored")
		return
	}

	// A refreshed response replaces the stored one, so its bytes are free.
	b.store.Delete(key)

	for used := b.size(); used+need > b.maxSize; used = b.size() {
		freed, ok := b.evictOldest()
		if !ok {
			b.logger.Warn().
				Int64("used", used).
				Int("entry", len(resp)).
				Int64("max_size", b.maxSize).
				Msg("Cache eviction failed, response not stored")
			return
		}
		b.logger.Debug().Int64("freed", freed).Int64("used", used).Msg("Cache entry evicted")
	}
	b.store.Set(key, resp)
}

func (b *bounded) Delete(key string) {
	b.store.Delete(key)
}

func (b *bounded) MaxSize() int64 {
	return b.maxSize
}

func (b *bounded) Size() int64 {
	return b.size()
}

// DiskCache stores responses as files below a directory.
type DiskCache struct {
	bounded
	dir string
}

var _ Cache = (*DiskCache)(nil)

// NewDiskCache creates a disk cache rooted at dir, which must exist.
// A non-positive maxSize selects constants.HTTPCacheSize.
func NewDiskCache(dir string, maxSize int64, logger *zerolog.Logger) *DiskCache {
	if maxSize <= 0 {
		maxSize = constants.HTTPCacheSize
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	d := diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: uint64(maxSize),
	})
	c := &DiskCache{dir: dir}
	c.bounded = bounded{
		store:       diskcache.NewWithDiskv(d),
		maxSize:     maxSize,
		size:        func() int64 { return dirSize(dir) },
		evictOldest: func() (int64, bool) { return evictOldestFile(d, dir) },
		logger:      logger,
	}
	return c
}

// Backend implements Cache.
func (c *DiskCache) Backend() string { return BackendDisk }

// Dir implements Cache.
func (c *DiskCache) Dir() string { return c.dir }

// dirSize sums the sizes of regular files below dir. Unreadable entries count
// as zero.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// evictOldestFile erases the least recently written entry of the flat diskv
// store rooted at dir.
func evictOldestFile(d *diskv.Diskv, dir string) (int64, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, false
	}
	var (
		oldest  fs.FileInfo
		oldestT time.Time
	)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mt := info.ModTime()
		if oldest == nil || mt.Before(oldestT) || (mt.Equal(oldestT) && info.Name() < oldest.Name()) {
			oldest, oldestT = info, mt
		}
	}
	if oldest == nil {
		return 0, false
	}
	if err := d.Erase(oldest.Name()); err != nil {
		return 0, false
	}
	return oldest.Size(), true
}

// MemoryCache keeps responses in process memory with a TTL.
type MemoryCache struct {
	bounded
	store *gocache.Cache
}

var _ Cache = (*MemoryCache)(nil)

type memoryStore struct {
	c *gocache.Cache
}

func (m memoryStore) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m memoryStore) Set(key string, resp []byte) {
	m.c.Set(key, resp, gocache.DefaultExpiration)
}

func (m memoryStore) Delete(key string) {
	m.c.Delete(key)
}

// NewMemoryCache creates an in-memory cache. A non-positive maxSize selects
// constants.HTTPCacheSize.
func NewMemoryCache(maxSize int64, logger *zerolog.Logger) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.HTTPCacheSize
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	store := gocache.New(constants.MemoryCacheTTL, constants.MemoryCacheCleanupInterval)
	c := &MemoryCache{store: store}
	c.bounded = bounded{
		store:   memoryStore{c: store},
		maxSize: maxSize,
		size: func() int64 {
			var total int64
			for _, item := range store.Items() {
				if b, ok := item.Object.([]byte); ok {
					total += int64(len(b))
				}
			}
			return total
		},
		evictOldest: func() (int64, bool) { return evictOldestItem(store) },
		logger:      logger,
	}
	return c
}

// evictOldestItem deletes the entry stored first. All entries share one TTL,
// so the earliest expiration belongs to the oldest write.
func evictOldestItem(store *gocache.Cache) (int64, bool) {
	var (
		key   string
		first gocache.Item
		found bool
	)
	for k, item := range store.Items() {
		if !found || item.Expiration < first.Expiration || (item.Expiration == first.Expiration && k < key) {
			key, first, found = k, item, true
		}
	}
	if !found {
		return 0, false
	}
	store.Delete(key)
	b, _ := first.Object.([]byte)
	return int64(len(b)), true
}

// Backend implements Cache.
func (c *MemoryCache) Backend() string { return BackendMemory }

// Dir implements Cache.
func (c *MemoryCache) Dir() string { return "" }

// Flush removes all cached responses.
func (c *MemoryCache) Flush() {
	c.store.Flush()
}
