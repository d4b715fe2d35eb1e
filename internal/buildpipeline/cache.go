package buildpipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tsmerge/internal/ast"
	"tsmerge/internal/config"
)

// Current schema version - increment when BuildRecord format changes
const cacheSchemaVersion uint16 = 1

// Digest keys cache entries.
type Digest [sha256.Size]byte

// CacheKey derives the key of the record kept for an output path.
func CacheKey(outputPath string) Digest {
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		abs = outputPath
	}
	return sha256.Sum256([]byte(filepath.ToSlash(abs)))
}

// DiskCache keeps the record of the last build per output path.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// EdgeRecord is one dependency edge by unit path.
type EdgeRecord struct {
	From string `msgpack:"from"`
	To   string `msgpack:"to"`
}

// BuildRecord summarizes one build: the order chosen, why, and what each
// unit exported.
type BuildRecord struct {
	Schema       uint16              `msgpack:"schema"`
	BuildID      string              `msgpack:"build_id"`
	Finished     time.Time           `msgpack:"finished"`
	Output       string              `msgpack:"output"`
	Declarations string              `msgpack:"declarations,omitempty"`
	Mode         string              `msgpack:"mode"`
	Units        []string            `msgpack:"units"`
	Edges        []EdgeRecord        `msgpack:"edges"`
	Batches      [][]string          `msgpack:"batches"`
	Cycles       []string            `msgpack:"cycles,omitempty"`
	Exports      map[string][]string `msgpack:"exports"`
	Diagnostics  int                 `msgpack:"diagnostics"`
	Errors       bool                `msgpack:"errors"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "builds", hexKey+".mp")
}

// Put serializes and writes a record to the disk cache.
func (c *DiskCache) Put(key Digest, rec *BuildRecord) error {
	if c == nil || rec == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(rec); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a record; a missing entry or a record of another schema
// reports false.
func (c *DiskCache) Get(key Digest, out *BuildRecord) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from the cache directory and a digest
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == cacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}

// RecordOf summarizes a finished build.
func RecordOf(res CompileResult, opts config.Options) *BuildRecord {
	rec := &BuildRecord{
		Schema:       cacheSchemaVersion,
		BuildID:      res.BuildID,
		Finished:     time.Now().UTC(),
		Output:       opts.OutputPath,
		Declarations: opts.DeclarationPath,
		Mode:         opts.ExportMode.String(),
		Exports:      make(map[string][]string),
	}
	if res.Bag != nil {
		rec.Diagnostics = res.Bag.Len()
		rec.Errors = res.Bag.HasErrors()
	}
	if res.Report == nil || res.Program == nil {
		return rec
	}
	path := func(id ast.UnitID) string {
		if u := res.Program.Unit(id); u != nil {
			return u.Path
		}
		return ""
	}
	for _, u := range res.Report.Order.Units {
		rec.Units = append(rec.Units, u.Path)
	}
	for _, e := range res.Report.Order.Edges {
		rec.Edges = append(rec.Edges, EdgeRecord{From: path(e.From), To: path(e.To)})
	}
	for _, batch := range res.Report.Order.Batches {
		names := make([]string, 0, len(batch))
		for _, id := range batch {
			names = append(names, path(id))
		}
		rec.Batches = append(rec.Batches, names)
	}
	for _, id := range res.Report.Order.Cycles {
		rec.Cycles = append(rec.Cycles, path(id))
	}
	for unit, names := range res.Report.Exports {
		rec.Exports[unit] = append([]string(nil), names...)
	}
	return rec
}
