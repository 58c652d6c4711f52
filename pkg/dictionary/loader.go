package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ericl3/autocomplete/internal/logger"
)

// ChunkInfo describes one chunk file found on disk.
type ChunkInfo struct {
	ID        int
	Path      string
	WordCount int
}

// LoaderStats is a point-in-time snapshot of loader state.
type LoaderStats struct {
	LoadedChunks    int
	AvailableChunks int
	TotalWords      int
	MaxWords        int
}

const loadRetries = 3

// ChunkLoader keeps a subset of the on-disk chunks resident and hands
// the merged entries to whoever registered interest. Loads requested
// with RequestChunk happen on a background goroutine; Load and Evict
// are synchronous for callers that need the result now.
type ChunkLoader struct {
	mu        sync.RWMutex
	dirPath   string
	chunkSize int
	maxWords  int
	available []ChunkInfo
	loaded    map[int][]Entry
	onChange  func([]Entry)

	requests chan int
	done     chan struct{}
	stopOnce sync.Once
	started  bool

	log *log.Logger
}

// NewChunkLoader scans dirPath for chunk files and prepares a loader
// over them. Nothing is loaded yet; call LoadInitial or Load.
func NewChunkLoader(dirPath string, chunkSize, maxWords int) (*ChunkLoader, error) {
	if info, err := os.Stat(dirPath); err != nil {
		return nil, fmt.Errorf("dictionary directory %s: %w", dirPath, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("dictionary path %s is not a directory", dirPath)
	}

	cl := &ChunkLoader{
		dirPath:   dirPath,
		chunkSize: chunkSize,
		maxWords:  maxWords,
		loaded:    make(map[int][]Entry),
		requests:  make(chan int, 16),
		done:      make(chan struct{}),
		log:       logger.New("dict"),
	}
	if err := cl.scanAvailable(); err != nil {
		return nil, err
	}
	return cl, nil
}

// scanAvailable reads the chunk headers under dirPath and records what
// could be loaded, sorted by chunk id.
func (cl *ChunkLoader) scanAvailable() error {
	paths, err := filepath.Glob(filepath.Join(cl.dirPath, chunkGlob))
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cl.dirPath, err)
	}

	available := make([]ChunkInfo, 0, len(paths))
	for _, path := range paths {
		var id int
		if _, err := fmt.Sscanf(filepath.Base(path), "dict_%04d.bin", &id); err != nil {
			cl.log.Warnf("ignoring %s: unrecognized chunk name", path)
			continue
		}
		count, err := ReadChunkHeader(path)
		if err != nil {
			cl.log.Warnf("ignoring %s: %v", path, err)
			continue
		}
		available = append(available, ChunkInfo{ID: id, Path: path, WordCount: count})
	}
	sort.Slice(available, func(i, j int) bool { return available[i].ID < available[j].ID })

	cl.mu.Lock()
	cl.available = available
	cl.mu.Unlock()
	return nil
}

// OnChange registers the callback invoked with the full merged entry
// set after every load or evict. Register before loading anything.
func (cl *ChunkLoader) OnChange(fn func([]Entry)) {
	cl.mu.Lock()
	cl.onChange = fn
	cl.mu.Unlock()
}

// LoadInitial loads chunks in id order until the word budget is spent,
// then fires the change callback once. A budget smaller than the first
// chunk still loads that chunk, so a fresh loader is never empty when
// chunks exist.
func (cl *ChunkLoader) LoadInitial() error {
	cl.mu.Lock()
	total := 0
	for _, info := range cl.available {
		if total >= cl.maxWords && total > 0 {
			break
		}
		entries, err := ReadChunk(info.Path)
		if err != nil {
			cl.mu.Unlock()
			return fmt.Errorf("failed to load chunk %d: %w", info.ID, err)
		}
		cl.loaded[info.ID] = entries
		total += len(entries)
	}
	loaded := len(cl.loaded)
	cl.mu.Unlock()

	cl.log.Debugf("loaded %d chunks, %d words", loaded, total)
	cl.notifyChange()
	return nil
}

// Load reads one chunk synchronously and merges it in.
func (cl *ChunkLoader) Load(id int) error {
	cl.mu.Lock()
	if _, ok := cl.loaded[id]; ok {
		cl.mu.Unlock()
		return nil
	}
	info, ok := cl.findAvailable(id)
	if !ok {
		cl.mu.Unlock()
		return fmt.Errorf("chunk %d not available in %s", id, cl.dirPath)
	}
	entries, err := ReadChunk(info.Path)
	if err != nil {
		cl.mu.Unlock()
		return fmt.Errorf("failed to load chunk %d: %w", id, err)
	}
	cl.loaded[id] = entries
	cl.mu.Unlock()

	cl.notifyChange()
	return nil
}

// Evict drops a loaded chunk from memory.
func (cl *ChunkLoader) Evict(id int) error {
	cl.mu.Lock()
	if _, ok := cl.loaded[id]; !ok {
		cl.mu.Unlock()
		return fmt.Errorf("chunk %d is not loaded", id)
	}
	delete(cl.loaded, id)
	cl.mu.Unlock()

	cl.notifyChange()
	return nil
}

// RequestChunk queues a background load. Drops the request when the
// queue is full rather than blocking the caller.
func (cl *ChunkLoader) RequestChunk(id int) {
	select {
	case cl.requests <- id:
	case <-cl.done:
	default:
		cl.log.Warnf("load queue full, dropping request for chunk %d", id)
	}
}

// Start launches the background loader goroutine.
func (cl *ChunkLoader) Start() {
	cl.mu.Lock()
	if cl.started {
		cl.mu.Unlock()
		return
	}
	cl.started = true
	cl.mu.Unlock()

	go cl.run()
}

// Stop shuts the background loader down. Safe to call more than once.
func (cl *ChunkLoader) Stop() {
	cl.stopOnce.Do(func() { close(cl.done) })
}

func (cl *ChunkLoader) run() {
	for {
		select {
		case id := <-cl.requests:
			var err error
			for attempt := 1; attempt <= loadRetries; attempt++ {
				if err = cl.Load(id); err == nil {
					break
				}
				cl.log.Warnf("chunk %d load attempt %d: %v", id, attempt, err)
			}
			if err != nil {
				cl.log.Errorf("giving up on chunk %d: %v", id, err)
			}
		case <-cl.done:
			return
		}
	}
}

// Entries returns every loaded entry merged in chunk id order. When
// the same word appears in several chunks the highest id wins, so the
// result carries no duplicates.
func (cl *ChunkLoader) Entries() []Entry {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.mergeLocked()
}

func (cl *ChunkLoader) mergeLocked() []Entry {
	ids := make([]int, 0, len(cl.loaded))
	total := 0
	for id, entries := range cl.loaded {
		ids = append(ids, id)
		total += len(entries)
	}
	sort.Ints(ids)

	merged := make([]Entry, 0, total)
	index := make(map[string]int, total)
	for _, id := range ids {
		for _, e := range cl.loaded[id] {
			if at, dup := index[e.Word]; dup {
				merged[at].Weight = e.Weight
				continue
			}
			index[e.Word] = len(merged)
			merged = append(merged, e)
		}
	}
	return merged
}

// notifyChange hands the merged entries to the registered callback.
// The loader lock is not held during the call.
func (cl *ChunkLoader) notifyChange() {
	cl.mu.RLock()
	fn := cl.onChange
	var entries []Entry
	if fn != nil {
		entries = cl.mergeLocked()
	}
	cl.mu.RUnlock()

	if fn != nil {
		fn(entries)
	}
}

func (cl *ChunkLoader) findAvailable(id int) (ChunkInfo, bool) {
	for _, info := range cl.available {
		if info.ID == id {
			return info, true
		}
	}
	return ChunkInfo{}, false
}

// Available lists the chunks found on disk, sorted by id.
func (cl *ChunkLoader) Available() []ChunkInfo {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	out := make([]ChunkInfo, len(cl.available))
	copy(out, cl.available)
	return out
}

// LoadedIDs lists the ids of resident chunks in ascending order.
func (cl *ChunkLoader) LoadedIDs() []int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	ids := make([]int, 0, len(cl.loaded))
	for id := range cl.loaded {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stats snapshots the loader counters.
func (cl *ChunkLoader) Stats() LoaderStats {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	total := 0
	for _, entries := range cl.loaded {
		total += len(entries)
	}
	return LoaderStats{
		LoadedChunks:    len(cl.loaded),
		AvailableChunks: len(cl.available),
		TotalWords:      total,
		MaxWords:        cl.maxWords,
	}
}

// Dir returns the directory the loader scans.
func (cl *ChunkLoader) Dir() string { return cl.dirPath }

// ChunkSize returns the nominal words-per-chunk the loader was
// configured with.
func (cl *ChunkLoader) ChunkSize() int { return cl.chunkSize }
