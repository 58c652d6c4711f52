package dictionary

import (
	"fmt"
	"sort"
	"sync"
)

// DictionarySizeOption is one entry in the size menu exposed to
// clients: keep the first ChunkCount chunks resident for roughly
// WordCount words.
type DictionarySizeOption struct {
	ChunkCount int
	WordCount  int
	SizeLabel  string
}

// RuntimeLoader lets clients resize the resident dictionary while the
// server runs. It treats the chunk set as a prefix: target N means the
// N lowest chunk ids stay loaded and everything above goes.
type RuntimeLoader struct {
	loader *ChunkLoader
	mu     sync.Mutex
}

// NewRuntimeLoader wraps an existing chunk loader.
func NewRuntimeLoader(loader *ChunkLoader) *RuntimeLoader {
	return &RuntimeLoader{loader: loader}
}

// GetAvailableChunkCount reports how many chunks exist on disk.
func (rl *RuntimeLoader) GetAvailableChunkCount() int {
	return len(rl.loader.Available())
}

// GetCurrentChunkCount reports how many chunks are resident.
func (rl *RuntimeLoader) GetCurrentChunkCount() int {
	return len(rl.loader.LoadedIDs())
}

// GetMaxWordsAvailable sums the word counts of every chunk on disk.
func (rl *RuntimeLoader) GetMaxWordsAvailable() int {
	total := 0
	for _, info := range rl.loader.Available() {
		total += info.WordCount
	}
	return total
}

// SetDictionarySize loads or evicts chunks until exactly targetChunks
// of the lowest-id chunks are resident. Targets beyond what the disk
// holds are clamped.
func (rl *RuntimeLoader) SetDictionarySize(targetChunks int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if targetChunks < 1 {
		return fmt.Errorf("chunk target must be at least 1, got %d", targetChunks)
	}
	available := rl.loader.Available()
	if len(available) == 0 {
		return fmt.Errorf("no chunks available in %s", rl.loader.Dir())
	}
	if targetChunks > len(available) {
		targetChunks = len(available)
	}

	want := make(map[int]bool, targetChunks)
	for _, info := range available[:targetChunks] {
		want[info.ID] = true
	}

	loaded := rl.loader.LoadedIDs()
	have := make(map[int]bool, len(loaded))
	for _, id := range loaded {
		have[id] = true
	}

	// Evict from the top down first so the resize never holds more
	// than the larger of the two sets in memory.
	sort.Sort(sort.Reverse(sort.IntSlice(loaded)))
	for _, id := range loaded {
		if !want[id] {
			if err := rl.loader.Evict(id); err != nil {
				return fmt.Errorf("failed to evict chunk %d: %w", id, err)
			}
		}
	}
	for _, info := range available[:targetChunks] {
		if !have[info.ID] {
			if err := rl.loader.Load(info.ID); err != nil {
				return fmt.Errorf("failed to load chunk %d: %w", info.ID, err)
			}
		}
	}
	return nil
}

// GetDictionarySizeOptions builds the cumulative size menu: option N
// covers the first N chunks on disk.
func (rl *RuntimeLoader) GetDictionarySizeOptions() []DictionarySizeOption {
	available := rl.loader.Available()
	options := make([]DictionarySizeOption, 0, len(available))
	total := 0
	for i, info := range available {
		total += info.WordCount
		options = append(options, DictionarySizeOption{
			ChunkCount: i + 1,
			WordCount:  total,
			SizeLabel:  fmt.Sprintf("%dK words", total/1000),
		})
	}
	return options
}
