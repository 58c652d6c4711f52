package dictionary

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writeTestChunk(t *testing.T, dir string, id int, entries []Entry) string {
	t.Helper()
	path := filepath.Join(dir, ChunkName(id))
	require.NoError(t, WriteChunk(path, entries))
	return path
}

func TestChunkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := []Entry{
		{Word: "air", Weight: 3},
		{Word: "bat", Weight: 2},
		{Word: "bell", Weight: 4},
		{Word: "boy", Weight: 1},
	}
	path := writeTestChunk(t, dir, 1, in)

	out, err := ReadChunk(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	count, err := ReadChunkHeader(path)
	require.NoError(t, err)
	assert.Equal(t, len(in), count)
}

func TestReadChunkRejectsBadHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ChunkName(1))
	// Count of -1, little-endian.
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xff, 0xff, 0xff}, 0o644))

	if _, err := ReadChunk(path); err == nil {
		t.Fatal("expected error for negative record count")
	}
	if _, err := ReadChunkHeader(path); err == nil {
		t.Fatal("expected header error for negative record count")
	}
}

func TestSplitEntries(t *testing.T) {
	entries := []Entry{
		{Word: "a", Weight: 1},
		{Word: "b", Weight: 2},
		{Word: "c", Weight: 3},
		{Word: "d", Weight: 4},
		{Word: "e", Weight: 5},
	}

	batches := SplitEntries(entries, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, "e", batches[2][0].Word)

	assert.Nil(t, SplitEntries(entries, 0))
	assert.Nil(t, SplitEntries(nil, 2))
}

func TestLoadTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	content := "# comment line\n" +
		"the\t500\n" +
		"quick\t120.5\n" +
		"\n" +
		"bareword\n" +
		"bad\tnotanumber\n" +
		"negative\t-3\n" +
		"the\t900\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := LoadTextFile(path, false)
	require.NoError(t, err)

	weights := make(map[string]float64, len(entries))
	for _, e := range entries {
		weights[e.Word] = e.Weight
	}

	// Repeated word keeps the later weight, one entry only.
	assert.Len(t, entries, 3)
	assert.Equal(t, 900.0, weights["the"])
	assert.Equal(t, 120.5, weights["quick"])
	// Bare words get rank weights below the ceiling, ordered by line.
	assert.Greater(t, weights["bareword"], 0.0)
	assert.Less(t, weights["bareword"], float64(textRankCeiling))
	_, hasBad := weights["bad"]
	assert.False(t, hasBad)
	_, hasNeg := weights["negative"]
	assert.False(t, hasNeg)
}

func TestNormalizeWord(t *testing.T) {
	cases := map[string]string{
		"café":    "cafe",
		"naïve":   "naive",
		"plain":   "plain",
		"señor":   "senor",
		"Über":    "Uber",
		"crème":   "creme",
		"fiancée": "fiancee",
	}
	for in, want := range cases {
		if got := NormalizeWord(in); got != want {
			t.Errorf("NormalizeWord(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestLoader(t *testing.T, maxWords int) (*ChunkLoader, string) {
	t.Helper()
	dir := t.TempDir()
	writeTestChunk(t, dir, 1, []Entry{{Word: "air", Weight: 3}, {Word: "ant", Weight: 1}})
	writeTestChunk(t, dir, 2, []Entry{{Word: "bat", Weight: 2}, {Word: "bell", Weight: 4}})
	writeTestChunk(t, dir, 3, []Entry{{Word: "boy", Weight: 1}, {Word: "air", Weight: 9}})

	cl, err := NewChunkLoader(dir, 2, maxWords)
	require.NoError(t, err)
	return cl, dir
}

func TestChunkLoaderScan(t *testing.T) {
	cl, dir := newTestLoader(t, 100)

	// A stray file matching the glob but not the name pattern is
	// ignored, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dict_junk.bin"), []byte("xx"), 0o644))
	require.NoError(t, cl.scanAvailable())

	available := cl.Available()
	require.Len(t, available, 3)
	assert.Equal(t, 1, available[0].ID)
	assert.Equal(t, 3, available[2].ID)
	assert.Equal(t, 2, available[0].WordCount)
}

func TestChunkLoaderInitialBudget(t *testing.T) {
	t.Run("budget covers everything", func(t *testing.T) {
		cl, _ := newTestLoader(t, 100)
		require.NoError(t, cl.LoadInitial())
		assert.Equal(t, []int{1, 2, 3}, cl.LoadedIDs())
	})

	t.Run("budget stops mid stack", func(t *testing.T) {
		cl, _ := newTestLoader(t, 3)
		require.NoError(t, cl.LoadInitial())
		assert.Equal(t, []int{1, 2}, cl.LoadedIDs())
	})

	t.Run("tiny budget still loads one chunk", func(t *testing.T) {
		cl, _ := newTestLoader(t, 1)
		require.NoError(t, cl.LoadInitial())
		assert.Equal(t, []int{1}, cl.LoadedIDs())
	})
}

func TestChunkLoaderMergeLaterWins(t *testing.T) {
	cl, _ := newTestLoader(t, 100)
	require.NoError(t, cl.LoadInitial())

	entries := cl.Entries()
	weights := make(map[string]float64, len(entries))
	for _, e := range entries {
		if _, dup := weights[e.Word]; dup {
			t.Fatalf("duplicate word %q in merged entries", e.Word)
		}
		weights[e.Word] = e.Weight
	}
	// "air" appears in chunks 1 and 3; chunk 3 wins.
	assert.Equal(t, 9.0, weights["air"])
	assert.Len(t, entries, 5)
}

func TestChunkLoaderOnChange(t *testing.T) {
	cl, _ := newTestLoader(t, 100)

	var mu sync.Mutex
	calls := 0
	var lastLen int
	cl.OnChange(func(entries []Entry) {
		mu.Lock()
		calls++
		lastLen = len(entries)
		mu.Unlock()
	})

	require.NoError(t, cl.LoadInitial())
	mu.Lock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5, lastLen)
	mu.Unlock()

	require.NoError(t, cl.Evict(3))
	mu.Lock()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 4, lastLen)
	mu.Unlock()

	require.NoError(t, cl.Load(3))
	mu.Lock()
	assert.Equal(t, 3, calls)
	assert.Equal(t, 5, lastLen)
	mu.Unlock()
}

func TestChunkLoaderLoadErrors(t *testing.T) {
	cl, _ := newTestLoader(t, 100)
	require.NoError(t, cl.LoadInitial())

	if err := cl.Load(99); err == nil {
		t.Error("expected error loading unknown chunk")
	}
	if err := cl.Evict(99); err == nil {
		t.Error("expected error evicting unloaded chunk")
	}
	// Loading a resident chunk is a no-op.
	require.NoError(t, cl.Load(1))
}

func TestChunkLoaderBackgroundRequests(t *testing.T) {
	cl, _ := newTestLoader(t, 100)
	require.NoError(t, cl.Load(1))

	changed := make(chan int, 8)
	cl.OnChange(func(entries []Entry) {
		changed <- len(entries)
	})

	cl.Start()
	defer cl.Stop()

	// An unknown id burns its retries and is dropped; the worker must
	// survive to serve the next request.
	cl.RequestChunk(99)
	cl.RequestChunk(3)

	select {
	case n := <-changed:
		// Chunks 1 and 3 share "air", so the merge holds 3 words.
		assert.Equal(t, 3, n)
	case <-time.After(2 * time.Second):
		t.Fatal("background load never fired the change callback")
	}
	assert.Equal(t, []int{1, 3}, cl.LoadedIDs())

	// Requests after Stop return immediately instead of blocking on a
	// queue nobody drains.
	cl.Stop()
	cl.RequestChunk(2)
}

func TestRuntimeLoaderResize(t *testing.T) {
	cl, _ := newTestLoader(t, 100)
	require.NoError(t, cl.LoadInitial())
	rl := NewRuntimeLoader(cl)

	assert.Equal(t, 3, rl.GetAvailableChunkCount())
	assert.Equal(t, 3, rl.GetCurrentChunkCount())
	assert.Equal(t, 6, rl.GetMaxWordsAvailable())

	require.NoError(t, rl.SetDictionarySize(1))
	assert.Equal(t, []int{1}, cl.LoadedIDs())

	require.NoError(t, rl.SetDictionarySize(3))
	assert.Equal(t, []int{1, 2, 3}, cl.LoadedIDs())

	// Over-asking clamps to what the disk holds.
	require.NoError(t, rl.SetDictionarySize(10))
	assert.Equal(t, 3, rl.GetCurrentChunkCount())

	if err := rl.SetDictionarySize(0); err == nil {
		t.Error("expected error for zero chunk target")
	}
}

func TestRuntimeLoaderSizeOptions(t *testing.T) {
	cl, _ := newTestLoader(t, 100)
	rl := NewRuntimeLoader(cl)

	options := rl.GetDictionarySizeOptions()
	require.Len(t, options, 3)
	assert.Equal(t, 1, options[0].ChunkCount)
	assert.Equal(t, 2, options[0].WordCount)
	assert.Equal(t, 4, options[1].WordCount)
	assert.Equal(t, 6, options[2].WordCount)
	assert.Equal(t, "0K words", options[0].SizeLabel)
}
