package suggest

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ericl3/autocomplete/pkg/dictionary"
	"github.com/ericl3/autocomplete/pkg/fuzzy"
)

// Suggestion is one ranked completion handed to callers.
type Suggestion struct {
	Word            string
	Weight          float64
	WasCorrected    bool   `json:",omitempty"`
	CorrectedPrefix string `json:",omitempty"`
}

// CompleterStats summarizes what a Completer is serving from.
type CompleterStats struct {
	TotalWords      int
	MaxWeight       float64
	LoadedChunks    int
	AvailableChunks int
	Backend         Backend
}

// Completer is the high-level completion service: a dictionary of
// weighted words, an engine built from it, and optional typo
// correction. Every dictionary change rebuilds the engine and swaps it
// in whole, so queries always run against an immutable snapshot and
// need no lock of their own.
type Completer struct {
	mu        sync.RWMutex
	backend   Backend
	engine    Autocompleter
	terms     map[string]float64
	matcher   *fuzzy.Matcher
	fuzzy     bool
	maxWeight float64
	loader    *dictionary.ChunkLoader
}

// NewCompleter returns an empty completer on the given backend. An
// unrecognized backend falls back to the trie with a warning; use
// NewEngine directly when a hard error is wanted instead.
func NewCompleter(backend Backend) *Completer {
	return &Completer{
		backend: normalizeBackend(backend),
		terms:   make(map[string]float64),
	}
}

// NewLazyCompleter builds a completer fed by chunk files under
// dirPath. Call Initialize to load the first chunks and start the
// background loader.
func NewLazyCompleter(dirPath string, chunkSize, maxWords int, backend Backend) (*Completer, error) {
	loader, err := dictionary.NewChunkLoader(dirPath, chunkSize, maxWords)
	if err != nil {
		return nil, err
	}
	c := &Completer{
		backend: normalizeBackend(backend),
		terms:   make(map[string]float64),
		loader:  loader,
	}
	loader.OnChange(func(entries []dictionary.Entry) {
		if err := c.ReplaceDictionary(entries); err != nil {
			log.Errorf("dictionary swap failed: %v", err)
		}
	})
	return c, nil
}

func normalizeBackend(backend Backend) Backend {
	switch backend {
	case BackendTrie, BackendBinary, BackendBrute:
		return backend
	case "":
		return BackendTrie
	default:
		log.Warnf("unknown backend %q, using %s", backend, BackendTrie)
		return BackendTrie
	}
}

// Initialize loads the initial chunk set synchronously and starts the
// background loader. A completer without a chunk loader has nothing to
// do here.
func (c *Completer) Initialize() error {
	if c.loader == nil {
		return nil
	}
	if err := c.loader.LoadInitial(); err != nil {
		return err
	}
	c.loader.Start()
	return nil
}

// AddWord inserts or reweights a single word and rebuilds the engine
// snapshot. Bulk callers should prefer AddTerms or ReplaceDictionary,
// which pay the rebuild once.
func (c *Completer) AddWord(word string, weight float64) error {
	if err := validateWeight(word, weight); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terms[word] = weight
	return c.rebuildLocked()
}

// AddTerms inserts or reweights a batch of terms in one rebuild.
func (c *Completer) AddTerms(terms []Term) error {
	if terms == nil {
		return fmt.Errorf("%w: terms", ErrNilTerms)
	}
	for _, t := range terms {
		if err := validateWeight(t.Word, t.Weight); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range terms {
		c.terms[t.Word] = t.Weight
	}
	return c.rebuildLocked()
}

// ReplaceDictionary throws the current dictionary away and serves the
// given entries instead. Repeated words keep their last weight.
func (c *Completer) ReplaceDictionary(entries []dictionary.Entry) error {
	terms := make(map[string]float64, len(entries))
	for _, e := range entries {
		if err := validateWeight(e.Word, e.Weight); err != nil {
			return err
		}
		terms[e.Word] = e.Weight
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terms = terms
	return c.rebuildLocked()
}

// rebuildLocked constructs a fresh engine and fuzzy matcher from
// c.terms. Callers hold the write lock.
func (c *Completer) rebuildLocked() error {
	terms := make([]Term, 0, len(c.terms))
	maxWeight := 0.0
	for word, weight := range c.terms {
		terms = append(terms, Term{Word: word, Weight: weight})
		if weight > maxWeight {
			maxWeight = weight
		}
	}
	engine, err := NewEngine(c.backend, terms)
	if err != nil {
		return err
	}

	matcher := fuzzy.NewMatcher()
	for word, weight := range c.terms {
		matcher.AddWord(word, weight)
	}

	c.engine = engine
	c.matcher = matcher
	c.maxWeight = maxWeight
	return nil
}

// snapshot returns the current engine and matcher without holding the
// lock during the query itself; both are immutable once published.
func (c *Completer) snapshot() (Autocompleter, *fuzzy.Matcher, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine, c.matcher, c.fuzzy
}

// Complete returns up to limit suggestions for prefix, heaviest first.
// When correction is enabled and the prefix matches nothing, the
// closest dictionary word is tried instead and the results say so.
func (c *Completer) Complete(prefix string, limit int) ([]Suggestion, error) {
	engine, matcher, fuzzyOn := c.snapshot()
	if engine == nil {
		return []Suggestion{}, nil
	}

	words, err := engine.TopMatches(prefix, limit)
	if err != nil {
		return nil, err
	}

	corrected := ""
	if len(words) == 0 && fuzzyOn && matcher != nil {
		fixed, changed := matcher.Correct(prefix)
		if changed {
			if words, err = engine.TopMatches(fixed, limit); err != nil {
				return nil, err
			}
			if len(words) > 0 {
				corrected = fixed
			}
		}
	}

	suggestions := make([]Suggestion, 0, len(words))
	for _, word := range words {
		s := Suggestion{Word: word, Weight: engine.WeightOf(word)}
		if corrected != "" {
			s.WasCorrected = true
			s.CorrectedPrefix = corrected
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// TopMatches implements Autocompleter against the current snapshot.
func (c *Completer) TopMatches(prefix string, k int) ([]string, error) {
	engine, _, _ := c.snapshot()
	if engine == nil {
		if k < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeLimit, k)
		}
		return []string{}, nil
	}
	return engine.TopMatches(prefix, k)
}

// TopMatch implements Autocompleter against the current snapshot.
func (c *Completer) TopMatch(prefix string) string {
	engine, _, _ := c.snapshot()
	if engine == nil {
		return ""
	}
	return engine.TopMatch(prefix)
}

// WeightOf implements Autocompleter against the current snapshot.
func (c *Completer) WeightOf(word string) float64 {
	engine, _, _ := c.snapshot()
	if engine == nil {
		return 0
	}
	return engine.WeightOf(word)
}

// SetFuzzy toggles typo correction for Complete.
func (c *Completer) SetFuzzy(enabled bool) {
	c.mu.Lock()
	c.fuzzy = enabled
	c.mu.Unlock()
}

// Loader exposes the chunk loader, nil for in-memory completers.
func (c *Completer) Loader() *dictionary.ChunkLoader {
	return c.loader
}

// Backend reports which engine the completer builds.
func (c *Completer) Backend() Backend {
	return c.backend
}

// Stats snapshots the completer counters.
func (c *Completer) Stats() CompleterStats {
	c.mu.RLock()
	stats := CompleterStats{
		TotalWords: len(c.terms),
		MaxWeight:  c.maxWeight,
		Backend:    c.backend,
	}
	c.mu.RUnlock()

	if c.loader != nil {
		ls := c.loader.Stats()
		stats.LoadedChunks = ls.LoadedChunks
		stats.AvailableChunks = ls.AvailableChunks
	}
	return stats
}

// ForceCleanup runs a collection pass so snapshots replaced by a
// dictionary swap are reclaimed promptly. Interactive frontends call
// this between bursts.
func (c *Completer) ForceCleanup() {
	runtime.GC()
}

// Stop shuts down the background loader, if any.
func (c *Completer) Stop() {
	if c.loader != nil {
		c.loader.Stop()
	}
}
