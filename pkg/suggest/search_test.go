package suggest

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

// seededTerms builds a reproducible dictionary of n distinct lowercase
// words with integral weights in [0, 1000). The small weight range
// forces plenty of ties, which is where ordering bugs hide.
func seededTerms(seed int64, n int) []Term {
	rng := rand.New(rand.NewSource(seed))
	seen := make(map[string]struct{}, n)
	terms := make([]Term, 0, n)
	for len(terms) < n {
		length := 1 + rng.Intn(8)
		b := make([]byte, length)
		for i := range b {
			b[i] = byte('a' + rng.Intn(26))
		}
		word := string(b)
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, Term{Word: word, Weight: float64(rng.Intn(1000))})
	}
	return terms
}

// seededTermsDistinct replaces the weights with a shuffled run of
// distinct values, so every ranking question has exactly one right
// answer.
func seededTermsDistinct(seed int64, n int) []Term {
	terms := seededTerms(seed, n)
	rng := rand.New(rand.NewSource(seed + 5000))
	for i, w := range rng.Perm(len(terms)) {
		terms[i].Weight = float64(w)
	}
	return terms
}

func buildEngines(t *testing.T, terms []Term) map[Backend]Autocompleter {
	t.Helper()
	engines := make(map[Backend]Autocompleter, 3)
	for _, backend := range []Backend{BackendTrie, BackendBinary, BackendBrute} {
		engine, err := NewEngine(backend, terms)
		if err != nil {
			t.Fatalf("NewEngine(%s): %v", backend, err)
		}
		engines[backend] = engine
	}
	return engines
}

// probePrefixes samples real word prefixes plus the two degenerate
// cases: match-everything and match-nothing.
func probePrefixes(terms []Term, rng *rand.Rand, count int) []string {
	prefixes := []string{"", "zzzzzzzzzz"}
	for i := 0; i < count; i++ {
		w := terms[rng.Intn(len(terms))].Word
		prefixes = append(prefixes, w[:1+rng.Intn(len(w))])
	}
	return prefixes
}

// The brute engine is the oracle: with all weights distinct the top-k
// answer is fully determined, so the other two must reproduce its
// output exactly, order included.
func TestEnginesAgreeOnRandomDictionaries(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			terms := seededTermsDistinct(seed, 400)
			engines := buildEngines(t, terms)
			oracle := engines[BackendBrute]

			rng := rand.New(rand.NewSource(seed + 1000))
			for _, prefix := range probePrefixes(terms, rng, 30) {
				for _, k := range []int{0, 1, 2, 5, 50, 1000} {
					want, err := oracle.TopMatches(prefix, k)
					if err != nil {
						t.Fatalf("oracle TopMatches(%q, %d): %v", prefix, k, err)
					}
					for backend, engine := range engines {
						got, err := engine.TopMatches(prefix, k)
						if err != nil {
							t.Fatalf("%s TopMatches(%q, %d): %v", backend, prefix, k, err)
						}
						if !reflect.DeepEqual(got, want) {
							t.Fatalf("%s TopMatches(%q, %d) = %v, oracle says %v", backend, prefix, k, got, want)
						}
					}
				}

				want := oracle.TopMatch(prefix)
				for backend, engine := range engines {
					if got := engine.TopMatch(prefix); got != want {
						t.Fatalf("%s TopMatch(%q) = %q, oracle says %q", backend, prefix, got, want)
					}
				}
			}

			for i := 0; i < 50; i++ {
				word := terms[rng.Intn(len(terms))].Word
				for _, probe := range []string{word, word + "x"} {
					want := oracle.WeightOf(probe)
					for backend, engine := range engines {
						if got := engine.WeightOf(probe); got != want {
							t.Fatalf("%s WeightOf(%q) = %v, oracle says %v", backend, probe, got, want)
						}
					}
				}
			}
		})
	}
}

// Tied weights leave the order underdetermined at the k boundary: the
// trie's bound pruning may stop before visiting every word tied with
// the k-th candidate, so it can keep a different equally-weighted
// subset. Its weight sequence must still match the oracle word for
// word. The sorted-array engine prunes nothing and stays exact.
func TestEnginesAgreeOnTiedWeights(t *testing.T) {
	terms := seededTerms(7, 400)
	weights := make(map[string]float64, len(terms))
	for _, term := range terms {
		weights[term.Word] = term.Weight
	}
	engines := buildEngines(t, terms)
	oracle := engines[BackendBrute]

	rng := rand.New(rand.NewSource(77))
	for _, prefix := range probePrefixes(terms, rng, 30) {
		for _, k := range []int{0, 1, 2, 5, 50, 1000} {
			want, err := oracle.TopMatches(prefix, k)
			if err != nil {
				t.Fatalf("oracle TopMatches(%q, %d): %v", prefix, k, err)
			}

			got, err := engines[BackendBinary].TopMatches(prefix, k)
			if err != nil {
				t.Fatalf("binary TopMatches(%q, %d): %v", prefix, k, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("binary TopMatches(%q, %d) = %v, oracle says %v", prefix, k, got, want)
			}

			fromTrie, err := engines[BackendTrie].TopMatches(prefix, k)
			if err != nil {
				t.Fatalf("trie TopMatches(%q, %d): %v", prefix, k, err)
			}
			if len(fromTrie) != len(want) {
				t.Fatalf("trie TopMatches(%q, %d) returned %d words, oracle %d", prefix, k, len(fromTrie), len(want))
			}
			seen := make(map[string]bool, len(fromTrie))
			for i, word := range fromTrie {
				if seen[word] {
					t.Fatalf("trie TopMatches(%q, %d) repeated %q", prefix, k, word)
				}
				seen[word] = true
				if !strings.HasPrefix(word, prefix) {
					t.Fatalf("trie TopMatches(%q, %d) returned %q outside the prefix", prefix, k, word)
				}
				stored, known := weights[word]
				if !known {
					t.Fatalf("trie TopMatches(%q, %d) invented %q", prefix, k, word)
				}
				if stored != weights[want[i]] {
					t.Fatalf("trie TopMatches(%q, %d)[%d] = %q (weight %v), oracle has weight %v there",
						prefix, k, i, word, stored, weights[want[i]])
				}
			}
		}

		// TopMatch tie-breaks lexicographically in every engine, so it
		// stays exact even here.
		want := oracle.TopMatch(prefix)
		for backend, engine := range engines {
			if got := engine.TopMatch(prefix); got != want {
				t.Fatalf("%s TopMatch(%q) = %q, oracle says %q", backend, prefix, got, want)
			}
		}
	}
}

// TopMatch must behave exactly like TopMatches with k=1, ties and
// misses included.
func TestTopMatchEqualsTopMatchesOne(t *testing.T) {
	terms := seededTerms(3, 300)
	engines := buildEngines(t, terms)

	rng := rand.New(rand.NewSource(33))
	for _, prefix := range probePrefixes(terms, rng, 40) {
		for backend, engine := range engines {
			list, err := engine.TopMatches(prefix, 1)
			if err != nil {
				t.Fatalf("%s TopMatches(%q, 1): %v", backend, prefix, err)
			}
			want := ""
			if len(list) == 1 {
				want = list[0]
			}
			if got := engine.TopMatch(prefix); got != want {
				t.Errorf("%s TopMatch(%q) = %q, TopMatches gave %q", backend, prefix, got, want)
			}
		}
	}
}

func TestTopMatchesBoundaries(t *testing.T) {
	terms := exampleTerms()
	engines := buildEngines(t, terms)

	for backend, engine := range engines {
		t.Run(string(backend), func(t *testing.T) {
			got, err := engine.TopMatches("b", 0)
			if err != nil {
				t.Fatalf("k=0: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("k=0 = %#v, want empty non-nil slice", got)
			}

			if _, err := engine.TopMatches("b", -3); !errors.Is(err, ErrNegativeLimit) {
				t.Errorf("k=-3 error = %v, want ErrNegativeLimit", err)
			}

			got, err = engine.TopMatches("nothere", 5)
			if err != nil {
				t.Fatalf("missing prefix: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("missing prefix = %v, want empty", got)
			}

			got, err = engine.TopMatches("", 100)
			if err != nil {
				t.Fatalf("k over size: %v", err)
			}
			if len(got) != len(terms) {
				t.Errorf("k over size returned %d words, want %d", len(got), len(terms))
			}
		})
	}
}

func TestTopMatchesDeterminism(t *testing.T) {
	tr := mustTrie(t, seededTerms(11, 300))
	first, err := tr.TopMatches("a", 20)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := tr.TopMatches("a", 20)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged: %v vs %v", i, again, first)
		}
	}
}

var benchPrefixes = []string{"a", "th", "b", "qu", "z", "m"}

func benchmarkTopMatches(b *testing.B, backend Backend) {
	engine, err := NewEngine(backend, seededTerms(99, 5000))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.TopMatches(benchPrefixes[i%len(benchPrefixes)], 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTrieTopMatches(b *testing.B)   { benchmarkTopMatches(b, BackendTrie) }
func BenchmarkBinaryTopMatches(b *testing.B) { benchmarkTopMatches(b, BackendBinary) }
func BenchmarkBruteTopMatches(b *testing.B)  { benchmarkTopMatches(b, BackendBrute) }
