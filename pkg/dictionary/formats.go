// Package dictionary turns word lists on disk into the (word, weight)
// entries the engines consume: chunked binary files for shipping big
// dictionaries, tab-separated text for everything else.
package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entry is one dictionary record: a word and its weight.
type Entry struct {
	Word   string
	Weight float64
}

// Chunk files are little-endian: an int32 record count, then per
// record a uint16 word length, the word bytes and a float64 weight.
const (
	chunkGlob = "dict_*.bin"

	// Header counts beyond this are treated as corruption rather
	// than ambition.
	maxChunkRecords = 1_000_000

	// Weight assigned to the first line of a text dictionary with no
	// weight column; each following line weighs one less.
	textRankCeiling = 1_000_000
)

// ChunkName returns the canonical file name for a chunk id.
func ChunkName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}

// ReadChunk parses one binary chunk file.
func ReadChunk(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read chunk header from %s: %w", path, err)
	}
	if count < 0 || count > maxChunkRecords {
		return nil, fmt.Errorf("invalid record count %d in %s", count, path)
	}

	entries := make([]Entry, 0, count)
	for i := int32(0); i < count; i++ {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("failed to read word length in %s: %w", path, err)
		}
		word := make([]byte, wordLen)
		if _, err := io.ReadFull(r, word); err != nil {
			return nil, fmt.Errorf("failed to read word in %s: %w", path, err)
		}
		var weight float64
		if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
			return nil, fmt.Errorf("failed to read weight in %s: %w", path, err)
		}
		entries = append(entries, Entry{Word: string(word), Weight: weight})
	}
	return entries, nil
}

// ReadChunkHeader returns just the record count of a chunk file, for
// sizing decisions without paying for a full parse.
func ReadChunkHeader(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open chunk: %w", err)
	}
	defer file.Close()

	var count int32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return 0, fmt.Errorf("failed to read chunk header from %s: %w", path, err)
	}
	if count < 0 || count > maxChunkRecords {
		return 0, fmt.Errorf("invalid record count %d in %s", count, path)
	}
	return int(count), nil
}

// WriteChunk writes entries in the format ReadChunk reads.
func WriteChunk(path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := binary.Write(w, binary.LittleEndian, int32(len(entries))); err != nil {
		return fmt.Errorf("failed to write chunk header: %w", err)
	}
	for _, e := range entries {
		if len(e.Word) > int(^uint16(0)) {
			return fmt.Errorf("word too long for chunk format: %d bytes", len(e.Word))
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return fmt.Errorf("failed to write word length: %w", err)
		}
		if _, err := w.WriteString(e.Word); err != nil {
			return fmt.Errorf("failed to write word: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.Weight); err != nil {
			return fmt.Errorf("failed to write weight: %w", err)
		}
	}
	return w.Flush()
}

// SplitEntries slices entries into chunkSize batches, ready for
// WriteChunk. The last batch holds the remainder.
func SplitEntries(entries []Entry, chunkSize int) [][]Entry {
	if chunkSize <= 0 || len(entries) == 0 {
		return nil
	}
	batches := make([][]Entry, 0, (len(entries)+chunkSize-1)/chunkSize)
	for start := 0; start < len(entries); start += chunkSize {
		end := start + chunkSize
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, entries[start:end])
	}
	return batches
}

// LoadTextFile reads a word-per-line dictionary. Each line is either
// "word<TAB>weight" or a bare word; bare words get a rank weight so
// earlier lines stay heavier. Blank lines and '#' comments are
// skipped, malformed or negative weights are logged and dropped, and a
// repeated word keeps its last occurrence so the engines never see
// duplicates.
func LoadTextFile(path string, normalize bool) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer file.Close()

	entries := make([]Entry, 0, 1024)
	index := make(map[string]int)
	scanner := bufio.NewScanner(file)
	rank := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word := line
		weight := float64(textRankCeiling - rank)
		if tab := strings.IndexByte(line, '\t'); tab >= 0 {
			word = strings.TrimSpace(line[:tab])
			raw := strings.TrimSpace(line[tab+1:])
			weight, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				log.Warnf("skipping %s line %q: bad weight %q", path, word, raw)
				continue
			}
		}
		if word == "" {
			continue
		}
		if weight < 0 {
			log.Warnf("skipping %s entry %q: negative weight %v", path, word, weight)
			continue
		}
		if normalize {
			word = NormalizeWord(word)
		}

		rank++
		if at, dup := index[word]; dup {
			entries[at].Weight = weight
			continue
		}
		index[word] = len(entries)
		entries = append(entries, Entry{Word: word, Weight: weight})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return entries, nil
}

// NormalizeWord folds diacritics away: decompose, strip the combining
// marks, recompose. "café" comes back "cafe".
func NormalizeWord(s string) string {
	marks := runes.Remove(runes.In(unicode.Mn))
	out, _, err := transform.String(transform.Chain(norm.NFD, marks, norm.NFC), s)
	if err != nil {
		return s
	}
	return out
}
