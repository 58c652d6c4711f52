// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ericl3/autocomplete/internal/utils"
	"github.com/ericl3/autocomplete/pkg/suggest"
)

// Completer is the slice of the completion service the CLI needs.
type Completer interface {
	Complete(prefix string, limit int) ([]suggest.Suggestion, error)
	TopMatch(prefix string) string
}

// A cleanup pass runs after this many handled inputs.
const cleanupInterval = 50

var (
	wordStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	weightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	correctedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
)

// InputHandler processes user input from stdin, providing suggestions.
// It accepts flags to control behavior such as minimum and maximum
// prefix length, suggestion limits, and filtering options.
type InputHandler struct {
	completer       Completer
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	requestCount    int
	noFilter        bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer Completer, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
	}
}

// Start begins the interface loop. It continuously prompts for input,
// reads a line from stdin, and passes the trimmed input to
// handleInput(). The loop terminates when stdin closes.
func (h *InputHandler) Start() error {
	log.Print("acserve CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a prefix and press Enter to see the suggestions (Ctrl+C to exit):")

	for {
		log.Print("> ")
		prefix, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		h.handleInput(prefix)
	}
}

// handleInput processes a single prefix. It validates length and
// content, asks the completer for the top match and the ranked
// suggestions, and prints both. Periodically triggers a memory cleanup
// on completers that support it.
func (h *InputHandler) handleInput(prefix string) {
	h.requestCount++
	if h.requestCount%cleanupInterval == 0 {
		if completer, ok := h.completer.(interface{ ForceCleanup() }); ok {
			completer.ForceCleanup()
		}
	}

	if len(prefix) < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidInput(prefix) {
			log.Infof("No results found for prefix: '%s'", prefix)
			return
		}
	} else {
		log.Debug("Input filtering disabled")
	}

	start := time.Now()
	suggestions, err := h.completer.Complete(prefix, h.suggestLimit)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Completion failed for '%s': %v", prefix, err)
		return
	}
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	if suggestions[0].WasCorrected {
		log.Print(correctedStyle.Render("corrected to '" + suggestions[0].CorrectedPrefix + "'"))
	}
	if best := h.completer.TopMatch(prefix); best != "" {
		log.Printf("Top match: %s", wordStyle.Render(best))
	}

	log.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for i, s := range suggestions {
		weight := weightStyle.Render(utils.FormatWeight(s.Weight))
		log.Printf("%2d. %-40s (weight: %8s)", i+1, wordStyle.Render(s.Word), weight)
	}
}
