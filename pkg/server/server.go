package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ericl3/autocomplete/internal/utils"
	"github.com/ericl3/autocomplete/pkg/config"
	"github.com/ericl3/autocomplete/pkg/dictionary"
	"github.com/ericl3/autocomplete/pkg/suggest"
)

// Every housekeepInterval requests the server reloads its config file
// and asks the runtime to return memory.
const housekeepInterval = 1000

const defaultLimit = 10

// Server handles the IPC for completions over stdin/stdout.
type Server struct {
	completer  *suggest.Completer
	runtime    *dictionary.RuntimeLoader
	cfg        *config.Config
	configPath string

	// In and Out default to stdin and stdout. Tests swap in pipes
	// before calling Start.
	In  io.Reader
	Out io.Writer

	writeMu      sync.Mutex
	out          *bufio.Writer
	enc          *msgpack.Encoder
	requestCount int
}

// NewServer creates a completion server using stdin/stdout for IPC.
// The chunk management actions work when the completer was built on a
// chunk loader and answer with an error status otherwise.
func NewServer(completer *suggest.Completer, cfg *config.Config, configPath string) *Server {
	s := &Server{
		completer:  completer,
		cfg:        cfg,
		configPath: configPath,
		In:         os.Stdin,
		Out:        os.Stdout,
	}
	if loader := completer.Loader(); loader != nil {
		s.runtime = dictionary.NewRuntimeLoader(loader)
	}
	return s
}

// Start begins listening for IPC requests. It returns nil when the
// client closes the stream and an error when the stream turns into
// something msgpack cannot frame anymore.
func (s *Server) Start() error {
	log.Debug("Starting server.")
	s.out = bufio.NewWriter(s.Out)
	s.enc = msgpack.NewEncoder(s.out)
	dec := msgpack.NewDecoder(bufio.NewReader(s.In))

	// Signal that the server is ready.
	s.send(map[string]string{"status": "ready"})

	for {
		var req requestEnvelope
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return fmt.Errorf("failed to decode request: %w", err)
		}
		s.handleRequest(&req)
	}
}

// handleRequest routes one decoded frame.
func (s *Server) handleRequest(req *requestEnvelope) {
	s.requestCount++
	if s.requestCount%housekeepInterval == 0 {
		s.housekeep()
	}

	if req.Action == "" {
		s.handleComplete(req)
		return
	}
	s.handleAction(req)
}

// handleComplete validates a completion request against the server
// config, runs it, and answers with ranked suggestions. Filtered-out
// input gets an empty response rather than an error so clients can
// fire on every keystroke without special-casing.
func (s *Server) handleComplete(req *requestEnvelope) {
	if req.Prefix == nil {
		s.sendError(req.ID, "Missing 'p' field", 400)
		log.Debug("Prefix missing in request")
		return
	}
	prefix := *req.Prefix

	if len(prefix) < s.cfg.Server.MinPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix must be at least %d characters", s.cfg.Server.MinPrefix), 400)
		return
	}
	if len(prefix) > s.cfg.Server.MaxPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.cfg.Server.MaxPrefix), 400)
		return
	}

	if s.cfg.Server.EnableFilter && !utils.IsValidInput(prefix) {
		s.send(CompletionResponse{
			ID:          req.ID,
			Suggestions: []CompletionSuggestion{},
			Count:       0,
		})
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	suggestions, err := s.completer.Complete(prefix, limit)
	elapsed := time.Since(start)
	if err != nil {
		s.sendError(req.ID, fmt.Sprintf("Completion failed: %v", err), 500)
		log.Errorf("Completing %q: %v", prefix, err)
		return
	}

	ranks := utils.CreateRankList(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sug := range suggestions {
		out[i] = CompletionSuggestion{
			Word:   sug.Word,
			Weight: sug.Weight,
			Rank:   ranks[i],
		}
	}

	wasCorrected := false
	correctedPrefix := ""
	if len(suggestions) > 0 && suggestions[0].WasCorrected {
		wasCorrected = true
		correctedPrefix = suggestions[0].CorrectedPrefix
	}

	s.send(CompletionResponse{
		ID:              req.ID,
		Suggestions:     out,
		Count:           len(out),
		TimeTaken:       elapsed.Microseconds(),
		WasCorrected:    wasCorrected,
		CorrectedPrefix: correctedPrefix,
	})
}

// handleAction routes the non-completion request kinds.
func (s *Server) handleAction(req *requestEnvelope) {
	switch req.Action {
	case "top_match":
		s.handleTopMatch(req)
	case "weight_of":
		s.handleWeightOf(req)
	case "get_info":
		s.handleGetInfo(req)
	case "get_chunk_count":
		s.handleGetChunkCount(req)
	case "get_options":
		s.handleGetOptions(req)
	case "set_size":
		s.handleSetSize(req)
	case "update_config":
		s.handleUpdateConfig(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 404)
	}
}

func (s *Server) handleTopMatch(req *requestEnvelope) {
	if req.Prefix == nil {
		s.sendError(req.ID, "Missing 'p' field", 400)
		return
	}
	word := s.completer.TopMatch(*req.Prefix)
	resp := LookupResponse{ID: req.ID, Word: word}
	if word != "" {
		resp.Weight = s.completer.WeightOf(word)
	}
	s.send(resp)
}

func (s *Server) handleWeightOf(req *requestEnvelope) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'w' field", 400)
		return
	}
	s.send(LookupResponse{
		ID:     req.ID,
		Word:   req.Word,
		Weight: s.completer.WeightOf(req.Word),
	})
}

func (s *Server) handleGetInfo(req *requestEnvelope) {
	stats := s.completer.Stats()
	s.send(InfoResponse{
		ID:              req.ID,
		Status:          "ok",
		TotalWords:      stats.TotalWords,
		MaxWeight:       stats.MaxWeight,
		LoadedChunks:    stats.LoadedChunks,
		AvailableChunks: stats.AvailableChunks,
		Backend:         string(stats.Backend),
	})
}

func (s *Server) handleGetChunkCount(req *requestEnvelope) {
	if s.runtime == nil {
		s.sendDictError(req.ID, "no chunked dictionary loaded")
		return
	}
	s.send(DictionaryResponse{
		ID:              req.ID,
		Status:          "ok",
		CurrentChunks:   s.runtime.GetCurrentChunkCount(),
		AvailableChunks: s.runtime.GetAvailableChunkCount(),
	})
}

func (s *Server) handleGetOptions(req *requestEnvelope) {
	if s.runtime == nil {
		s.sendDictError(req.ID, "no chunked dictionary loaded")
		return
	}
	sizeOptions := s.runtime.GetDictionarySizeOptions()
	options := make([]DictionarySizeOption, len(sizeOptions))
	for i, opt := range sizeOptions {
		options[i] = DictionarySizeOption{
			ChunkCount: opt.ChunkCount,
			WordCount:  opt.WordCount,
			SizeLabel:  opt.SizeLabel,
		}
	}
	s.send(DictionaryResponse{
		ID:      req.ID,
		Status:  "ok",
		Options: options,
	})
}

func (s *Server) handleSetSize(req *requestEnvelope) {
	if s.runtime == nil {
		s.sendDictError(req.ID, "no chunked dictionary loaded")
		return
	}
	if req.ChunkCount == nil {
		s.sendDictError(req.ID, "missing 'chunk_count' field")
		return
	}
	if err := s.runtime.SetDictionarySize(*req.ChunkCount); err != nil {
		s.sendDictError(req.ID, err.Error())
		log.Errorf("Resizing dictionary: %v", err)
		return
	}
	s.send(DictionaryResponse{
		ID:            req.ID,
		Status:        "ok",
		CurrentChunks: s.runtime.GetCurrentChunkCount(),
	})
}

func (s *Server) handleUpdateConfig(req *requestEnvelope) {
	if s.configPath == "" {
		s.send(ConfigResponse{ID: req.ID, Status: "error", Error: "no config file loaded"})
		return
	}
	if err := s.cfg.Update(s.configPath, req.MaxLimit, req.MinPrefix, req.MaxPrefix, req.EnableFilter); err != nil {
		s.send(ConfigResponse{ID: req.ID, Status: "error", Error: err.Error()})
		log.Errorf("Updating config: %v", err)
		return
	}
	s.send(ConfigResponse{ID: req.ID, Status: "ok"})
}

// housekeep reloads the config file and returns memory to the OS. Runs
// inline on the request goroutine so config swaps never race dispatch.
func (s *Server) housekeep() {
	if s.configPath != "" {
		if fresh, err := config.LoadConfig(s.configPath); err == nil {
			s.cfg = fresh
		} else {
			log.Warnf("Config reload failed: %v", err)
		}
	}
	s.completer.ForceCleanup()
	log.Debugf("Housekeeping done after %d requests", s.requestCount)
}

// send encodes one response frame and flushes it.
func (s *Server) send(response interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Flushing response: %v", err)
	}
}

// sendError sends an error frame.
func (s *Server) sendError(id, message string, code int) {
	s.send(CompletionError{ID: id, Error: message, Code: code})
}

// sendDictError sends a dictionary response with error status.
func (s *Server) sendDictError(id, message string) {
	s.send(DictionaryResponse{ID: id, Status: "error", Error: message})
}
