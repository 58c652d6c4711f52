/*
Package server implements msgpack IPC for prefix completion services.

The protocol runs binary msgpack frames over stdin/stdout. Clients send
one request object per frame and receive one response frame back;
frames are processed synchronously in arrival order and responses carry
timing info.

# IPC

Every request carries an ID the response echoes back. A request with no
"action" field is a completion request:

	{"id": "req_001", "p": "ame", "l": 24}

answered with suggestions ranked heaviest first:

	{"id": "req_001", "s": [{"w": "amenity", "wt": 520, "r": 1}, {"w": "america", "wt": 301, "r": 2}], "c": 2, "t": 145}

Requests with an "action" field address the dictionary or single-word
lookups:

	{"id": "q_001", "action": "top_match", "p": "th"}
	{"id": "q_002", "action": "weight_of", "w": "the"}
	{"id": "dict_001", "action": "set_size", "chunk_count": 5}
	{"id": "dict_002", "action": "get_options"}
	{"id": "cfg_001", "action": "update_config", "max_limit": 32}

Lookup misses are not errors: top_match on a prefix nothing starts with
returns an empty word, weight_of on an absent word returns weight 0.
Errors use CompletionError with an HTTP-flavored code: 400 for bad
requests, 404 for unknown actions, 500 when an operation fails.

# Message Types

CompletionRequest and CompletionResponse handle prefix suggestion.
LookupResponse answers top_match and weight_of. DictionaryResponse
covers the chunk management actions, ConfigResponse acknowledges config
updates.

The fields are single letters where traffic is hot: completion requests
fire on every keystroke, so the msgpack framing is kept as small as the
format allows.
*/
package server

// CompletionRequest - minimal completion request
type CompletionRequest struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion - one ranked suggestion
type CompletionSuggestion struct {
	Word   string  `msgpack:"w"`
	Weight float64 `msgpack:"wt"`
	Rank   uint16  `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID              string                 `msgpack:"id"`
	Suggestions     []CompletionSuggestion `msgpack:"s"`
	Count           int                    `msgpack:"c"`
	TimeTaken       int64                  `msgpack:"t"`
	WasCorrected    bool                   `msgpack:"wc,omitempty"`
	CorrectedPrefix string                 `msgpack:"cp,omitempty"`
}

// LookupResponse answers top_match and weight_of actions.
type LookupResponse struct {
	ID     string  `msgpack:"id"`
	Word   string  `msgpack:"w"`
	Weight float64 `msgpack:"wt"`
}

// InfoResponse answers get_info.
type InfoResponse struct {
	ID              string  `msgpack:"id"`
	Status          string  `msgpack:"status"`
	TotalWords      int     `msgpack:"total_words"`
	MaxWeight       float64 `msgpack:"max_weight"`
	LoadedChunks    int     `msgpack:"loaded_chunks"`
	AvailableChunks int     `msgpack:"available_chunks"`
	Backend         string  `msgpack:"backend"`
}

// DictionarySizeOption - dictionary size option
type DictionarySizeOption struct {
	ChunkCount int    `msgpack:"chunk_count"`
	WordCount  int    `msgpack:"word_count"`
	SizeLabel  string `msgpack:"size_label"`
}

// DictionaryResponse - dictionary operation response
type DictionaryResponse struct {
	ID              string                 `msgpack:"id"`
	Status          string                 `msgpack:"status"`
	Error           string                 `msgpack:"error,omitempty"`
	CurrentChunks   int                    `msgpack:"current_chunks,omitempty"`
	AvailableChunks int                    `msgpack:"available_chunks,omitempty"`
	Options         []DictionarySizeOption `msgpack:"options,omitempty"`
}

// ConfigResponse - config operation response
type ConfigResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// requestEnvelope is the superset every incoming frame decodes into;
// dispatch looks at Action to tell the request kinds apart. Pointer
// fields distinguish absent from zero.
type requestEnvelope struct {
	ID     string  `msgpack:"id"`
	Prefix *string `msgpack:"p,omitempty"`
	Limit  int     `msgpack:"l,omitempty"`
	Action string  `msgpack:"action,omitempty"`
	Word   string  `msgpack:"w,omitempty"`

	// Dictionary management.
	ChunkCount *int `msgpack:"chunk_count,omitempty"`

	// Config updates.
	MaxLimit     *int  `msgpack:"max_limit,omitempty"`
	MinPrefix    *int  `msgpack:"min_prefix,omitempty"`
	MaxPrefix    *int  `msgpack:"max_prefix,omitempty"`
	EnableFilter *bool `msgpack:"enable_filter,omitempty"`
}
