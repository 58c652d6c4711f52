// Copyright 2025 The Acserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the acserve completion server and CLI [DBG] application.

Acserve answers weighted prefix completion queries: every dictionary
word carries a non-negative weight, and queries return the top-k
matches for a prefix, heaviest first. It can operate as a MessagePack
IPC server for integration with text editors, or as a CLI application
for testing and debugging.

The server mode uses lazy-loaded chunked dictionaries to handle large
word datasets while keeping memory usage low. Clients can resize the
resident dictionary at runtime without a restart.

# Usage

Start the server with default settings:

	acserve

Use a custom data directory and enable debug mode:

	acserve -data /path/to/chunks -d

Serve a plain text dictionary instead of chunks:

	acserve -dict /path/to/words.txt

Run in CLI mode for interactive testing:

	acserve -c -limit 10 -prmin 2

The data directory should contain chunked binary files named
dict_0001.bin, dict_0002.bin, etc. These files carry (word, weight)
records and are loaded on demand based on the configured limits. Text
dictionaries hold one word per line with an optional tab-separated
weight.

# Configuration

Runtime configuration is managed through a TOML file that supports
server parameters, dictionary settings, and CLI defaults:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = true
	engine = "trie"
	fuzzy = false

	[dict]
	max_words = 50000
	chunk_size = 10000
	normalize = false

The config file is automatically created with defaults if it doesn't
exist. Server mode reloads configuration periodically without restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Completion
requests are processed synchronously with microsecond timing
information included in responses.

Send a completion request:

	{"id": "req1", "p": "hel", "l": 20}

Receive suggestions ranked by weight:

	{"id": "req1", "s": [{"w": "hello", "wt": 510, "r": 1}, {"w": "help", "wt": 340, "r": 2}], "c": 2, "t": 145}

Single-word lookups and dictionary management run through actions:

	{"id": "q1", "action": "top_match", "p": "he"}
	{"id": "q2", "action": "weight_of", "w": "hello"}
	{"id": "dict1", "action": "get_info"}
	{"id": "dict2", "action": "set_size", "chunk_count": 5}

# Server Mode

The default mode starts a MessagePack IPC server that processes
completion requests from stdin and writes responses to stdout. This
design enables integration with text editors and other applications
through process communication.

	srv := server.NewServer(completer, config, configPath)
	err := srv.Start()

The server handles request parsing, validation, and response
formatting, and periodically reloads configuration and returns memory
during long-running sessions.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging
completion behavior. It reads prefixes from stdin and displays the top
match and the ranked suggestions with their weights.

	inputHandler := cli.NewInputHandler(completer, minLen, maxLen, limit, noFilter)
	err := inputHandler.Start()

This mode is primarily intended for development, with the same
filtering logic as the server but human-readable output.

# Completion Engine

The core functionality is provided by the suggest package, which
implements three interchangeable engines behind one interface: a
weight-pruned trie (default), sorted-slice binary search, and a
patricia-trie scan kept as a reference. The -engine flag and the
[server] engine key select between them.

	completer := suggest.NewLazyCompleter(dataDir, chunkSize, maxWords, suggest.BackendTrie)
	err := completer.Initialize()
	suggestions, err := completer.Complete("prefix", 20)

# Command Line Flags

The following flags control application behavior:

	-data string
	    Directory containing binary chunk files (default "data/")
	-dict string
	    Plain text dictionary file to serve instead of chunks
	-config string
	    Config file path (default: platform config dir)
	-rebuild-config
	    Overwrite the default config file with pristine defaults and exit
	-engine string
	    Completion engine: trie, binary or brute (default from config)
	-fuzzy
	    Enable typo correction for empty results
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return (default from config)
	-prmin int
	    Minimum prefix length for suggestions
	-prmax int
	    Maximum prefix length for suggestions
	-no-filter
	    Disable input filtering for debugging
	-words int
	    Maximum words to load (0 for all)
	-chunk int
	    Words per chunk for lazy loading

The application automatically resolves data and config paths relative
to the executable location, supporting both development and production
deployments.

# Mem

The lazy loader manages memory usage by loading dictionary chunks on
demand and evicting them when clients shrink the dictionary. The
server periodically triggers garbage collection and reloads
configuration to stay healthy during long-running sessions.

Input filtering removes non-alphabetic prefixes by default to improve
suggestion relevance, though this can be disabled for debugging.
*/
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ericl3/autocomplete/internal/cli"
	"github.com/ericl3/autocomplete/internal/logger"
	"github.com/ericl3/autocomplete/internal/utils"
	"github.com/ericl3/autocomplete/pkg/config"
	"github.com/ericl3/autocomplete/pkg/dictionary"
	"github.com/ericl3/autocomplete/pkg/server"
	"github.com/ericl3/autocomplete/pkg/suggest"
)

const (
	Version = "0.3.0"
	AppName = "acserve"
	gh      = "https://github.com/ericl3/autocomplete"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	binaryDir := flag.String("data", "data/", "Directory containing the binary files")
	dictFile := flag.String("dict", "", "Plain text dictionary file to serve instead of chunks")
	configFile := flag.String("config", "", "Config file path (default: platform config dir)")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config file with pristine defaults and exit")
	engineName := flag.String("engine", "", "Completion engine: trie, binary or brute (default from config)")
	fuzzyMode := flag.Bool("fuzzy", false, "Enable typo correction for prefixes that match nothing")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only) - shows all raw dictionary entries (numbers, symbols, etc)")
	wordLimit := flag.Int("words", defaultConfig.Dict.MaxWords, "Maximum number of words to load (use 0 for all words)")
	chunkSize := flag.Int("chunk", defaultConfig.Dict.ChunkSize, "Number of words per chunk for lazy loading")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Errorf("Failed to rebuild config: %v", err)
			os.Exit(1)
		}
		log.Printf("Wrote default config to %s", config.GetActiveConfigPath(""))
		os.Exit(0)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to initialize path resolver: %v", err)
		log.Print("Either env is not set or system is not supported")
		os.Exit(1)
	}

	logger.SetDebug(*debugMode)

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	backend := suggest.Backend(*engineName)
	if *engineName == "" {
		backend = suggest.Backend(appConfig.Server.Engine)
	}

	completer, dataDir, err := buildCompleter(pathResolver, appConfig, backend, *dictFile, *binaryDir, *chunkSize, *wordLimit)
	if err != nil {
		log.Errorf("Failed to init completer: %v", err)
		log.Print("Pass -data with a directory of dict_*.bin chunks, or -dict with a text word list")
		os.Exit(1)
	}
	defer completer.Stop()

	if *fuzzyMode || appConfig.Server.Fuzzy {
		completer.SetFuzzy(true)
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(completer, *minPrefix, *maxPrefix, *limit, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Errorf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(completer, appConfig, configPath)

	showStartupInfo(completer, dataDir)

	if err := srv.Start(); err != nil {
		log.Errorf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// buildCompleter constructs the completer from either a text dictionary
// or a chunk directory. The returned string names the data source for
// the startup banner.
func buildCompleter(pathResolver *utils.PathResolver, appConfig *config.Config, backend suggest.Backend, dictFile, binaryDir string, chunkSize, wordLimit int) (*suggest.Completer, string, error) {
	if dictFile != "" {
		entries, err := dictionary.LoadTextFile(dictFile, appConfig.Dict.Normalize)
		if err != nil {
			return nil, "", err
		}
		completer := suggest.NewCompleter(backend)
		if err := completer.ReplaceDictionary(entries); err != nil {
			return nil, "", err
		}
		log.Debugf("Loaded %d words from %s", len(entries), dictFile)
		return completer, dictFile, nil
	}

	resolvedDataDir, err := pathResolver.GetDataDir(binaryDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve data dir %q: %w", binaryDir, err)
	}
	if wordLimit <= 0 {
		wordLimit = math.MaxInt
	}
	log.Debugf("Using data dir at: %s", resolvedDataDir)
	log.Debugf("Init completer: maxWords=[%d], chunkSize=[%d]", wordLimit, chunkSize)

	completer, err := suggest.NewLazyCompleter(resolvedDataDir, chunkSize, wordLimit, backend)
	if err != nil {
		return nil, "", err
	}
	if err := completer.Initialize(); err != nil {
		return nil, "", err
	}
	log.Debug("Completer init done")
	return completer, resolvedDataDir, nil
}

// printVersion writes the styled version banner.
func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ Acserve ] Weighted prefix completions, fast.")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(completer *suggest.Completer, dataDir string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := completer.Stats()

	println("===========")
	println("  Acserve  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("engine: %s", stats.Backend)
	log.Infof("words: %s", utils.FormatWithCommas(stats.TotalWords))
	log.Infof("data dir: ( %s )", dataDir)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
