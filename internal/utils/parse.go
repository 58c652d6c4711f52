package utils

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile loads and parses a TOML file into the provided struct
func LoadTOMLFile(path string, v interface{}) error {
	if _, err := toml.DecodeFile(path, v); err != nil {
		log.Warnf("TOML parsing error in %s: %v", path, err)
		return err
	}
	return nil
}

// ParseTOMLWithRecovery parses a TOML file into a loose map so callers
// can salvage whatever sections survived a strict decode failure.
func ParseTOMLWithRecovery(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loose := make(map[string]any)
	if _, err := toml.Decode(string(data), &loose); err != nil {
		log.Warnf("could not parse any valid configuration from %s: %v", path, err)
		return nil, err
	}
	return loose, nil
}

// ExtractSection extracts a specific section from parsed TOML data
func ExtractSection(data map[string]any, name string) (map[string]any, bool) {
	section, ok := data[name].(map[string]any)
	return section, ok
}

// ExtractInt64 safely extracts an int64 value from a map
func ExtractInt64(data map[string]any, key string) (int, bool) {
	if v, ok := data[key].(int64); ok {
		return int(v), true
	}
	return 0, false
}

// ExtractBool safely extracts a bool value from a map
func ExtractBool(data map[string]any, key string) (bool, bool) {
	if v, ok := data[key].(bool); ok {
		return v, true
	}
	return false, false
}

// ExtractString safely extracts a string value from a map
func ExtractString(data map[string]any, key string) (string, bool) {
	if v, ok := data[key].(string); ok {
		return v, true
	}
	return "", false
}
