package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult represents the result of dir checks
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists simply checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// SaveTOMLFile saves a struct to a TOML file
func SaveTOMLFile(data interface{}, path string) error {
	file, err := os.Create(path)
	if err != nil {
		log.Errorf("failed to create %s: %v", path, err)
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(data)
}

// GetAbsolutePath returns the absolute path of a file
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

// CheckDirStatus tests if a directory exists or can be created, and
// whether it is writable.
func CheckDirStatus(path string) DirCheckResult {
	result := DirCheckResult{}
	if _, err := os.Stat(path); err == nil {
		result.Exists = true
		result.Writable = testWriteAccess(path)
		return result
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		result.Error = err
		log.Warnf("cannot create directory %s: %v", path, err)
		return result
	}
	result.Exists = true
	result.Writable = testWriteAccess(path)
	return result
}

func testWriteAccess(path string) bool {
	probe := filepath.Join(path, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		log.Warnf("cannot write to directory %s: %v", path, err)
		return false
	}
	file.Close()
	os.Remove(probe)
	return true
}
