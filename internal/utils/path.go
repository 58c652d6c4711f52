package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver provides robust path resolution for the acserve binary
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver anchored at the running
// executable's real location (symlinks resolved).
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      getConfigDir(homeDir),
	}
	log.Debugf("path resolver: exec=%s configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "acserve")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "acserve")
		}
		return filepath.Join(homeDir, ".config", "acserve")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "acserve")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "acserve")
	default:
		return filepath.Join(homeDir, ".acserve")
	}
}

// GetDataDir resolves the directory holding dictionary chunk files.
// Candidates are tried in order: the user path as given (if absolute),
// relative to the executable, relative to the working directory, then
// the common data locations.
func (pr *PathResolver) GetDataDir(userPath string) (string, error) {
	var candidates []string
	if filepath.IsAbs(userPath) {
		candidates = append(candidates, userPath)
	}
	execRelative := filepath.Join(pr.executableDir, userPath)
	candidates = append(candidates, execRelative)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userPath))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)

	for _, path := range candidates {
		if pr.isValidDataDir(path) {
			log.Debugf("found data directory: %s", path)
			return path, nil
		}
		log.Debugf("data directory candidate not valid: %s", path)
	}

	// Nothing matched; report the most likely intended path.
	return execRelative, os.ErrNotExist
}

// isValidDataDir checks if a directory contains dictionary chunk files
func (pr *PathResolver) isValidDataDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(path, "dict_*.bin"))
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// GetConfigPath returns the full path for a config file, preferring the
// platform config directory and degrading to writable fallbacks.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	if pr.ensureConfigDir(pr.configDir) {
		return filepath.Join(pr.configDir, filename), nil
	}

	fallbacks := []string{
		filepath.Join(pr.homeDir, ".acserve"),
		filepath.Join(os.TempDir(), "acserve"),
		pr.executableDir,
	}
	for _, dir := range fallbacks {
		if pr.ensureConfigDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ensureConfigDir creates the directory if needed and tests writability
func (pr *PathResolver) ensureConfigDir(dir string) bool {
	status := CheckDirStatus(dir)
	return status.Error == nil && status.Writable
}
