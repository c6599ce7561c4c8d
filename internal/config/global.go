package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/zotgraph/config.yml.
type GlobalConfig struct {
	S2APIKey string `yaml:"s2_api_key,omitempty"`

	ZoteroLibraryID   string `yaml:"zotero_library_id,omitempty"`
	ZoteroLibraryType string `yaml:"zotero_library_type,omitempty"`
	ZoteroAPIKey      string `yaml:"zotero_api_key,omitempty"`
	LibraryCSV        string `yaml:"library_csv,omitempty"`

	NodeCacheDir    string `yaml:"node_cache_dir,omitempty"`
	ExtractCacheDir string `yaml:"extract_cache_dir,omitempty"`
	ExtractAPIKey   string `yaml:"extract_api_key,omitempty"`
	AliasesFile     string `yaml:"aliases_file,omitempty"`
	ProjectsDir     string `yaml:"projects_dir,omitempty"`

	MatchThreshold int `yaml:"match_threshold,omitempty"`
	TitleFloor     int `yaml:"title_floor,omitempty"`
	MinTitleLen    int `yaml:"min_title_len,omitempty"`

	PDFRoot   string `yaml:"pdf_root,omitempty"`
	PDFReader string `yaml:"pdf_reader,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME and
	// XDG_DATA_HOME.
	GlobalConfigDir = "zotgraph"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	DefaultMatchThreshold = 65
	DefaultMinTitleLen    = 4
	DefaultLibraryType    = "user"
)

// ErrLibraryNotConfigured is returned when library_csv is not set.
var ErrLibraryNotConfigured = errors.New("library_csv not configured")

var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/zotgraph/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// DataDir returns the default directory for caches and projects.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/zotgraph.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return GlobalConfigDir
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, GlobalConfigDir)
}

// LoadGlobalConfig loads the global configuration file, fills defaults and
// applies environment overrides. A missing file is not an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

func (c *GlobalConfig) applyDefaults() {
	data := DataDir()
	if c.NodeCacheDir == "" {
		c.NodeCacheDir = filepath.Join(data, "nodes")
	}
	if c.ExtractCacheDir == "" {
		c.ExtractCacheDir = filepath.Join(data, "extract")
	}
	if c.ProjectsDir == "" {
		c.ProjectsDir = filepath.Join(data, "projects")
	}
	if c.ZoteroLibraryType == "" {
		c.ZoteroLibraryType = DefaultLibraryType
	}
	if c.MatchThreshold == 0 {
		c.MatchThreshold = DefaultMatchThreshold
	}
	if c.MinTitleLen == 0 {
		c.MinTitleLen = DefaultMinTitleLen
	}
	for _, p := range []*string{&c.LibraryCSV, &c.NodeCacheDir, &c.ExtractCacheDir, &c.AliasesFile, &c.ProjectsDir, &c.PDFRoot} {
		*p = ExpandPath(*p)
	}
}

func (c *GlobalConfig) applyEnv() {
	for env, dst := range map[string]*string{
		"S2_API_KEY":      &c.S2APIKey,
		"ZOTERO_API_KEY":  &c.ZoteroAPIKey,
		"EXTRACT_API_KEY": &c.ExtractAPIKey,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// ValidateLibrary returns the library CSV path after checking it is set
// and exists.
func (c *GlobalConfig) ValidateLibrary() (string, error) {
	if c.LibraryCSV == "" {
		return "", ErrLibraryNotConfigured
	}
	if _, err := os.Stat(c.LibraryCSV); err != nil {
		return "", fmt.Errorf("library_csv: %w", err)
	}
	return c.LibraryCSV, nil
}

// HasZoteroAPI reports whether the Zotero web API is configured.
func (c *GlobalConfig) HasZoteroAPI() bool {
	return c.ZoteroLibraryID != "" && c.ZoteroAPIKey != ""
}

// HelpfulConfigMessage returns a hint for setting up the global config.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No Zotero library export configured.

Tip: Create %s to point at your library:
  mkdir -p %s
  echo 'library_csv: /path/to/library.csv' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
