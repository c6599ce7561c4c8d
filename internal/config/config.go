// Package config handles global settings and the on-disk project layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/file-citas/zotgraph/internal/storage"
)

const (
	FilterFile = "filter.yml"
	NodesFile  = "nodes.jsonl"

	// DefaultDistance is the expansion distance recorded for new projects.
	DefaultDistance = 100
)

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "zathura", "evince", "okular"}

var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidProject  = errors.New("invalid project name")
)

// Filter is the per-project admission filter stored in filter.yml.
type Filter struct {
	// Year rejects papers published before it. 0 disables the check.
	Year int `yaml:"year"`
	// Cit rejects papers cited more often than it. 0 disables the check.
	Cit int `yaml:"cit"`
	// Dist is the expansion distance. It is recorded but not enforced.
	Dist int `yaml:"dist"`
}

// Rejects reports whether a paper with the given year and citation count
// fails the filter. hasYear is false when the year is unknown; a negative
// count means the count is unknown.
func (f Filter) Rejects(year int, hasYear bool, ncit int) bool {
	if f.Year > 0 && hasYear && year < f.Year {
		return true
	}
	if f.Cit > 0 && ncit > f.Cit {
		return true
	}
	return false
}

// Project is one named graph under the projects directory.
type Project struct {
	Name string
	Dir  string
}

// ValidateProjectName rejects names that are empty or would escape the
// projects directory.
func ValidateProjectName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidProject, name)
	}
	return nil
}

// InitProject creates a project directory with its filter file.
func InitProject(projectsDir, name string, f Filter) (*Project, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	p := &Project{Name: name, Dir: filepath.Join(projectsDir, name)}
	if _, err := os.Stat(p.Dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, name)
	}
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	if f.Dist == 0 {
		f.Dist = DefaultDistance
	}
	if err := SaveFilter(p.FilterPath(), f); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenProject returns an existing project.
func OpenProject(projectsDir, name string) (*Project, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	p := &Project{Name: name, Dir: filepath.Join(projectsDir, name)}
	info, err := os.Stat(p.Dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return p, nil
}

// ListProjects returns the sorted project names under projectsDir. A
// missing directory has no projects.
func ListProjects(projectsDir string) ([]string, error) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (p *Project) FilterPath() string    { return filepath.Join(p.Dir, FilterFile) }
func (p *Project) NodesPath() string     { return filepath.Join(p.Dir, NodesFile) }
func (p *Project) EdgesPath() string     { return filepath.Join(p.Dir, storage.EdgesFile) }
func (p *Project) ExclusionPath() string { return filepath.Join(p.Dir, storage.FilterFile) }

// Filter loads the project's filter. A missing file yields the zero filter.
func (p *Project) Filter() (Filter, error) {
	return LoadFilter(p.FilterPath())
}

// LoadFilter reads a filter file. A missing file yields the zero filter.
func LoadFilter(path string) (Filter, error) {
	var f Filter
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, fmt.Errorf("reading filter: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing filter %s: %w", path, err)
	}
	return f, nil
}

// SaveFilter writes a filter file.
func SaveFilter(path string, f Filter) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding filter: %w", err)
	}
	if err := storage.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("writing filter: %w", err)
	}
	return nil
}

// ValidatePDFRoot checks that the PDF root path exists and is a directory.
func ValidatePDFRoot(path string) error {
	if path == "" {
		return nil
	}
	expanded := ExpandPath(path)
	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expanded)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expanded)
	}
	return nil
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // defaults to "system"
	}
	for _, valid := range ValidReaders {
		if reader == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
