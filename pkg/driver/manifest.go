package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file name commands look for by default.
const ManifestName = "linus.yml"

// Manifest represents the parsed contents of linus.yml.
type Manifest struct {
	Path    string
	Name    string
	Version string
	Entry   string
	Limits  Limits
	REPL    REPLConfig
}

// Limits carries the evaluation budgets a manifest may set. Zero means
// unset, leaving the interpreter defaults in force.
type Limits struct {
	MaxSteps int
	MaxDepth int
}

// REPLConfig carries the interactive-session settings.
type REPLConfig struct {
	History string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var ErrNoEntry = errors.New("manifest: no entry defined")

// LoadManifest parses linus.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// EntryPath resolves the entry script against the manifest's directory.
func (m *Manifest) EntryPath() (string, error) {
	if m == nil || m.Entry == "" {
		return "", ErrNoEntry
	}
	if filepath.IsAbs(m.Entry) {
		return m.Entry, nil
	}
	return filepath.Join(filepath.Dir(m.Path), m.Entry), nil
}

// HistoryPath resolves the REPL history file against the manifest's
// directory. Empty when the manifest does not set one.
func (m *Manifest) HistoryPath() string {
	if m == nil || m.REPL.History == "" {
		return ""
	}
	if filepath.IsAbs(m.REPL.History) {
		return m.REPL.History
	}
	return filepath.Join(filepath.Dir(m.Path), m.REPL.History)
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version != "" && !versionPattern.MatchString(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("version %q is not a plain version number", m.Version))
	}
	if m.Limits.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, "limits.max-steps must not be negative")
	}
	if m.Limits.MaxDepth < 0 {
		errs.Issues = append(errs.Issues, "limits.max-depth must not be negative")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}([\-+][0-9A-Za-z\-\.]+)?$`)

type manifestFile struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Entry   string `yaml:"entry"`
	Limits  struct {
		MaxSteps int `yaml:"max-steps"`
		MaxDepth int `yaml:"max-depth"`
	} `yaml:"limits"`
	REPL struct {
		History string `yaml:"history"`
	} `yaml:"repl"`
}

func (mf manifestFile) toManifest(path string) *Manifest {
	return &Manifest{
		Path:    path,
		Name:    strings.TrimSpace(mf.Name),
		Version: strings.TrimSpace(mf.Version),
		Entry:   strings.TrimSpace(mf.Entry),
		Limits: Limits{
			MaxSteps: mf.Limits.MaxSteps,
			MaxDepth: mf.Limits.MaxDepth,
		},
		REPL: REPLConfig{
			History: strings.TrimSpace(mf.REPL.History),
		},
	}
}
