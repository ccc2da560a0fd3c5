// Command linus is the toolchain for the linus prefix-notation
// language: it runs scripts, hosts an interactive session, rewrites
// sources into canonical form and reports diagnostics without
// evaluating.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"linus/interpreter-go/pkg/ast"
	"linus/interpreter-go/pkg/driver"
	"linus/interpreter-go/pkg/interpreter"
	"linus/interpreter-go/pkg/log"
)

const version = "0.1.0"

// CLI is the top-level command tree.
type CLI struct {
	LogLevel  string           `default:"info" enum:"debug,info,warn,error" help:"Minimum log level"`
	LogFormat string           `default:"text" enum:"text,json" help:"Log record format"`
	Manifest  string           `default:"linus.yml" help:"Manifest file (skipped when absent)"`
	Version   kong.VersionFlag `help:"Print version and exit" short:"V"`

	Run   RunCmd   `cmd:"" default:"withargs" help:"Run a script file or the manifest entry"`
	Repl  ReplCmd  `cmd:"" help:"Start an interactive session"`
	Fmt   FmtCmd   `cmd:"" help:"Rewrite scripts in canonical form"`
	Check CheckCmd `cmd:"" help:"Parse scripts and report diagnostics without evaluating"`
}

// appEnv carries what every command needs: the logger, the manifest when
// one was found, and the output streams.
type appEnv struct {
	log      log.Logger
	manifest *driver.Manifest
	stdout   io.Writer
	stderr   io.Writer
	color    bool
}

func main() {
	if err := run(os.Exit, os.Stdout, os.Stderr, os.Args[1:]...); err != nil {
		fmt.Fprintf(os.Stderr, "linus: %v\n", err)
		os.Exit(1)
	}
}

func run(exit func(int), stdout, stderr io.Writer, args ...string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("linus"),
		kong.Description("An interpreter and toolchain for the linus prefix-notation language."),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
	)
	if err != nil {
		return err
	}
	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := log.Make(stderr,
		log.WithLevel(log.ParseLevel(cli.LogLevel)),
		log.WithFormat(log.ParseFormat(cli.LogFormat)),
	)
	manifest, err := loadManifest(cli.Manifest, logger)
	if err != nil {
		return err
	}

	return ktx.Run(&appEnv{
		log:      logger,
		manifest: manifest,
		stdout:   stdout,
		stderr:   stderr,
	})
}

// loadManifest reads the manifest when the file exists. A missing file
// is not an error: most invocations run outside a project directory.
func loadManifest(path string, logger log.Logger) (*driver.Manifest, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("no manifest", "path", path)
		return nil, nil
	}
	m, err := driver.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("manifest loaded", "name", m.Name, "path", m.Path)
	return m, nil
}

// budgetOptions layers budget flags over manifest limits: a set flag
// wins, an explicit zero meaning unbounded.
func budgetOptions(maxSteps, maxDepth *int, m *driver.Manifest) []interpreter.Option {
	var opts []interpreter.Option
	switch {
	case maxSteps != nil:
		opts = append(opts, interpreter.WithMaxSteps(*maxSteps))
	case m != nil && m.Limits.MaxSteps > 0:
		opts = append(opts, interpreter.WithMaxSteps(m.Limits.MaxSteps))
	}
	switch {
	case maxDepth != nil:
		opts = append(opts, interpreter.WithMaxDepth(*maxDepth))
	case m != nil && m.Limits.MaxDepth > 0:
		opts = append(opts, interpreter.WithMaxDepth(m.Limits.MaxDepth))
	}
	return opts
}

// printResults renders one program's outcomes: diagnostics and failed
// forms to stderr, produced values to stdout. Returns how many forms
// failed.
func printResults(env *appEnv, p *driver.Program, results []driver.FormResult) (failures int) {
	if !p.Ok() {
		for _, d := range p.FormatDiags() {
			fmt.Fprintln(env.stderr, paint(env, colorErr, d))
		}
		return len(p.Diags)
	}
	for _, r := range results {
		if r.Err != nil {
			failures++
			fmt.Fprintln(env.stderr, paint(env, colorErr, driver.FormatDiag(r.Err, p.Source, p.Path)))
			continue
		}
		fmt.Fprintln(env.stdout, paint(env, colorVal, r.Value.String()))
	}
	return failures
}

const (
	colorErr   = "\x1b[31m"
	colorVal   = "\x1b[34m"
	colorReset = "\x1b[0m"
)

func paint(env *appEnv, code, s string) string {
	if !env.color {
		return s
	}
	return code + s + colorReset
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// RunCmd evaluates a script and prints each top-level form's value.
type RunCmd struct {
	Script   string `arg:"" optional:"" help:"Script file (default: the manifest entry)" type:"path"`
	MaxSteps *int   `help:"Evaluation step budget per form (0 = unbounded)" placeholder:"N"`
	MaxDepth *int   `help:"Evaluation depth bound (0 = unbounded)" placeholder:"N"`
	Profile  string `default:"" enum:",cpu,mem,trace" help:"Write a profile to the current directory" placeholder:"MODE"`
}

func (c *RunCmd) Run(env *appEnv) error {
	path := c.Script
	if path == "" {
		if env.manifest == nil {
			return errors.New("run: no script given and no manifest found")
		}
		entry, err := env.manifest.EntryPath()
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		path = entry
	}
	if c.Profile != "" {
		defer startProfile(c.Profile).Stop()
	}

	in := interpreter.New(budgetOptions(c.MaxSteps, c.MaxDepth, env.manifest)...)
	env.log.Debug("running script", "path", path)
	p, results, err := driver.RunFile(in, path)
	if err != nil {
		return err
	}
	if !p.Ok() {
		printResults(env, p, nil)
		return fmt.Errorf("run: %s: %d syntax issue%s", path, len(p.Diags), plural(len(p.Diags)))
	}
	if failed := printResults(env, p, results); failed > 0 {
		return fmt.Errorf("run: %d form%s failed", failed, plural(failed))
	}
	return nil
}

var profileModes = map[string]func(*profile.Profile){
	"cpu":   profile.CPUProfile,
	"mem":   profile.MemProfile,
	"trace": profile.TraceProfile,
}

type noProfile struct{}

func (noProfile) Stop() {}

func startProfile(mode string) interface{ Stop() } {
	fn, ok := profileModes[mode]
	if !ok {
		return noProfile{}
	}
	return profile.Start(fn, profile.ProfilePath("."))
}

// FmtCmd rewrites scripts into the canonical parenthesized form.
type FmtCmd struct {
	Write bool     `short:"w" help:"Rewrite files in place instead of printing"`
	Check bool     `help:"Exit nonzero when a file is not in canonical form"`
	Files []string `arg:"" optional:"" help:"Script files (default: the manifest entry)" type:"existingfile"`
}

func (c *FmtCmd) Run(env *appEnv) error {
	files, err := scriptTargets(c.Files, env)
	if err != nil {
		return fmt.Errorf("fmt: %w", err)
	}
	var dirty []string
	for _, path := range files {
		p, err := driver.LoadFile(path)
		if err != nil {
			return err
		}
		if !p.Ok() {
			printResults(env, p, nil)
			return fmt.Errorf("fmt: %s has syntax errors", path)
		}
		canonical := ast.UnparseProgram(p.Forms)
		switch {
		case c.Check:
			if canonical != p.Source {
				dirty = append(dirty, path)
				fmt.Fprintln(env.stdout, path)
			}
		case c.Write:
			if canonical == p.Source {
				continue
			}
			if err := os.WriteFile(path, []byte(canonical), 0o644); err != nil {
				return fmt.Errorf("fmt: write %s: %w", path, err)
			}
			env.log.Info("rewrote", "path", path)
		default:
			fmt.Fprint(env.stdout, canonical)
		}
	}
	if len(dirty) > 0 {
		return fmt.Errorf("fmt: %d file%s not in canonical form", len(dirty), plural(len(dirty)))
	}
	return nil
}

// CheckCmd parses scripts and reports every diagnostic with its snippet.
type CheckCmd struct {
	Files []string `arg:"" optional:"" help:"Script files (default: the manifest entry)" type:"existingfile"`
}

func (c *CheckCmd) Run(env *appEnv) error {
	files, err := scriptTargets(c.Files, env)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	total := 0
	for _, path := range files {
		p, err := driver.LoadFile(path)
		if err != nil {
			return err
		}
		total += len(p.Diags)
		printResults(env, p, nil)
		env.log.Debug("checked", "path", path, "forms", len(p.Forms), "issues", len(p.Diags))
	}
	if total > 0 {
		return fmt.Errorf("check: %d issue%s", total, plural(total))
	}
	return nil
}

func scriptTargets(args []string, env *appEnv) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if env.manifest == nil {
		return nil, errors.New("no files given and no manifest found")
	}
	entry, err := env.manifest.EntryPath()
	if err != nil {
		return nil, err
	}
	return []string{entry}, nil
}
