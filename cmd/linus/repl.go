package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sahilm/fuzzy"

	"linus/interpreter-go/pkg/driver"
	"linus/interpreter-go/pkg/interpreter"
	"linus/interpreter-go/pkg/lexer"
	"linus/interpreter-go/pkg/parser"
)

const (
	promptMain = ">> "
	promptCont = " . "

	replHelp = `commands:
  :help           show this help
  :load <file>    evaluate a file in the current session
  :reset          start a fresh interpreter
  :quit, :exit    leave the session (ctrl-d also works)
`
)

var replCommands = []string{":exit", ":help", ":load", ":quit", ":reset"}

// ReplCmd hosts an interactive session: persistent interpreter,
// multi-line input driven by the parser's incompleteness probe, fuzzy
// completion and a history file.
type ReplCmd struct {
	History  string `help:"History file (default: manifest repl.history or ~/.linus_history)" type:"path"`
	MaxSteps *int   `help:"Evaluation step budget per form (0 = unbounded)" placeholder:"N"`
	MaxDepth *int   `help:"Evaluation depth bound (0 = unbounded)" placeholder:"N"`
}

func (c *ReplCmd) Run(env *appEnv) error {
	env.color = true
	opts := budgetOptions(c.MaxSteps, c.MaxDepth, env.manifest)
	in := interpreter.New(opts...)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		return completions(line, in.GlobalKeys())
	})

	histPath := c.historyPath(env)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	fmt.Fprintf(env.stdout, "linus %s (ctrl-d to exit, :help for commands)\n", version)

	for {
		src, ok := readForm(ln)
		if !ok {
			fmt.Fprintln(env.stdout)
			break
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(env, in, opts, trimmed); quit {
				break
			}
			ln.AppendHistory(trimmed)
			continue
		}
		p, results := driver.RunSource(in, src)
		printResults(env, p, results)
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		} else {
			env.log.Warn("history not saved", "path", histPath, "error", err)
		}
	}
	return nil
}

func (c *ReplCmd) historyPath(env *appEnv) string {
	if c.History != "" {
		return c.History
	}
	if p := env.manifest.HistoryPath(); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".linus_history")
}

func replCommand(env *appEnv, in *interpreter.Interpreter, opts []interpreter.Option, line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprint(env.stdout, replHelp)
	case ":quit", ":exit":
		return true
	case ":reset":
		*in = *interpreter.New(opts...)
		fmt.Fprintln(env.stdout, "session reset")
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(env.stderr, "usage: :load <file>")
			return false
		}
		p, results, err := driver.RunFile(in, fields[1])
		if err != nil {
			fmt.Fprintln(env.stderr, paint(env, colorErr, err.Error()))
			return false
		}
		printResults(env, p, results)
	default:
		fmt.Fprintf(env.stderr, "unknown command %s (:help lists commands)\n", fields[0])
	}
	return false
}

// readForm accumulates input lines until the front end stops reporting
// the buffer as incomplete. ok is false when the user ends the session.
func readForm(ln *liner.State) (src string, ok bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true // ctrl-c drops the buffer, session continues
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src = b.String()
		if strings.TrimSpace(src) == "" {
			return "", true
		}
		if incompleteSource(src) {
			continue
		}
		return src, true
	}
}

// incompleteSource reports whether src is a prefix of something well
// formed: the lexer is clean and every parse diagnostic points at end
// of input.
func incompleteSource(src string) bool {
	toks, lexErrs := lexer.Tokenize(src)
	if len(lexErrs) > 0 {
		return false
	}
	_, errs := parser.Parse(lexer.Resolve(toks))
	return parser.IsIncomplete(errs)
}

// completions offers candidates for the word being typed at the end of
// the line, ranked by fuzzy match quality. Lines starting a session
// command complete against the command names instead.
func completions(line string, globals []string) []string {
	if strings.HasPrefix(line, ":") && !strings.Contains(line, " ") {
		var out []string
		for _, c := range replCommands {
			if strings.HasPrefix(c, line) {
				out = append(out, c)
			}
		}
		return out
	}
	head, word := splitLastWord(line)
	if word == "" {
		return nil
	}
	candidates := append([]string{"true", "false", "none"}, lexer.Keywords()...)
	candidates = append(candidates, globals...)
	var out []string
	for _, m := range fuzzy.Find(word, candidates) {
		out = append(out, head+m.Str)
	}
	return out
}

func splitLastWord(line string) (head, word string) {
	i := strings.LastIndexAny(line, " \t($")
	if i < 0 {
		return "", line
	}
	return line[:i+1], line[i+1:]
}
