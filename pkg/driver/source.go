// Package driver turns source text into evaluated results: it reads
// script files, runs the front end over them, feeds clean parses to an
// interpreter and renders diagnostics for display. Commands sit on top
// of it; the language packages below it stay free of I/O.
package driver

import (
	"fmt"
	"os"

	"linus/interpreter-go/pkg/ast"
	"linus/interpreter-go/pkg/interpreter"
	"linus/interpreter-go/pkg/parser"
	"linus/interpreter-go/pkg/runtime"
)

// Program is one parsed source unit, ready to evaluate.
type Program struct {
	Path   string // empty for sources not backed by a file
	Source string
	Forms  []ast.Expression
	Diags  []error
}

// Ok reports whether parsing produced no diagnostics.
func (p *Program) Ok() bool { return len(p.Diags) == 0 }

// FormatDiags renders every diagnostic with its source snippet.
func (p *Program) FormatDiags() []string {
	out := make([]string, len(p.Diags))
	for i, d := range p.Diags {
		out[i] = FormatDiag(d, p.Source, p.Path)
	}
	return out
}

// LoadSource parses src into a Program with no backing file.
func LoadSource(src string) *Program {
	forms, diags := parser.ParseSource(src)
	return &Program{Source: src, Forms: forms, Diags: diags}
}

// LoadFile reads and parses the file at path. The returned error covers
// I/O only; syntax problems land in the Program's Diags.
func LoadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	p := LoadSource(string(data))
	p.Path = path
	return p, nil
}

// FormResult pairs one top-level form with its outcome: the value it
// produced, or the evaluation error that stopped it.
type FormResult struct {
	Form  ast.Expression
	Value runtime.Value
	Err   error
}

// Run evaluates the program's forms in order against in's global
// environment. A failing form stops that form only; an uncaught throw
// stops the whole run. A program with parse diagnostics is not
// evaluated and yields no results.
func Run(in *interpreter.Interpreter, p *Program) []FormResult {
	if !p.Ok() || len(p.Forms) == 0 {
		return nil
	}
	results := make([]FormResult, 0, len(p.Forms))
	for _, form := range p.Forms {
		val, err := in.EvaluateForm(form)
		if err != nil {
			results = append(results, FormResult{Form: form, Err: err})
			if ee, ok := err.(*interpreter.EvalError); ok && ee.Kind == interpreter.UncaughtThrow {
				break
			}
			continue
		}
		results = append(results, FormResult{Form: form, Value: val})
	}
	return results
}

// RunSource parses and evaluates src in one call.
func RunSource(in *interpreter.Interpreter, src string) (*Program, []FormResult) {
	p := LoadSource(src)
	return p, Run(in, p)
}

// RunFile reads, parses and evaluates the file at path.
func RunFile(in *interpreter.Interpreter, path string) (*Program, []FormResult, error) {
	p, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return p, Run(in, p), nil
}
