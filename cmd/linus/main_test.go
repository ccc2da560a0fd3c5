package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb bytes.Buffer
	err = run(func(int) {}, &out, &errb, args...)
	return out.String(), errb.String(), err
}

func writeScript(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommandPrintsPerFormValues(t *testing.T) {
	path := writeScript(t, "main.ln", "let x -> 2\n+ x 40\n")
	out, _, err := runCLI(t, "run", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "2\n42\n" {
		t.Errorf("stdout = %q, want %q", out, "2\n42\n")
	}
}

func TestRunIsTheDefaultCommand(t *testing.T) {
	path := writeScript(t, "main.ln", "+ 1 2\n")
	out, _, err := runCLI(t, path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "3\n" {
		t.Errorf("stdout = %q, want %q", out, "3\n")
	}
}

func TestRunReportsEvalErrorsAndContinues(t *testing.T) {
	path := writeScript(t, "main.ln", "(+ 1 true)\n+ 2 3\n")
	out, errOut, err := runCLI(t, "run", path)
	if err == nil || !strings.Contains(err.Error(), "1 form failed") {
		t.Fatalf("err = %v, want one failed form", err)
	}
	if out != "5\n" {
		t.Errorf("stdout = %q, want %q", out, "5\n")
	}
	if !strings.Contains(errOut, "eval error") {
		t.Errorf("stderr = %q, want an eval error", errOut)
	}
}

func TestRunReportsSyntaxIssuesWithSnippets(t *testing.T) {
	path := writeScript(t, "main.ln", "(+ 1")
	out, errOut, err := runCLI(t, "run", path)
	if err == nil || !strings.Contains(err.Error(), "1 syntax issue") {
		t.Fatalf("err = %v, want a syntax issue count", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	if !strings.Contains(errOut, "parse error") || !strings.Contains(errOut, "^") {
		t.Errorf("stderr = %q, want a parse error with caret", errOut)
	}
}

func TestRunUsesManifestEntry(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "linus.yml")
	if err := os.WriteFile(manifest, []byte("name: demo\nentry: main.ln\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.ln"), []byte("+ 20 22\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, "--manifest", manifest, "run")
	if err != nil {
		t.Fatal(err)
	}
	if out != "42\n" {
		t.Errorf("stdout = %q, want %q", out, "42\n")
	}
}

func TestManifestLimitsApplyAndFlagsWin(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "linus.yml")
	contents := "name: demo\nentry: main.ln\nlimits:\n  max-steps: 3\n"
	if err := os.WriteFile(manifest, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.ln"), []byte("(+ 1 (+ 2 (+ 3 4)))\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, errOut, err := runCLI(t, "--manifest", manifest, "run")
	if err == nil || !strings.Contains(err.Error(), "1 form failed") {
		t.Fatalf("err = %v, want a failed form under the manifest budget", err)
	}
	if !strings.Contains(errOut, "exceeded 3 steps") {
		t.Errorf("stderr = %q, want the step budget error", errOut)
	}

	out, _, err := runCLI(t, "--manifest", manifest, "run", "--max-steps", "0")
	if err != nil {
		t.Fatal(err)
	}
	if out != "10\n" {
		t.Errorf("stdout = %q, want %q", out, "10\n")
	}
}

func TestRunWithoutScriptOrManifest(t *testing.T) {
	_, _, err := runCLI(t, "--manifest", filepath.Join(t.TempDir(), "linus.yml"), "run")
	if err == nil || !strings.Contains(err.Error(), "no manifest found") {
		t.Errorf("err = %v, want missing-input error", err)
	}
}

func TestCheckCommand(t *testing.T) {
	good := writeScript(t, "good.ln", "+ 1 2\n")
	if _, errOut, err := runCLI(t, "check", good); err != nil || errOut != "" {
		t.Errorf("clean file: err=%v stderr=%q", err, errOut)
	}

	bad := writeScript(t, "bad.ln", "(+ 1")
	_, errOut, err := runCLI(t, "check", bad)
	if err == nil || !strings.Contains(err.Error(), "1 issue") {
		t.Fatalf("err = %v, want an issue count", err)
	}
	if !strings.Contains(errOut, "parse error") {
		t.Errorf("stderr = %q, want a parse error", errOut)
	}
}

func TestFmtPrintsCanonicalForm(t *testing.T) {
	path := writeScript(t, "main.ln", "+ 1   2\n")
	out, _, err := runCLI(t, "fmt", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "(+ 1 2)\n" {
		t.Errorf("stdout = %q, want %q", out, "(+ 1 2)\n")
	}
}

func TestFmtWriteRewritesInPlace(t *testing.T) {
	path := writeScript(t, "main.ln", "do\n    + 1 2\n")
	if _, _, err := runCLI(t, "fmt", "-w", path); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "(do (+ 1 2))\n" {
		t.Errorf("rewritten = %q, want %q", got, "(do (+ 1 2))\n")
	}

	// A second pass leaves the canonical file alone.
	if _, _, err := runCLI(t, "fmt", "-w", path); err != nil {
		t.Fatal(err)
	}
	again, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(got) {
		t.Errorf("second pass changed the file: %q", again)
	}
}

func TestFmtCheckFlagsDirtyFiles(t *testing.T) {
	dirty := writeScript(t, "main.ln", "+ 1   2\n")
	out, _, err := runCLI(t, "fmt", "--check", dirty)
	if err == nil || !strings.Contains(err.Error(), "not in canonical form") {
		t.Fatalf("err = %v, want a dirty-file error", err)
	}
	if !strings.Contains(out, dirty) {
		t.Errorf("stdout = %q, want the dirty path listed", out)
	}

	clean := writeScript(t, "main.ln", "(+ 1 2)\n")
	if _, _, err := runCLI(t, "fmt", "--check", clean); err != nil {
		t.Errorf("clean file flagged: %v", err)
	}
}

func TestFmtRefusesBrokenSources(t *testing.T) {
	path := writeScript(t, "main.ln", "(+ 1")
	_, errOut, err := runCLI(t, "fmt", path)
	if err == nil || !strings.Contains(err.Error(), "syntax errors") {
		t.Fatalf("err = %v, want a syntax-error refusal", err)
	}
	if !strings.Contains(errOut, "parse error") {
		t.Errorf("stderr = %q, want the diagnostic", errOut)
	}
}
