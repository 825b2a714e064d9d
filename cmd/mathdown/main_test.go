package main

// Notes:
// - runMain: we test exit codes and produced files end to end with a real
//   renderer and temp directories. Stdout, stderr, and the environment are
//   injected, so tests run in parallel.
// - setLogLevel: we test the quiet/verbose mapping.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// TestRunMain - Exit codes and output
// ---------------------------------------------------------------------------

func TestRunMain_Version(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	if code := runMain([]string{"--version"}, env); code != ExitSuccess {
		t.Fatalf("runMain(--version) = %d, want %d", code, ExitSuccess)
	}
	if got := stdout.String(); got != "mathdown "+Version+"\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRunMain_Help(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv()
	if code := runMain([]string{"--help"}, env); code != ExitSuccess {
		t.Fatalf("runMain(--help) = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("help output missing usage:\n%s", stderr.String())
	}
}

func TestRunMain_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) []string
		want    int
		wantLog string
	}{
		{
			name:  "unknown flag",
			setup: func(t *testing.T, _ string) []string { return []string{"--landscape"} },
			want:  ExitUsage,
		},
		{
			name:    "no input",
			setup:   func(t *testing.T, _ string) []string { return nil },
			want:    ExitIO,
			wantLog: "hint:",
		},
		{
			name: "missing file",
			setup: func(t *testing.T, dir string) []string {
				return []string{filepath.Join(dir, "missing.md")}
			},
			want: ExitIO,
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T, dir string) []string {
				path := filepath.Join(dir, "doc.txt")
				writeFile(t, path, "text")
				return []string{path}
			},
			want: ExitUsage,
		},
		{
			name: "too many workers",
			setup: func(t *testing.T, dir string) []string {
				return []string{"-w", "99", dir}
			},
			want:    ExitUsage,
			wantLog: "between 1 and 32",
		},
		{
			name: "bad timeout",
			setup: func(t *testing.T, dir string) []string {
				return []string{"--timeout", "soon", dir}
			},
			want: ExitUsage,
		},
		{
			name: "bad toc depth",
			setup: func(t *testing.T, dir string) []string {
				path := filepath.Join(dir, "doc.md")
				writeFile(t, path, "# Doc")
				return []string{"--toc-min-depth", "4", "--toc-max-depth", "2", path}
			},
			want: ExitUsage,
		},
		{
			name: "empty markdown",
			setup: func(t *testing.T, dir string) []string {
				path := filepath.Join(dir, "empty.md")
				writeFile(t, path, "")
				return []string{path}
			},
			want: ExitUsage,
		},
		{
			name: "empty directory",
			setup: func(t *testing.T, dir string) []string {
				return []string{dir}
			},
			want: ExitIO,
		},
		{
			name: "config not found",
			setup: func(t *testing.T, dir string) []string {
				return []string{"-c", filepath.Join(dir, "nope.yaml"), dir}
			},
			want: ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv()
			args := tt.setup(t, t.TempDir())
			if code := runMain(args, env); code != tt.want {
				t.Errorf("runMain(%v) = %d, want %d\nstderr:\n%s", args, code, tt.want, stderr.String())
			}
			if tt.wantLog != "" && !strings.Contains(stderr.String(), tt.wantLog) {
				t.Errorf("stderr missing %q:\n%s", tt.wantLog, stderr.String())
			}
		})
	}
}

func TestRunMain_ConvertsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "notes.md")
	writeFile(t, in, "# Notes\n\nInline $a_1 * b_2$ and\n\n$$x \\\\\ny$$\n")

	env, stdout, _ := testEnv()
	if code := runMain([]string{"--toc", in}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", code, ExitSuccess)
	}

	out := filepath.Join(dir, "notes.html")
	if !strings.Contains(stdout.String(), "Created "+out) {
		t.Errorf("stdout = %q, want Created line", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	doc := string(data)
	for _, want := range []string{
		"<title>Notes</title>",
		"$a_1 * b_2$",
		"$$x \\\\ y$$",
		`<ul class="toc">`,
		"MathJax",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "<em>") {
		t.Errorf("math was rendered as emphasis:\n%s", doc)
	}
}

func TestRunMain_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "site")
	writeFile(t, filepath.Join(src, "a.md"), "# A\n")
	writeFile(t, filepath.Join(src, "sub", "b.md"), "# B\n")

	env, stdout, _ := testEnv()
	if code := runMain([]string{"-o", out, "-w", "2", "--no-math", src}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", code, ExitSuccess)
	}

	for _, rel := range []string{"a.html", filepath.Join("sub", "b.html")} {
		data, err := os.ReadFile(filepath.Join(out, rel))
		if err != nil {
			t.Errorf("missing output %s: %v", rel, err)
			continue
		}
		if strings.Contains(string(data), "MathJax") {
			t.Errorf("%s loads MathJax with --no-math", rel)
		}
	}
	if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout missing summary:\n%s", stdout.String())
	}
}

func TestRunMain_DirectoryWithEmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# A\n")
	writeFile(t, filepath.Join(dir, "empty.md"), "")

	env, stdout, stderr := testEnv()
	if code := runMain([]string{dir}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr:\n%s", code, ExitSuccess, stderr.String())
	}

	if _, err := os.Stat(filepath.Join(dir, "a.html")); err != nil {
		t.Errorf("missing output a.html: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "empty.html")); !os.IsNotExist(err) {
		t.Errorf("empty.html should not be written, stat error = %v", err)
	}
	if !strings.Contains(stdout.String(), "1 succeeded, 0 failed, 1 skipped") {
		t.Errorf("stdout missing summary:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "skipped empty file") {
		t.Errorf("stderr missing skip warning:\n%s", stderr.String())
	}
}

func TestRunMain_Diagnostics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "broken.md")
	writeFile(t, in, "$$a \\\\\nb\n")

	env, _, stderr := testEnv()
	if code := runMain([]string{"-q", in}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", code, ExitSuccess)
	}
	if stderr.Len() != 0 {
		t.Errorf("quiet run logged:\n%s", stderr.String())
	}

	env, _, stderr = testEnv()
	if code := runMain([]string{in}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", code, ExitSuccess)
	}
	for _, want := range []string{"level=warning", "line=2", "open_line=1"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr.String())
		}
	}
}

func TestRunMain_EnvConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(src, "doc.md"), "# Doc\n\n$x$\n")
	cfgPath := filepath.Join(dir, "mathdown.yaml")
	writeFile(t, cfgPath, "render:\n  title: From Config\n")

	env, _, stderr := testEnv()
	vars := map[string]string{
		"MATHDOWN_CONFIG":     cfgPath,
		"MATHDOWN_INPUT_DIR":  src,
		"MATHDOWN_OUTPUT_DIR": out,
		"MATHDOWN_NO_MATH":    "true",
	}
	env.Getenv = mapGetenv(vars)
	env.Environ = func() []string { return []string{"MATHDOWN_OUTPUTDIR=x"} }

	if code := runMain(nil, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr:\n%s", code, ExitSuccess, stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(out, "doc.html"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "<title>From Config</title>") {
		t.Errorf("document title not taken from config:\n%s", data)
	}
	if strings.Contains(string(data), "MathJax") {
		t.Error("MATHDOWN_NO_MATH should disable MathJax")
	}
	if !strings.Contains(stderr.String(), "MATHDOWN_OUTPUTDIR") {
		t.Errorf("unknown env var not reported:\n%s", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestSetLogLevel - Verbosity mapping
// ---------------------------------------------------------------------------

func TestSetLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		quiet   bool
		verbose bool
		want    logrus.Level
	}{
		{"default", false, false, logrus.InfoLevel},
		{"quiet", true, false, logrus.ErrorLevel},
		{"verbose", false, true, logrus.DebugLevel},
		{"quiet wins", true, true, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := logrus.New()
			setLogLevel(logger, tt.quiet, tt.verbose)
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}
