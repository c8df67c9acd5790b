package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	*cli
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCLI(stdin string) *testCLI {
	var stdout, stderr bytes.Buffer
	c := newCLI(strings.NewReader(stdin), &stdout, &stderr)
	c.getenv = func(key string) string {
		if key == backendEnv {
			return backendMock
		}
		return ""
	}
	return &testCLI{cli: c, stdout: &stdout, stderr: &stderr}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUsage(t *testing.T) {
	c := newTestCLI("")
	assert.Equal(t, 2, c.run(nil))
	assert.Contains(t, c.stderr.String(), "usage: jsc-go")

	c = newTestCLI("")
	assert.Equal(t, 2, c.run([]string{"frobnicate"}))
	assert.Contains(t, c.stderr.String(), `unknown command "frobnicate"`)
}

func TestVersion(t *testing.T) {
	c := newTestCLI("")
	require.Equal(t, 0, c.run([]string{"version"}))
	assert.Contains(t, c.stdout.String(), "jsc-go v0.0.0-in-progress")
	assert.Contains(t, c.stdout.String(), "native backend:")
}

func TestEvalExpression(t *testing.T) {
	c := newTestCLI("")
	require.Equal(t, 0, c.run([]string{"eval", "-e", "1 + 2"}), c.stderr.String())
	assert.Equal(t, "3\n", c.stdout.String())
}

func TestEvalJSON(t *testing.T) {
	c := newTestCLI("")
	require.Equal(t, 0, c.run([]string{"eval", "-json", "-e", "({a: [1, 2]})"}), c.stderr.String())
	assert.Contains(t, c.stdout.String(), "\"a\": [\n")

	c = newTestCLI("")
	require.Equal(t, 0, c.run([]string{"eval", "-json", "-e", "undefined"}), c.stderr.String())
	assert.Equal(t, "undefined\n", c.stdout.String())
}

func TestEvalException(t *testing.T) {
	c := newTestCLI("")
	assert.Equal(t, 1, c.run([]string{"eval", "-e", "throw new Error('boom')"}))
	assert.Contains(t, c.stderr.String(), "Uncaught Error: boom")
	assert.Empty(t, c.stdout.String())
}

func TestEvalFile(t *testing.T) {
	path := writeFile(t, "sum.js", "var total = 0;\nfor (var i = 1; i <= 4; i++) total += i;\ntotal")
	c := newTestCLI("")
	require.Equal(t, 0, c.run([]string{"eval", path}), c.stderr.String())
	assert.Equal(t, "10\n", c.stdout.String())
}

func TestEvalTypeScript(t *testing.T) {
	c := newTestCLI("")
	require.Equal(t, 0, c.run([]string{"eval", "-loader", "ts", "-e", "const x: number = 2; x * 21"}), c.stderr.String())
	assert.Equal(t, "42\n", c.stdout.String())

	path := writeFile(t, "typed.ts", "function greet(name: string): string { return 'hi ' + name }\ngreet('ts')")
	c = newTestCLI("")
	require.Equal(t, 0, c.run([]string{"eval", path}), c.stderr.String())
	assert.Equal(t, "hi ts\n", c.stdout.String())
}

func TestEvalTranspileError(t *testing.T) {
	c := newTestCLI("")
	assert.Equal(t, 1, c.run([]string{"eval", "-loader", "ts", "-e", "let x: = 1"}))
	assert.Contains(t, c.stderr.String(), "transpile:")
}

func TestEvalUsageErrors(t *testing.T) {
	c := newTestCLI("")
	assert.Equal(t, 2, c.run([]string{"eval"}))
	assert.Contains(t, c.stderr.String(), errNoSource.Error())

	c = newTestCLI("")
	assert.Equal(t, 2, c.run([]string{"eval", "-backend", "v8", "-e", "1"}))
	assert.Contains(t, c.stderr.String(), `unknown backend "v8"`)
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.js", "function f() { return 1 }")
	c := newTestCLI("")
	require.Equal(t, 0, c.run([]string{"check", good}), c.stderr.String())
	assert.Contains(t, c.stdout.String(), "good.js: ok")

	bad := writeFile(t, "bad.js", "function (")
	c = newTestCLI("")
	assert.Equal(t, 1, c.run([]string{"check", bad}))
	assert.Contains(t, c.stderr.String(), "SyntaxError")

	// Checking does not run the script.
	throws := writeFile(t, "throws.js", "throw new Error('never')")
	c = newTestCLI("")
	assert.Equal(t, 0, c.run([]string{"check", throws}))
}

func TestREPL(t *testing.T) {
	c := newTestCLI("var x = 20\nx + 1\n'a' + 'b'\n.gc\nundefinedName\n.help\nx * 2\n.exit\nx\n")
	require.Equal(t, 0, c.run([]string{"repl"}))

	out := c.stdout.String()
	assert.Contains(t, out, "21\n")
	assert.Contains(t, out, "\"ab\"\n")
	assert.Contains(t, out, "Uncaught ReferenceError")
	assert.Contains(t, out, ".gc")
	assert.Contains(t, out, "40\n")
	assert.Equal(t, 1, strings.Count(out, "40\n"), "lines after .exit are not read")
}

func fakeRunner(outputs map[string]string, fail error) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if fail != nil {
			return []byte("Package javascriptcoregtk-4.1 was not found"), fail
		}
		return []byte(outputs[args[0]]), nil
	}
}

func TestDoctorLinux(t *testing.T) {
	c := newTestCLI("")
	c.goos = "linux"
	c.distros = func() []string { return []string{"ubuntu", "debian"} }
	c.runner = fakeRunner(map[string]string{
		"--modversion": "2.44.0\n",
		"--libs":       "-ljavascriptcoregtk-4.1 -lglib-2.0\n",
	}, nil)

	require.Equal(t, 0, c.run([]string{"doctor"}), c.stdout.String())
	out := c.stdout.String()
	assert.Contains(t, out, "table:   debian")
	assert.Contains(t, out, "module:  javascriptcoregtk-4.1 2.44.0")
	assert.Contains(t, out, "-ljavascriptcoregtk-4.1 -lglib-2.0")
}

func TestDoctorMissingPackage(t *testing.T) {
	c := newTestCLI("")
	c.goos = "linux"
	c.distros = func() []string { return []string{"fedora"} }
	c.runner = fakeRunner(nil, errors.New("exit status 1"))

	assert.Equal(t, 1, c.run([]string{"doctor"}))
	out := c.stdout.String()
	assert.Contains(t, out, "sudo dnf install javascriptcoregtk4.1-devel")
	assert.Contains(t, out, "was not found")
}

func TestDoctorDarwin(t *testing.T) {
	c := newTestCLI("")
	c.goos = "darwin"
	c.runner = fakeRunner(nil, errors.New("pkg-config must not run"))

	require.Equal(t, 0, c.run([]string{"doctor"}), c.stdout.String())
	assert.Contains(t, c.stdout.String(), "-framework JavaScriptCore")
}

func TestDoctorUnsupported(t *testing.T) {
	c := newTestCLI("")
	c.goos = "plan9"
	assert.Equal(t, 1, c.run([]string{"doctor"}))
	assert.Contains(t, c.stdout.String(), "no JavaScriptCore linkage")
}

func TestDoctorCustomTable(t *testing.T) {
	table := writeFile(t, "platforms.yaml", `platforms:
  - name: custom
    goos: linux
    modules:
      - pkg_config: javascriptcoregtk-6.0
        install: build it yourself
`)
	c := newTestCLI("")
	c.goos = "linux"
	c.distros = func() []string { return nil }
	c.runner = fakeRunner(map[string]string{"--modversion": "2.46.0", "--libs": "-ljavascriptcoregtk-6.0"}, nil)

	require.Equal(t, 0, c.run([]string{"doctor", "-table", table}), c.stdout.String())
	assert.Contains(t, c.stdout.String(), "module:  javascriptcoregtk-6.0 2.46.0")
}
