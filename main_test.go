package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const method = ".method public static answer ()I {\n  code: {\n    bipush 42\n    ireturn\n  }\n}\n"

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return runInput(t, nil, args...)
}

func runInput(t *testing.T, stdin []byte, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, bytes.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func projectFile(t *testing.T, dir string, text string) string {
	t.Helper()
	path := filepath.Join(dir, "jasm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want int
	}{
		{name: "no command", args: nil, want: exitUsage},
		{name: "unknown command", args: []string{"link"}, want: exitUsage},
		{name: "help", args: []string{"help"}, want: exitOK},
		{name: "unknown flag", args: []string{"compile", "--nope", "a.jasm"}, want: exitUsage},
		{name: "compile without input", args: []string{"compile"}, want: exitUsage},
		{name: "decompile without input", args: []string{"decompile"}, want: exitUsage},
		{name: "decompile two inputs", args: []string{"decompile", "a", "b"}, want: exitUsage},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			code, _, _ := runArgs(t, testCase.args...)
			require.Equal(t, testCase.want, code)
		})
	}
}

func TestRunCompileAndDecompile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := projectFile(t, dir, "indent: \"\\t\"\n")
	src := filepath.Join(dir, "Answer.jasm")
	require.NoError(t, os.WriteFile(src, []byte(method), 0o600))
	out := filepath.Join(dir, "out")

	code, _, stderr := runArgs(t, "compile", "--config", cfg, "--output", out, src)
	require.Equal(t, exitOK, code, stderr)
	image := filepath.Join(out, "Answer.jimg")
	require.FileExists(t, image)

	code, stdout, stderr := runArgs(t, "decompile", "--config", cfg, image)
	require.Equal(t, exitOK, code, stderr)
	require.Equal(t, ".method public static answer ()I {\n\tcode: {\n\t\tbipush 42\n\t\tireturn\n\t}\n}\n", stdout)

	text := filepath.Join(dir, "answer.txt")
	code, _, stderr = runArgs(t, "decompile", "--config", cfg, "--indent", "    ", "--output", text, image)
	require.Equal(t, exitOK, code, stderr)
	b, err := os.ReadFile(text)
	require.NoError(t, err)
	require.Contains(t, string(b), "\n        bipush 42\n")
}

func TestRunCompileFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := projectFile(t, dir, "")

	code, _, stderr := runArgs(t, "compile", "--config", cfg, "--output", "-", "--source", ".method static m ()V {\n  code: {\n    frob\n  }\n}")
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "source.jasm:3:5 -- J0030: unknown instruction frob")

	code, _, stderr = runArgs(t, "compile", "--config", cfg, "--target", "dalvik", "--output", "-", "--source", method)
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "unsupported target dalvik")

	code, _, stderr = runArgs(t, "compile", "--config", cfg, "--version", "12", "--source", method)
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "J0055")

	code, _, _ = runArgs(t, "decompile", "--config", cfg, filepath.Join(dir, "missing.class"))
	require.Equal(t, exitError, code)
}

func TestRunCompileToStdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := projectFile(t, dir, "warnings-as-errors: false\n")
	code, stdout, stderr := runArgs(t, "compile", "--config", cfg, "--output", "-", "--source", method)
	require.Equal(t, exitOK, code, stderr)
	require.True(t, bytes.HasPrefix([]byte(stdout), []byte("JIMG")), stdout)

	code, text, stderr := runInput(t, []byte(stdout), "decompile", "--config", cfg, "-")
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, text, "    bipush 42\n")
}

func TestImageName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "A.jimg", imageName("/src/p/A.jasm"))
	require.Equal(t, "source.jimg", imageName("source.jasm"))
	require.Equal(t, "B.jimg", imageName("B"))
}

func TestRunCompileDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := projectFile(t, dir, "")
	src := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(src, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "Answer.jasm"), []byte(method), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "Old.class"), []byte{0xCA, 0xFE, 0xBA, 0xBE}, 0o600))
	out := filepath.Join(dir, "out")

	code, _, stderr := runArgs(t, "compile", "--config", cfg, "--output", out, src)
	require.Equal(t, exitOK, code, stderr)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Answer.jimg", entries[0].Name())
}
