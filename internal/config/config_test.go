package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/exc"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		text    string
		want    Config
		wantErr bool
	}{
		{
			name: "empty",
			text: "",
			want: Default(),
		},
		{
			name: "every key",
			text: "target: dalvik\nversion: 52\nindent: \"\\t\"\nlibraries:\n  - lib\n  - /opt/classes\nconcurrency: 4\nframes: true\nwarnings-as-errors: true\n",
			want: Config{
				Target:           "dalvik",
				Version:          52,
				Indent:           "\t",
				Libraries:        []string{"lib", "/opt/classes"},
				Concurrency:      4,
				Frames:           true,
				WarningsAsErrors: true,
			},
		},
		{
			name: "partial keeps defaults",
			text: "frames: true\n",
			want: Config{Target: "jvm", Version: 61, Indent: "  ", Frames: true},
		},
		{name: "unknown key", text: "targte: jvm\n", wantErr: true},
		{name: "unknown target", text: "target: clr\n", wantErr: true},
		{name: "old version", text: "version: 12\n", wantErr: true},
		{name: "negative concurrency", text: "concurrency: -1\n", wantErr: true},
		{name: "not yaml", text: "target: [\n", wantErr: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse([]byte(testCase.text))
			if testCase.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.want, got)
		})
	}
}

func TestValidateCodes(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Target = "clr"
	err := cfg.Validate()
	require.Error(t, err)
	e, ok := err.(exc.Exception)
	require.True(t, ok)
	require.Equal(t, exc.CodeUnsupportedTarget, e.Code())

	cfg = Default()
	cfg.Version = 44
	e, ok = cfg.Validate().(exc.Exception)
	require.True(t, ok)
	require.Equal(t, exc.CodeInvalidConfiguration, e.Code())
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := Default()
	base.Libraries = []string{"a"}
	base.Frames = true
	over := Config{Version: 52, Libraries: []string{"b"}, Frames: false, Indent: "\t"}
	changed := map[string]bool{KeyVersion: true, KeyLibraries: true, KeyFrames: true}

	got := base.Merge(over, func(key string) bool { return changed[key] })
	require.Equal(t, uint16(52), got.Version)
	require.Equal(t, []string{"a", "b"}, got.Libraries)
	require.False(t, got.Frames)
	require.Equal(t, "  ", got.Indent)
	require.Equal(t, "jvm", got.Target)
	require.Equal(t, []string{"a"}, base.Libraries)
}

func TestLoadAndFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := Find(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	want := Default()
	want.Libraries = []string{"classes"}
	want.Concurrency = 2
	b, err := want.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), b, 0o600))

	cfg, err = Find(dir)
	require.NoError(t, err)
	require.Equal(t, want, cfg)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
