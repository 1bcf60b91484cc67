package fs

import (
	"context"
	iofs "io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/jasm"
)

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()

	mem := fstest.MapFS{
		"src/A.jasm":      {Data: []byte(".method m ()V {}")},
		"src/B.class":     {Data: []byte{0xCA, 0xFE, 0xBA, 0xBE}},
		"src/notes.txt":   {Data: []byte("ignored")},
		"lib/C.jimg":      {Data: []byte("JIMG")},
		"empty/README.md": {Data: []byte("nothing")},
	}
	local, err := NewFileSystemLocal("/", WithOptionFSFactory(func(string) iofs.FS { return mem }))
	require.NoError(t, err)
	ctx := context.Background()

	testCases := []struct {
		name  string
		uri   string
		kinds map[string]jasm.FileKind
		code  string
	}{
		{
			name: "directory",
			uri:  "/src",
			kinds: map[string]jasm.FileKind{
				"/src/A.jasm":  jasm.FileKindSource,
				"/src/B.class": jasm.FileKindClass,
			},
		},
		{
			name:  "file uri",
			uri:   "file:///lib/C.jimg",
			kinds: map[string]jasm.FileKind{"/lib/C.jimg": jasm.FileKindImage},
		},
		{name: "missing", uri: "/nope.jasm", code: exc.CodeFileNotFound},
		{name: "no known files", uri: "/empty", code: exc.CodeFileNotFound},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			files, err := local.Open(ctx, testCase.uri)
			if testCase.code != "" {
				require.Error(t, err)
				require.Equal(t, testCase.code, err.(exc.Exception).Code())
				return
			}
			require.NoError(t, err)
			kinds := make(map[string]jasm.FileKind)
			for _, f := range files {
				kinds[f.Path(ctx)] = f.Kind(ctx)
			}
			require.Equal(t, testCase.kinds, kinds)
		})
	}
}

func TestFileSystemLocalFilter(t *testing.T) {
	t.Parallel()

	mem := fstest.MapFS{
		"src/A.jasm":  {Data: []byte(".method m ()V {}")},
		"src/B.class": {Data: []byte{0xCA, 0xFE, 0xBA, 0xBE}},
		"bin/C.class": {Data: []byte{0xCA, 0xFE, 0xBA, 0xBE}},
	}
	local, err := NewFileSystemLocal("/",
		WithOptionFSFactory(func(string) iofs.FS { return mem }),
		WithOptionFileFilter(OnlyKind(jasm.FileKindSource)),
	)
	require.NoError(t, err)
	ctx := context.Background()

	files, err := local.Open(ctx, "/src")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "/src/A.jasm", files[0].Path(ctx))

	_, err = local.Open(ctx, "/bin")
	require.Error(t, err)
	require.Equal(t, exc.CodeFileNotFound, err.(exc.Exception).Code())

	files, err = local.Open(ctx, "/bin/C.class")
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	content := make([]byte, 100000)
	for x := range content {
		content[x] = byte(x)
	}
	b, err := ReadAll(ctx, NewFileBytes("/x.jimg", content, jasm.FileKindImage))
	require.NoError(t, err)
	require.Equal(t, content, b)

	s, err := ReadAll(ctx, NewFileString("/x.jasm", "return", jasm.FileKindSource))
	require.NoError(t, err)
	require.Equal(t, "return", string(s))
}
