package inheritance

import (
	"context"
	iofs "io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/jasm/internal/bytecode"
	"gopkg.microglot.org/jasm/internal/fs"
)

func image(t *testing.T, model *bytecode.ClassModel) *fstest.MapFile {
	b, err := bytecode.MarshalImage(model)
	require.NoError(t, err)
	return &fstest.MapFile{Data: b}
}

func library(t *testing.T) *Library {
	mem := fstest.MapFS{
		"lib/p/Base.jimg":  image(t, &bytecode.ClassModel{Name: "p/Base", Super: Object}),
		"lib/p/Left.jimg":  image(t, &bytecode.ClassModel{Name: "p/Left", Super: "p/Base", Interfaces: []string{"p/Marker"}}),
		"lib/p/Right.jimg": image(t, &bytecode.ClassModel{Name: "p/Right", Super: "p/Base"}),
		"lib/p/Marker.jimg": image(t, &bytecode.ClassModel{
			Name:       "p/Marker",
			Super:      Object,
			Access:     bytecode.AccInterface | bytecode.AccAbstract,
			Interfaces: []string{"p/Root"},
		}),
		"lib/p/Root.jimg": image(t, &bytecode.ClassModel{Name: "p/Root", Super: Object, Access: bytecode.AccInterface}),
	}
	local, err := fs.NewFileSystemLocal("/", fs.WithOptionFSFactory(func(string) iofs.FS { return mem }))
	require.NoError(t, err)
	return NewLibrary(local, "/lib")
}

func TestLibraryCommonSuperclass(t *testing.T) {
	t.Parallel()

	lib := library(t)
	lib.Add(&bytecode.ClassModel{Name: "q/Leaf", Super: "p/Left"})
	ctx := context.Background()
	testCases := []struct {
		a      string
		b      string
		common string
	}{
		{a: "p/Left", b: "p/Right", common: "p/Base"},
		{a: "q/Leaf", b: "p/Right", common: "p/Base"},
		{a: "q/Leaf", b: "p/Left", common: "p/Left"},
		{a: "p/Left", b: "p/Left", common: "p/Left"},
		{a: "p/Marker", b: "p/Left", common: Object},
		{a: "p/Base", b: Object, common: Object},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.a+"+"+testCase.b, func(t *testing.T) {
			t.Parallel()
			common, err := lib.CommonSuperclass(ctx, testCase.a, testCase.b)
			require.NoError(t, err)
			require.Equal(t, testCase.common, common)
		})
	}
}

func TestLibraryIsSubclassOf(t *testing.T) {
	t.Parallel()

	lib := library(t)
	ctx := context.Background()
	testCases := []struct {
		child  string
		parent string
		want   bool
	}{
		{child: "p/Left", parent: "p/Base", want: true},
		{child: "p/Left", parent: "p/Marker", want: true},
		{child: "p/Left", parent: "p/Root", want: true},
		{child: "p/Right", parent: "p/Marker", want: false},
		{child: "p/Base", parent: "p/Left", want: false},
		{child: "p/Right", parent: Object, want: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.child+"<"+testCase.parent, func(t *testing.T) {
			t.Parallel()
			got, err := lib.IsSubclassOf(ctx, testCase.child, testCase.parent)
			require.NoError(t, err)
			require.Equal(t, testCase.want, got)
		})
	}
}

func TestLibraryMissingType(t *testing.T) {
	t.Parallel()

	_, err := library(t).CommonSuperclass(context.Background(), "p/Left", "p/Missing")
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	common, err := Noop{}.CommonSuperclass(ctx, "a/B", "c/D")
	require.NoError(t, err)
	require.Equal(t, Object, common)
	common, _ = Noop{}.CommonSuperclass(ctx, "a/B", "a/B")
	require.Equal(t, "a/B", common)
	ok, _ := Noop{}.IsSubclassOf(ctx, "a/B", "c/D")
	require.False(t, ok)
}
