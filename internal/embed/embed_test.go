package embed

import (
	"io/fs"
	"testing"

	"github.com/liamg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezerfernandes/mdspan/internal/mdast"
)

const mainGo = `package main

// #region greet
fmt.Println("hi")
// #endregion
`

func testFS(t *testing.T) fs.FS {
	t.Helper()

	mfs := memoryfs.New()

	require.NoError(t, mfs.MkdirAll("tour", 0o700))
	require.NoError(t, mfs.WriteFile("tour/main.go", []byte(mainGo), 0o600))
	require.NoError(t, mfs.WriteFile("notes.txt", []byte("plain\n"), 0o600))

	return mfs
}

func TestResolve(t *testing.T) {
	t.Parallel()

	fsys := testFS(t)

	tests := []struct {
		name  string
		code  *mdast.Code
		value string
		lang  string
	}{
		{
			name:  "whole file",
			code:  &mdast.Code{Lang: "go", Meta: "file=tour/main.go"},
			value: mainGo,
			lang:  "go",
		},
		{
			name:  "region",
			code:  &mdast.Code{Meta: "file=./tour/main.go region=greet"},
			value: "fmt.Println(\"hi\")\n",
			lang:  "go",
		},
		{
			name:  "outline",
			code:  &mdast.Code{Meta: "file=tour/main.go outline"},
			value: "package main\n\n// #region greet\n// #endregion\n",
			lang:  "go",
		},
		{
			name:  "json meta",
			code:  &mdast.Code{Meta: `{"file": "notes.txt"}`},
			value: "plain\n",
			lang:  "txt",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := mdast.NewRoot(mdast.NewParagraph(tt.code))

			out, count, err := Resolve(root, fsys)
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			code := out.(*mdast.Root).Children[0].(*mdast.Paragraph).Children[0].(*mdast.Code)
			assert.Equal(t, tt.value, code.Value)
			assert.Equal(t, tt.lang, code.Lang)
			assert.Equal(t, tt.code.Meta, code.Meta)

			assert.Empty(t, tt.code.Value)
		})
	}
}

func TestResolve_NothingToEmbed(t *testing.T) {
	t.Parallel()

	root := mdast.NewRoot(
		mdast.NewParagraph(mdast.NewText("see "), mdast.NewCode("x", "go")),
		&mdast.Code{Value: "y", Meta: "title=demo"},
	)

	out, count, err := Resolve(root, testFS(t))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Same(t, root, out)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	fsys := testFS(t)

	tests := []struct {
		name string
		meta string
		err  error
	}{
		{name: "missing file", meta: "file=nope.go", err: fs.ErrNotExist},
		{name: "escaping path", meta: "file=../secret", err: ErrInvalidPath},
		{name: "absolute path", meta: "file=/etc/passwd", err: ErrInvalidPath},
		{name: "unknown region", meta: "file=tour/main.go region=bye", err: ErrRegionNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := Resolve(mdast.NewRoot(&mdast.Code{Meta: tt.meta}), fsys)
			require.ErrorIs(t, err, tt.err)
		})
	}

	_, _, err := Resolve(mdast.NewRoot(&mdast.Code{Meta: "file=tour/main.go region=bye"}), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greet")
}
