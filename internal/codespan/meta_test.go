package codespan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Meta
	}{
		{name: "empty", input: "", want: Meta{}},
		{name: "blank", input: "  ", want: Meta{}},
		{name: "words", input: `file=main.go region="open session"`, want: Meta{"file": "main.go", "region": "open session"}},
		{name: "brackets", input: `{file=main.go}`, want: Meta{"file": "main.go"}},
		{name: "bare word", input: `outline file=a.go`, want: Meta{"outline": "", "file": "a.go"}},
		{name: "json", input: `{"file": "main.go", "lines": 3}`, want: Meta{"file": "main.go", "lines": float64(3)}},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMeta(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMeta_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseMeta(`{"file": }`)
	require.Error(t, err)

	_, err = ParseMeta(`file="unterminated`)
	require.Error(t, err)
}

func TestMeta_GetAndBool(t *testing.T) {
	t.Parallel()

	meta := Meta{"file": "main.go", "lines": float64(3), "outline": "", "run": "false", "skip": nil}

	assert.Equal(t, "main.go", meta.Get("file"))
	assert.Equal(t, "3", meta.Get("lines"))
	assert.Equal(t, "", meta.Get("missing"))
	assert.Equal(t, "", Meta(nil).Get("file"))
	assert.Equal(t, "", meta.Get("skip"))

	assert.True(t, meta.Bool("outline"))
	assert.False(t, meta.Bool("run"))
	assert.False(t, meta.Bool("missing"))
}
