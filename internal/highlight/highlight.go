// Package highlight renders document trees as HTML with chroma
// highlighting and guesses the language of untagged code.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// PlainText is the language of code chroma cannot identify.
const PlainText = "plaintext"

// Detect guesses the language of code from its content. It returns an
// empty string when no lexer recognizes it.
func Detect(code string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}

	return langName(lexer)
}

func langName(lexer chroma.Lexer) string {
	config := lexer.Config()

	if len(config.Aliases) > 0 {
		return config.Aliases[0]
	}

	return strings.ToLower(config.Name)
}
