package codespan

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultDelimiter brackets marker spans unless configured otherwise.
const DefaultDelimiter = "$$"

// ErrInvalidDelimiter is returned for empty delimiters or delimiters
// containing whitespace.
var ErrInvalidDelimiter = errors.New("invalid delimiter")

// Detector guesses the language of a piece of code. It returns an empty
// string when it cannot tell.
type Detector func(code string) string

// Options configures a [Transformer].
type Options struct {
	// Delimiter brackets marker spans. Defaults to [DefaultDelimiter].
	Delimiter string
	// DefaultLang tags spans without an explicit or detected language.
	DefaultLang string
	// Aliases maps explicit language tags to canonical names. Keys are
	// matched case-insensitively.
	Aliases map[string]string
	// Detect, if set, is asked for the language of untagged spans.
	Detect Detector
}

func (o Options) validate() error {
	if o.Delimiter == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDelimiter)
	}

	if strings.IndexFunc(o.Delimiter, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidDelimiter, o.Delimiter)
	}

	return nil
}
