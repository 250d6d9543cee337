package codespan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// Meta holds key-value metadata parsed from a code node's meta string.
type Meta map[string]interface{}

// Get returns the value of key as a string, or "" when it is absent.
func (m Meta) Get(key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports whether the key is present with a value other than
// "false", "no", "off" or "0".
func (m Meta) Bool(key string) bool {
	if _, has := m[key]; !has {
		return false
	}

	switch strings.ToLower(m.Get(key)) {
	case "false", "no", "off", "0":
		return false
	}

	return true
}

var (
	reJSON     = regexp.MustCompile(`^\s*{\s*["}]`)
	reBrackets = regexp.MustCompile(`^\s*{(.*)}$`)
)

// ParseMeta parses a meta string. JSON objects are decoded as-is; anything
// else is split into shell words and every key=value word becomes an entry.
// A bare word becomes a key with an empty value.
func ParseMeta(input string) (Meta, error) {
	if len(strings.TrimSpace(input)) == 0 {
		return Meta{}, nil
	}

	if reJSON.MatchString(input) {
		var meta Meta

		err := json.Unmarshal([]byte(input), &meta)
		if err != nil {
			return nil, fmt.Errorf("parse meta %q: %w", input, err)
		}

		return meta, nil
	}

	if subs := reBrackets.FindStringSubmatch(input); subs != nil {
		input = subs[1]
	}

	words, err := shlex.Split(input)
	if err != nil {
		return nil, fmt.Errorf("parse meta %q: %w", input, err)
	}

	dict := make(Meta)

	for _, word := range words {
		idx := strings.IndexRune(word, '=')
		if idx < 0 {
			dict[word] = ""

			continue
		}

		dict[word[:idx]] = word[idx+1:]
	}

	return dict, nil
}
