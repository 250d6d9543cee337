package cmd

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/ezerfernandes/mdspan/internal/codespan"
)

type filterFunc func(lang string, meta codespan.Meta) bool

func acceptAll(string, codespan.Meta) bool { return true }

// filter accepts code whose language matches one of the lang patterns and
// whose meta has every key of meta with a value matching its pattern.
// No lang patterns means any language.
func filter(lang []string, meta map[string]string) (filterFunc, error) {
	langGlobs := make([]glob.Glob, 0, len(lang))

	for _, pattern := range lang {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --lang pattern %q: %w", pattern, err)
		}

		langGlobs = append(langGlobs, g)
	}

	metaGlobs := make(map[string]glob.Glob, len(meta))

	for key, pattern := range meta {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --meta pattern %s=%q: %w", key, pattern, err)
		}

		metaGlobs[key] = g
	}

	return func(l string, m codespan.Meta) bool {
		if len(langGlobs) > 0 && !matchAny(langGlobs, l) {
			return false
		}

		for key, g := range metaGlobs {
			if _, has := m[key]; !has || !g.Match(m.Get(key)) {
				return false
			}
		}

		return true
	}, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}

	return false
}
