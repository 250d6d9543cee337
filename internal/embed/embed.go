// Package embed fills code nodes with the content of source files.
//
// A code node whose meta names a file is replaced by a copy holding the
// file content:
//
//	$${go file=tour/basics/01/main.go region=connect}$$
//
// Meta keys:
//   - file: path of the file, relative to the root of the file system.
//   - region: name of a #region of the file; only its body is embedded.
//   - outline: embed the file with every region body stripped.
package embed

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/mdast"
	"github.com/ezerfernandes/mdspan/internal/region"
)

// Meta keys understood by [Resolve].
const (
	MetaFile    = "file"
	MetaRegion  = "region"
	MetaOutline = "outline"
)

var (
	// ErrRegionNotFound is returned when a named region is not in the file.
	ErrRegionNotFound = errors.New("region not found")
	// ErrInvalidPath is returned for file paths escaping the file system.
	ErrInvalidPath = errors.New("invalid file path")
)

// Resolve returns root with every code node naming a file filled from fsys.
// The second return value is the number of code nodes filled.
func Resolve(root mdast.Node, fsys fs.FS) (mdast.Node, int, error) {
	count := 0

	out, err := mdast.Map(root, func(node mdast.Node, at string) (mdast.Node, error) {
		code, ok := node.(*mdast.Code)
		if !ok {
			return node, nil
		}

		meta, err := codespan.ParseMeta(code.Meta)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}

		file := meta.Get(MetaFile)
		if file == "" {
			return node, nil
		}

		value, err := load(fsys, file, meta)
		if err != nil {
			return nil, err
		}

		filled := *code
		filled.Value = value

		if filled.Lang == "" {
			filled.Lang = strings.TrimPrefix(filepath.Ext(file), ".")
		}

		count++

		return &filled, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return out, count, nil
}

func load(fsys fs.FS, file string, meta codespan.Meta) (string, error) {
	name := path.Clean(strings.TrimPrefix(filepath.ToSlash(file), "./"))
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, file)
	}

	source, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("embed %s: %w", file, err)
	}

	if name := meta.Get(MetaRegion); name != "" {
		body, found, err := region.Read(source, name)
		if err != nil {
			return "", fmt.Errorf("embed %s: %w", file, err)
		}

		if !found {
			return "", fmt.Errorf("embed %s: %w: %q (have %s)", file, ErrRegionNotFound, name,
				strings.Join(region.Names(source), ", "))
		}

		return string(body), nil
	}

	if meta.Bool(MetaOutline) {
		outline, _, err := region.Outline(source)
		if err != nil {
			return "", fmt.Errorf("embed %s: %w", file, err)
		}

		return string(outline), nil
	}

	return string(source), nil
}
