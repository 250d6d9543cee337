// Package region reads named #region/#endregion sections of source files.
//
// A region marker is a line holding a comment token followed by the marker,
// in any language that has line or block comments:
//
//	// #region connect
//	sess, err := postgresql.Open(settings)
//	// #endregion
package region

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	reSpec      = `[!"#$%%&'()*+,\-./:;<=>?@[\\\]^_{|}~]`
	reLineBegin = `(?m)^[[:blank:]]*`
	reLineEnd   = `*[[:blank:]]*(?:\r?\n|\z)`
	startFormat = reLineBegin + reSpec +
		`+[[:blank:]]*#region[[:blank:]]+(%s)[[:blank:]]*` +
		reSpec + reLineEnd
	endFormat = reLineBegin + reSpec +
		`+[[:blank:]]*#endregion(?:[[:blank:]]+%s)?[[:blank:]]*` +
		reSpec + reLineEnd
	anyName = `\w[\w.-]*`
)

var (
	reAnyStart = regexp.MustCompile(fmt.Sprintf(startFormat, anyName))
	reAnyEnd   = regexp.MustCompile(fmt.Sprintf(endFormat, anyName))
)

// ErrMissingEndregion is returned when a #region marker has no matching
// #endregion.
var ErrMissingEndregion = errors.New("missing #endregion")

// bounds delimits a region body, without the marker lines.
type bounds struct {
	bodyStart, bodyEnd int
}

func find(source []byte, name string) (*bounds, error) {
	quoted := regexp.QuoteMeta(name)

	start, err := regexp.Compile(fmt.Sprintf(startFormat, quoted))
	if err != nil {
		return nil, err
	}

	loc := start.FindIndex(source)
	if loc == nil {
		return nil, nil
	}

	end, err := regexp.Compile(fmt.Sprintf(endFormat, quoted))
	if err != nil {
		return nil, err
	}

	rest := source[loc[1]:]

	endLoc := end.FindIndex(rest)
	if endLoc == nil {
		return nil, fmt.Errorf("%w for region %q", ErrMissingEndregion, name)
	}

	return &bounds{bodyStart: loc[1], bodyEnd: loc[1] + endLoc[0]}, nil
}

// Read returns the content between the #region and #endregion markers with
// the given name. The bool return reports whether the region was found.
func Read(source []byte, name string) ([]byte, bool, error) {
	b, err := find(source, name)
	if err != nil || b == nil {
		return nil, false, err
	}

	return source[b.bodyStart:b.bodyEnd], true, nil
}

// Names lists the region names of source in order of appearance.
func Names(source []byte) []string {
	var names []string

	for _, subs := range reAnyStart.FindAllSubmatch(source, -1) {
		names = append(names, string(subs[1]))
	}

	return names
}

// Outline strips the body of every region, keeping only the #region and
// #endregion markers. The bool return reports whether any region was found.
func Outline(source []byte) ([]byte, bool, error) {
	res := make([]byte, 0, len(source))
	found := false
	idx := 0

	for idx < len(source) {
		start := reAnyStart.FindIndex(source[idx:])
		if start == nil {
			break
		}

		bodyStart := idx + start[1]

		end := reAnyEnd.FindIndex(source[bodyStart:])
		if end == nil {
			return nil, false, ErrMissingEndregion
		}

		found = true

		res = append(res, source[idx:bodyStart]...)
		res = append(res, source[bodyStart+end[0]:bodyStart+end[1]]...)

		idx = bodyStart + end[1]
	}

	res = append(res, source[idx:]...)

	return res, found, nil
}
