package codespan

import "strings"

// Segment is a piece of a scanned text: either plain text or the body of a
// marker span with its delimiters removed.
type Segment struct {
	Text string
	Span bool
	// Start and End are the byte offsets of Text in the scanned string.
	Start, End int
}

// Split scans s for marker spans bracketed by delim.
//
// Pairs are matched left to right: the first delimiter opens a span, the
// next one closes it, and scanning resumes after the closing delimiter.
// Spans do not nest. An opening delimiter without a closing one is left in
// the text and its offset is returned as dangling; dangling is -1 when every
// delimiter was paired.
//
// Empty plain text segments are omitted; empty spans are kept.
func Split(s, delim string) ([]Segment, int) {
	var segments []Segment

	dangling := -1
	pos := 0

	for pos < len(s) {
		open := strings.Index(s[pos:], delim)
		if open < 0 {
			break
		}

		open += pos
		body := open + len(delim)

		end := strings.Index(s[body:], delim)
		if end < 0 {
			dangling = open

			break
		}

		end += body

		if open > pos {
			segments = append(segments, Segment{Text: s[pos:open], Start: pos, End: open})
		}

		segments = append(segments, Segment{Text: s[body:end], Span: true, Start: body, End: end})

		pos = end + len(delim)
	}

	if pos < len(s) {
		segments = append(segments, Segment{Text: s[pos:], Start: pos, End: len(s)})
	}

	return segments, dangling
}

// HasSpan reports whether any segment is a marker span.
func HasSpan(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Span {
			return true
		}
	}

	return false
}
