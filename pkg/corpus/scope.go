package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope narrows a projection to a book, optionally a chapter, optionally a
// verse or inclusive verse range. Zero values are wildcards.
//
// The textual form is "Book", "Book.Chapter", "Book.Chapter.Verse" or
// "Book.Chapter.Start-End", e.g. "Gen.1.1-3".
type Scope struct {
	Book       string
	Chapter    int
	VerseStart int
	VerseEnd   int
}

// ParseScope parses a scope string against this corpus. The book token is
// resolved via ResolveBook, so abbreviations are accepted. Parsing is strict
// about numbers and range ordering; callers that want soft failure (the
// projector) translate any error into an empty result.
func (s *Snapshot) ParseScope(raw string) (*Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("corpus: empty scope")
	}

	parts := strings.Split(raw, ".")
	book, ok := s.ResolveBook(parts[0])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBook, parts[0])
	}
	sc := &Scope{Book: book}

	if len(parts) >= 2 && parts[1] != "" {
		ch, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("corpus: invalid chapter %q", parts[1])
		}
		sc.Chapter = ch
	}

	if len(parts) >= 3 && parts[2] != "" {
		start, end, err := parseVerseRange(parts[2])
		if err != nil {
			return nil, err
		}
		sc.VerseStart, sc.VerseEnd = start, end
	}

	return sc, nil
}

func parseVerseRange(part string) (int, int, error) {
	if lo, hi, found := strings.Cut(part, "-"); found {
		start, err := strconv.Atoi(lo)
		if err != nil {
			return 0, 0, fmt.Errorf("corpus: invalid verse range %q", part)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return 0, 0, fmt.Errorf("corpus: invalid verse range %q", part)
		}
		if end < start {
			return 0, 0, fmt.Errorf("corpus: verse range %q ends before it starts", part)
		}
		return start, end, nil
	}

	v, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("corpus: invalid verse %q", part)
	}
	return v, v, nil
}

// Matches reports whether the clause falls inside the scope. Verse bounds
// are inclusive on both ends.
func (sc *Scope) Matches(n *ClauseNode) bool {
	if sc.Book != "" && n.Book != sc.Book {
		return false
	}
	if sc.Chapter != 0 && n.Chapter != sc.Chapter {
		return false
	}
	if sc.VerseStart != 0 && (n.Verse < sc.VerseStart || n.Verse > sc.VerseEnd) {
		return false
	}
	return true
}

// FilterScope returns the clauses matching the scope, in document order.
func (s *Snapshot) FilterScope(sc *Scope) []*ClauseNode {
	var out []*ClauseNode
	for _, n := range s.ordered {
		if sc.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}
