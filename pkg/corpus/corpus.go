// Package corpus provides the immutable clause-node snapshot that the
// mother-editing engine operates on.
//
// A Snapshot is built once at startup from a prepared JSON export (or from a
// prebuilt badger store, see store.go) and never mutated afterwards. All
// mutable state lives elsewhere, in the overlay package.
//
// The engine relies on one hard precondition from the export pipeline:
// clause ids are assigned in document order, so a smaller id always means an
// earlier position in the text. NewSnapshot enforces this at construction
// time instead of trusting it silently: a corpus that violates it would
// quietly weaken cycle prevention in the mutation validator.
package corpus

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors.
var (
	ErrEmptyCorpus  = errors.New("corpus: no clause nodes")
	ErrDuplicateID  = errors.New("corpus: duplicate clause id")
	ErrInvalidID    = errors.New("corpus: clause id must be positive")
	ErrUnknownBook  = errors.New("corpus: unknown book")
	ErrOrderBroken  = errors.New("corpus: clause ids not monotonic with document order")
	ErrDanglingLink = errors.New("corpus: original mother refers to unknown clause")
)

// NodeID identifies a clause node. Ids are strictly positive; the zero value
// is reserved to mean "no mother" (a root clause).
type NodeID int64

// NoMother is the NodeID used for clauses without a governing clause.
const NoMother NodeID = 0

// KindClause is the only node kind in this model. The field exists because
// the export format carries it and downstream consumers key off it.
const KindClause = "clause"

// Tags holds the optional linguistic annotations of a clause. The engine
// never interprets them; they ride along into the API responses unchanged.
type Tags struct {
	Typ           string
	Rela          string
	Code          string
	Txt           string
	Domain        string
	Instruction   string
	CoreFunctions []string
}

// ClauseNode is a single clause in the dependency tree. Instances are shared
// and must be treated as read-only once handed to a Snapshot.
type ClauseNode struct {
	ID             NodeID
	SlotsStart     int
	SlotsEnd       int
	SlotCount      int
	Label          string
	ContainerID    string
	OriginalMother NodeID
	Book           string
	Chapter        int
	Verse          int
	Kind           string
	Reference      string
	Tags           Tags
}

// Snapshot is the read-only clause corpus: node lookup by id, document-order
// iteration, and book-name resolution for scope parsing.
type Snapshot struct {
	nodes    map[NodeID]*ClauseNode
	ordered  []*ClauseNode // slotsStart ascending == document order
	books    []string      // canonical book names, document order
	bookKeys map[string]string
}

// NewSnapshot builds a Snapshot from the given nodes and validates the
// structural preconditions the engine depends on:
//
//   - ids are positive and unique
//   - every non-null original mother refers to a node in the corpus
//   - ids are strictly increasing along document order (slotsStart)
//
// The input slice is not retained; nodes are.
func NewSnapshot(nodes []*ClauseNode) (*Snapshot, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyCorpus
	}

	s := &Snapshot{
		nodes:    make(map[NodeID]*ClauseNode, len(nodes)),
		ordered:  make([]*ClauseNode, 0, len(nodes)),
		bookKeys: make(map[string]string),
	}

	for _, n := range nodes {
		if n.ID <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidID, n.ID)
		}
		if _, dup := s.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, n.ID)
		}
		if n.Kind == "" {
			n.Kind = KindClause
		}
		if n.SlotCount == 0 && n.SlotsEnd >= n.SlotsStart {
			n.SlotCount = n.SlotsEnd - n.SlotsStart + 1
		}
		s.nodes[n.ID] = n
		s.ordered = append(s.ordered, n)
	}

	for _, n := range s.nodes {
		if n.OriginalMother == NoMother {
			continue
		}
		if _, ok := s.nodes[n.OriginalMother]; !ok {
			return nil, fmt.Errorf("%w: clause %d -> %d", ErrDanglingLink, n.ID, n.OriginalMother)
		}
	}

	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].SlotsStart < s.ordered[j].SlotsStart
	})

	// Document-order precondition: walking the text forward, ids must only
	// grow. The validator's ordering and cycle checks assume this.
	for i := 1; i < len(s.ordered); i++ {
		if s.ordered[i].ID <= s.ordered[i-1].ID {
			return nil, fmt.Errorf("%w: clause %d (slot %d) after clause %d (slot %d)",
				ErrOrderBroken,
				s.ordered[i].ID, s.ordered[i].SlotsStart,
				s.ordered[i-1].ID, s.ordered[i-1].SlotsStart)
		}
	}

	s.indexBooks()
	return s, nil
}

// indexBooks collects canonical book names in document order and builds the
// normalized lookup used by ResolveBook.
func (s *Snapshot) indexBooks() {
	seen := make(map[string]struct{})
	for _, n := range s.ordered {
		if n.Book == "" {
			continue
		}
		if _, ok := seen[n.Book]; ok {
			continue
		}
		seen[n.Book] = struct{}{}
		s.books = append(s.books, n.Book)
		s.bookKeys[normalizeBookKey(n.Book)] = n.Book
	}
}

// Node returns the clause with the given id, or false if absent.
func (s *Snapshot) Node(id NodeID) (*ClauseNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Contains reports whether the corpus has a clause with the given id.
func (s *Snapshot) Contains(id NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// OriginalMother returns the corpus-supplied mother of the given clause, or
// NoMother for roots and unknown ids.
func (s *Snapshot) OriginalMother(id NodeID) NodeID {
	if n, ok := s.nodes[id]; ok {
		return n.OriginalMother
	}
	return NoMother
}

// Nodes returns all clauses in document order. The returned slice is a copy;
// the nodes it points to are shared and read-only.
func (s *Snapshot) Nodes() []*ClauseNode {
	out := make([]*ClauseNode, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of clauses in the corpus.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Books returns the canonical book names in document order.
func (s *Snapshot) Books() []string {
	out := make([]string, len(s.books))
	copy(out, s.books)
	return out
}

// ResolveBook resolves a user-supplied book token ("gen", "1_Kings",
// "1 kings") to its canonical corpus name. Matching is case-insensitive,
// ignores underscores, spaces and dots, and accepts an unambiguous prefix.
func (s *Snapshot) ResolveBook(token string) (string, bool) {
	key := normalizeBookKey(token)
	if key == "" {
		return "", false
	}
	if book, ok := s.bookKeys[key]; ok {
		return book, true
	}

	var match string
	for norm, book := range s.bookKeys {
		if !strings.HasPrefix(norm, key) {
			continue
		}
		if match != "" && match != book {
			return "", false // ambiguous prefix
		}
		match = book
	}
	return match, match != ""
}

func normalizeBookKey(v string) string {
	v = strings.ToLower(v)
	v = strings.ReplaceAll(v, "_", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, ".", "")
	return v
}
