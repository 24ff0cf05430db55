package server

import (
	"net/http"

	"github.com/hebraica/mothertree/pkg/corpus"
	"github.com/hebraica/mothertree/pkg/mother"
	"github.com/hebraica/mothertree/pkg/tree"
)

// NodeDTO is the wire form of a clause in tree responses.
type NodeDTO struct {
	ID             int64              `json:"id"`
	SlotsStart     int                `json:"slotsStart"`
	SlotsEnd       int                `json:"slotsEnd"`
	SlotCount      int                `json:"slotCount"`
	Label          string             `json:"label"`
	ContainerID    string             `json:"containerId"`
	InScope        bool               `json:"inScope"`
	Kind           string             `json:"kind"`
	Draggable      bool               `json:"draggable"`
	Typ            string             `json:"typ,omitempty"`
	Rela           string             `json:"rela,omitempty"`
	Code           string             `json:"code,omitempty"`
	Txt            string             `json:"txt,omitempty"`
	Domain         string             `json:"domain,omitempty"`
	Instruction    string             `json:"instruction,omitempty"`
	OriginalMother *int64             `json:"originalMother"`
	CoreFunctions  []string           `json:"coreFunctions"`
	Children       []RelatedClauseDTO `json:"children"`
	Reference      string             `json:"reference"`
}

// RelatedClauseDTO is the compact child listing attached to each node.
type RelatedClauseDTO struct {
	ID   int64  `json:"id"`
	Typ  string `json:"typ,omitempty"`
	Rela string `json:"rela,omitempty"`
	Code string `json:"code,omitempty"`
}

// EdgeDTO is the wire form of an effective mother link. To is null for
// roots.
type EdgeDTO struct {
	From   int64  `json:"from"`
	To     *int64 `json:"to"`
	Source string `json:"source"`
}

// TreeResponse answers /tree and successful batch requests.
type TreeResponse struct {
	Nodes   []NodeDTO `json:"nodes"`
	Edges   []EdgeDTO `json:"edges"`
	Scope   string    `json:"scope,omitempty"`
	Version string    `json:"version"`
}

// SuccessResponse answers single mutations.
type SuccessResponse struct {
	Ok      bool    `json:"ok"`
	Edge    EdgeDTO `json:"edge"`
	Version string  `json:"version"`
}

// ErrorResponse answers rejected requests.
type ErrorResponse struct {
	Ok     bool   `json:"ok"`
	Reason string `json:"reason"`
}

// Request payloads.

type ReparentRequest struct {
	Child     int64 `json:"child"`
	NewMother int64 `json:"newMother"`
}

type RootifyRequest struct {
	Child int64 `json:"child"`
}

type BatchOpDTO struct {
	Child     int64  `json:"child"`
	NewMother *int64 `json:"newMother"`
}

type BatchReparentRequest struct {
	Ops []BatchOpDTO `json:"ops"`
}

// statusForReason maps rejection reasons to HTTP status codes. Three broad
// severities: missing node, disabled operation, and everything else
// (policy/invariant rejections and empty history) as a conflict.
func statusForReason(reason mother.Reason) int {
	switch reason {
	case mother.ReasonNodeNotFound:
		return http.StatusNotFound
	case mother.ReasonRootifyDisabled:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusConflict
	}
}

// edgeDTO converts a service edge into its wire form.
func edgeDTO(e mother.Edge) EdgeDTO {
	dto := EdgeDTO{From: int64(e.From), Source: string(e.Source)}
	if e.To != corpus.NoMother {
		to := int64(e.To)
		dto.To = &to
	}
	return dto
}

// treeResponse flattens a projection into the wire form: nodes and edges in
// document order, per-node children lists (also document order), and the
// current version token.
func (s *Server) treeResponse(t *tree.EffectiveTree) TreeResponse {
	ordered := t.OrderedNodes()

	nodes := make([]NodeDTO, 0, len(ordered))
	index := make(map[corpus.NodeID]int, len(ordered))
	for _, n := range ordered {
		dto := NodeDTO{
			ID:            int64(n.ID),
			SlotsStart:    n.SlotsStart,
			SlotsEnd:      n.SlotsEnd,
			SlotCount:     n.SlotCount,
			Label:         n.Label,
			ContainerID:   n.ContainerID,
			InScope:       t.InScope[n.ID],
			Kind:          n.Kind,
			Draggable:     n.Kind == corpus.KindClause,
			Typ:           n.Tags.Typ,
			Rela:          n.Tags.Rela,
			Code:          n.Tags.Code,
			Txt:           n.Tags.Txt,
			Domain:        n.Tags.Domain,
			Instruction:   n.Tags.Instruction,
			CoreFunctions: append([]string{}, n.Tags.CoreFunctions...),
			Children:      []RelatedClauseDTO{},
			Reference:     n.Reference,
		}
		if n.OriginalMother != corpus.NoMother {
			om := int64(n.OriginalMother)
			dto.OriginalMother = &om
		}
		index[n.ID] = len(nodes)
		nodes = append(nodes, dto)
	}

	// Children lists: walking nodes in document order keeps each list in
	// document order without an extra sort.
	for _, n := range ordered {
		m := t.Mothers[n.ID]
		if m == corpus.NoMother {
			continue
		}
		pi, ok := index[m]
		if !ok {
			continue
		}
		nodes[pi].Children = append(nodes[pi].Children, RelatedClauseDTO{
			ID:   int64(n.ID),
			Typ:  n.Tags.Typ,
			Rela: n.Tags.Rela,
			Code: n.Tags.Code,
		})
	}

	edges := make([]EdgeDTO, 0, len(ordered))
	for _, e := range t.OrderedEdges() {
		edges = append(edges, edgeDTO(s.svc.EdgeFor(e.From)))
	}

	return TreeResponse{
		Nodes:   nodes,
		Edges:   edges,
		Scope:   t.Scope,
		Version: s.svc.Version(),
	}
}
