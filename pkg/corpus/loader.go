// This file loads the prepared clause export produced by the upstream
// corpus pipeline. The export is plain JSON; this repo never touches the
// original Text-Fabric resources.
package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExportNode is the wire form of a clause in the export.
//
// OriginalMother is a pointer so the export can say "null" for roots; the
// internal representation uses NoMother instead.
type ExportNode struct {
	ID             int64    `json:"id"`
	SlotsStart     int      `json:"slotsStart"`
	SlotsEnd       int      `json:"slotsEnd"`
	SlotCount      int      `json:"slotCount,omitempty"`
	Label          string   `json:"label"`
	ContainerID    string   `json:"containerId"`
	OriginalMother *int64   `json:"originalMother"`
	Book           string   `json:"book"`
	Chapter        int      `json:"chapter"`
	Verse          int      `json:"verse"`
	Kind           string   `json:"kind,omitempty"`
	Typ            string   `json:"typ,omitempty"`
	Rela           string   `json:"rela,omitempty"`
	Code           string   `json:"code,omitempty"`
	Txt            string   `json:"txt,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	Instruction    string   `json:"instruction,omitempty"`
	CoreFunctions  []string `json:"coreFunctions,omitempty"`
	Reference      string   `json:"reference,omitempty"`
}

// ExportMetadata describes an export directory. Informational only.
type ExportMetadata struct {
	ExportDate string `json:"exportDate"`
	Source     string `json:"source"`
	Statistics struct {
		TotalClauses int `json:"totalClauses"`
		Books        int `json:"books"`
	} `json:"statistics"`
}

// LoadExportDir loads a Snapshot from an export directory containing
// clauses.json (a JSON array of ExportNode). A metadata.json file may sit
// next to it; it is not required.
func LoadExportDir(dir string) (*Snapshot, error) {
	path := filepath.Join(dir, "clauses.json")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	snap, err := LoadExport(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return snap, nil
}

// LoadExport decodes a JSON array of export nodes from r and builds a
// Snapshot. Decoding is streaming, so large corpora are not buffered twice.
func LoadExport(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading opening token: %w", err)
	}
	if tok != json.Delim('[') {
		return nil, fmt.Errorf("expected JSON array, got %v", tok)
	}

	var nodes []*ClauseNode
	for dec.More() {
		var en ExportNode
		if err := dec.Decode(&en); err != nil {
			return nil, fmt.Errorf("decoding clause: %w", err)
		}
		nodes = append(nodes, en.clause())
	}

	return NewSnapshot(nodes)
}

// LoadExportMetadata reads metadata.json from an export directory.
func LoadExportMetadata(dir string) (*ExportMetadata, error) {
	f, err := os.Open(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var md ExportMetadata
	if err := json.NewDecoder(f).Decode(&md); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return &md, nil
}

// clause converts the wire form into the internal node.
func (en *ExportNode) clause() *ClauseNode {
	n := &ClauseNode{
		ID:          NodeID(en.ID),
		SlotsStart:  en.SlotsStart,
		SlotsEnd:    en.SlotsEnd,
		SlotCount:   en.SlotCount,
		Label:       en.Label,
		ContainerID: en.ContainerID,
		Book:        en.Book,
		Chapter:     en.Chapter,
		Verse:       en.Verse,
		Kind:        en.Kind,
		Reference:   en.Reference,
		Tags: Tags{
			Typ:           en.Typ,
			Rela:          en.Rela,
			Code:          en.Code,
			Txt:           en.Txt,
			Domain:        en.Domain,
			Instruction:   en.Instruction,
			CoreFunctions: en.CoreFunctions,
		},
	}
	if en.OriginalMother != nil {
		n.OriginalMother = NodeID(*en.OriginalMother)
	}
	return n
}

// exportNode converts back to the wire form, used by the badger store.
func exportNode(n *ClauseNode) *ExportNode {
	en := &ExportNode{
		ID:            int64(n.ID),
		SlotsStart:    n.SlotsStart,
		SlotsEnd:      n.SlotsEnd,
		SlotCount:     n.SlotCount,
		Label:         n.Label,
		ContainerID:   n.ContainerID,
		Book:          n.Book,
		Chapter:       n.Chapter,
		Verse:         n.Verse,
		Kind:          n.Kind,
		Typ:           n.Tags.Typ,
		Rela:          n.Tags.Rela,
		Code:          n.Tags.Code,
		Txt:           n.Tags.Txt,
		Domain:        n.Tags.Domain,
		Instruction:   n.Tags.Instruction,
		CoreFunctions: n.Tags.CoreFunctions,
		Reference:     n.Reference,
	}
	if n.OriginalMother != NoMother {
		m := int64(n.OriginalMother)
		en.OriginalMother = &m
	}
	return en
}
