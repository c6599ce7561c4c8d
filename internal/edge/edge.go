// Package edge defines citation edges between papers.
package edge

import (
	"errors"
)

// Display attributes of an edge.
const (
	ColorInfluential = "#2e5361"
	ColorDefault     = "#bdc9c4"

	WeightInfluential = 6
	WeightDefault     = 1
)

// Edge is a directed citation: Source references Target. Color and Weight
// are filled in by Styled for persisted and rendered edges.
type Edge struct {
	SourceID    string `json:"source_id"`
	TargetID    string `json:"target_id"`
	Influential bool   `json:"influential"`
	Color       string `json:"color,omitempty"`
	Weight      int    `json:"weight,omitempty"`
}

// Validation errors.
var (
	ErrEmptySourceID = errors.New("source_id is required")
	ErrEmptyTargetID = errors.New("target_id is required")
	ErrSelfEdge      = errors.New("source_id and target_id cannot be the same")
)

// ValidateForCreate validates an edge for creation.
func (e *Edge) ValidateForCreate() error {
	if e.SourceID == "" {
		return ErrEmptySourceID
	}
	if e.TargetID == "" {
		return ErrEmptyTargetID
	}
	if e.SourceID == e.TargetID {
		return ErrSelfEdge
	}
	return nil
}

// Styled returns a copy of e with its display color and weight set from
// the influential flag.
func (e Edge) Styled() Edge {
	if e.Influential {
		e.Color, e.Weight = ColorInfluential, WeightInfluential
	} else {
		e.Color, e.Weight = ColorDefault, WeightDefault
	}
	return e
}

// Key returns the direction-independent identity of the edge, so that A->B
// and B->A share a key.
func (e Edge) Key() PairKey {
	if e.SourceID < e.TargetID {
		return PairKey{A: e.SourceID, B: e.TargetID}
	}
	return PairKey{A: e.TargetID, B: e.SourceID}
}

// PairKey is an unordered pair of paper ids.
type PairKey struct {
	A, B string
}

// OrphanedEdgeInfo describes an edge with a missing endpoint.
type OrphanedEdgeInfo struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"` // "missing_source", "missing_target", or "missing_both"
}

// DetectOrphanedEdges splits edges into those whose endpoints are both
// present and those that are not.
func DetectOrphanedEdges(edges []Edge, present func(id string) bool) (orphaned []OrphanedEdgeInfo, valid []Edge) {
	for _, e := range edges {
		sourceOK := present(e.SourceID)
		targetOK := present(e.TargetID)

		if sourceOK && targetOK {
			valid = append(valid, e)
			continue
		}
		info := OrphanedEdgeInfo{SourceID: e.SourceID, TargetID: e.TargetID}
		switch {
		case !sourceOK && !targetOK:
			info.Reason = "missing_both"
		case !sourceOK:
			info.Reason = "missing_source"
		default:
			info.Reason = "missing_target"
		}
		orphaned = append(orphaned, info)
	}
	return orphaned, valid
}

// FindDuplicateEdges counts unordered pairs joined by more than one edge.
func FindDuplicateEdges(edges []Edge) map[PairKey]int {
	counts := make(map[PairKey]int)
	for _, e := range edges {
		counts[e.Key()]++
	}

	duplicates := make(map[PairKey]int)
	for key, count := range counts {
		if count > 1 {
			duplicates[key] = count
		}
	}
	return duplicates
}
