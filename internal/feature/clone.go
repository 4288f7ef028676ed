package feature

import (
	"github.com/sibyllinesoft/refactorlens/internal/entity"
	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// CloneMember is one participant in a pre-computed clone group. Line
// ranges are inclusive, 1-based, matching Location.
type CloneMember struct {
	EntityID   string
	Path       string
	StartLine  int
	EndLine    int
	Similarity float64
}

// CloneGroup is a set of near-duplicate members with pairwise similarity.
type CloneGroup struct {
	Members []CloneMember
}

// Clone derives clone-mass features from externally supplied clone groups
// (clone-detection token-hashing is out of scope). It precomputes
// one stats record per participating entity so Extract is a lookup.
type Clone struct {
	stats map[string]cloneStats
}

type cloneStats struct {
	mass          float64
	groupCount    int
	maxSimilarity float64
	peerLocations int
}

// NewClone indexes groups by participating entity id.
func NewClone(groups []CloneGroup) *Clone {
	c := &Clone{stats: make(map[string]cloneStats)}
	for _, group := range groups {
		for _, m := range group.Members {
			s := c.stats[m.EntityID]
			s.groupCount++
			if m.Similarity > s.maxSimilarity {
				s.maxSimilarity = m.Similarity
			}
			s.peerLocations += len(group.Members) - 1
			clonedLines := m.EndLine - m.StartLine + 1
			s.mass += float64(clonedLines)
			c.stats[m.EntityID] = s
		}
	}
	return c
}

func (c *Clone) Name() string { return "clone" }

func (c *Clone) Features() []Feature {
	return []Feature{
		{Name: "clone.mass", Description: "overlapping cloned lines / entity LOC", Min: 0, Max: 1, Default: 0},
		{Name: "clone.group_count", Description: "clone groups the entity participates in", Min: 0, Max: 1000, Default: 0},
		{Name: "clone.max_similarity", Description: "max pairwise similarity across groups", Min: 0, Max: 1, Default: 0},
		{Name: "clone.peer_locations", Description: "total peer locations across groups", Min: 0, Max: 1e6, Default: 0},
	}
}

func (c *Clone) Supports(kind entity.Kind) bool {
	return kind == entity.KindFunction || kind == entity.KindMethod || kind == entity.KindClass
}

func (c *Clone) Extract(e *entity.Entity, _ *graph.Index) (map[string]float64, error) {
	s, ok := c.stats[e.ID]
	if !ok {
		return map[string]float64{
			"clone.mass": 0, "clone.group_count": 0, "clone.max_similarity": 0, "clone.peer_locations": 0,
		}, nil
	}
	mass := 0.0
	if loc := e.LOC(); loc > 0 {
		mass = s.mass / float64(loc)
		if mass > 1 {
			mass = 1
		}
	}
	return map[string]float64{
		"clone.mass":           mass,
		"clone.group_count":    float64(s.groupCount),
		"clone.max_similarity": s.maxSimilarity,
		"clone.peer_locations": float64(s.peerLocations),
	}, nil
}
