// Package strategy chooses the counter-approach for one agent reply
// from the rhetorical analysis of the user's latest message.
package strategy

import (
	"strings"

	"github.com/szaher/kontra/internal/analysis"
)

// Tag identifies a primary counter-strategy.
type Tag string

const (
	EvidenceFlooding Tag = "evidence_flooding"
	EmotionalCounter Tag = "emotional_counter"
	LogicalStructure Tag = "logical_structure"
)

// maxSupporting bounds the techniques woven into one reply.
const maxSupporting = 3

// Strategy is the plan for a single agent turn. It is derived fresh
// each turn and never persisted.
type Strategy struct {
	Primary    Tag                  `json:"primary"`
	Supporting []analysis.Technique `json:"supporting"`
}

// defaultRotation supplies techniques when the user shows none worth
// countering; the starting point advances with the conversation so
// consecutive default turns vary.
var defaultRotation = []analysis.Technique{
	analysis.TechniqueAnchoring,
	analysis.TechniqueContrast,
	analysis.TechniqueAuthority,
}

// topicTechniques maps a topic family to up to two techniques that
// land well in that family.
var topicTechniques = map[string][]analysis.Technique{
	"technology": {analysis.TechniqueSocialProof, analysis.TechniqueScarcity},
	"science":    {analysis.TechniqueAuthority, analysis.TechniqueAnchoring},
	"consumer":   {analysis.TechniqueSocialProof, analysis.TechniqueContrast},
}

// Select is total: every analysis maps to exactly one strategy.
//
// The primary strategy counters the user's strongest signal: heavy
// evidence is met with evidence flooding, heavy emotion with an
// emotional counter, anything else with plain logical structure. The
// supporting techniques counter specific techniques the user employed,
// topped up from the topic table.
func Select(a analysis.Analysis, topic string, turnIndex int) Strategy {
	s := Strategy{Primary: primaryFor(a)}

	var supporting []analysis.Technique
	if a.HasTechnique(analysis.TechniqueEmotionalAppeal) {
		supporting = append(supporting, analysis.TechniqueLogicalStructure)
	}
	if a.HasTechnique(analysis.TechniqueAuthority) {
		supporting = append(supporting, analysis.TechniqueSocialProof)
	}
	if len(a.Techniques) == 0 {
		start := 0
		if turnIndex > 0 {
			start = (turnIndex / 2) % len(defaultRotation)
		}
		for i := range defaultRotation {
			supporting = append(supporting, defaultRotation[(start+i)%len(defaultRotation)])
		}
	}

	supporting = append(supporting, topicTechniques[topicFamily(topic)]...)

	s.Supporting = dedupe(supporting, maxSupporting)
	return s
}

func primaryFor(a analysis.Analysis) Tag {
	switch {
	case a.EvidenceLevel() > 0.5:
		return EvidenceFlooding
	case a.EmotionalWeight() > 0.7:
		return EmotionalCounter
	default:
		return LogicalStructure
	}
}

func topicFamily(topic string) string {
	lower := strings.ToLower(topic)
	switch {
	case containsAny(lower, "android", "ios", "iphone", "playstation", "xbox", "crypto", "bitcoin", "pc", "mac"):
		return "technology"
	case containsAny(lower, "climate", "vaccine", "earth"):
		return "science"
	case containsAny(lower, "pepsi", "coke", "cola", "coffee", "tea"):
		return "consumer"
	default:
		return "general"
	}
}

func dedupe(techniques []analysis.Technique, limit int) []analysis.Technique {
	seen := make(map[analysis.Technique]bool, len(techniques))
	var out []analysis.Technique
	for _, t := range techniques {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
