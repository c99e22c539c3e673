// Package analysis detects rhetorical techniques, logical fallacies and
// credibility signals in a single debate message. All detection is
// keyword-based and deterministic: the same text always produces the
// same Analysis.
package analysis

import (
	"strings"
	"unicode"
)

// Technique is a named persuasion technique.
type Technique string

const (
	TechniqueAnchoring        Technique = "anchoring"
	TechniqueSocialProof      Technique = "social_proof"
	TechniqueAuthority        Technique = "authority"
	TechniqueScarcity         Technique = "scarcity"
	TechniqueReciprocity      Technique = "reciprocity"
	TechniqueCommitment       Technique = "commitment"
	TechniqueContrast         Technique = "contrast"
	TechniqueStorytelling     Technique = "storytelling"
	TechniqueEmotionalAppeal  Technique = "emotional_appeal"
	TechniqueLogicalStructure Technique = "logical_structure"
	TechniqueReframing        Technique = "reframing"
	TechniqueBandwagon        Technique = "bandwagon"
)

// Fallacy is a named logical fallacy.
type Fallacy string

const (
	FallacyAdHominem           Fallacy = "ad_hominem"
	FallacyStrawman            Fallacy = "strawman"
	FallacyFalseDichotomy      Fallacy = "false_dichotomy"
	FallacyAppealToNature      Fallacy = "appeal_to_nature"
	FallacySlipperySlope       Fallacy = "slippery_slope"
	FallacyCircularReasoning   Fallacy = "circular_reasoning"
	FallacyAppealToEmotion     Fallacy = "appeal_to_emotion"
	FallacyHastyGeneralization Fallacy = "hasty_generalization"
)

// Emotion identifies an emotional register scored by the analyzer.
type Emotion string

const (
	EmotionFear    Emotion = "fear"
	EmotionAnger   Emotion = "anger"
	EmotionHope    Emotion = "hope"
	EmotionUrgency Emotion = "urgency"
)

// Signal is a credibility-building signal.
type Signal string

const (
	SignalEvidenceCitation   Signal = "evidence_citation"
	SignalAuthorityReference Signal = "authority_reference"
	SignalAcademicValidation Signal = "academic_validation"
	SignalSpecificStatistics Signal = "specific_statistics"
)

// signalKinds is the number of distinct credibility signals the
// analyzer can emit; EvidenceLevel normalizes against it.
const signalKinds = 4

// Analysis is the full rhetorical profile of one message.
type Analysis struct {
	Techniques          []Technique         `json:"techniques"`
	Fallacies           []Fallacy           `json:"fallacies"`
	EmotionalScores     map[Emotion]float64 `json:"emotional_scores"`
	LogicalCompleteness float64             `json:"logical_completeness"`
	CredibilitySignals  []Signal            `json:"credibility_signals"`
	PersuasionScore     float64             `json:"persuasion_score"`
}

// HasTechnique reports whether t was detected.
func (a Analysis) HasTechnique(t Technique) bool {
	for _, got := range a.Techniques {
		if got == t {
			return true
		}
	}
	return false
}

// HasSignal reports whether s was detected.
func (a Analysis) HasSignal(s Signal) bool {
	for _, got := range a.CredibilitySignals {
		if got == s {
			return true
		}
	}
	return false
}

// EvidenceLevel is the fraction of credibility signal kinds present,
// in [0,1].
func (a Analysis) EvidenceLevel() float64 {
	return float64(len(a.CredibilitySignals)) / signalKinds
}

// EmotionalWeight is the sum of all emotional scores. Each score is
// capped at 1.0 but the sum may exceed it.
func (a Analysis) EmotionalWeight() float64 {
	var sum float64
	for _, v := range a.EmotionalScores {
		sum += v
	}
	return sum
}

var emotionWords = map[Emotion][]string{
	EmotionFear:    {"afraid", "scared", "terrifying", "dangerous", "threat"},
	EmotionAnger:   {"outrageous", "disgusting", "ridiculous", "absurd"},
	EmotionHope:    {"amazing", "wonderful", "brilliant", "fantastic"},
	EmotionUrgency: {"now", "immediately", "urgent", "critical", "emergency"},
}

// emotionOrder fixes iteration order so scores are built
// deterministically regardless of map layout.
var emotionOrder = []Emotion{EmotionFear, EmotionAnger, EmotionHope, EmotionUrgency}

// Analyze produces the rhetorical profile of text. It is total: the
// empty string yields empty tag sets and zero scores.
func Analyze(text string) Analysis {
	lower := strings.ToLower(text)

	a := Analysis{
		Techniques:         detectTechniques(lower),
		Fallacies:          detectFallacies(lower),
		EmotionalScores:    scoreEmotions(lower),
		CredibilitySignals: detectSignals(lower),
	}
	a.LogicalCompleteness = logicalCompleteness(lower)

	score := 0.3*float64(len(a.Techniques)) +
		0.3*float64(len(a.CredibilitySignals)) +
		0.2*a.EmotionalWeight() +
		0.2*a.LogicalCompleteness
	a.PersuasionScore = min(score, 1.0)

	return a
}

func detectTechniques(lower string) []Technique {
	var techniques []Technique

	if containsAny(lower, "expert", "research", "study", "professor", "dr.") {
		techniques = append(techniques, TechniqueAuthority)
	}
	if containsAny(lower, "everyone", "most people", "majority", "popular") {
		techniques = append(techniques, TechniqueSocialProof)
	}
	if containsAny(lower, "feel", "heart", "devastating", "amazing", "terrible") {
		techniques = append(techniques, TechniqueEmotionalAppeal)
	}
	if containsAny(lower, "limited", "now", "before it's too late", "urgent") {
		techniques = append(techniques, TechniqueScarcity)
	}
	// Anchoring needs a concrete number AND a magnitude word.
	if hasDigit(lower) && containsAny(lower, "%", "percent", "million", "billion") {
		techniques = append(techniques, TechniqueAnchoring)
	}
	if containsAny(lower, "i remember", "imagine", "story", "example") {
		techniques = append(techniques, TechniqueStorytelling)
	}
	if containsAny(lower, "unlike", "compared to", "whereas", "on the other hand") {
		techniques = append(techniques, TechniqueContrast)
	}

	return techniques
}

func detectFallacies(lower string) []Fallacy {
	var fallacies []Fallacy

	if containsAny(lower, "people like you", "typical", "you obviously") {
		fallacies = append(fallacies, FallacyAdHominem)
	}
	if containsAny(lower, "either", "only two", "must choose") {
		fallacies = append(fallacies, FallacyFalseDichotomy)
	}
	// Talking about the fallacy itself is not committing it.
	if containsAny(lower, "natural", "unnatural", "artificial") && !strings.Contains(lower, "fallacy") {
		fallacies = append(fallacies, FallacyAppealToNature)
	}
	if containsAny(lower, "leads to", "next thing", "before you know") {
		fallacies = append(fallacies, FallacySlipperySlope)
	}

	return fallacies
}

func scoreEmotions(lower string) map[Emotion]float64 {
	scores := make(map[Emotion]float64, len(emotionOrder))
	for _, emotion := range emotionOrder {
		count := 0
		for _, word := range emotionWords[emotion] {
			if strings.Contains(lower, word) {
				count++
			}
		}
		scores[emotion] = min(float64(count)*0.3, 1.0)
	}
	return scores
}

func logicalCompleteness(lower string) float64 {
	checks := []bool{
		containsAny(lower, "because", "since", "given that"), // premise
		containsAny(lower, "therefore", "thus", "so"),        // conclusion
		containsAny(lower, "if", "when", "unless"),           // conditionals
		containsAny(lower, "will", "going to", "expect"),     // predictions
		containsAny(lower, "data", "research", "study", "proof"),
	}

	present := 0
	for _, ok := range checks {
		if ok {
			present++
		}
	}
	return float64(present) / float64(len(checks))
}

func detectSignals(lower string) []Signal {
	var signals []Signal

	if containsAny(lower, "research", "study", "data") {
		signals = append(signals, SignalEvidenceCitation)
	}
	if containsAny(lower, "expert", "professor", "dr.") {
		signals = append(signals, SignalAuthorityReference)
	}
	if containsAny(lower, "peer-reviewed", "published", "journal") {
		signals = append(signals, SignalAcademicValidation)
	}
	if hasDigit(lower) {
		signals = append(signals, SignalSpecificStatistics)
	}

	return signals
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
