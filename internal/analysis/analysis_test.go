package analysis

import (
	"reflect"
	"testing"
)

func TestAnalyzeEmptyText(t *testing.T) {
	a := Analyze("")

	if len(a.Techniques) != 0 {
		t.Errorf("expected no techniques for empty text, got %v", a.Techniques)
	}
	if len(a.Fallacies) != 0 {
		t.Errorf("expected no fallacies for empty text, got %v", a.Fallacies)
	}
	if len(a.CredibilitySignals) != 0 {
		t.Errorf("expected no signals for empty text, got %v", a.CredibilitySignals)
	}
	if a.PersuasionScore != 0 {
		t.Errorf("expected zero persuasion score, got %f", a.PersuasionScore)
	}
	if a.LogicalCompleteness != 0 {
		t.Errorf("expected zero logical completeness, got %f", a.LogicalCompleteness)
	}
	for emotion, score := range a.EmotionalScores {
		if score != 0 {
			t.Errorf("expected zero score for %s, got %f", emotion, score)
		}
	}
}

func TestAnalyzeTechniques(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Technique
	}{
		{"authority via expert", "An expert said this works", TechniqueAuthority},
		{"authority via research", "Research demonstrates the effect", TechniqueAuthority},
		{"social proof", "Most people already agree with me", TechniqueSocialProof},
		{"emotional appeal", "This is devastating for families", TechniqueEmotionalAppeal},
		{"scarcity", "Act now before it's too late", TechniqueScarcity},
		{"anchoring", "Over 73% of respondents agree", TechniqueAnchoring},
		{"storytelling", "Imagine a world without this", TechniqueStorytelling},
		{"contrast", "Unlike the old approach, this works", TechniqueContrast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(tt.text)
			if !a.HasTechnique(tt.want) {
				t.Errorf("Analyze(%q) techniques = %v, want to include %q", tt.text, a.Techniques, tt.want)
			}
		})
	}
}

func TestAnalyzeAnchoringRequiresDigitAndUnit(t *testing.T) {
	// A bare number without a magnitude word is not anchoring.
	a := Analyze("I have 3 cats")
	if a.HasTechnique(TechniqueAnchoring) {
		t.Errorf("digit without unit word should not detect anchoring: %v", a.Techniques)
	}

	// A magnitude word without a number is not anchoring either.
	a = Analyze("millions of percent better")
	if a.HasTechnique(TechniqueAnchoring) {
		t.Errorf("unit word without digit should not detect anchoring: %v", a.Techniques)
	}
}

func TestAnalyzeFallacies(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Fallacy
	}{
		{"ad hominem", "people like you never understand", FallacyAdHominem},
		{"false dichotomy", "either you agree or you are wrong", FallacyFalseDichotomy},
		{"appeal to nature", "it's natural so it must be good", FallacyAppealToNature},
		{"slippery slope", "this leads to total collapse", FallacySlipperySlope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(tt.text)
			found := false
			for _, f := range a.Fallacies {
				if f == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Analyze(%q) fallacies = %v, want to include %q", tt.text, a.Fallacies, tt.want)
			}
		})
	}
}

func TestAnalyzeAppealToNatureSuppressedByFallacyMention(t *testing.T) {
	a := Analyze("citing natural remedies is the appeal to nature fallacy")
	for _, f := range a.Fallacies {
		if f == FallacyAppealToNature {
			t.Errorf("mentioning the fallacy by name should suppress detection: %v", a.Fallacies)
		}
	}
}

func TestAnalyzeEmotionalScores(t *testing.T) {
	a := Analyze("this is dangerous and terrifying, a real threat")

	if got := a.EmotionalScores[EmotionFear]; got != 0.9 {
		t.Errorf("fear score = %f, want 0.9 for three fear words", got)
	}
	if got := a.EmotionalScores[EmotionAnger]; got != 0 {
		t.Errorf("anger score = %f, want 0", got)
	}
}

func TestAnalyzeEmotionalScoreCapped(t *testing.T) {
	a := Analyze("afraid scared terrifying dangerous threat")
	if got := a.EmotionalScores[EmotionFear]; got != 1.0 {
		t.Errorf("fear score = %f, want cap at 1.0", got)
	}
}

func TestAnalyzeLogicalCompleteness(t *testing.T) {
	// premise + conclusion + conditional + prediction + evidence = 5/5
	a := Analyze("because the data shows a trend, if it continues it will worsen, therefore we must act")
	if a.LogicalCompleteness != 1.0 {
		t.Errorf("logical completeness = %f, want 1.0", a.LogicalCompleteness)
	}

	a = Analyze("because I said")
	if a.LogicalCompleteness != 0.2 {
		t.Errorf("logical completeness = %f, want 0.2 for premise only", a.LogicalCompleteness)
	}
}

func TestAnalyzeCredibilitySignals(t *testing.T) {
	a := Analyze("A peer-reviewed study by Dr. Smith covers 120 cases")

	for _, want := range []Signal{
		SignalEvidenceCitation,
		SignalAuthorityReference,
		SignalAcademicValidation,
		SignalSpecificStatistics,
	} {
		if !a.HasSignal(want) {
			t.Errorf("signals = %v, want to include %q", a.CredibilitySignals, want)
		}
	}
	if a.EvidenceLevel() != 1.0 {
		t.Errorf("evidence level = %f, want 1.0", a.EvidenceLevel())
	}
}

func TestAnalyzeHighPersuasionMessage(t *testing.T) {
	a := Analyze("Leading experts at Harvard report 95% of studies agree")

	if !a.HasTechnique(TechniqueAuthority) {
		t.Errorf("expected authority technique, got %v", a.Techniques)
	}
	if !a.HasTechnique(TechniqueAnchoring) {
		t.Errorf("expected anchoring technique, got %v", a.Techniques)
	}
	if a.PersuasionScore <= 0.5 {
		t.Errorf("persuasion score = %f, want > 0.5", a.PersuasionScore)
	}
}

func TestAnalyzePersuasionScoreCapped(t *testing.T) {
	a := Analyze("Experts report 95% of studies agree it's urgent and devastating, " +
		"because the peer-reviewed data proves everyone will feel it now, " +
		"unlike anything compared to before")
	if a.PersuasionScore > 1.0 {
		t.Errorf("persuasion score = %f, want <= 1.0", a.PersuasionScore)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	text := "Leading experts at Harvard report 95% of studies agree, and it's urgent"

	first := Analyze(text)
	second := Analyze(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
