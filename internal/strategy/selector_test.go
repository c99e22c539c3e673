package strategy

import (
	"testing"

	"github.com/szaher/kontra/internal/analysis"
)

func TestSelectPrimaryEvidenceFlooding(t *testing.T) {
	a := analysis.Analyze("A peer-reviewed study by Dr. Smith with 120 data points")

	s := Select(a, "Discussion about climate", 2)

	if s.Primary != EvidenceFlooding {
		t.Errorf("primary = %q, want %q for evidence-heavy input", s.Primary, EvidenceFlooding)
	}
}

func TestSelectPrimaryEmotionalCounter(t *testing.T) {
	a := analysis.Analyze("this is terrifying and outrageous, act immediately")

	if a.EvidenceLevel() > 0.5 {
		t.Fatalf("test input unexpectedly evidence-heavy: %v", a.CredibilitySignals)
	}
	s := Select(a, "General debate", 2)

	if s.Primary != EmotionalCounter {
		t.Errorf("primary = %q, want %q for emotional input", s.Primary, EmotionalCounter)
	}
}

func TestSelectPrimaryDefault(t *testing.T) {
	a := analysis.Analyze("I simply prefer the first option")

	s := Select(a, "General debate", 0)

	if s.Primary != LogicalStructure {
		t.Errorf("primary = %q, want %q as default", s.Primary, LogicalStructure)
	}
}

func TestSelectCounterTechniques(t *testing.T) {
	a := analysis.Analyze("I feel in my heart this is devastating")
	if !a.HasTechnique(analysis.TechniqueEmotionalAppeal) {
		t.Fatalf("test input should trigger emotional appeal, got %v", a.Techniques)
	}

	s := Select(a, "General debate", 2)

	found := false
	for _, tech := range s.Supporting {
		if tech == analysis.TechniqueLogicalStructure {
			found = true
		}
	}
	if !found {
		t.Errorf("supporting = %v, want logical structure countering emotional appeal", s.Supporting)
	}
}

func TestSelectAuthorityCounteredBySocialProof(t *testing.T) {
	a := analysis.Analyze("professor Smith's research proves it")

	s := Select(a, "General debate", 2)

	found := false
	for _, tech := range s.Supporting {
		if tech == analysis.TechniqueSocialProof {
			found = true
		}
	}
	if !found {
		t.Errorf("supporting = %v, want social proof countering authority", s.Supporting)
	}
}

func TestSelectDefaultRotationWhenNoTechniques(t *testing.T) {
	a := analysis.Analyze("hello")
	if len(a.Techniques) != 0 {
		t.Fatalf("test input should carry no techniques, got %v", a.Techniques)
	}

	s := Select(a, "General debate", 0)

	if len(s.Supporting) == 0 {
		t.Fatal("expected rotation techniques for a plain message")
	}
	if s.Supporting[0] != analysis.TechniqueAnchoring {
		t.Errorf("rotation at turn 0 starts with %q, want anchoring", s.Supporting[0])
	}

	// Later in the conversation the rotation starts elsewhere.
	later := Select(a, "General debate", 2)
	if later.Supporting[0] != analysis.TechniqueContrast {
		t.Errorf("rotation at turn 2 starts with %q, want contrast", later.Supporting[0])
	}
}

func TestSelectSupportingBoundedAndUnique(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"experts feel everyone is devastated, 95% say so urgently",
		"professor research study expert dr. data proof",
	}
	topics := []string{"Discussion about pepsi", "android vs ios", "General debate", "Discussion about climate"}

	for _, input := range inputs {
		for _, topic := range topics {
			s := Select(analysis.Analyze(input), topic, 4)

			if len(s.Supporting) > 3 {
				t.Errorf("Select(%q, %q) supporting = %v, want at most 3", input, topic, s.Supporting)
			}
			seen := map[analysis.Technique]bool{}
			for _, tech := range s.Supporting {
				if seen[tech] {
					t.Errorf("Select(%q, %q) has duplicate technique %q", input, topic, tech)
				}
				seen[tech] = true
			}
			if s.Primary == "" {
				t.Errorf("Select(%q, %q) produced empty primary strategy", input, topic)
			}
		}
	}
}
