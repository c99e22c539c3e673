package stance

import (
	"strings"
	"testing"
)

func TestResolveComparisons(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		topicHas    []string
		stanceHas   string
	}{
		{
			name:      "explain why better than",
			input:     "explain why pepsi is better than coke",
			topicHas:  []string{"pepsi", "coke"},
			stanceHas: "coke",
		},
		{
			name:      "bare better than",
			input:     "android is better than ios",
			topicHas:  []string{"android", "ios"},
			stanceHas: "ios",
		},
		{
			name:      "vs pattern",
			input:     "playstation vs xbox",
			topicHas:  []string{"playstation", "xbox"},
			stanceHas: "xbox",
		},
		{
			name:      "or pattern",
			input:     "cats or dogs",
			topicHas:  []string{"cats", "dogs"},
			stanceHas: "dogs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, stance := Resolve(tt.input)
			for _, want := range tt.topicHas {
				if !strings.Contains(strings.ToLower(topic), want) {
					t.Errorf("Resolve(%q) topic = %q, want to contain %q", tt.input, topic, want)
				}
			}
			if !strings.Contains(strings.ToLower(stance), tt.stanceHas) {
				t.Errorf("Resolve(%q) stance = %q, want to contain %q", tt.input, stance, tt.stanceHas)
			}
		})
	}
}

func TestResolveControversialKeywords(t *testing.T) {
	tests := []struct {
		input     string
		stanceHas string
	}{
		{"vaccines are dangerous", "vaccine"},
		{"climate change is a hoax", "climate"},
		{"the flat earth model makes sense", "spherical"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, stance := Resolve(tt.input)
			if !strings.HasPrefix(topic, "Discussion about ") {
				t.Errorf("Resolve(%q) topic = %q, want keyword-table topic", tt.input, topic)
			}
			if !strings.Contains(strings.ToLower(stance), tt.stanceHas) {
				t.Errorf("Resolve(%q) stance = %q, want to contain %q", tt.input, stance, tt.stanceHas)
			}
		})
	}
}

func TestResolveGenericFallback(t *testing.T) {
	input := "pineapple belongs on pizza"
	topic, stance := Resolve(input)

	if topic != "General debate" {
		t.Errorf("topic = %q, want %q", topic, "General debate")
	}
	if !strings.Contains(stance, input) {
		t.Errorf("stance = %q, want to embed the original text", stance)
	}
}

func TestResolveTotality(t *testing.T) {
	inputs := []string{
		"x",
		"    spaced out    ",
		"!!!",
		"a very long rambling message about nothing in particular that mentions no known subject",
	}

	for _, input := range inputs {
		topic, stance := Resolve(input)
		if topic == "" || stance == "" {
			t.Errorf("Resolve(%q) returned empty topic or stance", input)
		}
	}
}

func TestResolveEmptySecondOperandFallsThrough(t *testing.T) {
	// A trailing "or" has no second operand; the comparison must not
	// match and resolution falls to the keyword table or generic path.
	topic, stance := Resolve("coffee or")

	if stance == "" {
		t.Fatal("stance must never be empty")
	}
	// "coffee" is in the keyword table, so the table supplies the stance.
	if !strings.Contains(strings.ToLower(stance), "tea") {
		t.Errorf("stance = %q, want the keyword-table stance for coffee", stance)
	}
	if topic != "Discussion about coffee" {
		t.Errorf("topic = %q, want keyword-table topic", topic)
	}
}

func TestResolveStancePrefersSecondOperand(t *testing.T) {
	// "superior to" matches no comparison pattern; the keyword table
	// takes over and "android" maps to the iOS side.
	_, stance := Resolve("why iphone is superior to android")

	if !strings.Contains(strings.ToLower(stance), "ios") {
		t.Errorf("stance = %q, want the iOS side", stance)
	}
}
