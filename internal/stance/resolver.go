// Package stance derives the debate topic and the position the agent
// will defend from the opening user message. Resolve is called once
// per conversation; its result is fixed for the conversation lifetime.
package stance

import (
	"fmt"
	"regexp"
	"strings"
)

// comparisonPattern extracts the two operands of an explicit
// comparative claim. The agent always defends the second operand.
type comparisonPattern struct {
	re        *regexp.Regexp
	connector string
}

// Ordered by specificity: the "is better than" family must run before
// the generic vs/or patterns or those would shadow it.
var comparisonPatterns = []comparisonPattern{
	{regexp.MustCompile(`(.+?)\s+is\s+better\s+than\s+(.+)`), " vs "},
	{regexp.MustCompile(`why\s+(.+?)\s+is\s+better\s+than\s+(.+)`), " vs "},
	{regexp.MustCompile(`explain\s+why\s+(.+?)\s+is\s+better\s+than\s+(.+)`), " vs "},
	{regexp.MustCompile(`(.+?)\s+vs\.?\s+(.+)`), " vs "},
	{regexp.MustCompile(`(.+?)\s+or\s+(.+)`), " or "},
}

// opposingStance pairs a hot-button keyword with the canonical position
// the agent takes when the keyword appears. Order matters: the first
// keyword found as a substring wins.
type opposingStance struct {
	keyword string
	stance  string
}

var controversialTopics = []opposingStance{
	{"vaccine", "pro-vaccine safety and effectiveness"},
	{"climate", "climate action and environmental protection"},
	{"flat earth", "spherical Earth and scientific evidence"},
	{"android", "iPhone and iOS ecosystem"},
	{"ios", "Android and open-source advantages"},
	{"pc", "Mac and Apple ecosystem"},
	{"mac", "PC and Windows flexibility"},
	{"playstation", "Xbox and Microsoft gaming"},
	{"xbox", "PlayStation and Sony gaming"},
	{"coffee", "tea and its health benefits"},
	{"tea", "coffee and its energy benefits"},
	{"pepsi", "Coca-Cola and its superior taste"},
	{"coke", "Pepsi and its better flavor profile"},
}

// Resolve maps the first user message to (topic, agent stance). It is
// total: every input, including unrecognized ones, yields a non-empty
// opposing framing.
//
// Resolution order:
//  1. explicit comparative claims ("X is better than Y", "X vs Y",
//     "X or Y") — the agent defends the second operand;
//  2. the controversial-keyword table;
//  3. a generic opposing framing of the original text.
//
// A comparison match whose second operand is empty (e.g. a trailing
// "or") is treated as no match and falls through.
func Resolve(firstUserText string) (topic, stance string) {
	lower := strings.ToLower(strings.TrimSpace(firstUserText))

	for _, p := range comparisonPatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		left := strings.TrimSpace(m[1])
		right := strings.TrimSpace(m[2])
		if left == "" || right == "" {
			continue
		}
		return left + p.connector + right, right
	}

	for _, entry := range controversialTopics {
		if strings.Contains(lower, entry.keyword) {
			return "Discussion about " + entry.keyword, entry.stance
		}
	}

	return "General debate", fmt.Sprintf("the opposing viewpoint to: %s", firstUserText)
}
