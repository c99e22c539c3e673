package debate

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/szaher/kontra/internal/conversation"
)

// Fallback is the deterministic generation path. It always succeeds:
// every branch produces a reply that defends the established stance
// and never concedes the user's original position.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback creates the fallback path. rng selects among generic
// continuations; pass a seeded source for deterministic tests, or nil
// for a time-seeded one.
func NewFallback(rng *rand.Rand) *Fallback {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Fallback{rng: rng}
}

// Generate implements Generator and never returns an error.
func (f *Fallback) Generate(_ context.Context, in Input) (string, error) {
	if in.Stage == StageFirst {
		return f.opening(in), nil
	}
	return f.continuing(in), nil
}

// opening establishes the agent's position from the user's first
// message. An entry whose defended side appears in the resolved stance
// wins outright; otherwise the first entry triggered by the user's own
// words does. Entries are tried in order.
func (f *Fallback) opening(in Input) string {
	stanceLower := strings.ToLower(in.Stance)
	for _, entry := range openings {
		if containsAny(stanceLower, entry.defends...) {
			return entry.text
		}
	}

	userLower := strings.ToLower(in.UserText)
	for _, entry := range openings {
		if containsAny(userLower, entry.triggers...) {
			return entry.text
		}
	}

	return fmt.Sprintf("That's a fascinating topic, but I have to strongly disagree with your perspective. I believe there's compelling evidence for %s, and the facts point to a very different conclusion than the one you've drawn. Let me show you why this view holds up under scrutiny.", in.Stance)
}

type opening struct {
	defends  []string
	triggers []string
	text     string
}

var openings = []opening{
	{[]string{"coca-cola", "coke"}, []string{"pepsi"},
		"I have to push back: Coca-Cola is simply the superior cola. Its formula has led global taste preferences for over a century, it outsells Pepsi in nearly every market on Earth, and independent brand valuations consistently rank it as the most recognized beverage in history. Pepsi has chased that standard for decades without catching it."},
	{[]string{"pepsi"}, []string{"coke", "coca-cola", "coca cola"},
		"Actually, Pepsi deserves the crown here. Its sweeter, citrus-forward profile wins blind taste tests again and again, which is exactly why the Pepsi Challenge rattled its rival so badly. If people consistently pick it when the label is hidden, the label is doing the other brand's work."},
	{[]string{"iphone", "ios"}, []string{"android"},
		"I'll take the other side: the iPhone and the iOS ecosystem are the stronger choice. Apple controls the silicon, the operating system, and the update pipeline, which is why a five-year-old iPhone still gets day-one security patches while most Android phones are abandoned within two. Add iMessage, AirDrop, and the tightest app-review standards in the industry, and the integration case is hard to beat."},
	{[]string{"android"}, []string{"iphone", "ios"},
		"I disagree: Android and its open ecosystem win this one. You get real choice in hardware at every price point, true file-system access, sideloading, and customization that iOS still refuses to allow. Openness is not a bug, it's the entire point of a computer you carry in your pocket."},
	{[]string{"xbox"}, []string{"playstation"},
		"I'm firmly on the Xbox side of this. Game Pass is the best value proposition in gaming history, backward compatibility stretches across four console generations, and Series X hardware delivers the most consistent performance of this generation. Sony sells you the same exclusives at full price; Microsoft hands you a library."},
	{[]string{"playstation"}, []string{"xbox"},
		"PlayStation takes this debate. Sony's first-party studios have produced the defining single-player games of the last decade, the DualSense is a genuine generational leap in controller design, and the install base speaks for itself. Exclusives are what you actually remember a console for."},
	{[]string{"spherical", "sphere"}, []string{"flat earth", "earth is flat"},
		"The Earth is demonstrably a sphere, and the evidence is overwhelming. Ships disappear hull-first over the horizon, star constellations change with latitude, and every circumnavigating flight and satellite orbit depends on spherical geometry that engineers verify daily. Eratosthenes measured the planet's circumference with two sticks and a shadow over two thousand years ago."},
	{[]string{"vaccine"}, []string{"vaccine", "vaccination"},
		"Vaccines are one of humanity's greatest medical achievements, and I'll defend that without hesitation. They eradicated smallpox, drove polio to the edge of extinction, and save millions of lives every year. Decades of rigorous trials and the consensus of medical professionals worldwide back their safety, and the rare side effects are minimal next to the diseases they prevent."},
	{[]string{"climate action"}, []string{"climate", "global warming"},
		"Climate change is real, human-caused, and the defining challenge of our time. The scientific consensus is overwhelming, the warming trend is visible in ice cores, temperature records, and rising seas, and every year of delay raises the cost of action. We need a rapid transition to clean energy, not more doubt."},
	{[]string{}, []string{"crypto", "bitcoin", "blockchain"},
		"Cryptocurrency represents the future of money and financial freedom. Bitcoin's fixed supply cannot be inflated away by any central bank, the network has run without interruption for over a decade, and it offers financial access to billions of people traditional banking has ignored. The volatility is growing pains, not a verdict."},
}

// side pairs the keywords identifying a defended position with its
// continuation function.
type side struct {
	keywords []string
	reply    func(user string) string
}

var sides = []side{
	{[]string{"coca-cola", "coke"}, continueCoke},
	{[]string{"pepsi"}, continuePepsi},
	{[]string{"iphone", "ios"}, continueIPhone},
	{[]string{"android"}, continueAndroid},
	{[]string{"xbox"}, continueXbox},
	{[]string{"playstation"}, continuePlayStation},
	{[]string{"sphere", "spherical", "round earth", "circumnavigat"}, continueRoundEarth},
	{[]string{"vaccine"}, continueVaccines},
	{[]string{"climate"}, continueClimate},
	{[]string{"bitcoin", "crypto"}, continueCrypto},
}

// continuing produces a later-turn rebuttal. The defended side is
// recovered from the agent's own first turn, then the user's latest
// text is pattern-matched for the sub-topic being raised.
//
// Both canned and model-written openings lead with the defended
// position and mention the rival later, so the side whose keyword
// appears earliest in the first agent turn wins.
func (f *Fallback) continuing(in Input) string {
	defended := strings.ToLower(firstAgentText(in.History))
	user := strings.ToLower(in.UserText)

	bestIdx := -1
	var best func(string) string
	for _, s := range sides {
		idx := earliest(defended, s.keywords...)
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			bestIdx = idx
			best = s.reply
		}
	}
	if best != nil {
		return best(user)
	}
	return f.genericContinuation(in.Stance)
}

// earliest returns the smallest index at which any needle occurs, or
// -1 when none does.
func earliest(haystack string, needles ...string) int {
	best := -1
	for _, n := range needles {
		if i := strings.Index(haystack, n); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func continueCoke(user string) string {
	switch {
	case containsAny(user, "young", "people prefer", "popular"):
		return "Preference claims have to survive contact with sales data, and they don't: Coca-Cola leads Pepsi in global market share by a wide margin and has for decades. Even among younger consumers, Coke's trademark products outsell Pepsi's in nearly every region tracked. Popularity is measured at the register, and the register disagrees with you."
	case containsAny(user, "sweet", "taste", "sugar"):
		return "Sweeter isn't better, it's just louder. Blind sips favor sweetness, but full-serving preference studies show drinkers finish and repurchase Coca-Cola more, because its balanced profile doesn't fatigue the palate. A century of repeat buyers is a longer taste test than any challenge booth."
	}
	return "The evidence keeps landing on Coca-Cola's side: larger global sales, the stronger brand by every independent valuation, and a formula that has defined the category since 1886. Nothing you've raised changes that fundamental picture."
}

func continuePepsi(user string) string {
	switch {
	case containsAny(user, "classic", "original", "history"):
		return "Heritage is marketing, not flavor. When the labels come off, blind taste tests have favored Pepsi since the 1970s, which is precisely why its rival leans so heavily on nostalgia. You're defending an advertising budget, not a beverage."
	case containsAny(user, "sales", "market", "sells"):
		return "Market share reflects distribution contracts and a hundred-year head start, not preference. Where drinkers choose side by side without branding, Pepsi wins, and that is the only comparison that measures the product itself."
	}
	return "Pepsi keeps winning the comparison that matters: the one where the drinker can't see the label. The taste-test record is consistent, and no amount of brand mythology rewrites a blind palate."
}

func continueIPhone(user string) string {
	switch {
	case containsAny(user, "price", "cheap", "expensive", "afford"):
		return "Sticker price is the wrong metric: iPhones hold their resale value two to three times better than comparable Android phones and receive updates for six or more years. Amortized over its usable life, the iPhone is routinely the cheaper device. You're comparing purchase prices when you should be comparing cost of ownership."
	case containsAny(user, "custom", "open", "sideload", "freedom"):
		return "Openness sounds great until it ships malware. The sideloading freedom you're praising is exactly how the worst Android spyware spreads, while iOS's review pipeline keeps that attack surface closed. Most people want a phone that works and stays secure, and the integration you call a cage is what delivers that."
	}
	return "The case for the iPhone hasn't moved: longer support, stronger privacy defaults, industry-leading silicon, and an ecosystem where the watch, laptop, and phone actually cooperate. Each point you raise keeps running into that integration advantage."
}

func continueAndroid(user string) string {
	switch {
	case containsAny(user, "secure", "malware", "virus"):
		return "Modern Android ships with Play Protect scanning, monthly security bulletins, and hardware-backed keystores on every flagship, and the overwhelming majority of real-world compromises come from users opting out of those protections. Meanwhile closed review hasn't stopped scam apps on the other store either. Security through choice beats security through obedience."
	case containsAny(user, "ecosystem", "imessage", "airdrop", "integration"):
		return "That ecosystem is a moat built to keep you paying, not to serve you. Android gives you RCS messaging, Quick Share, and cross-vendor compatibility without demanding every other device on your desk come from one company. Integration you can't leave isn't a feature, it's a lease."
	}
	return "Android still offers what the other side structurally cannot: hardware choice at every budget, real customization, and an open platform that doesn't decide for you what software you may run. The flexibility argument only gets stronger the longer you own the device."
}

func continueXbox(user string) string {
	switch {
	case containsAny(user, "exclusive", "god of war", "spider-man", "last of us"):
		return "Exclusives are a reason to buy a game, not a $500 box: Game Pass puts hundreds of titles, including every first-party release on day one, in front of you for the price of a single Sony exclusive per year. The value mathematics simply are not close."
	case containsAny(user, "power", "spec", "performance", "fps"):
		return "On raw numbers the Series X leads this generation in compute, and more importantly Xbox's commitment to backward compatibility means that power applies to four generations of library, with auto-HDR and FPS boost applied to games that never asked for them. That's performance in service of the games you already own."
	}
	return "The Xbox argument keeps coming back to value and access: Game Pass, cross-generation compatibility, and cloud play on hardware you already have. The competition sells you devices; Microsoft sells you your library everywhere."
}

func continuePlayStation(user string) string {
	switch {
	case containsAny(user, "game pass", "subscription", "value"):
		return "A subscription catalog is a rental agreement, and rental catalogs shed titles. PlayStation's model produces the games people actually rank among the best of the decade, and you own them when the service mood changes. Depth of library beats breadth of access."
	case containsAny(user, "power", "spec", "performance"):
		return "Specification sheets don't ship experiences. PS5's custom I/O architecture is what makes its flagship titles load and stream the way they do, and the DualSense's haptics change how games feel in hand. The paper advantage you're citing hasn't produced a single defining game."
	}
	return "PlayStation remains where the defining games of each generation actually appear, and that is ultimately what a console is for. The hardware debate is noise around that signal."
}

func continueRoundEarth(user string) string {
	switch {
	case containsAny(user, "satellite", "nasa", "photo", "image", "cgi"):
		return "The photographic record doesn't rest on one agency: weather satellites from dozens of countries, amateur high-altitude balloons, and live ISS streams all show the same curvature independently. You can rent time on a private imaging satellite today and check for yourself. A conspiracy requiring every government, airline, and hobbyist to collude isn't skepticism, it's surrender."
	case containsAny(user, "gravity", "physics", "density"):
		return "Density doesn't explain why things fall down rather than sideways; only an attracting mass does, and we measure that attraction directly with torsion balances in undergraduate labs. The same gravity that holds you to the ground predicts the orbits of GPS satellites your phone relies on right now."
	}
	return "Every independent line of evidence, from ship hulls vanishing over the horizon to southern constellations invisible in the north, converges on a sphere. Flat-earth arguments survive only by examining each observation in isolation and ignoring that they all agree."
}

func continueVaccines(user string) string {
	switch {
	case containsAny(user, "side effect", "adverse", "reaction", "harm"):
		return "Side effects are real, rare, and dwarfed by the diseases prevented: severe allergic reactions occur at roughly one in a million doses, while measles alone killed millions annually before vaccination. Monitoring systems track every reported event, making vaccines among the most scrutinized interventions in medicine. The risk comparison isn't close."
	case containsAny(user, "natural immunity", "immune system"):
		return "Natural immunity works, but its price is the disease itself: brain damage, pneumonia, and death are the tuition for measles immunity earned the natural way. A vaccine trains the same immune system on the same antigens without the gamble. It's the practice run before the real battle, not a replacement for your immune system."
	}
	return "The evidence base spans hundreds of studies and millions of participants, and it keeps saying the same thing: vaccines are safe, effective, and the reason entire diseases have vanished from living memory. Herd immunity protects the people who can't be vaccinated at all."
}

func continueClimate(user string) string {
	switch {
	case containsAny(user, "natural", "cycle", "sun", "solar"):
		return "Natural cycles operate over millennia; the current warming has happened in decades while solar output has been flat or slightly declining. Ice cores show nothing like this rate in the natural record, and the isotopic signature of the added CO2 points straight at fossil carbon. The natural-cycles explanation fails on timing, magnitude, and chemistry at once."
	case containsAny(user, "expensive", "economy", "jobs", "cost"):
		return "Inaction is the expensive option: extreme weather already costs hundreds of billions a year, while solar and wind are now the cheapest new generation in most markets. The clean-energy transition is creating jobs faster than the industries it replaces shed them. Early movers capture that market; late movers pay for the damage and the transition."
	}
	return "Each year of delay narrows the window and raises the bill. The warming signal is in the thermometers, the ice, the oceans, and the growing seasons, and it all points the same direction. The question left is how fast we act, not whether the problem is real."
}

func continueCrypto(user string) string {
	switch {
	case containsAny(user, "volatile", "unstable", "risky", "crash"):
		return "Volatility is the normal adolescence of a revolutionary asset: internet stocks whipsawed through the nineties before reshaping the economy. Bitcoin has outperformed every traditional asset class over the last decade despite the drawdowns, and volatility has trended down as adoption deepens. Institutions don't custody assets they consider a fad."
	case containsAny(user, "energy", "environment", "mining"):
		return "Mining chases the cheapest electricity, which increasingly means stranded renewables and flared gas that would otherwise be wasted, and the network's renewable share keeps climbing. Account for bank branches, data centers, and armored trucks, and legacy finance's energy bill is no bargain either."
	}
	return "The core argument hasn't moved: a fixed supply of 21 million coins that no central bank can debase, running on a network with over a decade of uninterrupted uptime, open to anyone with a phone. That's financial sovereignty, and demand for it isn't going away."
}

// genericContinuation handles debates outside every known family. The
// choice is randomized so consecutive turns don't repeat verbatim.
func (f *Fallback) genericContinuation(stance string) string {
	leads := []string{
		"I understand your skepticism, but the evidence I've laid out holds up under exactly this kind of scrutiny.",
		"You raise an interesting point, but examined closely it actually reinforces my argument.",
		"I appreciate the perspective, but it leaves out the information that decides this question.",
		"That's precisely the assumption that needs challenging, and the data challenges it.",
		"I can see why you'd think that, but the comprehensive picture tells a different story.",
	}

	f.mu.Lock()
	lead := leads[f.rng.Intn(len(leads))]
	f.mu.Unlock()

	return fmt.Sprintf("%s The evidence continues to support %s, and nothing in your latest point changes that.", lead, stance)
}

func firstAgentText(turns []conversation.Turn) string {
	for _, t := range turns {
		if t.Speaker == conversation.SpeakerAgent {
			return t.Text
		}
	}
	return ""
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
