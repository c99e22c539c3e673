package debate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/szaher/kontra/internal/analysis"
	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/llm"
)

// contextWindow is how many recent turns the continuing-turn prompt
// embeds.
const contextWindow = 4

// Responder is the external-generation path: it encodes the fixed
// stance and the selected strategy into a system/user prompt pair and
// calls a completion backend with a bounded timeout.
type Responder struct {
	client      llm.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithModel sets the completion model.
func WithModel(model string) ResponderOption {
	return func(r *Responder) { r.model = model }
}

// WithMaxTokens bounds the reply length.
func WithMaxTokens(n int) ResponderOption {
	return func(r *Responder) { r.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ResponderOption {
	return func(r *Responder) { r.temperature = t }
}

// WithTimeout bounds one generation call. After the timeout the engine
// proceeds on the fallback path.
func WithTimeout(d time.Duration) ResponderOption {
	return func(r *Responder) { r.timeout = d }
}

// NewResponder creates the external-generation path over a completion
// client.
func NewResponder(client llm.Client, opts ...ResponderOption) *Responder {
	r := &Responder{
		client:      client,
		model:       "claude-sonnet-4-5",
		maxTokens:   300,
		temperature: 0.7,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate implements Generator. A single attempt within the timeout;
// the caller treats any error as recoverable.
func (r *Responder) Generate(ctx context.Context, in Input) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	temp := r.temperature
	text, err := r.client.Complete(ctx, llm.Request{
		Model:       r.model,
		System:      r.systemPrompt(in),
		Prompt:      r.userPrompt(in),
		MaxTokens:   r.maxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("complete: empty reply")
	}
	return text, nil
}

func (r *Responder) systemPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a passionate debater defending this position: %s.\n", in.Stance)
	fmt.Fprintf(&b, "The debate topic is: %s.\n\n", in.Topic)
	b.WriteString("Rules:\n")
	b.WriteString("1. NEVER agree with or concede the user's original position.\n")
	b.WriteString("2. Stay respectful but firm in your convictions.\n")
	b.WriteString("3. Write 2-4 sentences maximum.\n")
	b.WriteString("4. Be engaging and thought-provoking.\n")

	if in.Stage == StageFirst {
		b.WriteString("\nTake a strong, clear position that opposes the user's view and open with your strongest argument. You must maintain this position for the entire conversation.\n")
		return b.String()
	}

	b.WriteString("\nRecent conversation:\n")
	for _, t := range lastTurns(in.History, contextWindow) {
		speaker := "User"
		if t.Speaker == conversation.SpeakerAgent {
			speaker = "You"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, t.Text)
	}

	fmt.Fprintf(&b, "\nPrimary strategy for this reply: %s.\n", in.Strategy.Primary)
	if len(in.Strategy.Supporting) > 0 {
		fmt.Fprintf(&b, "Techniques to weave in naturally: %s.\n", joinTechniques(in.Strategy.Supporting))
	}
	if len(in.Analysis.Techniques) > 0 {
		fmt.Fprintf(&b, "The user's persuasion techniques to counter: %s.\n", joinTechniques(in.Analysis.Techniques))
	}
	b.WriteString("Address the user's latest argument directly with new evidence or reasoning. Never change your fundamental position.\n")
	return b.String()
}

func (r *Responder) userPrompt(in Input) string {
	if in.Stage == StageFirst {
		return fmt.Sprintf("The user just said: %q\n\nRespond with your opposing position and strongest initial argument.", in.UserText)
	}
	return fmt.Sprintf("The user's latest message: %q\n\nRespond with a rebuttal that defends your position using the primary strategy.", in.UserText)
}

func lastTurns(turns []conversation.Turn, n int) []conversation.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func joinTechniques(techniques []analysis.Technique) string {
	names := make([]string, len(techniques))
	for i, t := range techniques {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
