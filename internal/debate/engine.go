package debate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/szaher/kontra/internal/analysis"
	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/stance"
	"github.com/szaher/kontra/internal/strategy"
	"github.com/szaher/kontra/internal/telemetry"
)

// Archiver persists a transcript outside the live store, typically
// right before deletion.
type Archiver interface {
	Archive(ctx context.Context, c *conversation.Conversation) error
}

// Engine drives one debate turn end to end: load history, analyze the
// user's message, fix or reuse the stance, select a counter-strategy,
// generate a stance-consistent reply and persist the result.
//
// The engine assumes at most one in-flight request per conversation
// id; concurrent requests for the same id are last-writer-wins at the
// store layer.
type Engine struct {
	store     *conversation.Store
	generator Generator
	fallback  *Fallback
	archiver  Archiver
	maxTurns  int
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithGenerator sets the external generation path. Without one the
// engine runs entirely on the fallback path.
func WithGenerator(g Generator) EngineOption {
	return func(e *Engine) { e.generator = g }
}

// WithFallback replaces the default fallback path, mainly so tests can
// inject a seeded one.
func WithFallback(f *Fallback) EngineOption {
	return func(e *Engine) { e.fallback = f }
}

// WithArchiver archives transcripts before deletion.
func WithArchiver(a Archiver) EngineOption {
	return func(e *Engine) { e.archiver = a }
}

// WithMaxTurns sets the history bound. Must be even.
func WithMaxTurns(n int) EngineOption {
	return func(e *Engine) { e.maxTurns = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *telemetry.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a debate engine over a conversation store.
func NewEngine(store *conversation.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		fallback: NewFallback(nil),
		maxTurns: 10,
		logger:   slog.Default(),
		metrics:  telemetry.NewMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is one completed debate turn: the conversation id (freshly
// minted for new conversations) and the full retained turn list.
type Result struct {
	ConversationID string
	Topic          string
	Stance         string
	Turns          []conversation.Turn
}

// ProcessMessage handles one user message and returns the updated
// conversation. A missing or unknown conversationID starts a new
// conversation. Store failures are degraded: the reply is still
// computed and returned, the write is best-effort.
func (e *Engine) ProcessMessage(ctx context.Context, conversationID, userText string) (*Result, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrValidation)
	}

	c := e.loadOrCreate(ctx, conversationID)
	log := telemetry.RequestLogger(e.logger, ctx, c.ID)

	firstTurn := len(c.Turns) == 0
	if err := c.AppendUser(userText); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	userAnalysis := analysis.Analyze(userText)
	if firstTurn {
		c.Topic, c.Stance = stance.Resolve(userText)
		log.Info("stance established", "topic", c.Topic, "stance", c.Stance)
	}

	strat := strategy.Select(userAnalysis, c.Topic, len(c.Turns)-1)

	in := Input{
		Stage:    stageFor(firstTurn),
		Topic:    c.Topic,
		Stance:   c.Stance,
		Strategy: strat,
		Analysis: userAnalysis,
		History:  c.Turns,
		UserText: userText,
	}

	start := time.Now()
	reply, path := e.generate(ctx, in, log)
	e.metrics.RecordTurn(path, time.Since(start))

	if err := c.AppendAgent(reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	// Best-effort: the reply was already computed, so a store outage
	// must not cost the caller their turn.
	if err := e.store.Save(ctx, c, e.maxTurns); err != nil {
		e.metrics.RecordStoreFailure()
		log.Error("conversation save failed", "error", err)
	}

	log.Info("turn completed", "path", path, "strategy", strat.Primary, "turns", len(c.Turns))
	return &Result{
		ConversationID: c.ID,
		Topic:          c.Topic,
		Stance:         c.Stance,
		Turns:          c.Turns,
	}, nil
}

// DeleteConversation removes a conversation, archiving the transcript
// first when an archiver is configured. It reports whether the
// conversation existed.
func (e *Engine) DeleteConversation(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf("%w: empty conversation id", ErrValidation)
	}
	log := telemetry.RequestLogger(e.logger, ctx, id)

	if e.archiver != nil {
		if c, err := e.store.Load(ctx, id); err == nil && c != nil {
			if err := e.archiver.Archive(ctx, c); err != nil {
				log.Error("transcript archive failed", "error", err)
			} else {
				e.metrics.RecordArchive()
			}
		}
	}

	existed, err := e.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	if existed {
		e.metrics.RecordDeletion()
		log.Info("conversation deleted")
	}
	return existed, nil
}

// Status reports engine configuration for the stats endpoint.
type Status struct {
	GeneratorConfigured bool `json:"generator_configured"`
	MaxTurns            int  `json:"max_turns"`
}

// Status returns the engine's observable configuration.
func (e *Engine) Status() Status {
	return Status{
		GeneratorConfigured: e.generator != nil,
		MaxTurns:            e.maxTurns,
	}
}

// loadOrCreate resolves the working conversation. A load failure is
// degraded to a fresh conversation under the same id so the turn can
// still be answered.
func (e *Engine) loadOrCreate(ctx context.Context, id string) *conversation.Conversation {
	if id == "" {
		return &conversation.Conversation{ID: conversation.NewID()}
	}
	c, err := e.store.Load(ctx, id)
	if err != nil {
		e.metrics.RecordStoreFailure()
		telemetry.RequestLogger(e.logger, ctx, id).Error("conversation load failed", "error", err)
		return &conversation.Conversation{ID: id}
	}
	if c == nil {
		return &conversation.Conversation{ID: id}
	}
	return c
}

// generate runs the external path when configured and falls through to
// the deterministic fallback on any failure. The fallback never fails,
// so generation as a whole is total.
func (e *Engine) generate(ctx context.Context, in Input, log *slog.Logger) (reply, path string) {
	if e.generator != nil {
		text, err := e.generator.Generate(ctx, in)
		if err == nil {
			return text, telemetry.PathLLM
		}
		log.Warn("external generation failed, using fallback", "error", err)
	}

	text, _ := e.fallback.Generate(ctx, in)
	return text, telemetry.PathFallback
}

func stageFor(firstTurn bool) Stage {
	if firstTurn {
		return StageFirst
	}
	return StageContinuing
}
