// Package conversation defines the persisted debate state: turns, the
// established topic and stance, and the store adapter that maps them
// onto a TTL key-value capability.
package conversation

import (
	"fmt"
	"time"
)

// Speaker attributes a turn to one side of the debate.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Turn is one message in conversation order. Turns are immutable once
// appended; Position is the sole ordering key.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Conversation is one bounded debate. Topic and Stance are set from
// the first user turn and never change afterwards.
type Conversation struct {
	ID     string `json:"id"`
	Topic  string `json:"topic"`
	Stance string `json:"stance"`
	Turns  []Turn `json:"turns"`
}

// AppendUser adds a user turn. Turns must alternate starting with the
// user, so a user turn is only legal on an empty history or after an
// agent turn.
func (c *Conversation) AppendUser(text string) error {
	if n := len(c.Turns); n > 0 && c.Turns[n-1].Speaker == SpeakerUser {
		return fmt.Errorf("conversation %s: user turn after user turn", c.ID)
	}
	c.append(SpeakerUser, text)
	return nil
}

// AppendAgent adds an agent turn immediately after the user turn that
// triggered it.
func (c *Conversation) AppendAgent(text string) error {
	n := len(c.Turns)
	if n == 0 || c.Turns[n-1].Speaker == SpeakerAgent {
		return fmt.Errorf("conversation %s: agent turn without preceding user turn", c.ID)
	}
	c.append(SpeakerAgent, text)
	return nil
}

func (c *Conversation) append(speaker Speaker, text string) {
	c.Turns = append(c.Turns, Turn{
		Speaker:   speaker,
		Text:      text,
		Position:  len(c.Turns),
		CreatedAt: time.Now().UTC(),
	})
}

// Truncate drops the oldest turns, in user/agent pairs, until at most
// maxTurns remain. Dropping in pairs preserves the alternation
// invariant; positions are renumbered from zero.
func (c *Conversation) Truncate(maxTurns int) {
	if maxTurns <= 0 || len(c.Turns) <= maxTurns {
		return
	}

	drop := len(c.Turns) - maxTurns
	if drop%2 != 0 {
		drop++
	}
	c.Turns = c.Turns[drop:]
	for i := range c.Turns {
		c.Turns[i].Position = i
	}
}

// FirstAgentTurn returns the text of the earliest agent turn still in
// history, or "" if none exists. The fallback generator uses it to
// recover which side of a rivalry the agent is defending.
func (c *Conversation) FirstAgentTurn() string {
	for _, t := range c.Turns {
		if t.Speaker == SpeakerAgent {
			return t.Text
		}
	}
	return ""
}

// LatestUserTurn returns the text of the most recent user turn, or "".
func (c *Conversation) LatestUserTurn() string {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Speaker == SpeakerUser {
			return c.Turns[i].Text
		}
	}
	return ""
}
