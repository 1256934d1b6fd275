// Package agentid identifies the actor behind a checkpoint: a human
// committer, or a specific AI coding session (tool, model, session id).
package agentid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HumanAuthorID is the sentinel author_id used for human-authored lines,
// in place of a PromptID.
const HumanAuthorID = "<human>"

// CheckpointKind is the closed set of checkpoint origins.
type CheckpointKind string

const (
	KindHuman   CheckpointKind = "human"
	KindAiAgent CheckpointKind = "ai_agent"
	KindAiTab   CheckpointKind = "ai_tab"
)

// Valid reports whether k is one of the three known kinds.
func (k CheckpointKind) Valid() bool {
	switch k {
	case KindHuman, KindAiAgent, KindAiTab:
		return true
	default:
		return false
	}
}

// IsAI reports whether the kind attributes lines to an AI prompt rather
// than a human.
func (k CheckpointKind) IsAI() bool {
	return k == KindAiAgent || k == KindAiTab
}

// AgentId identifies one AI coding session. Equality is structural: two
// AgentId values with the same Tool, Model and SessionID are the same agent.
type AgentId struct {
	Tool      string `json:"tool"`
	Model     string `json:"model"`
	SessionID string `json:"session_id"`
}

// PromptID is a short, deterministic, collision-resistant-within-a-repo
// hash used to key attributions compactly instead of embedding a full
// AgentId in every line attribution.
type PromptID string

// NewPromptID derives a PromptID from an AgentId. The hash input includes
// all three identity fields, so two structurally distinct agents never
// collide outside of a SHA-256 birthday clash.
func NewPromptID(a AgentId) PromptID {
	h := sha256.New()
	fmt.Fprintf(h, "tool=%s\x00model=%s\x00session=%s", a.Tool, a.Model, a.SessionID)
	return PromptID(hex.EncodeToString(h.Sum(nil))[:16])
}

// DisplayName renders the agent the way the blame overlay shows it:
// "<tool> (<model>)".
func (a AgentId) DisplayName() string {
	if a.Model == "" {
		return a.Tool
	}
	return fmt.Sprintf("%s (%s)", a.Tool, a.Model)
}
