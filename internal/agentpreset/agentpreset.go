// Package agentpreset dispatches a raw hook input blob to the closed set
// of transcript-ingestion presets spec.md §6 names: Claude Code, Cursor,
// Copilot. Each preset implements the same contract — run(hook_input_blob)
// → { agent_id, transcript, is_human?, edited_filepaths? } — so the
// checkpoint command can treat them uniformly once it knows which tag
// produced the payload (spec.md §9's "a sum type over presets is
// preferable to open polymorphism" design note).
package agentpreset

import (
	"encoding/json"
	"fmt"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/giterr"
	"github.com/jensroland/git-ai/internal/transcript"
)

// Tag identifies one member of the closed preset set.
type Tag string

const (
	TagClaudeCode Tag = "claude-code"
	TagCursor     Tag = "cursor"
	TagCopilot    Tag = "copilot"
)

// Result is what every preset yields, regardless of the shape of the
// hook input blob it consumed.
type Result struct {
	AgentID         agentid.AgentId
	Transcript      transcript.Transcript
	IsHuman         bool
	EditedFilepaths []string
}

// preset is implemented once per Tag.
type preset interface {
	run(blob []byte) (Result, error)
}

// Dispatch runs the preset named by tag against blob. An unrecognized tag
// is a Preset-kind error (spec.md §7): it always fails the checkpoint
// command rather than silently falling back, since there is no sensible
// default agent identity to attribute lines to.
func Dispatch(tag Tag, blob []byte) (Result, error) {
	var p preset
	switch tag {
	case TagClaudeCode:
		p = claudeCodePreset{}
	case TagCursor:
		p = cursorPreset{}
	case TagCopilot:
		p = copilotPreset{}
	default:
		return Result{}, giterr.Wrap(giterr.KindPreset, fmt.Sprintf("unknown preset tag %q", tag), fmt.Errorf("not a recognized preset"))
	}
	return p.run(blob)
}

// claudeCodeHookInput mirrors the subset of Claude Code's PostToolUse hook
// payload that the checkpoint path needs: which session produced the edit,
// where its transcript lives, and which file(s) the tool call touched.
type claudeCodeHookInput struct {
	SessionID      string                 `json:"session_id"`
	TranscriptPath string                 `json:"transcript_path"`
	ToolName       string                 `json:"tool_name"`
	ToolInput      map[string]interface{} `json:"tool_input"`
	CWD            string                 `json:"cwd"`
}

type claudeCodePreset struct{}

func (claudeCodePreset) run(blob []byte) (Result, error) {
	var in claudeCodeHookInput
	if err := json.Unmarshal(blob, &in); err != nil {
		return Result{}, giterr.Wrap(giterr.KindParse, "decode claude-code hook input", err)
	}
	if in.SessionID == "" {
		return Result{}, giterr.Wrap(giterr.KindPreset, "claude-code preset requires session_id", fmt.Errorf("missing session_id"))
	}

	var t transcript.Transcript
	if in.TranscriptPath != "" {
		parsed, err := transcript.FromClaudeCodeJSONL(in.TranscriptPath)
		if err != nil {
			return Result{}, giterr.Wrap(giterr.KindParse, "parse claude-code transcript", err)
		}
		t = parsed
	}

	model := t.Model
	if model == "" {
		model = "unknown"
	}

	return Result{
		AgentID: agentid.AgentId{
			Tool:      "claude-code",
			Model:     model,
			SessionID: in.SessionID,
		},
		Transcript:      t,
		EditedFilepaths: editedFilepaths(in.ToolInput),
	}, nil
}

// editedFilepaths extracts the file one Claude Code tool_use touched from
// its tool_input (file_path, falling back to path for older tool schemas).
func editedFilepaths(toolInput map[string]interface{}) []string {
	if toolInput == nil {
		return nil
	}
	if path, ok := stringField(toolInput, "file_path"); ok {
		return []string{path}
	}
	if path, ok := stringField(toolInput, "path"); ok {
		return []string{path}
	}
	return nil
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// cursorPreset and copilotPreset are registered members of the closed
// preset set but have no production transcript format to parse against
// yet; they exist so Dispatch's switch stays exhaustive and checkpoint
// callers get a precise Preset-kind error instead of an unknown-tag one.
type cursorPreset struct{}

func (cursorPreset) run(blob []byte) (Result, error) {
	return Result{}, giterr.ErrNotImplemented
}

type copilotPreset struct{}

func (copilotPreset) run(blob []byte) (Result, error) {
	return Result{}, giterr.ErrNotImplemented
}
