package agentpreset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-ai/internal/giterr"
)

func writeTranscript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "session.jsonl")
	lines := []string{
		`{"type":"message","message":{"role":"user","content":"add a helper"}}`,
		`{"type":"message","message":{"role":"assistant","model":"claude-4","content":"done"}}`,
	}
	var buf []byte
	for _, l := range lines {
		buf = append(buf, []byte(l+"\n")...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestClaudeCodePresetDispatch(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscript(t, dir)

	blob, err := json.Marshal(map[string]any{
		"session_id":      "sess-1",
		"transcript_path": transcriptPath,
		"tool_name":       "Edit",
		"tool_input":      map[string]any{"file_path": "main.go"},
	})
	require.NoError(t, err)

	result, err := Dispatch(TagClaudeCode, blob)
	require.NoError(t, err)

	assert.Equal(t, "claude-code", result.AgentID.Tool)
	assert.Equal(t, "claude-4", result.AgentID.Model)
	assert.Equal(t, "sess-1", result.AgentID.SessionID)
	assert.Equal(t, []string{"main.go"}, result.EditedFilepaths)
	assert.False(t, result.IsHuman)
	assert.NotEmpty(t, result.Transcript.Messages)
}

func TestClaudeCodePresetRequiresSessionID(t *testing.T) {
	blob, err := json.Marshal(map[string]any{"transcript_path": "whatever.jsonl"})
	require.NoError(t, err)

	_, err = Dispatch(TagClaudeCode, blob)
	require.Error(t, err)
	assert.True(t, giterr.Is(err, giterr.KindPreset))
}

func TestCursorAndCopilotAreNotImplemented(t *testing.T) {
	_, err := Dispatch(TagCursor, []byte("{}"))
	assert.ErrorIs(t, err, giterr.ErrNotImplemented)

	_, err = Dispatch(TagCopilot, []byte("{}"))
	assert.ErrorIs(t, err, giterr.ErrNotImplemented)
}

func TestDispatchUnknownTagIsPresetError(t *testing.T) {
	_, err := Dispatch(Tag("unknown"), []byte("{}"))
	require.Error(t, err)
	assert.True(t, giterr.Is(err, giterr.KindPreset))
}
