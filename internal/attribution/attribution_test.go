package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/linerange"
	"github.com/jensroland/git-ai/internal/worklog"
)

// blobStore is a trivial in-memory ReadBlob for tests: checkpoints carry
// the literal file content as their "SHA", so no hashing is needed.
func blobStore(contents map[string]string) BlobReader {
	return func(sha string) (string, error) {
		return contents[sha], nil
	}
}

func coverageOK(t *testing.T, attrs []authorshiplog.LineAttribution, n int) {
	t.Helper()
	att := authorshiplog.FileAttestation{Attributions: attrs}
	assert.True(t, att.CoversLines(n), "attributions %+v do not cover 1..%d", attrs, n)
}

func TestSimpleAIAddition(t *testing.T) {
	aiAgent := agentid.AgentId{Tool: "claude-code", Model: "claude-4", SessionID: "s1"}
	after := "Line 1\nLine 2\n"

	prompts := map[agentid.PromptID]authorshiplog.PromptRecord{}
	result, err := ComputeFileAttribution(Input{
		Path:           "f.txt",
		BaseContent:    "Line 1\n",
		CurrentContent: after,
		Checkpoints: []worklog.Checkpoint{
			{Kind: agentid.KindAiAgent, AgentID: &aiAgent, AfterBlobSHA: "after"},
		},
		ReadBlob: blobStore(map[string]string{"after": after}),
		Prompts:  prompts,
	})
	require.NoError(t, err)
	coverageOK(t, result, 2)

	require.Len(t, result, 2)
	assert.Equal(t, agentid.HumanAuthorID, result[0].AuthorID)
	assert.Equal(t, 1, result[0].Range.Lo)
	assert.Equal(t, 1, result[0].Range.Hi)

	pid := agentid.NewPromptID(aiAgent)
	assert.Equal(t, string(pid), result[1].AuthorID)
	assert.Equal(t, 2, result[1].Range.Lo)
	assert.Equal(t, 2, result[1].Range.Hi)
	assert.False(t, result[1].Overridden)

	rec := prompts[pid]
	assert.Equal(t, 1, rec.TotalAdditions)
	assert.Equal(t, 1, rec.AcceptedLines)
	assert.Equal(t, 0, rec.OverriddenLines)

	// Invariant 4: every non-human author id appears in the prompts table.
	for _, a := range result {
		if a.AuthorID != agentid.HumanAuthorID {
			_, ok := prompts[agentid.PromptID(a.AuthorID)]
			assert.True(t, ok)
		}
	}
}

func TestOverrideMarksOnlyReplacedLineAsOverridden(t *testing.T) {
	aiAgent := agentid.AgentId{Tool: "claude-code", Model: "claude-4", SessionID: "s1"}
	pid := agentid.NewPromptID(aiAgent)

	base := "A\nB\nC\n"
	afterHuman := "A\nB'\nC\n"

	prompts := map[agentid.PromptID]authorshiplog.PromptRecord{
		pid: {AgentID: aiAgent, TotalAdditions: 1},
	}

	carryForward := []authorshiplog.LineAttribution{
		{Range: rng(1, 1), AuthorID: agentid.HumanAuthorID},
		{Range: rng(2, 2), AuthorID: string(pid)},
		{Range: rng(3, 3), AuthorID: agentid.HumanAuthorID},
	}

	result, err := ComputeFileAttribution(Input{
		Path:           "f.txt",
		BaseContent:    base,
		CurrentContent: afterHuman,
		CarryForward:   carryForward,
		Checkpoints: []worklog.Checkpoint{
			{Kind: agentid.KindHuman, AfterBlobSHA: "after"},
		},
		ReadBlob: blobStore(map[string]string{"after": afterHuman}),
		Prompts:  prompts,
	})
	require.NoError(t, err)
	coverageOK(t, result, 3)
	require.Len(t, result, 3)

	assert.Equal(t, agentid.HumanAuthorID, result[0].AuthorID)
	assert.False(t, result[0].Overridden)

	assert.Equal(t, agentid.HumanAuthorID, result[1].AuthorID)
	assert.True(t, result[1].Overridden)
	assert.Equal(t, 2, result[1].Range.Lo)
	assert.Equal(t, 2, result[1].Range.Hi)

	assert.Equal(t, agentid.HumanAuthorID, result[2].AuthorID)
	assert.False(t, result[2].Overridden)

	rec := prompts[pid]
	assert.Equal(t, 1, rec.OverriddenLines)
	assert.Equal(t, 0, rec.AcceptedLines)
}

func TestCarryForwardWithoutSeedIsPreserved(t *testing.T) {
	aiAgent := agentid.AgentId{Tool: "cursor", Model: "gpt", SessionID: "s2"}
	pid := agentid.NewPromptID(aiAgent)
	content := "A\nB\n"

	result, err := ComputeFileAttribution(Input{
		Path:           "f.txt",
		BaseContent:    content,
		CurrentContent: content,
		CarryForward: []authorshiplog.LineAttribution{
			{Range: rng(1, 1), AuthorID: agentid.HumanAuthorID},
			{Range: rng(2, 2), AuthorID: string(pid)},
		},
		ReadBlob: blobStore(nil),
		Prompts:  map[agentid.PromptID]authorshiplog.PromptRecord{},
	})
	require.NoError(t, err)
	coverageOK(t, result, 2)
	require.Len(t, result, 2)
	assert.Equal(t, string(pid), result[1].AuthorID)
}

func TestSeedWinsOverCarryForward(t *testing.T) {
	human2 := agentid.AgentId{Tool: "claude-code", Model: "m", SessionID: "s3"}
	pid := agentid.NewPromptID(human2)
	content := "A\nB\n"

	result, err := ComputeFileAttribution(Input{
		Path:           "f.txt",
		BaseContent:    content,
		CurrentContent: content,
		CarryForward: []authorshiplog.LineAttribution{
			{Range: rng(1, 2), AuthorID: agentid.HumanAuthorID},
		},
		Seed: []authorshiplog.LineAttribution{
			{Range: rng(2, 2), AuthorID: string(pid)},
		},
		ReadBlob: blobStore(nil),
		Prompts:  map[agentid.PromptID]authorshiplog.PromptRecord{},
	})
	require.NoError(t, err)
	coverageOK(t, result, 2)
	require.Len(t, result, 2)
	assert.Equal(t, agentid.HumanAuthorID, result[0].AuthorID)
	assert.Equal(t, string(pid), result[1].AuthorID)
}

func rng(lo, hi int) linerange.LineRange {
	return linerange.Span(lo, hi)
}
