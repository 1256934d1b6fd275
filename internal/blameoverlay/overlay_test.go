package blameoverlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/linerange"
)

func att(lo, hi int, author string) authorshiplog.LineAttribution {
	return authorshiplog.LineAttribution{Range: linerange.Span(lo, hi), AuthorID: author}
}

const porcelainFixture = `aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa 1 1 1
author Alice
author-mail <alice@example.com>
author-time 1700000000
author-tz +0000
committer Alice
committer-mail <alice@example.com>
committer-time 1700000000
committer-tz +0000
summary initial
filename f.txt
	line one
bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb 2 2 1
author Alice
author-mail <alice@example.com>
author-time 1700000100
author-tz +0000
committer Alice
committer-mail <alice@example.com>
committer-time 1700000100
committer-tz +0000
summary second commit
filename f.txt
	line two
`

func TestPorcelainIdentityWhenNoAIAttribution(t *testing.T) {
	resolve := NewLineResolver(authorshiplog.FileAttestation{
		Attributions: []authorshiplog.LineAttribution{
			att(1, 1, agentid.HumanAuthorID),
			att(2, 2, agentid.HumanAuthorID),
		},
	}, nil)

	out, err := Apply(porcelainFixture, FormatPorcelain, resolve)
	require.NoError(t, err)
	assert.Equal(t, porcelainFixture, out)
}

func TestPorcelainSubstitutesAuthorForAILineOnly(t *testing.T) {
	aiAgent := agentid.AgentId{Tool: "claude-code", Model: "claude-4", SessionID: "s1"}
	pid := agentid.NewPromptID(aiAgent)

	resolve := NewLineResolver(authorshiplog.FileAttestation{
		Attributions: []authorshiplog.LineAttribution{
			att(1, 1, agentid.HumanAuthorID),
			att(2, 2, string(pid)),
		},
	}, map[agentid.PromptID]authorshiplog.PromptRecord{
		pid: {AgentID: aiAgent},
	})

	out, err := Apply(porcelainFixture, FormatPorcelain, resolve)
	require.NoError(t, err)

	assert.Contains(t, out, "author Alice\nauthor-mail <alice@example.com>")
	assert.Contains(t, out, "author claude-code (claude-4)\n")
	assert.Contains(t, out, "author-mail <claude-code@ai.invalid>\n")
	// Everything besides author/author-mail is untouched for the AI line too.
	assert.Contains(t, out, "summary second commit")
	assert.Contains(t, out, "committer Alice")
	assert.Contains(t, out, "\tline one\n")
	assert.Contains(t, out, "\tline two\n")
}

const defaultFixture = "aaaaaaa (Alice 2024-01-01 10:00:00 +0000 1) line one\n" +
	"bbbbbbb (Alice 2024-01-02 10:00:00 +0000 2) line two\n"

func TestDefaultFormatSubstitutesAuthorNameOnly(t *testing.T) {
	aiAgent := agentid.AgentId{Tool: "claude-code", Model: "claude-4", SessionID: "s1"}
	pid := agentid.NewPromptID(aiAgent)

	resolve := NewLineResolver(authorshiplog.FileAttestation{
		Attributions: []authorshiplog.LineAttribution{
			att(1, 1, agentid.HumanAuthorID),
			att(2, 2, string(pid)),
		},
	}, map[agentid.PromptID]authorshiplog.PromptRecord{
		pid: {AgentID: aiAgent},
	})

	out, err := Apply(defaultFixture, FormatDefault, resolve)
	require.NoError(t, err)

	assert.Contains(t, out, "aaaaaaa (Alice 2024-01-01 10:00:00 +0000 1) line one")
	assert.Contains(t, out, "bbbbbbb (claude-code (claude-4) 2024-01-02 10:00:00 +0000 2) line two")
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatDefault, ParseFormat([]string{"-L", "1,5"}))
	assert.Equal(t, FormatPorcelain, ParseFormat([]string{"--porcelain"}))
	assert.Equal(t, FormatLinePorcelain, ParseFormat([]string{"--line-porcelain"}))
	assert.Equal(t, FormatIncremental, ParseFormat([]string{"--incremental"}))
}
