package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-ai/internal/agentid"
)

func TestAppendListOrderPreserved(t *testing.T) {
	s := New(t.TempDir())
	const base = "abc123"

	require.NoError(t, s.Append(base, Checkpoint{Kind: agentid.KindHuman, File: "a.go", Patch: "p1"}))
	require.NoError(t, s.Append(base, Checkpoint{Kind: agentid.KindHuman, File: "a.go", Patch: "p2"}))
	require.NoError(t, s.Append(base, Checkpoint{Kind: agentid.KindHuman, File: "a.go", Patch: "p2"})) // duplicate, not deduped

	got, err := s.List(base)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].Patch)
	assert.Equal(t, "p2", got[1].Patch)
	assert.Equal(t, "p2", got[2].Patch)
}

func TestAppendRequiresAgentIDForAIKinds(t *testing.T) {
	s := New(t.TempDir())
	err := s.Append("base", Checkpoint{Kind: agentid.KindAiAgent, File: "a.go", Patch: "p"})
	assert.Error(t, err)
}

func TestListUnknownBaseIsEmpty(t *testing.T) {
	s := New(t.TempDir())
	got, err := s.List("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInitialAttributionsRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	const base = "base1"

	err := s.WriteInitialAttributions(base, InitialAttributions{})
	require.NoError(t, err)

	_, ok, err := s.ReadInitialAttributions(base)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s.ReadInitialAttributions("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteIsAllOrNothing(t *testing.T) {
	s := New(t.TempDir())
	const base = "base2"
	require.NoError(t, s.Append(base, Checkpoint{Kind: agentid.KindHuman, File: "a.go", Patch: "p1"}))

	require.NoError(t, s.Delete(base))

	got, err := s.List(base)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an already-empty base is a no-op, not an error.
	require.NoError(t, s.Delete(base))
}

func TestListBases(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Append("b1", Checkpoint{Kind: agentid.KindHuman, File: "a.go", Patch: "p"}))
	require.NoError(t, s.Append("b2", Checkpoint{Kind: agentid.KindHuman, File: "a.go", Patch: "p"}))

	bases, err := s.ListBases()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "b2"}, bases)
}
