package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCommitStatsJSONFields(t *testing.T) {
	stats := commitStats{
		HumanAdditions: 3,
		HumanDeletions: 1,
		AIAdditions:    2,
		AIAccepted:     1,
		AIDeletions:    0,
		GitDiffAdded:   5,
		GitDiffDeleted: 1,
	}

	b, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(b)

	for _, field := range []string{
		"human_additions", "human_deletions", "ai_additions",
		"ai_accepted", "ai_deletions", "git_diff_added_lines", "git_diff_deleted_lines",
	} {
		if !strings.Contains(out, `"`+field+`"`) {
			t.Errorf("expected JSON to contain field %q, got %s", field, out)
		}
	}
}

func TestCommitStatsHumanDerivedFromGitMinusAI(t *testing.T) {
	// Mirrors the scenario 1 walkthrough: a human line plus one AI-added
	// line yields git_diff_added_lines=2, ai_additions=1, so
	// human_additions must be git minus AI, not a separately tracked count.
	gitAdded, aiAdded := 2, 1
	humanAdded := gitAdded - aiAdded
	if humanAdded != 1 {
		t.Fatalf("human_additions: got %d, want 1", humanAdded)
	}
}
