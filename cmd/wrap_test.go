package cmd

import "testing"

func TestHasFlag(t *testing.T) {
	if !hasFlag([]string{"-m", "msg", "--amend"}, "--amend") {
		t.Error("expected --amend to be found")
	}
	if hasFlag([]string{"-m", "msg"}, "--amend") {
		t.Error("did not expect --amend to be found")
	}
}

func TestHasAnyFlag(t *testing.T) {
	if !hasAnyFlag([]string{"--skip"}, "--continue", "--skip", "--abort") {
		t.Error("expected one of the flags to match")
	}
	if hasAnyFlag([]string{"-m", "msg"}, "--continue", "--skip", "--abort") {
		t.Error("did not expect a match")
	}
}

func TestContainsDotDot(t *testing.T) {
	cases := map[string]bool{
		"abc123..def456": true,
		"abc123...def456": true,
		"abc123def456":    false,
		"":                false,
	}
	for in, want := range cases {
		if got := containsDotDot(in); got != want {
			t.Errorf("containsDotDot(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMergeTargetRef(t *testing.T) {
	if got := mergeTargetRef([]string{"--squash", "feature-branch"}); got != "feature-branch" {
		t.Errorf("mergeTargetRef = %q, want feature-branch", got)
	}
	if got := mergeTargetRef([]string{"--no-ff"}); got != "" {
		t.Errorf("mergeTargetRef = %q, want empty", got)
	}
}

func TestRemoteArg(t *testing.T) {
	if got := remoteArg([]string{"upstream", "main"}); got != "upstream" {
		t.Errorf("remoteArg = %q, want upstream", got)
	}
	if got := remoteArg([]string{"--force"}); got != "origin" {
		t.Errorf("remoteArg = %q, want origin", got)
	}
	if got := remoteArg(nil); got != "origin" {
		t.Errorf("remoteArg(nil) = %q, want origin", got)
	}
}
