package cmd

import (
	"strings"
	"testing"
)

func TestGithubWorkflowTemplateChecksProvenanceBranch(t *testing.T) {
	if !strings.Contains(githubWorkflowTemplate, "git-ai-provenance") {
		t.Error("expected the emitted workflow to check for the provenance branch")
	}
	if !strings.Contains(githubWorkflowTemplate, "actions/checkout") {
		t.Error("expected the emitted workflow to check out the repo")
	}
}
