// Package redact scrubs secrets out of transcript text before it is
// persisted to the side-band provenance branch (internal/provenance),
// using gitleaks' detection rules so an API key pasted into a prompt
// or tool output never ends up committed history.
package redact

import (
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
	"github.com/zricethezav/gitleaks/v8/report"

	"github.com/jensroland/git-ai/internal/logging"
	"github.com/jensroland/git-ai/internal/transcript"
)

const placeholder = "[REDACTED]"

var (
	once     sync.Once
	detector *detect.Detector
)

func get() *detect.Detector {
	once.Do(func() {
		d, err := detect.NewDetectorDefaultConfig()
		if err != nil {
			logging.Warn("redact: failed to load gitleaks default config", "error", err.Error())
			return
		}
		detector = d
	})
	return detector
}

// String returns s with any detected secrets replaced by a placeholder.
// A gitleaks init failure degrades to returning s unchanged rather than
// blocking the caller's checkpoint.
func String(s string) string {
	d := get()
	if d == nil || s == "" {
		return s
	}
	findings := d.Detect(detect.Fragment{Raw: s})
	return applyFindings(s, findings)
}

func applyFindings(s string, findings []report.Finding) string {
	if len(findings) == 0 {
		return s
	}
	out := s
	seen := map[string]bool{}
	for _, f := range findings {
		if f.Secret == "" || seen[f.Secret] {
			continue
		}
		seen[f.Secret] = true
		out = strings.ReplaceAll(out, f.Secret, placeholder)
	}
	return out
}

// Transcript returns a copy of t with every message's Text/Input field
// run through String, so prompt and tool-output text never carries a
// leaked credential into the authorship log.
func Transcript(t transcript.Transcript) transcript.Transcript {
	out := transcript.Transcript{Model: t.Model, Messages: make([]transcript.Message, len(t.Messages))}
	for i, m := range t.Messages {
		m.Text = String(m.Text)
		m.Input = String(m.Input)
		out.Messages[i] = m
	}
	return out
}
