// Package telemetry sends anonymous, opt-in command counters to
// PostHog so the maintainers can see which subcommands see real use.
// Every call is best-effort and fire-and-forget: a failure to resolve
// a machine id, reach the network, or flush the queue never affects
// the command that triggered it (see the TrackCommand calls in
// cmd/execute.go's dispatch path).
package telemetry

import (
	"os"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"

	"github.com/jensroland/git-ai/internal/logging"
)

const apiKey = "phc_git_ai_anonymous_usage"

// Enabled reports whether telemetry is allowed to run at all. It is
// opt-in: GIT_AI_TELEMETRY must be "1" or "true", and GIT_AI_NO_TELEMETRY
// (if set to anything) always wins as a hard opt-out.
func Enabled() bool {
	if os.Getenv("GIT_AI_NO_TELEMETRY") != "" {
		return false
	}
	switch os.Getenv("GIT_AI_TELEMETRY") {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

var (
	once       sync.Once
	client     posthog.Client
	distinctID string
)

func initClient() {
	if !Enabled() {
		return
	}
	id, err := machineid.ProtectedID("git-ai")
	if err != nil {
		logging.Debug("telemetry: could not resolve machine id", "error", err)
		return
	}
	distinctID = id

	c, err := posthog.NewWithConfig(apiKey, posthog.Config{})
	if err != nil {
		logging.Debug("telemetry: could not init posthog client", "error", err)
		return
	}
	client = c
}

// TrackCommand records that the named subcommand ran. It is safe to
// call even when telemetry is disabled or failed to initialize.
func TrackCommand(name string, version string) {
	once.Do(initClient)
	if client == nil {
		return
	}
	err := client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      "git-ai command",
		Properties: posthog.NewProperties().
			Set("command", name).
			Set("version", version),
	})
	if err != nil {
		logging.Debug("telemetry: enqueue failed", "error", err)
	}
}

// Close flushes any queued events. Call once at process exit.
func Close() {
	if client != nil {
		_ = client.Close()
	}
}
