package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jensroland/git-ai/internal/telemetry"
	"github.com/jensroland/git-ai/internal/upgrade"
)

// Execute builds the git-ai command tree and runs it. main.go's only
// job is calling this with the build-time version string. Every leaf
// command keeps hand-parsing its own flags the way cmd/blame.go and
// cmd/checkpoint.go always have (DisableFlagParsing: true) — cobra's
// job here is purely subcommand dispatch plus the usage/help surface
// it generates for free, not replacing the per-command flag parsing
// that predates this migration.
func Execute(version string) {
	defer telemetry.Close()
	go upgrade.MaybeCheck(version)

	// Preserve the pre-cobra "--version" spelling alongside the native
	// "version" subcommand below; cobra's own --version flag requires
	// flag parsing this tree deliberately disables everywhere.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		RunVersion(version)
		return
	}

	root := &cobra.Command{
		Use:                "git-ai",
		Short:              "git-ai: track which lines AI wrote, across every history rewrite",
		DisableFlagParsing: true,
	}

	passthrough := func(name string, fn func([]string)) *cobra.Command {
		return &cobra.Command{
			Use:                name,
			DisableFlagParsing: true,
			Run: func(_ *cobra.Command, args []string) {
				telemetry.TrackCommand(name, version)
				fn(args)
			},
		}
	}

	root.AddCommand(
		// Transparent Git wrappers (spec.md §6).
		passthrough("commit", RunCommit),
		passthrough("rebase", RunRebase),
		passthrough("cherry-pick", RunCherryPick),
		passthrough("merge", RunMerge),
		passthrough("reset", RunReset),
		passthrough("blame", RunBlame),
		passthrough("push", RunPush),
		passthrough("pull", RunPull),
		passthrough("fetch", RunFetch),

		// Native subcommands.
		passthrough("hook", RunHook),
		passthrough("enable", RunEnable),
		passthrough("disable", RunDisable),
		passthrough("checkpoint", RunCheckpoint),
		passthrough("stats", RunStats),
		passthrough("ci", RunCI),
		passthrough("benchmark", RunBenchmark),
		&cobra.Command{
			Use: "version",
			Run: func(_ *cobra.Command, _ []string) {
				telemetry.TrackCommand("version", version)
				RunVersion(version)
			},
		},
		&cobra.Command{
			Use:                "upgrade",
			DisableFlagParsing: true,
			Run: func(_ *cobra.Command, args []string) {
				telemetry.TrackCommand("upgrade", version)
				RunUpgrade(args, version)
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
