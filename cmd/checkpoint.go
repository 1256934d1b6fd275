package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/agentpreset"
	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/blobstore"
	"github.com/jensroland/git-ai/internal/diffparse"
	"github.com/jensroland/git-ai/internal/envelope"
	gitutil "github.com/jensroland/git-ai/internal/git"
	"github.com/jensroland/git-ai/internal/gitrepo"
	"github.com/jensroland/git-ai/internal/giterr"
	"github.com/jensroland/git-ai/internal/linerange"
	"github.com/jensroland/git-ai/internal/logging"
	"github.com/jensroland/git-ai/internal/project"
	"github.com/jensroland/git-ai/internal/record"
	"github.com/jensroland/git-ai/internal/redact"
	"github.com/jensroland/git-ai/internal/transcript"
	"github.com/jensroland/git-ai/internal/worklog"
)

// RunCheckpoint implements the native `git-ai checkpoint` subcommand: it
// records one edit against the working log for the current HEAD, either
// from explicit flags (a human or editor-driven invocation) or from a
// transcript-ingestion preset's hook payload on stdin (--preset TAG).
func RunCheckpoint(args []string) {
	start := time.Now()

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)
	logging.Init(paths.CacheDir)

	opts, err := parseCheckpointArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	kind := opts.kind
	var agentID *agentid.AgentId
	var tsc *transcript.Transcript
	files := opts.files

	if opts.preset != "" {
		blob, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: reading preset payload from stdin:", err)
			os.Exit(1)
		}
		result, err := agentpreset.Dispatch(agentpreset.Tag(opts.preset), blob)
		if err != nil {
			if giterr.Is(err, giterr.KindPreset) || giterr.Is(err, giterr.KindParse) {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			// Errors of any other kind degrade to a silent no-op checkpoint
			// rather than aborting the caller's edit flow. The Cursor and
			// Copilot stubs fail with a Preset-kind error and exit above.
			logging.Warn("checkpoint preset dispatch failed", "preset", opts.preset, "error", err.Error())
			return
		}

		if result.IsHuman {
			kind = agentid.KindHuman
		} else {
			kind = agentid.KindAiAgent
			id := result.AgentID
			agentID = &id
		}
		if len(result.EditedFilepaths) > 0 {
			files = result.EditedFilepaths
		}
		if len(result.Transcript.Messages) > 0 {
			t := redact.Transcript(result.Transcript)
			tsc = &t
		}
	} else if kind.IsAI() {
		agentID = &agentid.AgentId{
			Tool:      "git-ai",
			Model:     opts.model,
			SessionID: opts.promptID,
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: checkpoint requires at least one file (via --preset's edited_filepaths or --file)")
		os.Exit(1)
	}

	baseSHA := gitutil.HeadSHA(root)
	store := worklog.New(paths.WorklogDir)
	blobs := blobstore.New(paths.BlobDir)
	repo, repoErr := gitrepo.Open(root)

	filesEdited := 0
	for _, f := range files {
		rel := f
		if filepath.IsAbs(f) {
			rel = record.RelativizePath(f, root)
		}

		before, err := previousContent(store, blobs, repo, repoErr, baseSHA, rel)
		if err != nil {
			logging.Warn("checkpoint: failed to resolve previous content", "file", rel, "error", err.Error())
		}

		current, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", rel, err)
			continue
		}
		currentStr := string(current)

		seedInitialAttribution(store, repo, repoErr, baseSHA, rel, before)

		beforeSHA, err := blobs.Write(before)
		if err != nil {
			logging.Warn("checkpoint: write before-blob failed", "file", rel, "error", err.Error())
			continue
		}
		afterSHA, err := blobs.Write(currentStr)
		if err != nil {
			logging.Warn("checkpoint: write after-blob failed", "file", rel, "error", err.Error())
			continue
		}

		cp := worklog.Checkpoint{
			Kind:          kind,
			File:          rel,
			Patch:         diffparse.MakePatch(before, currentStr),
			BeforeBlobSHA: beforeSHA,
			AfterBlobSHA:  afterSHA,
			AgentID:       agentID,
			Transcript:    tsc,
			Ts:            time.Now().UTC().Format(time.RFC3339),
		}

		if err := store.Append(baseSHA, cp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: appending checkpoint for %s: %v\n", rel, err)
			os.Exit(1)
		}
		filesEdited++
	}

	envelope.CheckCheckpoint(string(kind), filesEdited, time.Since(start))
}

type checkpointOpts struct {
	kind     agentid.CheckpointKind
	model    string
	promptID string
	preset   string
	files    []string
}

// parseCheckpointArgs hand-parses the checkpoint subcommand's small flag
// surface, matching the plain-switch style every cobra leaf in cmd/
// keeps with DisableFlagParsing (see cmd/execute.go). --transcript/--prompt-path
// are accepted and ignored at this layer: a manually invoked checkpoint
// with a known preset should go through --preset instead, which already
// parses the transcript via internal/agentpreset.
func parseCheckpointArgs(args []string) (checkpointOpts, error) {
	opts := checkpointOpts{kind: agentid.KindHuman}
	i := 0
	if len(args) > 0 && !strings.HasPrefix(args[0], "--") {
		k := agentid.CheckpointKind(args[0])
		if !k.Valid() {
			return opts, fmt.Errorf("unknown checkpoint kind %q", args[0])
		}
		opts.kind = k
		i = 1
	}
	for ; i < len(args); i++ {
		a := args[i]
		next := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", a)
			}
			i++
			return args[i], nil
		}
		switch a {
		case "--transcript", "--prompt-path":
			if _, err := next(); err != nil {
				return opts, err
			}
		case "--model":
			v, err := next()
			if err != nil {
				return opts, err
			}
			opts.model = v
			if opts.kind == agentid.KindHuman {
				opts.kind = agentid.KindAiAgent
			}
		case "--prompt-id":
			v, err := next()
			if err != nil {
				return opts, err
			}
			opts.promptID = v
		case "--preset":
			v, err := next()
			if err != nil {
				return opts, err
			}
			opts.preset = v
		case "--file":
			v, err := next()
			if err != nil {
				return opts, err
			}
			opts.files = append(opts.files, v)
		default:
			opts.files = append(opts.files, a)
		}
	}
	return opts, nil
}

// previousContent returns the content the last checkpoint for file under
// baseSHA left behind, falling back to the file's content at baseSHA
// itself (the pre-existing case worklog's write_initial_attributions
// exists for) and finally to empty (new file).
func previousContent(store *worklog.Store, blobs *blobstore.Store, repo *gitrepo.Repo, repoErr error, baseSHA, file string) (string, error) {
	checkpoints, err := store.List(baseSHA)
	if err != nil {
		return "", err
	}
	for i := len(checkpoints) - 1; i >= 0; i-- {
		if checkpoints[i].File == file {
			return blobs.Read(checkpoints[i].AfterBlobSHA)
		}
	}
	if repoErr != nil {
		return "", nil
	}
	content, exists, err := repo.FileContent(baseSHA, file)
	if err != nil || !exists {
		return "", nil
	}
	return content, nil
}

// seedInitialAttribution writes a whole-file human attribution as the
// seed for a file that pre-exists at baseSHA and has no checkpoints yet,
// per spec.md §4.2's write_initial_attributions contract. A brand new
// file (no base content) needs no seed: its first checkpoint's insert
// phase already attributes every line.
func seedInitialAttribution(store *worklog.Store, repo *gitrepo.Repo, repoErr error, baseSHA, file, baseContent string) {
	if repoErr != nil || baseContent == "" {
		return
	}
	if _, ok, _ := store.ReadInitialAttributions(baseSHA); ok {
		return
	}

	lines := strings.Count(baseContent, "\n")
	if !strings.HasSuffix(baseContent, "\n") {
		lines++
	}
	if lines == 0 {
		return
	}

	lineRange := linerange.Single(1)
	if lines > 1 {
		lineRange = linerange.Span(1, lines)
	}

	seed := worklog.InitialAttributions{
		Attributions: map[string][]authorshiplog.LineAttribution{
			file: {{Range: lineRange, AuthorID: agentid.HumanAuthorID}},
		},
		Prompts: map[agentid.PromptID]authorshiplog.PromptRecord{},
	}
	_ = store.WriteInitialAttributions(baseSHA, seed)
}
