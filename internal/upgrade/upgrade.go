// Package upgrade checks GitHub Releases for a newer git-ai build and
// runs the published install script when the user opts in. The check
// is rate-limited to once per 24h via a cache file so that ordinary
// command invocations never pay network latency for it (see
// internal/upgrade.MaybeCheck, called fire-and-forget from cmd.Execute).
package upgrade

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/jensroland/git-ai/internal/logging"
)

const (
	githubRepo          = "jensroland/git-ai"
	updateCheckInterval = 24 * time.Hour
	installScriptURL    = "https://raw.githubusercontent.com/jensroland/git-ai/main/install.sh"
)

// Action describes the outcome of an upgrade check, mirroring the four
// branches a human running `git-ai upgrade` actually sees.
type Action int

const (
	AlreadyLatest Action = iota
	UpgradeAvailable
	RunningNewer
	ForceReinstall
)

// cachePath returns the file whose mtime gates how often a background
// update check is allowed to hit the network. GIT_AI_TEST_CACHE_DIR
// overrides the real home-relative path in tests.
func cachePath() (string, error) {
	if dir := os.Getenv("GIT_AI_TEST_CACHE_DIR"); dir != "" {
		return filepath.Join(dir, ".update_check"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".git-ai", ".update_check"), nil
}

// ShouldCheck reports whether enough time has passed since the last
// check (or no check has ever run) to justify another one.
func ShouldCheck() bool {
	path, err := cachePath()
	if err != nil {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > updateCheckInterval
}

func touchCache() {
	path, err := cachePath()
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, nil, 0o644)
}

type release struct {
	TagName string `json:"tag_name"`
}

func latestVersion(apiBaseURL, currentVersion string) (string, error) {
	base := apiBaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	url := fmt.Sprintf("%s/repos/%s/releases/latest", base, githubRepo)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "git-ai/"+currentVersion)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var r release
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("parsing GitHub API response: %w", err)
	}
	if r.TagName == "" {
		return "", fmt.Errorf("no tag_name in GitHub API response")
	}
	return strings.TrimPrefix(r.TagName, "v"), nil
}

// semverTag normalizes a bare "1.2.3" into the "v1.2.3" form
// golang.org/x/mod/semver requires.
func semverTag(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// MaybeCheck runs a rate-limited, best-effort background check and
// logs (never prints) when a newer release exists. It is meant to be
// called fire-and-forget from ordinary command paths, not from
// `git-ai upgrade` itself.
func MaybeCheck(currentVersion string) {
	if !ShouldCheck() {
		return
	}
	touchCache()

	latest, err := latestVersion("", currentVersion)
	if err != nil {
		logging.Debug("upgrade check failed", "error", err)
		return
	}
	if semver.Compare(semverTag(latest), semverTag(currentVersion)) > 0 {
		logging.Info("newer git-ai release available", "current", currentVersion, "latest", latest)
	}
}

// Run implements `git-ai upgrade [--force]`: it checks the latest
// GitHub release against currentVersion and, unless apiBaseURL is set
// (test mode), shells out to the published install script when an
// upgrade is warranted or forced.
func Run(force bool, currentVersion, apiBaseURL string) (Action, error) {
	fmt.Println("Checking for updates...")

	latest, err := latestVersion(apiBaseURL, currentVersion)
	if err != nil {
		return AlreadyLatest, fmt.Errorf("failed to check for updates: %w", err)
	}
	touchCache()

	fmt.Printf("Current version: v%s\n", strings.TrimPrefix(currentVersion, "v"))
	fmt.Printf("Latest version:  v%s\n\n", latest)

	var action Action
	cmp := semver.Compare(semverTag(latest), semverTag(currentVersion))
	switch {
	case force:
		action = ForceReinstall
	case cmp == 0:
		action = AlreadyLatest
	case cmp > 0:
		action = UpgradeAvailable
	default:
		action = RunningNewer
	}

	switch action {
	case AlreadyLatest:
		fmt.Println("You are already on the latest version!")
		fmt.Println("\nTo reinstall anyway, run:\n  git-ai upgrade --force")
		return action, nil
	case RunningNewer:
		fmt.Println("You are running a newer version than the latest release.")
		fmt.Println("(This usually means you're running a development build)")
		fmt.Println("\nTo reinstall the latest release version anyway, run:\n  git-ai upgrade --force")
		return action, nil
	case ForceReinstall:
		fmt.Printf("Force mode enabled - reinstalling v%s\n\n", latest)
	case UpgradeAvailable:
		fmt.Println("A new version is available!\n")
	}

	if apiBaseURL != "" {
		// Test mode: the caller only wants the decision, not an actual install.
		return action, nil
	}

	fmt.Println("Running installation script...")
	cmd := exec.Command("bash", "-c", fmt.Sprintf("curl -fsSL %s | bash", installScriptURL))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return action, fmt.Errorf("installation script failed: %w", err)
	}
	fmt.Printf("\nSuccessfully installed v%s!\n", latest)
	return action, nil
}
