package upgrade

import (
	"strings"
	"testing"
)

func TestSemverTagNormalizesBareVersions(t *testing.T) {
	if got := semverTag("1.2.3"); got != "v1.2.3" {
		t.Errorf("semverTag(%q) = %q, want v1.2.3", "1.2.3", got)
	}
	if got := semverTag("v1.2.3"); got != "v1.2.3" {
		t.Errorf("semverTag(%q) = %q, want v1.2.3", "v1.2.3", got)
	}
}

func TestShouldCheckWithNoCacheFile(t *testing.T) {
	t.Setenv("GIT_AI_TEST_CACHE_DIR", t.TempDir())
	if !ShouldCheck() {
		t.Error("expected a check when no cache file exists yet")
	}
}

func TestShouldCheckRespectsInterval(t *testing.T) {
	t.Setenv("GIT_AI_TEST_CACHE_DIR", t.TempDir())
	touchCache()
	if ShouldCheck() {
		t.Error("expected no check immediately after touching the cache")
	}
}

func TestCachePathUsesTestOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GIT_AI_TEST_CACHE_DIR", dir)
	path, err := cachePath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("cachePath() = %q, want prefix %q", path, dir)
	}
}
