package record

import (
	"testing"
)

func TestRelativizePath(t *testing.T) {
	tests := []struct {
		name       string
		absPath    string
		projectDir string
		expected   string
	}{
		{name: "absolute", absPath: "/home/user/project/src/main.go", projectDir: "/home/user/project", expected: "src/main.go"},
		{name: "empty", absPath: "", projectDir: "/home/user/project", expected: ""},
		{name: "same_dir", absPath: "/home/user/project/file.go", projectDir: "/home/user/project", expected: "file.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativizePath(tt.absPath, tt.projectDir)
			if got != tt.expected {
				t.Errorf("RelativizePath(%q, %q) = %q, want %q",
					tt.absPath, tt.projectDir, got, tt.expected)
			}
		})
	}
}
