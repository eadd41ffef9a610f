// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"strings"

	"github.com/alnah/go-admitdoc/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForStoreOpen returns hints for template store open errors.
func ForStoreOpen() string {
	hints := []string{"set ADMITDOC_STORE_PATH or templates.storePath to a writable file"}
	if IsInContainer() {
		hints = append(hints, "mount a volume for the store so it survives restarts")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the header image timeout.
func ForTimeout() string {
	return format("for slow image hosts, use --image-timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-admitdoc/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-admitdoc") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForHeaderImage returns hints for header image load errors.
func ForHeaderImage(baseDir string) string {
	return formatHints([]string{
		"supported formats: PNG, JPG, GIF, SVG, WebP, BMP",
		fmt.Sprintf("bare names are read from %s", baseDir),
	})
}

// ForImportFormat returns hints for rejected configuration bundles.
func ForImportFormat() string {
	return format(`the file needs "templates" and "config"; create one with 'admitdoc templates export'`)
}

// ForUnderage returns a hint naming the configured minimum age.
func ForUnderage(minimumAge int) string {
	return format(fmt.Sprintf("patients must be at least %d; adjust patient.minimumAge if your unit admits minors", minimumAge))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
