// Package clipboard copies text to the system clipboard via shell tools.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard tool is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// tool is one clipboard command line.
type tool struct {
	name string
	args []string
}

// tools lists candidate commands per GOOS, in preference order.
var tools = map[string][]tool{
	"darwin": {{name: "pbcopy"}},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
	"windows": {{name: "clip.exe"}},
}

// lookPath is exec.LookPath, replaceable in tests.
var lookPath = exec.LookPath

// find returns the first installed tool for goos.
func find(goos string) (tool, string, error) {
	for _, t := range tools[goos] {
		if path, err := lookPath(t.name); err == nil {
			return t, path, nil
		}
	}
	return tool{}, "", ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard tool is installed.
func IsAvailable() bool {
	_, _, err := find(runtime.GOOS)
	return err == nil
}

// Copy writes text to the system clipboard.
func Copy(ctx context.Context, text string) error {
	t, path, err := find(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, path, t.args...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
