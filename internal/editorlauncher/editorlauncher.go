// Package editorlauncher opens the user's external editor at a given file
// and line, suspending the bubbletea program around the call the same way
// the teacher's clipboard package shells out for OS-specific actions.
package editorlauncher

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Chain is an ordered list of editor command names to try; the first one
// found on PATH wins. The core's environment contract specifies three
// ordered names (e.g. $EDITOR, a configured preference, a hardcoded
// fallback like "vi"). An entry of the form "$NAME" is expanded against
// the environment before the PATH lookup.
type Chain []string

// Resolve returns the first command in the chain found on PATH, or "" if
// none are available.
func (c Chain) Resolve() string {
	for _, name := range c {
		if strings.HasPrefix(name, "$") {
			name = os.Getenv(strings.TrimPrefix(name, "$"))
		}
		if name == "" {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Command builds the *exec.Cmd to open path at line using the resolved
// editor. Most editors in this chain accept "+LINE path" (vi/nvim/nano
// convention); callers targeting a GUI editor should special-case it
// before calling Command.
func Command(editor, path string, line int) (*exec.Cmd, error) {
	if editor == "" {
		return nil, fmt.Errorf("editorlauncher: no editor found on PATH")
	}
	args := []string{path}
	if line > 0 {
		args = []string{fmt.Sprintf("+%d", line), path}
	}
	cmd := exec.Command(editor, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}
