// Package clipboard copies text to the OS clipboard, used by the "copy
// path" keyed action.
package clipboard

import (
	"context"
	"runtime"

	"github.com/quickdiff/quickdiff/internal/util"
)

// CopyText writes text to the system clipboard via the platform's CLI
// clipboard tool. Unsupported platforms are a silent no-op.
func CopyText(ctx context.Context, text string) error {
	switch runtime.GOOS {
	case "darwin":
		_, err := util.RunWithStdin(ctx, "", text, "pbcopy")
		return err
	case "linux":
		_, err := util.RunWithStdin(ctx, "", text, "xclip", "-selection", "clipboard")
		return err
	case "windows":
		_, err := util.RunWithStdin(ctx, "", text, "clip")
		return err
	default:
		return nil
	}
}
