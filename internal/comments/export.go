package comments

import (
	"fmt"
	"strings"
)

// ExportPlain renders comments as a plain-text listing, used by the
// `comments list` CLI subcommand.
func ExportPlain(commentList []Comment, title string) string {
	if title == "" {
		title = "Review comments"
	}

	lines := []string{title, ""}
	for i, c := range commentList {
		lines = append(lines, fmt.Sprintf("%d) [%s] %s", i+1, c.Status, c.Path))
		lines = append(lines, fmt.Sprintf("   %s", c.Message))
		if len(c.Anchor.Selectors) > 0 {
			sel := c.Anchor.Selectors[0]
			lines = append(lines, fmt.Sprintf("   old=%d,%d new=%d,%d digest=%s",
				sel.OldRange.Start, sel.OldRange.Count, sel.NewRange.Start, sel.NewRange.Count, sel.DigestHex))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
