package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quickdiff/quickdiff/internal/comments"
	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/render"
)

var (
	paneBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	focusedBorderStyle = paneBorderStyle.BorderForeground(lipgloss.Color("39"))
	titleStyle        = lipgloss.NewStyle().Bold(true)
	cursorRowStyle    = lipgloss.NewStyle().Reverse(true)
	dimStyle          = lipgloss.NewStyle().Faint(true)
)

func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}

	if m.commentsOverlayActive {
		return m.renderCommentsOverlay()
	}

	leftW, rightW := paneWidths(m.width, m.filePaneW, m.fileHidden, true)
	oldW, newW := splitRightPanes(rightW)

	bodyHeight := m.height - 2
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var rows []string
	if !m.fileHidden {
		rows = append(rows, m.renderFilesPane(leftW, bodyHeight))
	}

	oldPane := m.renderDiffSidePane("Old", diffcore.SideOld, oldW, bodyHeight)
	newPane := m.renderDiffSidePane(fmt.Sprintf("New: %s", m.currentPath()), diffcore.SideNew, newW, bodyHeight)
	diffRow := lipgloss.JoinHorizontal(lipgloss.Top, oldPane, newPane)

	if !m.fileHidden {
		rows = append(rows, diffRow)
		return lipgloss.JoinHorizontal(lipgloss.Top, rows...) + "\n" + m.renderStatusLine()
	}
	return diffRow + "\n" + m.renderStatusLine()
}

// renderCommentsOverlay renders the full-screen comment browser, listing
// every persisted comment with its path and status, cursor-highlighted.
func (m Model) renderCommentsOverlay() string {
	style := focusedBorderStyle

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Comments (%d)", len(m.commentList))))
	b.WriteString("\n\n")

	height := m.height - 4
	if height < 1 {
		height = 1
	}
	start, end := windowedRange(m.commentsOverlayCursor, len(m.commentList), height)
	for i := start; i < end; i++ {
		c := m.commentList[i]
		status := "open"
		if c.Status == comments.StatusResolved {
			status = "resolved"
		}
		line := fmt.Sprintf("[%s] %s: %s", status, c.Path, c.Message)
		if i == m.commentsOverlayCursor {
			line = cursorRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.keys.Open.Help().Key + " open file  " + m.keys.Up.Help().Key + "/" + m.keys.Down.Help().Key + " move  esc close"))

	return style.Width(m.width - 2).Height(m.height - 2).Render(b.String())
}

func (m Model) currentPath() string {
	if m.selected < 0 || m.selected >= len(m.files) {
		return "(no file)"
	}
	return m.files[m.selected].Path
}

func (m Model) renderFilesPane(width, height int) string {
	style := paneBorderStyle
	if m.focus == focusFiles {
		style = focusedBorderStyle
	}

	var b strings.Builder
	title := "Files"
	if m.loadingFiles {
		title += " (loading…)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	headerLines := 1
	switch {
	case m.filterActive:
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
		headerLines++
	case m.filterQuery != "":
		b.WriteString(dimStyle.Render("/" + m.filterQuery))
		b.WriteString("\n")
		headerLines++
	}

	visibleIdx := m.visibleFileIndices()
	visibleRows := height - headerLines
	if visibleRows < 1 {
		visibleRows = 1
	}

	if len(visibleIdx) == 0 {
		b.WriteString(dimStyle.Render("no matches"))
		b.WriteString("\n")
		return style.Width(width).Height(height).Render(b.String())
	}

	start, end := windowedRange(m.fileCursor, len(visibleIdx), visibleRows)
	for i := start; i < end; i++ {
		f := m.files[visibleIdx[i]]
		marker := " "
		if m.reviewState.IsViewed(m.repoRoot, f.Path) {
			marker = "✓"
		}
		line := fmt.Sprintf("%s %s", marker, f.Path)
		if i == m.fileCursor {
			line = cursorRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return style.Width(width).Height(height).Render(b.String())
}

func windowedRange(cursor, total, visible int) (int, int) {
	if total <= visible {
		return 0, total
	}
	start := cursor - visible/2
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > total {
		end = total
		start = end - visible
	}
	return start, end
}

func (m Model) renderDiffSidePane(title string, side diffcore.Side, width, height int) string {
	style := paneBorderStyle
	if m.focus == focusDiff {
		style = focusedBorderStyle
	}

	if m.viewer.IsBinary() {
		body := "Binary file not shown."
		return style.Width(width).Height(height).Render(titleStyle.Render(title) + "\n" + dimStyle.Render(body))
	}

	diff := m.viewer.Diff()
	if diff == nil {
		body := "No diff loaded."
		if m.loadingDiff {
			body = "Loading diff…"
		}
		if m.err != nil {
			body = fmt.Sprintf("Error: %v", m.err)
		}
		return style.Width(width).Height(height).Render(titleStyle.Render(title) + "\n" + body)
	}

	old, new := m.viewer.Buffers()
	buf := old
	var fh *highlight.FileHighlight
	hl := m.viewer.Highlight()
	if hl != nil {
		fh = hl.Old
	}
	if side == diffcore.SideNew {
		buf = new
		if hl != nil {
			fh = hl.New
		}
	}

	frame := render.Frame{
		Side:       side,
		Diff:       diff,
		Projection: m.viewer.Projection(),
		Highlight:  fh,
		Buffer:     buf,
		ScrollY:    m.viewer.ScrollY,
		ScrollX:    m.viewer.ScrollX,
		Height:     height - 1,
		Width:      width,
	}
	lines := m.renderer.RenderPane(frame)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}

	return style.Width(width).Height(height).Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m Model) renderStatusLine() string {
	if m.commentInputActive {
		line := "Comment: " + m.commentInputModel.View()
		if m.commentInputErr != "" {
			line += "  (" + m.commentInputErr + ")"
		}
		return line
	}
	if m.alertMsg != "" {
		return dimStyle.Render(m.alertMsg)
	}
	return dimStyle.Render(helpLine(m.keys))
}

func helpLine(k KeyMap) string {
	return strings.Join([]string{
		k.Up.Help().Key + "/" + k.Down.Help().Key + " move",
		k.Open.Help().Key + " open",
		k.JumpNextHunk.Help().Key + "/" + k.JumpPrevHunk.Help().Key + " hunk",
		k.ToggleHunks.Help().Key + " hunks-only",
		k.AddComment.Help().Key + " comment",
		k.ViewComments.Help().Key + " comments",
		k.FuzzyFilter.Help().Key + " filter",
		k.ToggleViewed.Help().Key + " viewed",
		k.ToggleFocus.Help().Key + " focus",
		k.OpenEditor.Help().Key + " editor",
		k.CopyPath.Help().Key + " copy path",
		k.Quit.Help().Key + " quit",
	}, "  ")
}
