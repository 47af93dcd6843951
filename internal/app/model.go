// Package app implements AppLoop: the bubbletea tea.Model that wires
// ViewerModel, DiffWorker, the comment store, and ReviewState into one
// interactive session, plus the key bindings and bordered-pane chrome the
// teacher's model.go established for this kind of split-pane viewer.
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/quickdiff/quickdiff/internal/apperr"
	"github.com/quickdiff/quickdiff/internal/applog"
	"github.com/quickdiff/quickdiff/internal/clipboard"
	"github.com/quickdiff/quickdiff/internal/comments"
	"github.com/quickdiff/quickdiff/internal/editorlauncher"
	"github.com/quickdiff/quickdiff/internal/patch"
	"github.com/quickdiff/quickdiff/internal/render"
	"github.com/quickdiff/quickdiff/internal/review"
	"github.com/quickdiff/quickdiff/internal/source"
	"github.com/quickdiff/quickdiff/internal/textbuf"
	"github.com/quickdiff/quickdiff/internal/theme"
	"github.com/quickdiff/quickdiff/internal/viewer"
	"github.com/quickdiff/quickdiff/internal/watcher"
	"github.com/quickdiff/quickdiff/internal/worker"
)

const diffContextLines = 3

const (
	filePaneWidthDefault = 36
	alertDuration        = 3 * time.Second
)

type focusPane int

const (
	focusFiles focusPane = iota
	focusDiff
)

// blobLoader adapts a BlobSource, bound to one DiffSource, into worker.Loader.
type blobLoader struct {
	blobs source.BlobSource
	ds    source.DiffSource
}

func (l blobLoader) Load(ctx context.Context, sel worker.FileSelector) (old, new *textbuf.Buffer, err error) {
	oldBytes, newBytes, err := l.blobs.Blobs(ctx, l.ds, sel.Path)
	if err != nil {
		return nil, nil, err
	}
	return textbuf.FromBytes(oldBytes), textbuf.FromBytes(newBytes), nil
}

// patchLoader serves content already reconstructed from a parsed patch
// stream, for Stdin/PullRequest sources that never touch a working tree.
type patchLoader struct {
	files map[string][2]string // path -> [oldText, newText]
}

func (l patchLoader) Load(ctx context.Context, sel worker.FileSelector) (old, new *textbuf.Buffer, err error) {
	pair, ok := l.files[sel.Path]
	if !ok {
		return nil, nil, apperr.New(apperr.BlobFetchFailed, "no patch content for "+sel.Path)
	}
	return textbuf.FromBytes([]byte(pair[0])), textbuf.FromBytes([]byte(pair[1])), nil
}

type filesLoadedMsg struct {
	items []source.ChangedFile
	err   error
}

type diffLoadedMsg worker.Response

type alertTickMsg struct{}

type statusMsg string

type watchRefreshMsg struct{}

type editorDoneMsg struct{ err error }

// Model is the bubbletea state container wiring the core's collaborators
// together for one interactive session.
type Model struct {
	keys KeyMap

	cwd      string
	repoRoot string
	ds       source.DiffSource

	changedFiles source.ChangedFileSource
	worker       *worker.Worker
	requestSeq   int64
	lastReqID    int64

	commentStore  comments.Store
	commentList   []comments.Comment
	nextCommentID uint64

	reviewState *review.State

	viewer   *viewer.Model
	renderer *render.Renderer

	editorChain   editorlauncher.Chain
	watcher       *watcher.Watcher
	watcherCancel context.CancelFunc

	width, height int
	ready         bool

	files       []source.ChangedFile
	selected    int
	fileCursor  int
	fileScroll  int
	fileHidden  bool
	filePaneW   int
	focus       focusPane
	initialPath string

	commentInputActive bool
	commentInputModel  textinput.Model
	commentInputErr    string

	filterActive bool
	filterInput  textinput.Model
	filterQuery  string

	commentsOverlayActive bool
	commentsOverlayCursor int

	alertMsg   string
	alertUntil time.Time

	loadingFiles bool
	loadingDiff  bool
	err          error
}

// NewModel discovers the repo at cwd, prepares the worker's loader for ds,
// and loads the persisted comment set and review state.
func NewModel(cwd string, ds source.DiffSource, themeName string, editorChain editorlauncher.Chain) (Model, error) {
	gs := source.NewGitSource(cwd)

	repoRoot, err := gs.RepoRoot(context.Background())
	if err != nil {
		return Model{}, apperr.Wrap(apperr.NotARepo, "resolve repo root", err)
	}
	gitDir, err := gs.GitDir(context.Background())
	if err != nil {
		return Model{}, apperr.Wrap(apperr.NotARepo, "resolve git dir", err)
	}

	loader := worker.Loader(blobLoader{blobs: gs, ds: ds})
	return newModel(cwd, repoRoot, gitDir, ds, gs, loader, themeName, editorChain, true)
}

// NewModelFromPatch builds a Model over a statically parsed unified-diff
// stream (stdin or a PR patch), whose file list and content never touch a
// working tree. State persistence still roots at the enclosing repo's git
// directory when cwd is inside one, falling back to cwd/.quickdiff. The
// watcher is not started: there is no working tree whose changes would
// invalidate a statically parsed diff.
func NewModelFromPatch(cwd string, ds source.DiffSource, files []patch.File, themeName string, editorChain editorlauncher.Chain) (Model, error) {
	changed := make([]source.ChangedFile, 0, len(files))
	content := make(map[string][2]string, len(files))
	for _, f := range files {
		changed = append(changed, source.ChangedFile{Path: f.Path, Kind: f.Kind, OldPath: f.OldPath})
		content[f.Path] = [2]string{f.OldText, f.NewText}
	}

	gitDir, err := source.NewGitSource(cwd).GitDir(context.Background())
	if err != nil {
		gitDir = cwd
	}
	repoRoot := gitDir

	loader := worker.Loader(patchLoader{files: content})
	return newModel(cwd, repoRoot, gitDir, ds, staticFileSource{files: changed}, loader, themeName, editorChain, false)
}

// staticFileSource implements ChangedFileSource over a fixed, pre-computed
// list, for patch-derived sources that never query git directly.
type staticFileSource struct {
	files []source.ChangedFile
}

func (s staticFileSource) ChangedFiles(ctx context.Context, ds source.DiffSource) ([]source.ChangedFile, error) {
	return s.files, nil
}

func newModel(cwd, repoRoot, gitDir string, ds source.DiffSource, changed source.ChangedFileSource, loader worker.Loader, themeName string, editorChain editorlauncher.Chain, watchTree bool) (Model, error) {
	store := comments.NewStore(gitDir)
	commentList, nextID, loadErr := store.Load()

	reviewPath := reviewStatePath(gitDir)
	reviewState, rsErr := review.Load(reviewPath)
	if rsErr != nil {
		reviewState = review.Empty(reviewPath)
	}

	w := worker.New(context.Background(), loader)

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "Type comment"
	input.CharLimit = 4096

	filterField := textinput.New()
	filterField.Prompt = "/"
	filterField.Placeholder = "fuzzy filter"
	filterField.CharLimit = 256

	m := Model{
		keys:              defaultKeyMap(),
		cwd:               cwd,
		repoRoot:          repoRoot,
		ds:                ds,
		changedFiles:      changed,
		worker:            w,
		commentStore:      store,
		commentList:       commentList,
		nextCommentID:     nextID,
		reviewState:       reviewState,
		viewer:            viewer.New(),
		renderer:          render.New(theme.Load(themeName).Styles),
		filePaneW:         filePaneWidthDefault,
		focus:             focusFiles,
		commentInputModel: input,
		filterInput:       filterField,
		editorChain:       editorChain,
	}
	if loadErr != nil {
		applog.ErrorErr(applog.CatComments, "load comment store failed", loadErr)
		m.setAlert(fmt.Sprintf("failed to load comments: %v", loadErr))
	}
	if rsErr != nil {
		applog.ErrorErr(applog.CatReview, "load review state failed", rsErr)
	}

	if watchTree {
		ctx, cancel := context.WithCancel(context.Background())
		w, err := watcher.New([]string{repoRoot}, watcher.DefaultDebounce)
		if err != nil {
			applog.ErrorErr(applog.CatWatcher, "start file watcher failed", err)
			cancel()
		} else {
			m.watcher = w
			m.watcherCancel = cancel
			go w.Run(ctx)
		}
	}
	return m, nil
}

func reviewStatePath(gitDir string) string {
	return gitDir + "/.quickdiff/review.json"
}

// WithInitialFile returns m configured to select path once the changed-file
// list loads, taking priority over the review state's last-selected file.
func (m Model) WithInitialFile(path string) Model {
	m.initialPath = path
	return m
}

// Close stops the background worker and watcher goroutines, guaranteeing
// no orphan survives program exit.
func (m Model) Close() {
	m.worker.Close()
	if m.watcher != nil {
		m.watcherCancel()
		m.watcher.Close()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadFilesCmd(), m.waitForWorkerCmd(), alertTickCmd()}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForWatcherCmd())
	}
	return tea.Batch(cmds...)
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg { return alertTickMsg{} })
}

func (m Model) waitForWorkerCmd() tea.Cmd {
	w := m.worker
	return func() tea.Msg {
		resp, ok := <-w.Responses()
		if !ok {
			return nil
		}
		return diffLoadedMsg(resp)
	}
}

// waitForWatcherCmd blocks for the next debounced filesystem-change signal
// and translates it into a changed-file-list refresh, per the core's
// Watcher collaborator contract.
func (m Model) waitForWatcherCmd() tea.Cmd {
	w := m.watcher
	return func() tea.Msg {
		_, ok := <-w.Signals()
		if !ok {
			return nil
		}
		return watchRefreshMsg{}
	}
}

func (m Model) loadFilesCmd() tea.Cmd {
	src := m.changedFiles
	ds := m.ds
	return func() tea.Msg {
		items, err := src.ChangedFiles(context.Background(), ds)
		return filesLoadedMsg{items: items, err: err}
	}
}

func (m *Model) submitDiffRequest(path string) {
	m.requestSeq++
	m.lastReqID = m.requestSeq
	m.loadingDiff = true
	m.worker.Submit(worker.Request{
		RequestID: m.lastReqID,
		Selector:  worker.FileSelector{Path: path, Context: diffContextLines},
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		return m, nil

	case filesLoadedMsg:
		m.loadingFiles = false
		m.err = msg.err
		m.files = msg.items
		sort.Slice(m.files, func(i, j int) bool { return m.files[i].Path < m.files[j].Path })
		if len(m.files) == 0 {
			return m, nil
		}
		if m.selected >= len(m.files) {
			m.selected = 0
		}
		if last := m.reviewState.LastSelected(m.repoRoot); last != "" {
			if idx := indexOfPath(m.files, last); idx >= 0 {
				m.selected = idx
			}
		}
		if m.initialPath != "" {
			if idx := indexOfPath(m.files, m.initialPath); idx >= 0 {
				m.selected = idx
			}
		}
		m.fileCursor = m.selected
		m.submitDiffRequest(m.files[m.selected].Path)
		return m, nil

	case diffLoadedMsg:
		return m.handleDiffLoaded(worker.Response(msg))

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
		}
		return m, alertTickCmd()

	case statusMsg:
		m.setAlert(string(msg))
		return m, nil

	case watchRefreshMsg:
		m.loadingFiles = true
		return m, tea.Batch(m.loadFilesCmd(), m.waitForWatcherCmd())

	case editorDoneMsg:
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("editor exited with error: %v", msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleDiffLoaded(resp worker.Response) (tea.Model, tea.Cmd) {
	next := m.waitForWorkerCmd()
	if resp.RequestID != m.lastReqID {
		return m, next
	}
	m.loadingDiff = false
	if resp.Err != nil {
		m.err = resp.Err
		applog.ErrorErr(applog.CatWorker, "diff load failed", resp.Err)
		if resp.ErrKind == worker.ErrSource {
			m.setAlert(fmt.Sprintf("failed to load diff: %v", resp.Err))
		}
		return m, next
	}
	m.err = nil
	m.viewer.OpenFile(resp.Diff, resp.Highlight, resp.Old, resp.New, resp.Binary)
	return m, next
}

func indexOfPath(items []source.ChangedFile, path string) int {
	for i, it := range items {
		if it.Path == path {
			return i
		}
	}
	return -1
}

func (m *Model) setAlert(msg string) {
	m.alertMsg = msg
	m.alertUntil = time.Now().Add(alertDuration)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.commentInputActive {
		return m.handleCommentInput(msg)
	}
	if m.filterActive {
		return m.handleFilterInput(msg)
	}
	if m.commentsOverlayActive {
		return m.handleCommentsOverlayKey(msg)
	}

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Refresh) {
		m.loadingFiles = true
		return m, m.loadFilesCmd()
	}
	if key.Matches(msg, m.keys.ToggleFocus) {
		if m.focus == focusFiles {
			m.focus = focusDiff
		} else {
			m.focus = focusFiles
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.FuzzyFilter) {
		m.focus = focusFiles
		cmd := m.startFilterInput()
		return m, cmd
	}
	if key.Matches(msg, m.keys.ViewComments) {
		cmd := m.openCommentsOverlay()
		return m, cmd
	}

	if m.focus == focusFiles {
		return m.handleFilesKey(msg)
	}
	return m.handleDiffKey(msg)
}

// visibleFileIndices returns the indices into m.files the file pane shows
// and navigates, narrowed to filterQuery's fuzzy matches against each
// file's path when a filter is active, ranked by sahilm/fuzzy's match
// score. An empty filterQuery shows every file in its original order.
func (m Model) visibleFileIndices() []int {
	if m.filterQuery == "" {
		out := make([]int, len(m.files))
		for i := range m.files {
			out[i] = i
		}
		return out
	}
	paths := make([]string, len(m.files))
	for i, f := range m.files {
		paths[i] = f.Path
	}
	matches := fuzzy.Find(m.filterQuery, paths)
	out := make([]int, len(matches))
	for i, match := range matches {
		out[i] = match.Index
	}
	return out
}

func (m *Model) clampFileCursor(visibleCount int) {
	if m.fileCursor >= visibleCount {
		m.fileCursor = visibleCount - 1
	}
	if m.fileCursor < 0 {
		m.fileCursor = 0
	}
}

// startFilterInput opens the fuzzy filter's text field, preserving whatever
// query was active before (Esc clears it, so reopening with / after Esc
// starts blank).
func (m *Model) startFilterInput() tea.Cmd {
	m.filterActive = true
	m.filterInput.SetValue(m.filterQuery)
	m.filterInput.CursorEnd()
	return m.filterInput.Focus()
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterActive = false
		m.filterInput.Blur()
		m.filterQuery = ""
		m.filterInput.SetValue("")
		m.clampFileCursor(len(m.visibleFileIndices()))
		return m, nil
	case tea.KeyEnter:
		m.filterActive = false
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filterQuery = m.filterInput.Value()
	m.fileCursor = 0
	return m, cmd
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleFileIndices()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.fileCursor > 0 {
			m.fileCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.fileCursor < len(visible)-1 {
			m.fileCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.fileCursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.fileCursor = len(visible) - 1
		return m, nil
	case key.Matches(msg, m.keys.ToggleViewed):
		if len(visible) == 0 {
			return m, nil
		}
		path := m.files[visible[m.fileCursor]].Path
		if m.reviewState.IsViewed(m.repoRoot, path) {
			m.reviewState.Unmark(m.repoRoot, path)
		} else {
			m.reviewState.MarkViewed(m.repoRoot, path)
		}
		if err := m.reviewState.Save(); err != nil {
			applog.ErrorErr(applog.CatReview, "save review state failed", err)
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if len(visible) == 0 {
			return m, nil
		}
		m.selected = visible[m.fileCursor]
		path := m.files[m.selected].Path
		m.reviewState.SetLastSelected(m.repoRoot, path)
		m.focus = focusDiff
		m.submitDiffRequest(path)
		return m, nil
	case key.Matches(msg, m.keys.CopyPath):
		if len(visible) == 0 {
			return m, nil
		}
		return m, m.copyPathCmd(m.files[visible[m.fileCursor]].Path)
	}
	return m, nil
}

func (m Model) handleDiffKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewer.Scroll(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.viewer.Scroll(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.viewer.Scroll(0, -4)
	case key.Matches(msg, m.keys.Right):
		m.viewer.Scroll(0, 4)
	case key.Matches(msg, m.keys.JumpNextHunk):
		m.viewer.JumpNextHunk()
	case key.Matches(msg, m.keys.JumpPrevHunk):
		m.viewer.JumpPrevHunk()
	case key.Matches(msg, m.keys.ToggleHunks):
		m.viewer.ToggleViewMode()
	case key.Matches(msg, m.keys.FocusOld):
		m.viewer.TogglePane(viewer.PaneOld)
	case key.Matches(msg, m.keys.FocusNew):
		m.viewer.TogglePane(viewer.PaneNew)
	case key.Matches(msg, m.keys.Top):
		m.viewer.Scroll(-1<<30, 0)
	case key.Matches(msg, m.keys.Bottom):
		m.viewer.Scroll(1<<30, 0)
	case key.Matches(msg, m.keys.AddComment):
		return m, m.startCommentInput()
	case key.Matches(msg, m.keys.OpenEditor):
		return m, m.openEditorCmd()
	case key.Matches(msg, m.keys.CopyPath):
		if len(m.files) == 0 {
			return m, nil
		}
		return m, m.copyPathCmd(m.files[m.selected].Path)
	}
	return m, nil
}

// openEditorCmd resolves the configured editor and suspends the program to
// run it against the currently open file, at the diff viewport's current
// scroll row as an approximate cursor line.
func (m Model) openEditorCmd() tea.Cmd {
	if len(m.files) == 0 {
		return nil
	}
	editor := m.editorChain.Resolve()
	if editor == "" {
		return func() tea.Msg { return statusMsg("no editor found on PATH") }
	}
	path := m.files[m.selected].Path
	if m.repoRoot != "" {
		path = m.repoRoot + "/" + path
	}
	cmd, err := editorlauncher.Command(editor, path, m.viewer.ScrollY+1)
	if err != nil {
		return func() tea.Msg { return editorDoneMsg{err: err} }
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

func (m Model) copyPathCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.CopyText(context.Background(), path); err != nil {
			return statusMsg(fmt.Sprintf("copy failed: %v", err))
		}
		return statusMsg(fmt.Sprintf("copied %s", path))
	}
}

// openCommentsOverlay opens the repo's comment list for browsing, with the
// cursor starting on the first comment on the currently open file (or on
// the first comment when the open file has none) so jumping between a file
// and its comments stays cheap.
func (m *Model) openCommentsOverlay() tea.Cmd {
	if len(m.commentList) == 0 {
		m.setAlert("No comments on this repo yet.")
		return nil
	}
	m.commentsOverlayActive = true
	m.commentsOverlayCursor = 0
	if len(m.files) > 0 {
		current := m.files[m.selected].Path
		for i, c := range m.commentList {
			if c.Path == current {
				m.commentsOverlayCursor = i
				break
			}
		}
	}
	return nil
}

func (m Model) handleCommentsOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ViewComments):
		m.commentsOverlayActive = false
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.commentsOverlayCursor > 0 {
			m.commentsOverlayCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.commentsOverlayCursor < len(m.commentList)-1 {
			m.commentsOverlayCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		return m.jumpToOverlayComment()
	}
	if msg.Type == tea.KeyEsc {
		m.commentsOverlayActive = false
		return m, nil
	}
	return m, nil
}

// jumpToOverlayComment switches the file pane's selection to the comment's
// file and requests its diff, closing the overlay. It does not scroll to
// the comment's hunk directly, since the diff for that file may not be the
// one currently loaded — the worker's response arrives on the usual
// asynchronous path.
func (m Model) jumpToOverlayComment() (tea.Model, tea.Cmd) {
	if m.commentsOverlayCursor < 0 || m.commentsOverlayCursor >= len(m.commentList) {
		m.commentsOverlayActive = false
		return m, nil
	}
	path := m.commentList[m.commentsOverlayCursor].Path
	idx := indexOfPath(m.files, path)
	if idx < 0 {
		m.setAlert(fmt.Sprintf("%s is not in the current changed-file list", path))
		m.commentsOverlayActive = false
		return m, nil
	}
	m.commentsOverlayActive = false
	m.selected = idx
	m.fileCursor = idx
	m.focus = focusDiff
	m.reviewState.SetLastSelected(m.repoRoot, path)
	m.submitDiffRequest(path)
	return m, nil
}

func (m *Model) startCommentInput() tea.Cmd {
	hunkIdx := m.viewer.CurrentHunkIndex()
	if hunkIdx < 0 {
		m.setAlert("No hunk at cursor to comment on.")
		return nil
	}
	m.commentInputActive = true
	m.commentInputModel.SetValue("")
	m.commentInputErr = ""
	return m.commentInputModel.Focus()
}

func (m Model) handleCommentInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commentInputActive = false
		m.commentInputModel.Blur()
		m.commentInputModel.SetValue("")
		m.commentInputErr = ""
		return m, nil
	case tea.KeyEnter:
		return m.saveComment()
	}
	var cmd tea.Cmd
	m.commentInputModel, cmd = m.commentInputModel.Update(msg)
	return m, cmd
}

func (m Model) saveComment() (tea.Model, tea.Cmd) {
	body := strings.TrimSpace(m.commentInputModel.Value())
	if body == "" {
		m.commentInputErr = "Comment text is empty."
		return m, nil
	}

	hunkIdx := m.viewer.CurrentHunkIndex()
	old, new := m.viewer.Buffers()
	sel, ok := comments.SelectorFromHunk(m.viewer.Diff(), hunkIdx, old, new)
	if !ok {
		m.commentInputErr = "No hunk at cursor."
		return m, nil
	}
	if len(m.files) == 0 {
		return m, nil
	}

	c := comments.Comment{
		ID:          m.nextCommentID,
		Path:        m.files[m.selected].Path,
		Message:     body,
		Status:      comments.StatusOpen,
		Anchor:      comments.Anchor{Selectors: []comments.Selector{sel}},
		CreatedAtMS: time.Now().UnixMilli(),
	}
	m.nextCommentID++
	m.commentList = append(m.commentList, c)

	if err := m.commentStore.Save(m.commentList, m.nextCommentID); err != nil {
		applog.ErrorErr(applog.CatComments, "save comments failed", err)
		m.commentInputErr = fmt.Sprintf("failed to save comment: %v", err)
		m.commentList = m.commentList[:len(m.commentList)-1]
		m.nextCommentID--
		return m, nil
	}

	m.commentInputActive = false
	m.commentInputModel.Blur()
	m.commentInputModel.SetValue("")
	m.commentInputErr = ""
	return m, nil
}
