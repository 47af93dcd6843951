package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/quickdiff/quickdiff/internal/apperr"
	"github.com/quickdiff/quickdiff/internal/comments"
	"github.com/quickdiff/quickdiff/internal/diffcore"
	"github.com/quickdiff/quickdiff/internal/source"
	"github.com/quickdiff/quickdiff/internal/textbuf"
	"github.com/quickdiff/quickdiff/internal/worker"
)

var flagCommentHunk int

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Inspect and edit persisted review comments without opening the viewer",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments for the current repository",
	Args:  cobra.NoArgs,
	RunE:  runCommentsList,
}

var commentsAddCmd = &cobra.Command{
	Use:   "add PATH MESSAGE",
	Short: "Anchor a comment to a hunk in PATH's working-tree diff",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommentsAdd,
}

var commentsResolveCmd = &cobra.Command{
	Use:   "resolve ID",
	Short: "Mark a comment resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentsResolve,
}

func init() {
	commentsAddCmd.Flags().IntVar(&flagCommentHunk, "hunk", 0, "index of the hunk to anchor the comment to")
	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsResolveCmd)
}

func openStore() (comments.Store, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return comments.Store{}, "", err
	}
	gitDir, err := source.NewGitSource(cwd).GitDir(context.Background())
	if err != nil {
		return comments.Store{}, "", apperr.Wrap(apperr.NotARepo, "resolve git dir", err)
	}
	return comments.NewStore(gitDir), cwd, nil
}

func runCommentsList(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	list, _, err := store.Load()
	if err != nil {
		return apperr.Wrap(apperr.PersistenceCorrupt, "load comments", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no comments")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), comments.ExportPlain(list, ""))
	return nil
}

func runCommentsAdd(cmd *cobra.Command, args []string) error {
	path, message := args[0], args[1]

	store, cwd, err := openStore()
	if err != nil {
		return err
	}
	list, nextID, err := store.Load()
	if err != nil {
		return apperr.Wrap(apperr.PersistenceCorrupt, "load comments", err)
	}

	gs := source.NewGitSource(cwd)
	ds := source.DiffSource{Mode: source.WorkingTree}
	loader := commentAddLoader{blobs: gs, ds: ds}
	old, new, err := loader.Load(context.Background(), worker.FileSelector{Path: path, Context: 3})
	if err != nil {
		return apperr.Wrap(apperr.BlobFetchFailed, "load "+path, err)
	}
	diff := diffcore.New().Compute(old, new, 3)

	sel, ok := comments.SelectorFromHunk(diff, flagCommentHunk, old, new)
	if !ok {
		return apperr.New(apperr.PatchParseFailed, fmt.Sprintf("no hunk %d in %s", flagCommentHunk, path))
	}

	c := comments.Comment{
		ID:          nextID,
		Path:        path,
		Message:     message,
		Status:      comments.StatusOpen,
		Anchor:      comments.Anchor{Selectors: []comments.Selector{sel}},
		CreatedAtMS: time.Now().UnixMilli(),
	}
	list = append(list, c)
	if err := store.Save(list, nextID+1); err != nil {
		return apperr.Wrap(apperr.PersistenceIOFailed, "save comments", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added comment %d\n", c.ID)
	return nil
}

func runCommentsResolve(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid comment id %q: %w", args[0], err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	list, nextID, err := store.Load()
	if err != nil {
		return apperr.Wrap(apperr.PersistenceCorrupt, "load comments", err)
	}

	found := false
	for i := range list {
		if list[i].ID == id {
			list[i].Status = comments.StatusResolved
			list[i].ResolvedAtMS = time.Now().UnixMilli()
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no comment with id %d", id)
	}

	if err := store.Save(list, nextID); err != nil {
		return apperr.Wrap(apperr.PersistenceIOFailed, "save comments", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "resolved comment %d\n", id)
	return nil
}

// commentAddLoader mirrors app's blobLoader, kept separate so the CLI
// package doesn't need to import internal/app just to load one file's
// content for hunk anchoring.
type commentAddLoader struct {
	blobs source.BlobSource
	ds    source.DiffSource
}

func (l commentAddLoader) Load(ctx context.Context, sel worker.FileSelector) (old, new *textbuf.Buffer, err error) {
	oldBytes, newBytes, err := l.blobs.Blobs(ctx, l.ds, sel.Path)
	if err != nil {
		return nil, nil, err
	}
	return textbuf.FromBytes(oldBytes), textbuf.FromBytes(newBytes), nil
}
