// Package ghpr wraps the `gh` CLI for pull-request-mediated actions, the
// same way internal/source wraps `git` — a thin external collaborator with
// no diff computation of its own.
package ghpr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/quickdiff/quickdiff/internal/util"
)

// Client wraps `gh` invocations scoped to one repo directory.
type Client struct {
	Dir string
}

// New returns a Client rooted at dir.
func New(dir string) *Client {
	return &Client{Dir: dir}
}

// Info is the subset of `gh pr view --json` fields the core cares about.
type Info struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	BaseRef string `json:"baseRefName"`
	HeadRef string `json:"headRefName"`
}

// View fetches metadata for pr (0 meaning "the PR for the current branch").
func (c *Client) View(ctx context.Context, pr int) (Info, error) {
	args := []string{"pr", "view", "--json", "number,title,baseRefName,headRefName"}
	args = insertPRArg(args, pr, 2)

	out, err := util.Run(ctx, c.Dir, "gh", args...)
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return Info{}, fmt.Errorf("ghpr: parse pr view output: %w", err)
	}
	return info, nil
}

// Diff returns the unified-diff patch text for pr.
func (c *Client) Diff(ctx context.Context, pr int) (string, error) {
	args := []string{"pr", "diff"}
	args = insertPRArg(args, pr, 2)
	return util.Run(ctx, c.Dir, "gh", args...)
}

// Approve approves pr with an optional review comment.
func (c *Client) Approve(ctx context.Context, pr int, body string) error {
	args := []string{"pr", "review", "--approve"}
	if body != "" {
		args = append(args, "--body", body)
	}
	args = insertPRArg(args, pr, 2)
	_, err := util.Run(ctx, c.Dir, "gh", args...)
	return err
}

// Comment posts body as a top-level comment on pr.
func (c *Client) Comment(ctx context.Context, pr int, body string) error {
	args := []string{"pr", "comment"}
	args = insertPRArg(args, pr, 2)
	_, err := util.RunWithStdin(ctx, c.Dir, body, "gh", append(args, "--body-file", "-")...)
	return err
}

// insertPRArg inserts pr's number at position idx in args when pr != 0,
// leaving args unchanged (so `gh` resolves the current branch's PR) when
// pr == 0.
func insertPRArg(args []string, pr, idx int) []string {
	if pr == 0 {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[:idx]...)
	out = append(out, strconv.Itoa(pr))
	out = append(out, args[idx:]...)
	return out
}
