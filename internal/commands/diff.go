package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/prreview/internal/app"
	"github.com/tildaslashalef/prreview/internal/console"
	"github.com/tildaslashalef/prreview/internal/git"
)

// DiffCommand returns the CLI command that shows the diff a review would send
func DiffCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Show the changes that would be reviewed",
		ArgsUsage: "[git diff arguments...]",
		Flags: append(selectorFlags(),
			&cli.BoolFlag{
				Name:  "stat",
				Usage: "Show per-file added and deleted line counts instead of the diff",
			},
		),
		OnUsageError: usageError,
		Action:       diffAction,
	}
}

func diffAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}
	term := application.Console
	req := diffRequest(c, application.Config)
	if c.Bool("stat") {
		// A cut hunk cannot be parsed
		req.MaxChars = 0
	}

	diff, err := application.Git.GetDiff(c.Context, req)
	if err != nil {
		return err
	}

	if strings.TrimSpace(diff) == "" {
		term.Notice("Information", "No changes found.")
		return nil
	}

	if c.Bool("stat") {
		summary, err := git.Summarize(diff)
		if err != nil {
			return fmt.Errorf("parsing diff: %w", err)
		}
		term.SummaryTable(summary)
		return nil
	}

	if !term.Interactive() {
		_, err := fmt.Fprint(term.Out(), diff)
		return err
	}

	if err := application.Git.WriteColorDiff(c.Context, req, term.Out()); err != nil {
		application.Logger.Debug("Colored diff failed, falling back to plain output", "error", err)
		term.PrintPanel("Git Diff", diff, console.BorderInfo)
	}
	return nil
}
