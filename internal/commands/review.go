package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/prreview/internal/app"
	"github.com/tildaslashalef/prreview/internal/config"
	"github.com/tildaslashalef/prreview/internal/git"
	"github.com/tildaslashalef/prreview/internal/loggy"
	"github.com/tildaslashalef/prreview/internal/review"
)

// selectorFlags choose which changes are diffed
func selectorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "staged",
			Aliases: []string{"s"},
			Usage:   "Review staged changes (default when nothing else is selected)",
		},
		&cli.BoolFlag{
			Name:    "unstaged",
			Aliases: []string{"u"},
			Usage:   "Review working tree changes that are not staged",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Review changes to a single file",
		},
		&cli.StringFlag{
			Name:    "commit",
			Aliases: []string{"c"},
			Usage:   "Review a commit, or a range such as main..feature",
		},
		&cli.IntFlag{
			Name:  "max-chars",
			Usage: "Truncate the diff to this many characters (0 disables, default from config)",
		},
	}
}

// reviewFlags are accepted by the review command and by the root command
func reviewFlags() []cli.Flag {
	return append(selectorFlags(),
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "AI provider to use (gemini, openai, anthropic)",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Model to use for the review",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key for the provider, overrides the environment and config",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Abort the provider call after this long (0 disables, default from config)",
		},
		&cli.BoolFlag{
			Name:  "ignore-errors",
			Usage: "Exit 0 even when the review requests changes",
		},
	)
}

// ReviewCommand returns the CLI command that reviews a diff
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Generate an AI review of your changes",
		ArgsUsage: "[git diff arguments...]",
		Description: "Reviews the staged changes by default. Extra arguments are passed to git diff,\n" +
			"e.g. 'pr-review review HEAD~3..HEAD'. Exits 1 when the review requests changes.",
		Flags:        reviewFlags(),
		OnUsageError: usageError,
		Action:       reviewAction,
	}
}

func reviewAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	opts := review.Options{
		Diff: diffRequest(c, application.Config),
		Overrides: config.Overrides{
			Provider: c.String("provider"),
			Model:    c.String("model"),
			APIKey:   c.String("api-key"),
		},
		IgnoreErrors: c.Bool("ignore-errors"),
		Timeout:      application.Config.Timeout.Duration,
	}
	if c.IsSet("timeout") {
		opts.Timeout = c.Duration("timeout")
	}

	loggy.Debug("Starting review", "scope", opts.Diff.Scope(), "args", opts.Diff.GitArgs())

	result, err := application.Review.Run(c.Context, opts)
	if result != nil && !result.Skipped {
		loggy.Info("Review complete",
			"provider", result.Credentials.Provider,
			"verdict", result.Verdict,
			"duration", result.Duration,
		)
	}
	return err
}

// diffRequest builds the git selection from flags and positional arguments
func diffRequest(c *cli.Context, cfg *config.Config) git.DiffRequest {
	req := git.DiffRequest{
		Staged:   c.Bool("staged"),
		Unstaged: c.Bool("unstaged"),
		File:     c.String("file"),
		Commit:   c.String("commit"),
		Args:     c.Args().Slice(),
		MaxChars: cfg.MaxChars,
	}
	if c.IsSet("max-chars") {
		req.MaxChars = c.Int("max-chars")
	}
	return req
}
