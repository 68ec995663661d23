// Package commands defines the pr-review command-line interface
package commands

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/prreview/internal/app"
	"github.com/tildaslashalef/prreview/internal/console"
	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/loggy"
)

// BuildInfo is populated at build time
type BuildInfo struct {
	Version    string
	BuildTime  string
	CommitHash string
}

const verboseKey = "verbose"

// NewApp builds the pr-review CLI. opts are passed to app.New for every invocation;
// verbosity and output writers are filled in from the command line and the cli.App.
func NewApp(info BuildInfo, opts app.Options) *cli.App {
	cliApp := &cli.App{
		Name:  "pr-review",
		Usage: "PR Review CLI - Generate AI-powered code reviews for your pull requests.",
		Description: "When run without a command, pr-review reviews the staged changes.\n\n" +
			"Examples:\n" +
			"  pr-review review\n" +
			"  pr-review review HEAD~3..HEAD\n" +
			"  pr-review config set provider openai",
		Version:              info.Version,
		HideVersion:          true,
		EnableBashCompletion: true,
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, info.BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug logs and full error details",
			},
		}, reviewFlags()...),
		Before: func(c *cli.Context) error {
			o := opts
			o.Verbose = c.Bool("verbose")
			o.Out = c.App.Writer
			o.ErrOut = c.App.ErrWriter
			c.App.Metadata[verboseKey] = o.Verbose

			application, err := app.New(c.Context, o)
			if err != nil {
				return err
			}
			app.Attach(c, application)
			c.Context = loggy.WithLogger(c.Context, application.Logger)

			return nil
		},
		// Errors are printed and mapped to exit codes by Execute
		ExitErrHandler: func(*cli.Context, error) {},
		OnUsageError: usageError,
		Commands: []*cli.Command{
			ReviewCommand(),
			DiffCommand(),
			ConfigCommand(),
			CompletionCommand(),
			VersionCommand(info),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return unknownCommand(c.Args().First(), c.App.Commands)
			}
			// Default action is to run the review command
			return reviewAction(c)
		},
	}
	cliApp.Metadata = map[string]interface{}{}

	return cliApp
}

// Execute runs cliApp with args, prints any error and returns the process exit code
func Execute(ctx context.Context, cliApp *cli.App, args []string) int {
	err := cliApp.RunContext(ctx, args)
	if err == nil {
		return 0
	}

	// The review output already shows the failed verdict
	if errs.KindOf(err) == errs.KindVerdict {
		return errs.ExitCode(err)
	}

	verbose, _ := cliApp.Metadata[verboseKey].(bool)
	application, _ := app.FromMetadata(cliApp.Metadata)

	term, logger, runID := console.New(cliApp.Writer, cliApp.ErrWriter), loggy.GetGlobalLogger(), ""
	if application != nil {
		term, logger, runID = application.Console, application.Logger, application.RunID
	}

	term.Error(err, verbose, runID)
	logger.WithError(err).Debug("Command failed", "kind", errs.KindOf(err), "chain", errs.Chain(err))

	return errs.ExitCode(err)
}

// usageError classifies flag parsing failures as usage errors
func usageError(_ *cli.Context, err error, _ bool) error {
	return errs.Usage("%v", err)
}
