// Package app provides the application initialization and lifecycle management
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/prreview/internal/config"
	"github.com/tildaslashalef/prreview/internal/console"
	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/git"
	"github.com/tildaslashalef/prreview/internal/llm"
	"github.com/tildaslashalef/prreview/internal/loggy"
	"github.com/tildaslashalef/prreview/internal/review"
)

const metadataKey = "app"

// Options customize how the application is built
type Options struct {
	Verbose     bool
	Out         io.Writer // defaults to os.Stdout
	ErrOut      io.Writer // defaults to os.Stderr
	Dir         string    // repository directory, defaults to the working directory
	ConfigPath  string    // defaults to config.Path()
	Console     []console.Option
	GeminiHooks []llm.GeminiOption
}

// App represents the application instance with its dependencies
type App struct {
	Config     *config.Config // file settings with PR_REVIEW_* overrides applied
	File       *config.Config // settings as stored in ConfigPath
	ConfigPath string
	Git        *git.Service
	LLM        *llm.Gateway
	Console    *console.Console
	Review     *review.Service
	Logger     *loggy.Logger
	RunID      string
	Verbose    bool
}

// New initializes a new application instance with all its dependencies
func New(ctx context.Context, opts Options) (*App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, errs.Config(err, "Error loading env file: %v", err)
	}

	out, errOut := opts.Out, opts.ErrOut
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	if err := initLogger(opts.Verbose, errOut); err != nil {
		return nil, err
	}
	ctx = loggy.WithRunID(ctx)
	logger := loggy.FromContext(ctx)

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}

	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg := fileCfg.Clone()
	config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errs.Config(err, "Invalid config %s: %v", cfgPath, err)
	}

	term := console.New(out, errOut, opts.Console...)

	gitOpts := []git.Option{git.WithTimeout(cfg.Timeout.Duration)}
	if opts.Dir != "" {
		gitOpts = append(gitOpts, git.WithDir(opts.Dir))
	}
	gitService := git.NewService(logger.With("component", "git"), gitOpts...)
	gateway := llm.NewDefaultGateway(logger.With("component", "llm"), opts.GeminiHooks...)

	reviewService := review.NewService(cfg, gitService, gitService, gateway, term, logger.With("component", "review"))

	logger.Debug("Application initialized",
		"config", cfgPath,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"providers", gateway.Providers(),
	)

	return &App{
		Config:     cfg,
		File:       fileCfg,
		ConfigPath: cfgPath,
		Git:        gitService,
		LLM:        gateway,
		Console:    term,
		Review:     reviewService,
		Logger:     logger,
		RunID:      loggy.GetRunID(ctx),
		Verbose:    opts.Verbose,
	}, nil
}

// initLogger initializes the logging system. Verbose mode forces debug output;
// logs sent to stderr go to errOut.
func initLogger(verbose bool, errOut io.Writer) error {
	lc := config.LoggingFromEnv()
	level := config.ParseLogLevel(lc.Level)
	if verbose {
		level = config.ParseLogLevel("debug")
	}

	lcfg := loggy.Config{
		Level:      level,
		Format:     lc.Format,
		Output:     lc.Output,
		AddSource:  lc.AddSource,
		TimeFormat: lc.TimeFormat,
	}
	if lc.Output == "" || lc.Output == "stderr" {
		lcfg.Writer = errOut
	}

	err := loggy.Init(lcfg)
	if err != nil {
		return errs.Config(err, "failed to initialize logger: %v", err)
	}
	return nil
}

// SaveConfig writes the file settings back to ConfigPath. Environment overrides are never persisted.
func (app *App) SaveConfig() error {
	return config.Save(app.ConfigPath, app.File)
}

// Attach stores app in the CLI metadata
func Attach(c *cli.Context, app *App) {
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[metadataKey] = app
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := FromMetadata(c.App.Metadata)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}

// FromMetadata retrieves the App instance stored by Attach
func FromMetadata(md map[string]interface{}) (*App, bool) {
	app, ok := md[metadataKey].(*App)
	return app, ok
}
