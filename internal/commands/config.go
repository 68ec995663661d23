package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/prreview/internal/app"
	"github.com/tildaslashalef/prreview/internal/config"
	"github.com/tildaslashalef/prreview/internal/console"
	"github.com/tildaslashalef/prreview/internal/errs"
)

// ConfigCommand returns the CLI command group that manages ~/.pr-review.toml
func ConfigCommand() *cli.Command {
	cmd := &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Description: "Configuration is stored in ~/.pr-review.toml (or $" + config.PathEnv + ") and follows these priorities:\n" +
			"CLI flags > Environment variables > Config file > Defaults",
		OnUsageError: usageError,
		Subcommands: []*cli.Command{
			{
				Name:         "list",
				Aliases:      []string{"ls"},
				Usage:        "List all configuration values",
				OnUsageError: usageError,
				Action:       configListAction,
			},
			{
				Name:         "get",
				Usage:        "Get a specific configuration value",
				ArgsUsage:    "<key>",
				OnUsageError: usageError,
				Action:       configGetAction,
			},
			{
				Name:         "set",
				Usage:        "Set a configuration value",
				ArgsUsage:    "<key> <value>",
				OnUsageError: usageError,
				Action:       configSetAction,
			},
			{
				Name:         "unset",
				Usage:        "Remove a configuration value",
				ArgsUsage:    "<key>",
				OnUsageError: usageError,
				Action:       configUnsetAction,
			},
			{
				Name:         "path",
				Usage:        "Print the config file location",
				OnUsageError: usageError,
				Action:       configPathAction,
			},
		},
	}

	cmd.Action = func(c *cli.Context) error {
		if c.NArg() > 0 {
			return unknownCommand(c.Args().First(), cmd.Subcommands)
		}
		return cli.ShowSubcommandHelp(c)
	}
	return cmd
}

func configListAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	entries := application.File.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Value})
	}

	application.Console.Table("Configuration", []string{"Key", "Value"}, rows)
	application.Console.Println("File: " + application.Console.Highlight(application.ConfigPath))
	return nil
}

func configGetAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	key, err := requireArgs(c, 1, "config get <key>")
	if err != nil {
		return err
	}

	value, err := application.File.Get(key[0])
	if err != nil {
		return keyNotFound(application.Console, key[0], err)
	}
	if config.IsSecret(key[0]) {
		value = config.Mask(value)
	}

	application.Console.PrintPanel("Configuration Value", fmt.Sprintf("%s: %s", key[0], value), console.BorderConfig)
	return nil
}

func configSetAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	args, err := requireArgs(c, 2, "config set <key> <value>")
	if err != nil {
		return err
	}
	key, value := args[0], args[1]

	if err := application.File.Set(key, value); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return unknownKey(key, application.File.Keys())
		}
		return errs.Usage("%v", err)
	}
	if err := application.File.Validate(); err != nil {
		return errs.Usage("Invalid value for %s: %v", key, err)
	}

	if err := application.SaveConfig(); err != nil {
		return err
	}

	shown := value
	if config.IsSecret(key) {
		shown = config.Mask(value)
	}
	application.Console.Success("Configuration Updated", fmt.Sprintf("Updated: %s = %s", key, shown))
	return nil
}

func configUnsetAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	args, err := requireArgs(c, 1, "config unset <key>")
	if err != nil {
		return err
	}
	key := args[0]

	if err := application.File.Unset(key); err != nil {
		return keyNotFound(application.Console, key, err)
	}

	if err := application.SaveConfig(); err != nil {
		return err
	}

	application.Console.Success("Configuration Updated", "Removed: "+key)
	return nil
}

func configPathAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	application.Console.Println(application.ConfigPath)
	return nil
}

// keyNotFound warns about a key that cannot be read or removed. Lookups of
// missing keys are not failures.
func keyNotFound(term *console.Console, key string, err error) error {
	if errors.Is(err, config.ErrUnknownKey) || errors.Is(err, config.ErrKeyNotSet) {
		term.Warning(fmt.Sprintf("Key '%s' not found in config", key))
		return nil
	}
	return err
}

func unknownKey(key string, keys []string) error {
	msg := fmt.Sprintf("Unknown config key '%s'.", key)
	if matches := Suggest(key, keys); len(matches) > 0 {
		msg += "\n\nDid you mean one of these?\n  " + strings.Join(matches, "\n  ")
	}
	return errs.Usage("%s\n\nValid keys: %s, %s.<provider>", msg,
		strings.Join([]string{config.KeyProvider, config.KeyModel, config.KeyMaxChars, config.KeyTimeout}, ", "),
		config.KeyAPIKeys)
}

// requireArgs returns exactly n positional arguments or a usage error
func requireArgs(c *cli.Context, n int, usage string) ([]string, error) {
	if c.NArg() != n {
		return nil, errs.Usage("Expected %d argument(s): pr-review %s", n, usage)
	}
	return c.Args().Slice(), nil
}
