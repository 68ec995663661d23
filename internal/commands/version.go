package commands

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"
)

// VersionCommand returns the CLI command that prints build information
func VersionCommand(info BuildInfo) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "pr-review %s\n", info.Version)
			fmt.Fprintf(c.App.Writer, "  commit:  %s\n", info.CommitHash)
			fmt.Fprintf(c.App.Writer, "  built:   %s\n", info.BuildTime)
			fmt.Fprintf(c.App.Writer, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
