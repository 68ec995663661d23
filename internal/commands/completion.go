package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/prreview/internal/errs"
)

// Shells supported by the completion command
var completionShells = []string{"bash", "zsh", "fish"}

const bashCompletion = `# pr-review bash completion script
_pr_review_completion() {
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    if [[ "$cur" == "-"* ]]; then
        opts=$("${COMP_WORDS[@]:0:$COMP_CWORD}" "$cur" --generate-bash-completion 2>/dev/null)
    else
        opts=$("${COMP_WORDS[@]:0:$COMP_CWORD}" --generate-bash-completion 2>/dev/null)
    fi
    COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
    return 0
}

complete -o bashdefault -o default -F _pr_review_completion pr-review
`

const zshCompletion = `#compdef pr-review

_pr_review_completion() {
    local -a opts
    local cur
    cur=${words[-1]}
    if [[ "$cur" == "-"* ]]; then
        opts=("${(@f)$(${words[@]:0:#words[@]-1} "${cur}" --generate-bash-completion 2>/dev/null)}")
    else
        opts=("${(@f)$(${words[@]:0:#words[@]-1} --generate-bash-completion 2>/dev/null)}")
    fi

    if [[ "${opts[1]}" != "" ]]; then
        _describe 'values' opts
    else
        _files
    fi
}

compdef _pr_review_completion pr-review
`

const fishCompletion = `function __fish_pr_review_complete
    set -l args (commandline -opc)
    set -l cur (commandline -ct)
    if string match -q -- "-*" $cur
        $args $cur --generate-bash-completion 2>/dev/null
    else
        $args --generate-bash-completion 2>/dev/null
    end
end

complete --no-files -c pr-review -a "(__fish_pr_review_complete)"
`

// CompletionScript returns the completion script for shell
func CompletionScript(shell string) (string, error) {
	switch shell {
	case "bash":
		return bashCompletion, nil
	case "zsh":
		return zshCompletion, nil
	case "fish":
		return fishCompletion, nil
	}
	return "", errs.Usage("Unsupported shell '%s'. Choose one of: bash, zsh, fish", shell)
}

// CompletionCommand returns the CLI command that prints shell completion scripts
func CompletionCommand() *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "Generate shell completion script",
		ArgsUsage: "bash|zsh|fish",
		Description: "Add the output to your shell profile, for example:\n" +
			"  pr-review completion bash >> ~/.bashrc\n" +
			"  pr-review completion zsh > \"${fpath[1]}/_pr-review\"\n" +
			"  pr-review completion fish > ~/.config/fish/completions/pr-review.fish",
		OnUsageError: usageError,
		BashComplete: func(c *cli.Context) {
			for _, s := range completionShells {
				fmt.Fprintln(c.App.Writer, s)
			}
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errs.Usage("Expected one argument: pr-review completion bash|zsh|fish")
			}

			script, err := CompletionScript(c.Args().First())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.App.Writer, script)
			return err
		},
	}
}
