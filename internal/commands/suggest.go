package commands

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/xrash/smetrics"

	"github.com/tildaslashalef/prreview/internal/errs"
)

const (
	suggestionCutoff = 0.6
	maxSuggestions   = 3
)

// Suggest returns up to three candidates that closely resemble name, best match first
func Suggest(name string, candidates []string) []string {
	type scored struct {
		name  string
		score float64
	}

	var matches []scored
	for _, c := range candidates {
		score := smetrics.JaroWinkler(strings.ToLower(name), strings.ToLower(c), 0.7, 4)
		if score >= suggestionCutoff {
			matches = append(matches, scored{c, score})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// unknownCommand builds the usage error for a command name that matches nothing in commands
func unknownCommand(name string, commands []*cli.Command) error {
	var names []string
	for _, cmd := range commands {
		if cmd.Hidden {
			continue
		}
		names = append(names, cmd.Names()...)
	}

	matches := Suggest(name, names)
	if len(matches) == 0 {
		return errs.Usage("Unknown command '%s'.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Unknown command '%s'.\n\nDid you mean one of these?\n", name)
	for _, m := range matches {
		fmt.Fprintf(&b, "  %s\n", m)
	}
	b.WriteString("\nRun 'pr-review --help' to see all available commands.")

	return errs.Usage("%s", b.String())
}
