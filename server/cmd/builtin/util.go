package builtin

import (
	"slices"
	"strings"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/menu"
)

// viewerOf returns src as a menu viewer if it is a player.
func viewerOf(src cmd.Source) (menu.Viewer, bool) {
	p, ok := src.(cmd.Player)
	return p, ok
}

// subcommand splits args into the lowercase subcommand and its arguments.
func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return strings.ToLower(args[0]), args[1:]
}

// suggestFirst completes the first argument from options and the second one
// through next, if set.
func suggestFirst(options []string, next func(sub string) []string) cmd.Suggester {
	return func(_ cmd.Source, args []string) []string {
		switch len(args) {
		case 1:
			return slices.Clone(options)
		case 2:
			if next != nil {
				return next(strings.ToLower(args[0]))
			}
		}
		return nil
	}
}
