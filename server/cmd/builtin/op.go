package builtin

import (
	"strings"

	"github.com/dm-vev/gridkit/server/cmd"
)

func newOpCommand(srv serverAdapter) cmd.Command {
	return cmd.New("op").
		Aliases("operator", "ops").
		Description("Manages the viewers allowed to run privileged commands from menus.").
		Usage("/op list\n/op add <viewer>\n/op remove <viewer>").
		Permission("gridkit.command.op").
		Suggest(suggestFirst([]string{"list", "add", "remove"}, func(sub string) []string {
			if sub != "remove" {
				return nil
			}
			return srv.Operators()
		})).
		Run(func(_ cmd.Source, args []string, o *cmd.Output) {
			sub, rest := subcommand(args)
			name := ""
			if len(rest) > 0 {
				name = strings.TrimSpace(rest[0])
			}
			switch sub {
			case "", "list":
				names := srv.Operators()
				o.Printf("Operators: %d viewer(s).", len(names))
				if len(names) != 0 {
					o.Print(strings.Join(names, ", "))
				}
			case "add":
				if name == "" {
					o.Error("Viewer name is required.")
					return
				}
				added, err := srv.AddOperator(name)
				if err != nil {
					o.Error(err)
					return
				}
				if added {
					o.Printf("Added %s to the operators.", name)
					return
				}
				o.Printf("%s is already an operator.", name)
			case "remove":
				if name == "" {
					o.Error("Viewer name is required.")
					return
				}
				removed, err := srv.RemoveOperator(name)
				if err != nil {
					o.Error(err)
					return
				}
				if removed {
					o.Printf("Removed %s from the operators.", name)
					return
				}
				o.Printf("%s is not an operator.", name)
			default:
				o.Errorf("Unknown subcommand %q. Usage: /op <list|add|remove>", sub)
			}
		}).
		MustBuild()
}
