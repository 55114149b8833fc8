package builtin

import (
	"strings"

	"github.com/dm-vev/gridkit/server/cmd"
)

func newMenuCommand(srv serverAdapter) cmd.Command {
	return cmd.New("menu").
		Aliases("menus", "gui").
		Description("Lists, opens and reloads menu layouts.").
		Usage("/menu list\n/menu open <layout>\n/menu reload").
		Suggest(suggestFirst([]string{"list", "open", "reload"}, func(sub string) []string {
			if sub != "open" {
				return nil
			}
			return srv.Layouts()
		})).
		Run(func(src cmd.Source, args []string, o *cmd.Output) {
			sub, rest := subcommand(args)
			switch sub {
			case "", "list":
				names := srv.Layouts()
				if len(names) == 0 {
					o.Print("No menu layouts loaded.")
					return
				}
				o.Printf("Menu layouts (%d): %s", len(names), strings.Join(names, ", "))
			case "open":
				if len(rest) == 0 {
					o.Error("Layout name is required.")
					return
				}
				v, ok := viewerOf(src)
				if !ok {
					o.Error(cmd.MessagePlayerOnly)
					return
				}
				if err := srv.OpenLayout(v, rest[0]); err != nil {
					o.Error(err)
					return
				}
			case "reload":
				if p, ok := src.(cmd.Permissible); ok && !p.HasPermission("gridkit.command.menu.reload") {
					o.Error(cmd.MessageNoPermission)
					return
				}
				if err := srv.ReloadLayouts(); err != nil {
					o.Error(err)
					return
				}
				o.Printf("Reloaded %d menu layouts.", len(srv.Layouts()))
			default:
				o.Errorf("Unknown subcommand %q. Usage: /menu <list|open|reload>", sub)
			}
		}).
		MustBuild()
}
