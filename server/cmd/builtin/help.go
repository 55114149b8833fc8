package builtin

import (
	"strings"

	"github.com/dm-vev/gridkit/server/cmd"
)

func newHelpCommand(reg *cmd.Registry) cmd.Command {
	return cmd.New("help").
		Aliases("?").
		Description("Shows available commands and their usage.").
		Usage("/help [command]").
		Suggest(func(src cmd.Source, args []string) []string {
			if len(args) != 1 {
				return nil
			}
			return reg.Names(src)
		}).
		Run(func(src cmd.Source, args []string, o *cmd.Output) {
			if len(args) > 0 {
				name := strings.ToLower(strings.TrimPrefix(args[0], "/"))
				command, found := reg.ByAlias(name)
				if !found || command.Settings().Hidden || !command.Allowed(src) {
					o.Errorf(cmd.MessageUnknown, name)
					return
				}
				if desc := command.Description(); desc != "" {
					o.Print(desc)
				}
				for _, line := range strings.Split(command.Usage(), "\n") {
					o.Print(line)
				}
				if aliases := command.Aliases(); len(aliases) > 0 {
					o.Printf("Aliases: %s", strings.Join(aliases, ", "))
				}
				return
			}

			names := reg.Names(src)
			if len(names) == 0 {
				o.Print("No commands available.")
				return
			}
			o.Printf("Available commands (%d):", len(names))
			for _, name := range names {
				command, _ := reg.ByAlias(name)
				line := "/" + name
				if desc := command.Description(); desc != "" {
					line += " - " + desc
				}
				o.Print(line)
			}
		}).
		MustBuild()
}
