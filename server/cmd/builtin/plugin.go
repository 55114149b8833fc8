package builtin

import (
	"slices"
	"strings"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/plugin"
)

func newPluginCommand(srv serverAdapter) cmd.Command {
	return cmd.New("plugin").
		Aliases("plugins", "pl").
		Description("Manages dynamic plugins.").
		Usage("/plugin list\n/plugin enable <file>\n/plugin disable <name>\n/plugin reload <name>").
		Permission("gridkit.command.plugin").
		Suggest(suggestFirst([]string{"list", "enable", "disable", "reload"}, func(sub string) []string {
			if sub != "disable" && sub != "reload" {
				return nil
			}
			var names []string
			for _, info := range srv.Plugins() {
				names = append(names, info.Name)
			}
			return names
		})).
		Run(func(_ cmd.Source, args []string, o *cmd.Output) {
			sub, rest := subcommand(args)
			if sub == "" || sub == "list" {
				pluginList(srv, o)
				return
			}
			if !srv.PluginsEnabled() {
				o.Error("Plugin subsystem disabled.")
				return
			}
			arg := strings.TrimSpace(strings.Join(rest, " "))
			switch sub {
			case "enable":
				if arg == "" {
					o.Error("Plugin file path is required.")
					return
				}
				info, err := srv.EnablePlugin(arg)
				if err != nil {
					o.Error(err)
					return
				}
				o.Printf("Enabled %s from %s.", describePlugin(info), info.Path)
			case "disable":
				if arg == "" {
					o.Error("Plugin name is required.")
					return
				}
				info, err := srv.DisablePlugin(arg)
				if err != nil {
					o.Error(err)
					return
				}
				o.Printf("Disabled %s.", info.Name)
			case "reload":
				if arg == "" {
					o.Error("Plugin name is required.")
					return
				}
				info, err := srv.ReloadPlugin(arg)
				if err != nil {
					o.Error(err)
					return
				}
				o.Printf("Reloaded %s.", describePlugin(info))
			default:
				o.Errorf("Unknown subcommand %q. Usage: /plugin <list|enable|disable|reload>", sub)
			}
		}).
		MustBuild()
}

func pluginList(srv serverAdapter, o *cmd.Output) {
	if !srv.PluginsEnabled() {
		o.Print("Plugin subsystem disabled.")
		return
	}
	plugins := slices.Clone(srv.Plugins())
	if len(plugins) == 0 {
		o.Print("No plugins loaded.")
		return
	}
	slices.SortStableFunc(plugins, func(a, b plugin.Info) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for _, info := range plugins {
		o.Printf("%s (%s)", describePlugin(info), info.Path)
	}
}

func describePlugin(info plugin.Info) string {
	if info.Version != "" {
		return info.Name + " v" + info.Version
	}
	return info.Name
}
