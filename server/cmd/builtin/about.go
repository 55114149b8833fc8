package builtin

import (
	"runtime"
	"runtime/debug"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/plugin"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

func newAboutCommand(srv serverAdapter) cmd.Command {
	return cmd.New("about").
		Aliases("version").
		Description("Displays gridkit and build information.").
		Run(func(_ cmd.Source, _ []string, o *cmd.Output) {
			o.Print("gridkit menu server")

			info, ok := debug.ReadBuildInfo()
			goVersion := runtime.Version()
			if ok && info != nil && info.GoVersion != "" {
				goVersion = info.GoVersion
			}

			o.Printf("Minecraft protocol: %s", protocol.CurrentVersion)
			o.Printf("Plugin API: %s", plugin.APIVersion)
			o.Printf("Go runtime: %s", goVersion)

			if info != nil {
				revision := ""
				for _, setting := range info.Settings {
					if setting.Key == "vcs.revision" && setting.Value != "" {
						revision = setting.Value
						break
					}
				}
				if revision != "" {
					o.Printf("Commit: %s", revision)
				}
			}

			if started := srv.StartTime(); !started.IsZero() {
				o.Printf("Uptime: %s", time.Since(started).Round(time.Second))
			}
		}).
		MustBuild()
}
