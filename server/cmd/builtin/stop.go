package builtin

import (
	"github.com/dm-vev/gridkit/server/cmd"
)

func newStopCommand(srv serverAdapter) cmd.Command {
	return cmd.New("stop").
		Description("Stops the server.").
		Permission("gridkit.command.stop").
		Run(func(_ cmd.Source, _ []string, o *cmd.Output) {
			o.Print("Stopping server...")
			if err := srv.Close(); err != nil {
				o.Error(err)
			}
		}).
		MustBuild()
}
