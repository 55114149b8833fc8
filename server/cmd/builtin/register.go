package builtin

import (
	"errors"

	"github.com/dm-vev/gridkit/server/cmd"
)

// Register registers the built-in command set with reg.
func Register(reg *cmd.Registry, srv serverAdapter) error {
	var errs []error
	for _, c := range []cmd.Command{
		newHelpCommand(reg),
		newAboutCommand(srv),
		newStatusCommand(srv),
		newGCCommand(),
		newStopCommand(srv),
		newPluginCommand(srv),
		newMenuCommand(srv),
		newOpCommand(srv),
	} {
		errs = append(errs, reg.Register(c))
	}
	return errors.Join(errs...)
}
