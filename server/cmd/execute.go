package cmd

import (
	"runtime/debug"
	"slices"
	"strings"
)

// Execute executes a command line on behalf of the Source passed. The
// commandLine is expected to include the leading slash. If the command cannot
// be found, an appropriate error is sent back to the Source. The optional
// before function may be supplied to intercept execution; returning false from
// it will stop execution.
func (r *Registry) Execute(source Source, commandLine string, before func(Command, []string) bool) {
	if source == nil {
		panic("cmd.Registry.Execute: source must not be nil")
	}
	commandLine = strings.TrimSpace(commandLine)
	if commandLine == "" {
		return
	}
	args := strings.Fields(commandLine)
	name, ok := strings.CutPrefix(args[0], "/")
	if !ok || name == "" {
		return
	}

	output := &Output{}
	command, ok := r.ByAlias(name)
	if !ok || (command.settings.Hidden && !command.Allowed(source)) {
		output.Errorf(MessageUnknown, name)
		source.SendCommandOutput(output)
		return
	}
	if command.settings.PlayerOnly {
		if _, ok := source.(Player); !ok {
			output.Error(MessagePlayerOnly)
			source.SendCommandOutput(output)
			return
		}
	}
	if !command.Allowed(source) {
		msg := command.settings.PermissionMessage
		if msg == "" {
			msg = MessageNoPermission
		}
		output.Error(msg)
		source.SendCommandOutput(output)
		return
	}
	if before != nil && !before(command, args[1:]) {
		return
	}
	r.run(command, source, args[1:], output)
	source.SendCommandOutput(output)
}

func (r *Registry) run(c Command, src Source, args []string, o *Output) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("Command panicked.", "command", c.name, "source", src.Name(), "panic", v, "stack", string(debug.Stack()))
			o.Errorf("An internal error occurred while running /%s.", c.name)
		}
	}()
	c.run(src, args, o)
}

// Complete returns tab completion candidates for a partially typed command
// line. While the command name is typed, names of commands available to src
// are suggested. Afterwards the Suggester of the command is consulted and its
// candidates are filtered by the argument being typed.
func (r *Registry) Complete(source Source, commandLine string) []string {
	line := strings.TrimLeft(commandLine, " ")
	line, slash := strings.CutPrefix(line, "/")
	if !slash {
		return nil
	}
	fields := strings.Fields(line)
	typing := len(fields) == 0 || !strings.HasSuffix(line, " ")

	if len(fields) == 0 || (len(fields) == 1 && typing) {
		prefix := ""
		if len(fields) == 1 {
			prefix = strings.ToLower(fields[0])
		}
		var out []string
		for _, name := range r.Names(source) {
			if strings.HasPrefix(name, prefix) {
				out = append(out, "/"+name)
			}
		}
		slices.Sort(out)
		return out
	}

	c, ok := r.ByAlias(fields[0])
	if !ok || c.suggest == nil || c.settings.Hidden || !c.Allowed(source) {
		return nil
	}
	args := fields[1:]
	if !typing {
		args = append(args, "")
	}
	current := strings.ToLower(args[len(args)-1])
	var out []string
	for _, s := range c.suggest(source, args) {
		if strings.HasPrefix(strings.ToLower(s), current) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
