package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNoName is returned by Builder.Build if the command has no name.
	ErrNoName = errors.New("command has no name")
	// ErrNoRunnable is returned by Builder.Build if the command has nothing to
	// run.
	ErrNoRunnable = errors.New("command has no runnable")
	// ErrInvalidName is returned by Builder.Build if the name or an alias
	// contains whitespace or a leading slash.
	ErrInvalidName = errors.New("invalid command name")
)

// Runnable is the function executed when a command is run. Args holds the
// arguments following the command name.
type Runnable func(src Source, args []string, o *Output)

// Suggester returns tab completion candidates for the argument currently being
// typed, which is the last element of args.
type Suggester func(src Source, args []string) []string

// Settings holds the optional behaviour flags of a Command.
type Settings struct {
	// PlayerOnly restricts the command to sources implementing Player.
	PlayerOnly bool
	// Hidden excludes the command from help and tab completion.
	Hidden bool
	// PermissionMessage is sent to sources lacking the permission of the
	// command. MessageNoPermission is used if empty.
	PermissionMessage string
}

// Command is an immutable command built through a Builder.
type Command struct {
	name        string
	description string
	usage       string
	permission  string
	aliases     []string
	settings    Settings
	run         Runnable
	suggest     Suggester
}

// Name returns the name of the command.
func (c Command) Name() string { return c.name }

// Description returns the description of the command.
func (c Command) Description() string { return c.description }

// Usage returns the usage of the command, defaulting to "/name".
func (c Command) Usage() string {
	if c.usage == "" {
		return "/" + c.name
	}
	return c.usage
}

// Permission returns the permission needed to run the command, or "".
func (c Command) Permission() string { return c.permission }

// Aliases returns the aliases of the command, not including its name.
func (c Command) Aliases() []string { return slices.Clone(c.aliases) }

// Settings returns the settings of the command.
func (c Command) Settings() Settings { return c.settings }

// Allowed reports if src may run the command.
func (c Command) Allowed(src Source) bool {
	if c.settings.PlayerOnly {
		if _, ok := src.(Player); !ok {
			return false
		}
	}
	if c.permission == "" {
		return true
	}
	if p, ok := src.(Permissible); ok {
		return p.HasPermission(c.permission)
	}
	return true
}

// Builder builds a Command. The zero value is not usable; use New.
type Builder struct {
	c Command
}

// New returns a Builder for a command with the name passed.
func New(name string) *Builder {
	return &Builder{c: Command{name: strings.ToLower(name)}}
}

// Description sets the description shown in help.
func (b *Builder) Description(description string) *Builder {
	b.c.description = description
	return b
}

// Usage sets the usage line shown in help.
func (b *Builder) Usage(usage string) *Builder {
	b.c.usage = usage
	return b
}

// Permission sets the permission sources implementing Permissible need.
func (b *Builder) Permission(permission string) *Builder {
	b.c.permission = permission
	return b
}

// Aliases adds aliases the command may also be run with.
func (b *Builder) Aliases(aliases ...string) *Builder {
	for _, alias := range aliases {
		b.c.aliases = append(b.c.aliases, strings.ToLower(alias))
	}
	return b
}

// Settings sets the behaviour flags of the command.
func (b *Builder) Settings(settings Settings) *Builder {
	b.c.settings = settings
	return b
}

// Run sets the function executed when the command is run.
func (b *Builder) Run(fn Runnable) *Builder {
	b.c.run = fn
	return b
}

// Suggest sets the function providing tab completion for arguments.
func (b *Builder) Suggest(fn Suggester) *Builder {
	b.c.suggest = fn
	return b
}

// Build validates and returns the command.
func (b *Builder) Build() (Command, error) {
	c := b.c
	if c.name == "" {
		return Command{}, ErrNoName
	}
	for _, name := range append([]string{c.name}, c.aliases...) {
		if name == "" || strings.HasPrefix(name, "/") || strings.ContainsAny(name, " \t\n") {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	if c.run == nil {
		return Command{}, fmt.Errorf("build /%s: %w", c.name, ErrNoRunnable)
	}
	c.aliases = slices.Clone(c.aliases)
	return c, nil
}

// MustBuild is like Build but panics on error. It is meant for commands
// defined at package level.
func (b *Builder) MustBuild() Command {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
