package cmd

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Source is something that runs commands and receives their output.
type Source interface {
	Name() string
	// Position returns the position the command is run at. Sources without a
	// position, such as the console, return the zero vector.
	Position() mgl64.Vec3
	SendCommandOutput(o *Output)
}

// Permissible is implemented by sources that are subject to permission checks.
// Sources not implementing it may run every command.
type Permissible interface {
	HasPermission(permission string) bool
}

// Player is a Source that is a connected player. Commands with
// Settings.PlayerOnly set may only be run by a Player.
type Player interface {
	Source
	UUID() uuid.UUID
}
