package server

import (
	"log/slog"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// viewerSource runs commands of menu buttons on behalf of a viewer that is not
// a command source itself, such as the terminal viewer. Only operators hold
// permissions.
type viewerSource struct {
	v   menu.Viewer
	ops *Operators
	log *slog.Logger
}

// sourceOf returns the command source that commands clicked by v run as.
func (srv *Server) sourceOf(v menu.Viewer) cmd.Source {
	if src, ok := v.(cmd.Source); ok {
		return src
	}
	return viewerSource{v: v, ops: srv.conf.Operators, log: srv.log.With("viewer", v.Name())}
}

func (s viewerSource) Name() string         { return s.v.Name() }
func (s viewerSource) UUID() uuid.UUID      { return s.v.UUID() }
func (s viewerSource) Position() mgl64.Vec3 { return mgl64.Vec3{} }

// HasPermission ...
func (s viewerSource) HasPermission(string) bool {
	return s.ops.Contains(s.v.Name())
}

// SendCommandOutput ...
func (s viewerSource) SendCommandOutput(o *cmd.Output) {
	for _, msg := range o.Messages() {
		s.log.Info(msg)
	}
	for _, err := range o.Errors() {
		s.log.Error(err.Error())
	}
}

var (
	_ cmd.Player      = viewerSource{}
	_ cmd.Permissible = viewerSource{}
)
