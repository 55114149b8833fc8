package query

import (
	"runtime/debug"
	"slices"
	"strconv"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Data summarises the information returned by the query responder. The server
// package supplies the values without being aware of the exact key/value pairs
// that are sent over the wire.
type Data struct {
	// HostName is the public server name.
	HostName string
	// MOTD is an optional secondary line shown by some clients.
	MOTD string
	// Engine identifies the software that powers the server. When empty the
	// compiled engineLabel is used.
	Engine string
	// Version is the protocol version string advertised to clients.
	Version string
	// Viewers lists the names of the viewers that have a menu open. They are
	// sent in the player section of the response.
	Viewers []string
	// MaxViewers is the number of viewers the server can serve at once, or 0
	// if there is no limit.
	MaxViewers int
	// Plugins contains a semi-colon separated description of active plugins.
	Plugins string
	// Layouts lists the names of the menu layouts that may be opened.
	Layouts []string
	// Tick is the number of scheduler ticks that passed.
	Tick int64
	// HostIP is the textual representation of the listening IP address. It
	// is filled in by the Listener.
	HostIP string
	// HostPort is the listening port number. It is filled in by the Listener.
	HostPort int
	// GameType describes the type of server. Defaults to "MENU".
	GameType string
	// GameID identifies the title shown to clients. Defaults to "GRIDKIT".
	GameID string
}

// ProviderFunc produces the Data sent in response to a query.
type ProviderFunc func() Data

type keyValue struct {
	key   string
	value string
}

// engineLabel is the engine identifier shown by query clients.
var engineLabel = buildEngineLabel()

// buildEngineLabel inspects build metadata to determine the engine label. The
// build information is optional, so defaults are used when it is missing.
func buildEngineLabel() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "Gridkit"
	}
	version := info.Main.Version
	if version == "" {
		version = "dev"
	}
	return "Gridkit (" + version + ")"
}

// canonicalHost returns the textual representation of the listening host or
// a default when it cannot be determined.
func canonicalHost(host string) string {
	if host == "" {
		return "0.0.0.0"
	}
	return host
}

// applyDefaults initialises required fields before the data is serialised
// into key/value pairs.
func (d *Data) applyDefaults() {
	if d.HostName == "" {
		d.HostName = "Gridkit Server"
	}
	d.HostIP = canonicalHost(d.HostIP)
	if d.Engine == "" {
		d.Engine = engineLabel
	}
	if d.Version == "" {
		d.Version = protocol.CurrentVersion
	}
	if d.GameType == "" {
		d.GameType = "MENU"
	}
	if d.GameID == "" {
		d.GameID = "GRIDKIT"
	}
	d.HostPort = int(uint16(d.HostPort))
	d.Viewers = slices.Clone(d.Viewers)
	slices.Sort(d.Viewers)
}

// keyValues converts Data into the ordered key/value pairs of the query
// protocol.
func (d Data) keyValues() []keyValue {
	values := []keyValue{
		{"hostname", d.HostName},
		{"gametype", d.GameType},
		{"game_id", d.GameID},
		{"version", d.Version},
		{"server_engine", d.Engine},
		{"numplayers", strconv.Itoa(len(d.Viewers))},
		{"maxplayers", strconv.Itoa(d.MaxViewers)},
		{"hostport", strconv.Itoa(d.HostPort)},
		{"hostip", d.HostIP},
		{"tick", strconv.FormatInt(d.Tick, 10)},
	}
	if d.MOTD != "" {
		values = append(values, keyValue{"motd", d.MOTD})
	}
	values = append(values, keyValue{"plugins", d.Plugins})
	if len(d.Layouts) > 0 {
		values = append(values, keyValue{"layouts", strings.Join(d.Layouts, ", ")})
	}
	return values
}
