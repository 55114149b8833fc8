package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dm-vev/gridkit/server/plugin"
	"github.com/pelletier/go-toml"
)

// Config contains options for starting a gridkit server.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Name is the name of the server, shown by /about and /status.
	Name string
	// TickRate is the number of scheduler ticks per second. Menu refresh
	// periods are measured in these ticks. Defaults to 20.
	TickRate int
	// AsyncWorkers limits the number of async tasks running at the same time.
	// Defaults to 4.
	AsyncWorkers int
	// MenuFolder is the directory menu layouts are loaded from. If empty,
	// "menus" is used.
	MenuFolder string
	// Operators is the operator list consulted when menu buttons run commands
	// on behalf of a viewer. If nil, no viewer is an operator.
	Operators *Operators
	// QueryAddress is the UDP address the status query responder listens on.
	// If empty, no responder is started.
	QueryAddress string
	// Plugins controls the dynamic plugin loader.
	Plugins plugin.Config
}

// New creates a Server using fields of conf. Menus can only be opened once a
// display is attached through Server.UseDisplay.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "Gridkit Server"
	}
	if conf.TickRate <= 0 {
		conf.TickRate = 20
	}
	if conf.AsyncWorkers <= 0 {
		conf.AsyncWorkers = 4
	}
	if conf.MenuFolder == "" {
		conf.MenuFolder = "menus"
	}
	return newServer(conf)
}

// UserConfig is the user configuration of a gridkit server. It holds settings
// that affect the behaviour of the server and is stored as TOML.
type UserConfig struct {
	Server struct {
		// Name is the name of the server.
		Name string
	}
	Log struct {
		// Level is the minimum level of log records written. One of "debug",
		// "info", "warn" and "error".
		Level string
	}
	Scheduler struct {
		// TickRate is the number of ticks per second.
		TickRate int
		// AsyncWorkers limits the number of async tasks running at once.
		AsyncWorkers int
	}
	Menus struct {
		// Folder is the directory menu layouts are loaded from.
		Folder string
		// OperatorsFile is the path to the TOML file listing the viewers that
		// may run privileged commands from menu buttons.
		OperatorsFile string
	}
	Query struct {
		// Enabled controls whether the status query responder is started.
		Enabled bool
		// Address is the UDP address the responder listens on.
		Address string
	}
	Plugins struct {
		// Enabled controls whether plugins are loaded at all.
		Enabled bool
		// Directory is the directory plugins are discovered in.
		Directory string
		// DataDirectory is where plugin data folders are created. Relative
		// paths are resolved against Directory.
		DataDirectory string
		// Autoload loads every .so file found in Directory on start.
		Autoload bool
		// Files lists additional plugin files to load.
		Files []string
	}
}

// Config converts a UserConfig to a Config, so that it may be used for creating
// a Server. An error is returned if the operator list could not be loaded.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:          log,
		Name:         uc.Server.Name,
		TickRate:     uc.Scheduler.TickRate,
		AsyncWorkers: uc.Scheduler.AsyncWorkers,
		MenuFolder:   uc.Menus.Folder,
		Plugins: plugin.Config{
			Enabled:       uc.Plugins.Enabled,
			Directory:     uc.Plugins.Directory,
			DataDirectory: uc.Plugins.DataDirectory,
			Autoload:      uc.Plugins.Autoload,
			Files:         uc.Plugins.Files,
		},
	}
	if uc.Query.Enabled {
		conf.QueryAddress = uc.Query.Address
	}
	operatorsFile := strings.TrimSpace(uc.Menus.OperatorsFile)
	if operatorsFile == "" {
		operatorsFile = "operators.toml"
	}
	ops, err := LoadOperators(operatorsFile, "Console")
	if err != nil {
		return conf, fmt.Errorf("load operators: %w", err)
	}
	conf.Operators = ops
	return conf, nil
}

// Level returns the slog level configured in the Log section. Unknown values
// result in slog.LevelInfo.
func (uc UserConfig) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(uc.Log.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Server.Name = "Gridkit Server"
	c.Log.Level = "info"
	c.Scheduler.TickRate = 20
	c.Scheduler.AsyncWorkers = 4
	c.Menus.Folder = "menus"
	c.Menus.OperatorsFile = "operators.toml"
	c.Query.Enabled = false
	c.Query.Address = ":19132"
	c.Plugins.Enabled = true
	c.Plugins.Directory = "plugins"
	c.Plugins.DataDirectory = "data"
	c.Plugins.Autoload = true
	return c
}

// LoadUserConfig reads the user configuration at path. Values missing from the
// file keep their defaults. If the file does not exist, it is created with
// DefaultConfig.
func LoadUserConfig(path string) (UserConfig, error) {
	c := DefaultConfig()
	contents, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("read config: %w", err)
		}
		encoded, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0777); err != nil {
				return c, fmt.Errorf("create config directory: %w", err)
			}
		}
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return c, fmt.Errorf("write default config: %w", err)
		}
		return c, nil
	}
	if err := toml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
