// Command gridkit runs a gridkit server. By default commands are read from
// standard input. With -tui, the terminal becomes a display showing menus to
// the person at the keyboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dm-vev/gridkit/server"
	"github.com/dm-vev/gridkit/server/console"
	"github.com/dm-vev/gridkit/server/terminal"
)

func main() {
	var (
		configPath string
		tui        bool
		layoutName string
	)
	flag.StringVar(&configPath, "config", "config.toml", "path to the server configuration file")
	flag.BoolVar(&tui, "tui", false, "show menus in the terminal instead of reading console commands")
	flag.StringVar(&layoutName, "menu", "server", "menu layout opened when the terminal UI starts")
	flag.Parse()

	uc, err := server.LoadUserConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gridkit:", err)
		os.Exit(1)
	}
	out := &logSink{w: os.Stderr}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: uc.Level()}))

	conf, err := uc.Config(log)
	if err != nil {
		log.Error("Could not load configuration.", "err", err)
		os.Exit(1)
	}
	srv := conf.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !tui {
		go console.New(srv, log).Run(ctx)
		if err := srv.Run(ctx); err != nil {
			log.Error("Server stopped.", "err", err)
			os.Exit(1)
		}
		return
	}
	if err := runTerminal(ctx, srv, log, out, layoutName); err != nil {
		log.Error("Terminal UI stopped.", "err", err)
		os.Exit(1)
	}
}

// runTerminal runs srv with the terminal as its display until the UI is quit
// or the server stops.
func runTerminal(ctx context.Context, srv *server.Server, log *slog.Logger, out *logSink, layoutName string) error {
	d := terminal.Config{
		Bus:    srv.Events(),
		Exec:   srv.Exec,
		OnQuit: func() { _ = srv.Close() },
	}.New()
	srv.UseDisplay(d)
	out.set(d)
	defer out.set(os.Stderr)

	p := d.Program(tea.WithAltScreen(), tea.WithContext(ctx))
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
		p.Quit()
	}()
	srv.Exec(func() {
		if err := srv.OpenLayout(d.Viewer(), layoutName); err != nil {
			log.Error("Could not open menu.", "err", err, "layout", layoutName)
		}
	})

	_, err := p.Run()
	_ = srv.Close()
	if runErr := <-done; runErr != nil {
		return runErr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// logSink lets log output move to the terminal display once it exists.
type logSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *logSink) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// Write ...
func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
