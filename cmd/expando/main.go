// Command expando is a cross-platform text-expansion daemon: it watches
// typed keystrokes for configured triggers, renders a match (plain text,
// a template with variables and extensions, or an image), and delivers
// the result back into the focused application by simulated keystrokes
// or a clipboard paste.
//
// Three run modes share the same Matcher→Engine→Actuator pipeline:
//
//   - the default native mode installs a real OS-level keypress hook
//     and drives a real focused application;
//   - --console drives the pipeline from the controlling terminal's own
//     raw input against an in-memory virtual document, for trying
//     expando out with no native permissions at all;
//   - --tui does the same over a full tcell screen, also exercising the
//     console tray UI a future native tray backend would sit behind.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/expando/internal/action"
	"github.com/dshills/expando/internal/applog"
	"github.com/dshills/expando/internal/config"
	"github.com/dshills/expando/internal/engine"
	"github.com/dshills/expando/internal/input"
	"github.com/dshills/expando/internal/match"
	"github.com/dshills/expando/internal/platform"
	"github.com/dshills/expando/internal/render"
	"github.com/dshills/expando/internal/tray/console"
	"github.com/dshills/expando/internal/tray/noop"

	"github.com/rs/zerolog/log"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes, per the documented startup/runtime error taxonomy:
// anything that keeps the daemon from ever reaching its main loop is a
// generic fatal (10); a display/input environment that genuinely can't
// be reached (no X server, no controlling terminal) is reported
// separately (100) so a process supervisor can tell "misconfigured"
// apart from "no display to attach to".
const (
	exitOK                     = 0
	exitFatal                  = 10
	exitEnvironmentUnavailable = 100
)

type options struct {
	configDir   string
	matchesPath string
	console     bool
	tui         bool
	native      bool
	logLevel    string
	logPretty   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	applog.Init(applog.Config{
		Level:  applog.ParseLevel(opts.logLevel),
		Output: os.Stderr,
		Pretty: opts.logPretty,
	})

	if err := ensureDefaults(opts.configDir, opts.matchesPath); err != nil {
		log.Error().Err(err).Str("dir", opts.configDir).Msg("expando: failed to bootstrap config directory")
		return exitFatal
	}

	store, err := match.LoadFile(opts.matchesPath)
	if err != nil {
		log.Error().Err(err).Str("path", opts.matchesPath).Msg("expando: failed to load match file")
		return exitFatal
	}
	log.Info().Int("matches", store.Len()).Str("path", opts.matchesPath).Msg("expando: loaded matches")

	renderer := render.New(render.NewRegistry(
		render.DummyExtension{},
		render.EchoExtension{},
		render.RandomExtension{},
		render.ShellExtension{},
		render.JSONExtension{},
		render.LuaExtension{},
		render.AIExtension{},
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mode := resolveMode(opts)
	bus := action.NewBus(16)

	keyboard, clipboard, inspector, ui, srcFactory, cleanup, err := buildBackends(mode, bus, opts.native)
	if err != nil {
		log.Error().Err(err).Msg("expando: failed to initialize platform backend")
		return exitFatal
	}
	defer cleanup()

	mgr, err := config.New(opts.configDir, config.WithWindowInspector(inspector))
	if err != nil {
		log.Error().Err(err).Str("dir", opts.configDir).Msg("expando: failed to load config")
		return exitFatal
	}

	eng := engine.New(keyboard, clipboard, mgr, ui, renderer)

	matcher := input.New(store, func(m match.Match, trailingSeparator *string) {
		eng.OnMatch(ctx, m, trailingSeparator)
	})

	go func() {
		<-eng.Done()
		cancel()
	}()
	go func() {
		for kind := range bus.Receive() {
			eng.OnActionEvent(kind)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		log.Info().Msg("expando: received shutdown signal")
		bus.Send(action.Exit)
	}()

	eventSource := srcFactory(eng, matcher)
	source := input.NewSource(eventSource, matcher)

	serveErr := source.Serve(ctx)
	_ = source.Close()
	// The Action Bus is deliberately left open rather than closed here:
	// a demo backend's input goroutine can outlive ctx cancellation (see
	// termsource's own read loop), and a Send racing a Close would panic
	// on the closed channel. The process exits right after this anyway.

	var envErr *input.ErrEnvironmentUnavailable
	switch {
	case serveErr == nil, errors.Is(serveErr, context.Canceled):
		return exitOK
	case errors.As(serveErr, &envErr):
		log.Error().Err(serveErr).Msg("expando: input environment unavailable")
		return exitEnvironmentUnavailable
	default:
		log.Error().Err(serveErr).Msg("expando: event source stopped unexpectedly")
		return exitFatal
	}
}

// mode selects which actuator/Event-Source family buildBackends wires
// up; resolved once at startup from flags and (for "native") whether
// the platform backend actually works in this build.
type mode int

const (
	modeNative mode = iota
	modeConsole
	modeTUI
)

func resolveMode(opts options) mode {
	switch {
	case opts.tui:
		return modeTUI
	case opts.console:
		return modeConsole
	default:
		return modeNative
	}
}

// sourceFactory builds the Event Source once the Engine and Matcher
// exist; the Action Bus is already captured in its closure by
// buildBackends. Console and tui mode's control keys call back into the
// Engine/Bus directly instead of going through the Matcher.
type sourceFactory func(eng *engine.Engine, matcher *input.Matcher) input.EventSource

// buildBackends resolves the actuator set (Keyboard, Clipboard,
// WindowInspector, UI) and an Event Source factory for the given mode.
// Native mode that can't actually talk to a display (no X server, or a
// build with no native backend implemented at all) degrades to the
// console actuator set with a logged warning rather than failing
// startup outright, per internal/platform/darwin and windows's own
// documented "falls back to the termsource dev backend" design — unless
// forceNative is set (the --native flag), which surfaces the real error
// instead, for diagnosing why the native backend isn't working.
func buildBackends(m mode, bus *action.Bus, forceNative bool) (engine.Keyboard, engine.Clipboard, platform.WindowInspector, engine.UI, sourceFactory, func() error, error) {
	switch m {
	case modeConsole:
		act := newConsoleActuators()
		factory := func(eng *engine.Engine, _ *input.Matcher) input.EventSource {
			return newConsoleSource(act.keyboard, quitAction(bus), passiveAction(context.Background(), eng))
		}
		return act.keyboard, act.clipboard, act.inspector, act.ui, factory, func() error { return nil }, nil

	case modeTUI:
		screen, err := newTUIScreen()
		if err != nil {
			return nil, nil, nil, nil, nil, nil, err
		}
		act := newConsoleActuators()
		ui := console.New(screen, bus)
		factory := func(eng *engine.Engine, _ *input.Matcher) input.EventSource {
			return newTUISource(screen, eng, bus)
		}
		cleanup := func() error { screen.Fini(); return nil }
		return act.keyboard, act.clipboard, act.inspector, ui, factory, cleanup, nil

	default:
		kb, cb, wi, err := newNativeActuators()
		if err != nil {
			if forceNative {
				return nil, nil, nil, nil, nil, nil, err
			}
			log.Warn().Err(err).Msg("expando: native platform backend unavailable, falling back to console demo backend")
			act := newConsoleActuators()
			factory := func(eng *engine.Engine, _ *input.Matcher) input.EventSource {
				return newConsoleSource(act.keyboard, quitAction(bus), passiveAction(context.Background(), eng))
			}
			return act.keyboard, act.clipboard, act.inspector, act.ui, factory, func() error { return nil }, nil
		}
		factory := func(*engine.Engine, *input.Matcher) input.EventSource {
			return newNativeEventSource()
		}
		return kb, cb, wi, noop.New(), factory, func() error { return nil }, nil
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	defaultConfigDir := defaultConfigDir()

	flag.StringVar(&opts.configDir, "config-dir", defaultConfigDir, "Directory holding default.yml and per-application overrides")
	flag.StringVar(&opts.matchesPath, "matches", filepath.Join(defaultConfigDir, "matches.yml"), "Path to the match file")
	flag.BoolVar(&opts.console, "console", false, "Run the console demo backend (raw terminal input, virtual document)")
	flag.BoolVar(&opts.tui, "tui", false, "Run the tcell-based TUI demo backend (full console tray)")
	flag.BoolVar(&opts.native, "native", false, "Force the native platform backend and surface its error instead of falling back to the console demo backend")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.logPretty, "log-pretty", false, "Use human-readable console log output instead of JSON lines")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "expando - cross-platform text expansion daemon\n\n")
		fmt.Fprintf(os.Stderr, "Usage: expando [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  expando                 Run the native daemon\n")
		fmt.Fprintf(os.Stderr, "  expando --console       Try it out in this terminal, no native hook\n")
		fmt.Fprintf(os.Stderr, "  expando --tui           Same, with the full console tray UI\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("expando %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	return opts
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "expando")
}
