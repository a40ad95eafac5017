package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/background"
	"github.com/SoarinFerret/TimerWarden/internal/category"
	"github.com/SoarinFerret/TimerWarden/internal/config"
	"github.com/SoarinFerret/TimerWarden/internal/dedup"
	"github.com/SoarinFerret/TimerWarden/internal/dispatch"
	"github.com/SoarinFerret/TimerWarden/internal/engine"
	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/ipc"
	"github.com/SoarinFerret/TimerWarden/internal/kv"
	"github.com/SoarinFerret/TimerWarden/internal/loginctl"
	"github.com/SoarinFerret/TimerWarden/internal/notify"
	"github.com/SoarinFerret/TimerWarden/internal/persist"
	"github.com/SoarinFerret/TimerWarden/internal/state"
	"github.com/SoarinFerret/TimerWarden/internal/ticker"
)

var version = "dev"

type options struct {
	verbose bool
	logind  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "timerwardend [config]",
		Short:        "TimerWarden daemon",
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// check for argument to determine config location
			argPath := config.DefaultPath()
			if len(args) > 0 {
				argPath = args[0]
			}
			return run(argPath, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	cmd.Flags().BoolVar(&opts.logind, "logind", true, "follow logind sleep and lock signals")
	return cmd
}

func run(argPath string, opts *options) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.LoadConfigFromFile(argPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Log.Level, opts.verbose)
	slog.SetDefault(logger)
	logger.Info("using config file", "path", argPath, "version", version)

	storage, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer storage.Close()

	bus, err := connect(cfg.DBus.Bus)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	clock := clockwork.NewRealClock()
	bridge := persist.NewBridge(storage,
		persist.WithFreshness(cfg.Timers.FreshnessWindow.Duration),
		persist.WithLogger(logger))
	hist := history.New(storage,
		history.WithClock(clock),
		history.WithLogger(logger),
		history.WithAppVersion(version))
	categories := category.New(storage, cfg.Categories.Defaults, logger)

	scheduler := notify.NewScheduler(senders(cfg, bus, logger),
		notify.WithClock(clock),
		notify.WithLogger(logger))
	defer scheduler.Stop()

	store := state.NewManager(nil, logger)
	mirror := persist.NewMirror(bridge, logger)

	registry := dedup.NewRegistry()
	modal := dispatch.NewModal(registry, store, logger)
	dispatcher := dispatch.New(registry, hist, scheduler, modal,
		dispatch.WithClock(clock),
		dispatch.WithLogger(logger),
		dispatch.WithOffsets(cfg.Timers.CompletionOffset.Duration, cfg.Timers.AlertOffset.Duration))

	driver, err := background.New(bridge, scheduler,
		background.WithClock(clock),
		background.WithLogger(logger),
		background.WithNotificationOffset(cfg.Timers.CompletionOffset.Duration))
	if err != nil {
		return fmt.Errorf("failed to create background driver: %w", err)
	}
	defer driver.Close()

	tk := ticker.New(store, clock, cfg.Timers.TickInterval.Duration, logger)

	store.Subscribe(mirror)
	store.Subscribe(dispatcher)
	timerEngine := engine.NewEngine(store, bridge, tk, driver, dispatcher, hist,
		engine.WithClock(clock),
		engine.WithLogger(logger),
		engine.WithRetention(cfg.History.Retention()))
	timerEngine.Restore(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		mirror.Run(ctx)
	}()

	if opts.logind {
		// Start the loginctl listener (system D-Bus)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("monitoring logind for sleep and lock changes")
			if err := loginctl.Watch(ctx, timerEngine, logger); err != nil {
				logger.Error("logind watcher error", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("exporting D-Bus service", "name", ipc.ServiceName, "bus", cfg.DBus.Bus)
		tm := &ipc.TimerManager{
			Store:        store,
			Modal:        modal,
			HistoryLog:   hist,
			CategoryList: categories,
			Engine:       timerEngine,
			Storage:      storage,
			Registry:     registry,
			Log:          logger,
		}
		if err := ipc.Serve(ctx, bus, tm); err != nil {
			logger.Error("timerwarden service error", "error", err)
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := timerEngine.Run(ctx); err != nil {
			logger.Error("timer engine error", "error", err)
		}
	}()

	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func connect(bus string) (*dbus.Conn, error) {
	if bus == "system" {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to system bus: %w", err)
		}
		return conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return conn, nil
}

func senders(cfg *config.Config, bus *dbus.Conn, logger *slog.Logger) notify.Sender {
	out := notify.Multi{notify.LogSender{Log: logger}}
	if *cfg.Notify.Desktop.Enabled {
		out = append(out, notify.NewDesktopSender(bus))
	}
	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegramSender(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			logger.Error("telegram notifications disabled", "error", err)
		} else {
			out = append(out, tg)
		}
	}
	return out
}
