// Command wifiprov-device runs a provisionable device on a simulated radio.
//
// At startup the device joins the network stored in its credential store.
// Without stored credentials, or when joining fails, it starts the
// broadcast network, advertises _wifiprov._tcp and waits for a client to
// send a network name and secret on port 3333.
//
// Usage:
//
//	wifiprov-device [flags]
//
// Flags:
//
//	-config string      Configuration file (default: XDG config dir)
//	-port int           Provisioning port, overrides the config file
//	-engine string      Storage engine: file, sqlite, memory
//	-store string       Credential store path
//	-network name=secret
//	                    Add a network to the simulated radio (repeatable)
//	-log-level string   Log level: debug, info, warn, error
//	-log-file string    Rotated log file (default: stderr)
//	-trace string       Protocol trace file (.plog)
//	-reset              Clear stored credentials before starting
//	-interactive        Start the device console
//	-init               Initialize the application directory and exit
//
// Examples:
//
//	# Device that can join HomeNet once provisioned
//	wifiprov-device -network HomeNet=secret123
//
//	# SQLite store with a protocol trace
//	wifiprov-device -engine sqlite -trace /tmp/device.plog -network HomeNet=secret123
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
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wifiprov/wifiprov-go/cmd/wifiprov-device/console"
	"github.com/wifiprov/wifiprov-go/internal/appdir"
	"github.com/wifiprov/wifiprov-go/pkg/bootstrap"
	"github.com/wifiprov/wifiprov-go/pkg/config"
	"github.com/wifiprov/wifiprov-go/pkg/connection"
	"github.com/wifiprov/wifiprov-go/pkg/credential"
	"github.com/wifiprov/wifiprov-go/pkg/discovery"
	"github.com/wifiprov/wifiprov-go/pkg/kvstore"
	"github.com/wifiprov/wifiprov-go/pkg/log"
	"github.com/wifiprov/wifiprov-go/pkg/persistence"
	"github.com/wifiprov/wifiprov-go/pkg/version"
)

// Options are the command-line overrides.
type Options struct {
	ConfigFile  string
	Port        int
	Engine      string
	StorePath   string
	Networks    networkFlags
	LogLevel    string
	LogFile     string
	Trace       string
	Reset       bool
	Interactive bool
	InitOnly    bool
}

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file (default: XDG config dir)")
	flag.IntVar(&opts.Port, "port", 0, "Provisioning port, overrides the config file")
	flag.StringVar(&opts.Engine, "engine", "", "Storage engine: file, sqlite, memory")
	flag.StringVar(&opts.StorePath, "store", "", "Credential store path")
	flag.Var(&opts.Networks, "network", "Simulated network as name=secret (repeatable)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.LogFile, "log-file", "", "Rotated log file (default: stderr)")
	flag.StringVar(&opts.Trace, "trace", "", "Protocol trace file (.plog)")
	flag.BoolVar(&opts.Reset, "reset", false, "Clear stored credentials before starting")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start the device console")
	flag.BoolVar(&opts.InitOnly, "init", false, "Initialize the application directory and exit")
}

func main() {
	flag.Parse()

	if err := appdir.Init(); err != nil {
		slog.Error("init app directory", "error", err)
		os.Exit(1)
	}
	if opts.InitOnly {
		fmt.Printf("Config: %s\n", appdir.ConfigPath())
		fmt.Printf("Data:   %s\n", appdir.DataDir())
		fmt.Printf("Logs:   %s\n", appdir.LogsDir())
		return
	}

	configPath := opts.ConfigFile
	if configPath == "" {
		configPath = appdir.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		slog.Error("load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if err := applyOverrides(cfg, opts); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, opts); err != nil {
		slog.Error("device stopped", "error", err)
		os.Exit(1)
	}
}

// applyOverrides folds command-line flags into cfg and validates the
// result.
func applyOverrides(cfg *config.Config, o Options) error {
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.Engine != "" {
		cfg.Storage.Engine = o.Engine
	}
	if o.StorePath != "" {
		cfg.Storage.Path = o.StorePath
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
	if o.Trace != "" {
		cfg.Log.Trace = o.Trace
	}
	cfg.Simulator.Networks = append(cfg.Simulator.Networks, o.Networks...)
	return cfg.Validate()
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, o Options) error {
	var con *console.Console
	var out io.Writer = os.Stderr
	if o.Interactive {
		var err error
		con, err = console.New()
		if err != nil {
			return err
		}
		out = con.Stderr()
	}

	logger := setupLogging(cfg.Log, out)
	slog.SetDefault(logger)

	events, closeTrace, err := openTrace(cfg.Log.Trace, cfg.Log.TraceMaxSize, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	engine, err := openEngine(cfg.Storage)
	if err != nil {
		return err
	}
	store := persistence.NewCredentialStore(engine, logger)
	defer store.Close()

	if o.Reset {
		if err := resetStore(store); err != nil {
			return err
		}
		logger.Info("stored credentials cleared")
	}

	sim := newSimulator(cfg.Simulator, logger)
	defer sim.Close()

	mcfg := cfg.Connection.Manager()
	mcfg.Logger = logger
	mcfg.EventLogger = events
	manager := connection.NewManager(sim, mcfg)
	defer manager.Close()

	broadcast, err := cfg.Broadcast.Netif()
	if err != nil {
		return err
	}

	dcfg := bootstrap.Config{
		Store:         store,
		Link:          manager,
		Broadcast:     broadcast,
		ServerAddress: cfg.Server.Addr(),
		ServeAlways:   cfg.Server.ServeAlways,
		MessageRate:   rate.Limit(cfg.Server.RateLimitPerSec),
		MessageBurst:  cfg.Server.RateLimitBurst,
		OnProvisioned: func(c credential.Credential) {
			logger.Info("device provisioned", "name", c.Name)
		},
		Logger:      logger,
		EventLogger: events,
	}
	if cfg.Discovery.Enabled {
		dcfg.Advertiser = discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
			Interface: cfg.Discovery.Interface,
			TTL:       cfg.Discovery.TTL,
			Logger:    logger,
		})
	}

	device, err := bootstrap.New(dcfg)
	if err != nil {
		return err
	}
	if err := device.Start(ctx); err != nil {
		return err
	}
	defer device.Stop()

	logger.Info("device running", "mode", device.Mode().String(), "protocol", version.Current)

	if con != nil {
		go con.Run(ctx, cancel, &console.Target{
			Device:    device,
			Manager:   manager,
			Simulator: sim,
			Store:     store,
		})
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// resetStore initializes the store and clears any stored credential.
func resetStore(store *persistence.CredentialStore) error {
	if err := store.Init(); err != nil {
		return err
	}
	return store.Clear()
}

// setupLogging builds the operational logger. A configured file is
// rotated; otherwise logs go to out.
func setupLogging(cfg config.LogConfig, out io.Writer) *slog.Logger {
	output := out
	if cfg.File != "" {
		output = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxAge:     7,  // days
			MaxBackups: 3,
			Compress:   true,
			LocalTime:  true,
		}
	}

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}
	return slog.New(handler)
}

// openTrace returns the protocol event sink. Events always reach the
// operational log at debug level and, when path is set, a CBOR trace file
// rotated at maxSize bytes.
func openTrace(path string, maxSize int64, logger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(logger)
	if path == "" {
		return adapter, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("create trace directory: %w", err)
	}
	file, err := log.NewFileLogger(path, log.WithMaxSize(maxSize))
	if err != nil {
		return nil, nil, fmt.Errorf("open trace: %w", err)
	}
	logger.Info("writing protocol trace", "path", path, "max_size", maxSize)
	return log.NewMultiLogger(adapter, file), func() {
		if rotations, dropped := file.Stats(); dropped > 0 {
			logger.Warn("protocol trace lost events", "dropped", dropped, "rotations", rotations)
		}
		file.Close()
	}, nil
}

// openEngine builds the configured key-value engine.
func openEngine(cfg config.StorageConfig) (kvstore.Engine, error) {
	switch cfg.Engine {
	case config.EngineFile:
		path := cfg.Path
		if path == "" {
			path = appdir.StorePath("json")
		}
		return kvstore.NewFileEngine(path), nil
	case config.EngineSQLite:
		path := cfg.Path
		if path == "" {
			path = appdir.StorePath("db")
		}
		return kvstore.NewSQLiteEngine(path), nil
	case config.EngineMemory:
		return kvstore.NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Engine)
	}
}

// networkFlags collects -network name=secret values.
type networkFlags []config.SimulatedNetwork

func (n *networkFlags) String() string {
	names := make([]string, 0, len(*n))
	for _, net := range *n {
		names = append(names, net.Name)
	}
	return strings.Join(names, ",")
}

func (n *networkFlags) Set(value string) error {
	name, secret, _ := strings.Cut(value, "=")
	if name == "" {
		return errors.New("network name is empty")
	}
	*n = append(*n, config.SimulatedNetwork{Name: name, Secret: secret})
	return nil
}

var _ flag.Value = (*networkFlags)(nil)
