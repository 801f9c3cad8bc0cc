package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitexpvar "github.com/go-kit/kit/metrics/expvar"

	"greeter"
	"greeter/fmtlog"
	"greeter/http"
	"greeter/instrument"
	"greeter/pg"
	"greeter/service"
)

func main() {
	// Setup signal handlers.
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() { <-c; cancel() }()

	// Instantiate a new type to represent our application.
	// This type lets us shared setup code with our end-to-end tests.
	m := NewMain()

	// Parse command line flags & load configuration.
	if err := m.ParseFlags(ctx, os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Execute program.
	if err := m.Run(ctx); err != nil {
		_ = m.Close()
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Wait for CTRL-C.
	<-ctx.Done()

	// Clean up program.
	if err := m.Close(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration path and parsed config data.
	Config     Config
	ConfigPath string

	// Postgres database used by the greeter store.
	DB *pg.DB

	// HTTP server for handling HTTP communication.
	// Services are attached to it before running.
	HTTPServer *http.Server

	// Root logger.
	Logger log.Logger
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{
		Config:     DefaultConfig(),
		ConfigPath: DefaultConfigPath,

		DB:         pg.NewDB(""),
		HTTPServer: http.NewServer(),
		Logger:     log.NewNopLogger(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.HTTPServer != nil {
		if err := m.HTTPServer.Close(); err != nil {
			return err
		}
	}
	if m.DB != nil {
		if err := m.DB.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ParseFlags parses the command line arguments & loads the config.
//
// This exists separately from the Run() function so that we can skip it
// during end-to-end tests. Those tests will configure manually and call Run().
func (m *Main) ParseFlags(ctx context.Context, args []string) error {
	// Our flag set is very simple. It only includes a config path.
	fs := flag.NewFlagSet("greeterd", flag.ContinueOnError)
	fs.StringVar(&m.ConfigPath, "config", DefaultConfigPath, "config path")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// The expand() function is here to automatically expand "~" to the user's
	// home directory. This is a common task as configuration files are typing
	// under the home directory during local development.
	configPath, err := expand(m.ConfigPath)
	if err != nil {
		return err
	}

	// Read our TOML formatted configuration file.
	config, err := ReadConfigFile(configPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", m.ConfigPath)
	} else if err != nil {
		return err
	}
	m.Config = config

	return nil
}

// Run executes the program. The configuration should already be set up before
// calling this function.
func (m *Main) Run(ctx context.Context) (err error) {
	// Create the root logger.
	m.Logger = NewLogger(os.Stderr, m.Config.Log.Level)

	m.DB.DSN = m.Config.DB.DSN
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("cannot open db: %w", err)
	}

	// Initialize services, wrapped by the logging & instrumenting middleware.
	var greeterService greeter.GreeterService = service.NewGreeterService(m.DB)
	greeterService = fmtlog.GreeterLoggingMiddleware(log.With(m.Logger, "component", "greeter"))(greeterService)
	greeterService = instrument.GreeterInstrumentingMiddleware(
		kitexpvar.NewCounter("greeter_requests_total"),
		kitexpvar.NewHistogram("greeter_request_duration_seconds", 50),
	)(greeterService)

	// Attach underlying service to the HTTP server.
	m.HTTPServer.GreeterService = greeterService
	m.HTTPServer.Logger = log.With(m.Logger, "component", "http")

	// Copy configuration settings to the HTTP server.
	m.HTTPServer.Addr = m.Config.HTTP.Addr
	m.HTTPServer.Domain = m.Config.HTTP.Domain
	m.HTTPServer.AppName = m.Config.HTTP.AppName
	m.HTTPServer.CORSOrigins = m.Config.HTTP.CORSOrigins

	if err := m.HTTPServer.Open(); err != nil {
		return err
	}

	// If TLS enabled, redirect non-TLS connections to TLS.
	if m.HTTPServer.UseTLS() {
		go func() {
			if err := http.ListenAndServeTLSRedirect(m.Config.HTTP.Domain); err != nil {
				_ = level.Error(m.Logger).Log("msg", "tls redirect server stopped", "err", err)
			}
		}()
	}

	// Enable internal debug endpoints.
	if m.Config.Debug.Addr != "" {
		go func() {
			if err := http.ListenAndServeDebug(m.Config.Debug.Addr); err != nil {
				_ = level.Error(m.Logger).Log("msg", "debug server stopped", "err", err)
			}
		}()
	}

	_ = level.Info(m.Logger).Log("msg", "running", "url", m.HTTPServer.URL(), "dsn", redactDSN(m.Config.DB.DSN))

	return nil
}

// NewLogger returns a logfmt logger filtered to the given level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, lvl string) log.Logger {
	var logger log.Logger
	logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	return level.NewFilter(logger, levelOption(lvl))
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	}
	return level.AllowInfo()
}

// redactDSN hides the password of a URL or key/value style DSN.
func redactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil {
			return u.Redacted()
		}
		return dsn
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

const (
	// DefaultConfigPath is the default path to the application configuration.
	DefaultConfigPath = "greeterd.toml"

	// DefaultDSN is the default datasource name.
	DefaultDSN = "user=postgres password=postgres dbname=greeter port=5432 sslmode=disable"

	// DefaultHTTPAddr is the default bind address of the HTTP server.
	DefaultHTTPAddr = ":8080"
)

// Config represents the CLI configuration file.
type Config struct {
	DB struct {
		DSN string `toml:"dsn"`
	} `toml:"db"`

	HTTP struct {
		Addr        string   `toml:"addr"`
		Domain      string   `toml:"domain"`
		AppName     string   `toml:"app-name"`
		CORSOrigins []string `toml:"cors-origins"`
	} `toml:"http"`

	Debug struct {
		Addr string `toml:"addr"`
	} `toml:"debug"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// DefaultConfig returns a new instance of Config with defaults set.
func DefaultConfig() Config {
	var config Config
	config.DB.DSN = DefaultDSN
	config.HTTP.Addr = DefaultHTTPAddr
	config.HTTP.AppName = http.DefaultAppName
	config.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	config.Log.Level = "info"
	return config
}

// ReadConfigFile unmarshals config from config file. Environment variables
// referenced in the file are expanded before parsing.
func ReadConfigFile(filename string) (Config, error) {
	config := DefaultConfig()
	if buf, err := os.ReadFile(filename); err != nil {
		return config, err
	} else if err := toml.Unmarshal([]byte(os.ExpandEnv(string(buf))), &config); err != nil {
		return config, err
	}
	return config, nil
}

// expand returns path using tilde expansion. This means that a file path that
// begins with the "~" will be expanded to prefix the user's home directory.
func expand(path string) (string, error) {
	// Ignore if path has no leading tilde.
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path, nil
	}

	// Fetch the current user to determine the home path.
	u, err := user.Current()
	if err != nil {
		return path, err
	} else if u.HomeDir == "" {
		return path, fmt.Errorf("home directory unset")
	}

	if path == "~" {
		return u.HomeDir, nil
	}
	return filepath.Join(u.HomeDir, strings.TrimPrefix(path, "~"+string(os.PathSeparator))), nil
}
