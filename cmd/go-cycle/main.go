package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/server"
	"github.com/tartampluch/go-cycle/internal/ui"
)

// main delegates to runMain so deferred cleanup runs before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain parses flags, configures logging and runs the application.
// It returns the process exit code.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	flag.Parse()

	if *showVersion {
		fmt.Print(versionLine())
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the feed server and the UI, then blocks until the main window closes.
func run(ctx context.Context) error {
	apiURL, err := loadEnv(config.EnvFileName)
	if err != nil {
		return err
	}

	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	srv := server.NewFeedServer(port)

	gui := ui.NewCycleApp(a, ctx, srv)
	if apiURL != "" {
		slog.Info(config.MsgEnvOverride,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyURL, apiURL,
		)
		gui.SetAPIURLOverride(apiURL)
	}

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

// loadEnv reads an optional .env file into the process environment and returns
// the API URL override. Variables already set in the environment take precedence.
func loadEnv(path string) (string, error) {
	switch err := godotenv.Load(path); {
	case err == nil:
		slog.Debug(config.MsgEnvLoaded,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyFile, path,
		)
	case errors.Is(err, fs.ErrNotExist):
		// Optional file.
	default:
		return "", fmt.Errorf("%s: %w", config.ErrEnvFile, err)
	}
	return strings.TrimSpace(os.Getenv(config.EnvAPIURL)), nil
}

// versionLine is the text printed by -version.
func versionLine() string {
	return fmt.Sprintf(config.MsgVersionOutput, config.AppName, config.Version, runtime.GOOS, runtime.GOARCH)
}

// logStartupInfo records the build and host the process runs on.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging makes a JSON logger the default. Output goes to stdout and, if
// the cache dir is usable, to a log file that is truncated on every start.
// The returned closer is nil when no file was opened.
func setupLogging(debugMode bool) io.Closer {
	out := io.Writer(os.Stdout)
	f, err := openLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, err)
	} else {
		out = io.MultiWriter(os.Stdout, f)
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debugMode {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, opts)))

	if f == nil {
		return nil
	}
	return f
}

func openLogFile() (*os.File, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}
	dir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return os.OpenFile(filepath.Join(dir, config.LogFileName), os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
}
