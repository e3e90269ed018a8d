// Command fadeplay is a small terminal WAV player that hosts the FadeOut
// effect plugin. Press f (or use --fade-after) to fade the current track out
// and stop playback.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/opd-ai/fadeout/host"
	"github.com/opd-ai/fadeout/settings"
	"github.com/sirupsen/logrus"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version   bool          `short:"v" help:"Show version information"`
	Config    string        `short:"c" type:"path" default:"${config}" help:"Settings file"`
	Duration  float64       `short:"d" help:"Set the fade duration in seconds and store it in the settings file"`
	FadeAfter time.Duration `name:"fade-after" help:"Start a fade automatically after this delay"`
	NoTUI     bool          `name:"no-tui" help:"Play without the terminal UI"`
	LogFile   string        `name:"log-file" default:"fadeplay.log" help:"Log file, - for stderr"`
	LogLevel  string        `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level (${enum})"`
	Rate      int           `default:"44100" help:"Output sample rate"`
	Channels  int           `default:"2" help:"Output channels (1 or 2)"`
	Buffer    int           `default:"1024" help:"Frames per processing buffer"`
	Files     []string      `arg:"" name:"files" help:"WAV files to play" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("fadeplay"),
		kong.Description("Terminal WAV player with a one-key fade out"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
			"config":  defaultConfigPath(),
		},
	)

	if cliArgs.Version {
		printVersion(version)
		os.Exit(0)
	}

	if len(cliArgs.Files) == 0 {
		printError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	if err := run(cliArgs); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func run(cliArgs *CLI) error {
	logOut, err := setupLogging(cliArgs.LogFile, cliArgs.LogLevel)
	if err != nil {
		return err
	}
	defer logOut.Close()

	store, err := settings.Load(cliArgs.Config)
	if err != nil {
		return err
	}

	a := newApp(store, host.DefaultOutput(), host.PlayerOptions{
		SampleRate:   cliArgs.Rate,
		Channels:     cliArgs.Channels,
		BufferFrames: cliArgs.Buffer,
	}, cliArgs.Files)
	if err := a.start(); err != nil {
		return err
	}
	defer a.close()

	if cliArgs.Duration > 0 {
		if _, err := a.plugin.SetDuration(cliArgs.Duration); err != nil {
			return err
		}
	}

	if err := a.player.Play(a.files); err != nil {
		return err
	}

	if cliArgs.NoTUI {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return a.runHeadless(ctx, cliArgs.FadeAfter)
	}
	return a.runTUI(cliArgs.FadeAfter)
}

// setupLogging points logrus at path, or stderr for "-".
func setupLogging(path, level string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})

	if path == "-" {
		logrus.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fadeplay.yaml"
	}
	return filepath.Join(dir, "fadeplay", "settings.yaml")
}
