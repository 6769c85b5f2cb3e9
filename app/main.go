// Package main is an entrypoint for application
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Semior001/aidhub/app/cmd"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

var opts struct {
	Ingest cmd.Ingest `command:"ingest" description:"load a spreadsheet export into the content tree"`
	Check  cmd.Check  `command:"check" description:"validate the content tree and report issues"`
	Build  cmd.Build  `command:"build" description:"render the public site into a directory"`
	Import cmd.Import `command:"import" description:"fetch web pages into the content tree as help articles"`
	Serve  cmd.Serve  `command:"serve" description:"run the hub server with the optional telegram bot"`

	JSONLogs bool `long:"json-logs" env:"JSON_LOGS" description:"turn on json logs"`
	Debug    bool `long:"dbg" env:"DEBUG" description:"turn on debug mode"`
}

var version = "unknown"

func getVersion() string {
	v, ok := debug.ReadBuildInfo()
	if !ok || v.Main.Version == "(devel)" {
		return version
	}
	return v.Main.Version
}

func main() {
	fmt.Printf("aidhub, version: %s\n", getVersion())
	cmd.Version = getVersion()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", slog.Any("err", err))
	}

	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLog()

		if err := cmd.Execute(args); err != nil {
			slog.Error("failed to execute command", slog.Any("err", err))
			os.Exit(1)
		}

		return nil
	}

	// after failure command does not return non-zero code
	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			slog.Error("failed to parse flags", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func setupLog() {
	handler := slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}

	if opts.Debug {
		handler.Level = slog.LevelDebug
		handler.AddSource = true
	}

	if opts.JSONLogs {
		lg := slog.New(logx.Handler{Handler: handler.NewJSONHandler(os.Stderr)})
		slog.SetDefault(lg)
		return
	}

	lg := slog.New(logx.Handler{Handler: handler.NewTextHandler(os.Stderr)})
	slog.SetDefault(lg)
}
