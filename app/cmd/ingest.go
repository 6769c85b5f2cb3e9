// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Semior001/aidhub/app/ingest"
	"golang.org/x/exp/slog"
)

// Ingest is a command to load a spreadsheet export into the content tree.
type Ingest struct {
	File string `long:"file" env:"FILE" description:"path to the xlsx workbook"`
	Out  string `long:"out" env:"OUT" default:"." description:"content root to write schemas into"`
}

// Execute runs the command.
func (c Ingest) Execute(args []string) error {
	if c.File == "" && len(args) > 0 {
		c.File = args[0]
	}
	if c.File == "" {
		return errors.New("no workbook file provided")
	}

	lg := slog.Default()

	svc := &ingest.Service{
		Log: lg.With(slog.String("prefix", "ingest")),
		Out: c.Out,
	}

	total, err := svc.Run(context.Background(), c.File)
	if err != nil {
		return fmt.Errorf("ingest workbook: %w", err)
	}

	lg.Info("workbook ingested",
		slog.String("file", c.File), slog.Int("items", total))
	return nil
}
