package main

import (
	"context"
	"os"
	"strings"
	"time"

	"data-chat-be/internal/config"
	"data-chat-be/pkg/dataset"

	"github.com/fatih/color"
)

// Downloads the configured dataset if missing and prints what the agent will see.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider := dataset.NewProvider(cfg.Dataset.Path, cfg.Dataset.URL)

	color.Cyan("Ensuring dataset at %s", cfg.Dataset.Path)
	path, err := provider.Ensure(ctx)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	summary, err := provider.Describe(ctx)
	if err != nil {
		color.Red("Failed to read %s: %v", path, err)
		os.Exit(1)
	}

	color.Green("Dataset ready: %s", path)
	color.Yellow("%d rows, %d columns", summary.Rows, len(summary.Columns))
	color.White(strings.Join(summary.Columns, ", "))
	for _, row := range summary.Head {
		color.White("  %s", strings.Join(row, " | "))
	}
}
