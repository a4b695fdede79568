package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	// Restore the default logger after the test
	defaultLogger := slog.Default()
	defer slog.SetDefault(defaultLogger)

	newApp := func() *cli.App {
		return &cli.App{
			Name: "healthhub",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			err := newApp().Run([]string{"healthhub", "--log-level", level})
			assert.NoError(t, err, "level %s", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := newApp().Run([]string{"healthhub", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestQueryCommandRequiresQuestion(t *testing.T) {
	app := &cli.App{
		Name: "healthhub",
		Commands: []*cli.Command{
			{
				Name:   "query",
				Action: queryCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "top-k", Value: 10},
					&cli.StringFlag{Name: "domain"},
				}, append(storeFlags(), aiFlags()...)...),
			},
		},
	}

	err := app.Run([]string{"healthhub", "query"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: healthhub query")
}

func TestIngestCommandMissingData(t *testing.T) {
	dir := t.TempDir()

	app := &cli.App{
		Name: "healthhub",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags:  []cli.Flag{dataDirFlag()},
			},
		},
	}

	// All six sources are absent, so the report counts them as failed.
	err := app.Run([]string{"healthhub", "ingest", "--data-dir", dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sources failed")
}
