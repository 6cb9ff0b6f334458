// Command geovocab talks to the geovocab service from a terminal: one-shot
// lookups, premium phrase registration and an interactive map page.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geovocab/internal/adapters/geovocabapi"
	"github.com/samirrijal/geovocab/internal/core/ports"
	"github.com/samirrijal/geovocab/internal/pkg/config"
	"github.com/samirrijal/geovocab/internal/pkg/logging"
)

var (
	// Global flags
	apiURL   string
	jsonOut  bool
	logLevel string

	cfg    *config.Config
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "geovocab",
	Short: "Three words for every place on earth",
	Long: `geovocab names any point on earth with a three word phrase and finds
the point back from the phrase.

Run without a subcommand to open the interactive map page.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "geovocab API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level for stderr output (debug, info, warn, error)")

	rootCmd.AddCommand(wordsCmd, locateCmd, premiumCmd, tuiCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load("geovocab-cli")
	if err != nil {
		return err
	}
	if apiURL != "" {
		c.API.BaseURL = apiURL
	}
	cfg = c

	if logLevel != "" {
		logger = logging.New(cmd.ErrOrStderr(), logLevel, "text")
	}
	return nil
}

func newAPI() (ports.GeoVocabAPI, error) {
	return geovocabapi.New(cfg.API.BaseURL, geovocabapi.WithLogger(logger))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
