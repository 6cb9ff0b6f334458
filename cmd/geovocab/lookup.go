package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geovocab/internal/adapters/clipboard"
	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/page"
)

var copyWords bool

var wordsCmd = &cobra.Command{
	Use:   "words <lat> <lon>",
	Short: "Get the three words for a point",
	Example: `  geovocab words 48.8566 2.3522
  geovocab words -- -33.8688 151.2093`,
	Args: cobra.ExactArgs(2),
	RunE: runWords,
}

var locateCmd = &cobra.Command{
	Use:     "locate <words>",
	Short:   "Find the point a three word phrase names",
	Example: "  geovocab locate apple-river-stone",
	Args:    cobra.ExactArgs(1),
	RunE:    runLocate,
}

var premiumCmd = &cobra.Command{
	Use:   "premium <geohash> <words>",
	Short: "Register a chosen phrase for a geohash",
	Long: `Register a chosen three word phrase for a geohash. Both values are
sent to the geovocab service as given and its answer is reported back.`,
	Example: "  geovocab premium u09tvw0f my-own-place",
	Args:    cobra.ExactArgs(2),
	RunE:    runPremium,
}

func init() {
	for _, c := range []*cobra.Command{wordsCmd, locateCmd, premiumCmd} {
		c.Flags().BoolVar(&copyWords, "copy", false, "copy the phrase to the clipboard")
	}
}

func runWords(cmd *cobra.Command, args []string) error {
	lat, err := domain.ParseCoordinate(args[0])
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := domain.ParseCoordinate(args[1])
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}

	api, err := newAPI()
	if err != nil {
		return err
	}
	res, err := api.WordsForCoordinates(cmd.Context(), lat, lon)
	if err != nil {
		logger.Debug("words lookup failed", "lat", lat, "lon", lon, "error", err)
		return errors.New(domain.UserMessage(err, page.MsgWordsFailed))
	}
	return report(cmd, res)
}

func runLocate(cmd *cobra.Command, args []string) error {
	words := strings.TrimSpace(args[0])
	if words == "" {
		return errors.New("words must not be empty")
	}

	api, err := newAPI()
	if err != nil {
		return err
	}
	res, err := api.LocationForWords(cmd.Context(), words)
	if err != nil {
		logger.Debug("location lookup failed", "words", words, "error", err)
		return errors.New(domain.UserMessage(err, page.MsgLocationFailed))
	}
	return report(cmd, res)
}

func runPremium(cmd *cobra.Command, args []string) error {
	geoHash, words := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	if geoHash == "" || words == "" {
		return errors.New("geohash and words must not be empty")
	}

	api, err := newAPI()
	if err != nil {
		return err
	}
	res, err := api.RegisterPremium(cmd.Context(), geoHash, words)
	if err != nil {
		logger.Debug("premium registration failed", "geohash", geoHash, "words", words, "error", err)
		return errors.New(domain.UserMessage(err, "Failed to register premium words"))
	}
	return report(cmd, res)
}

func report(cmd *cobra.Command, res *domain.GeoVocabResult) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}

	if copyWords {
		if err := clipboard.NewSystem().WriteText(cmd.Context(), res.GeoVocab); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied!")
	}
	return nil
}

func printResult(w io.Writer, res *domain.GeoVocabResult) {
	fmt.Fprintf(w, "words:     %s\n", res.GeoVocab)
	fmt.Fprintf(w, "geohash:   %s\n", res.GeoHash)
	fmt.Fprintf(w, "latitude:  %s\n", domain.FormatCoordinate(res.Latitude))
	fmt.Fprintf(w, "longitude: %s\n", domain.FormatCoordinate(res.Longitude))
}
