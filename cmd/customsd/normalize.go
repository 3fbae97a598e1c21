package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/core/service"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
)

var (
	normalizeFile     string
	normalizeMode     string
	normalizePatterns string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Summarize a raw provider record read from a file or stdin",
	Long: `Runs one provider record through the customs pipeline and prints the
summary, the timeline and the normalization counters as JSON. Nothing is stored.`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVarP(&normalizeFile, "file", "f", "",
		"Record file (default: stdin)")
	normalizeCmd.Flags().StringVar(&normalizeMode, "mode", string(domain.ModeAny),
		"Summary mode (any, import_filtered)")
	normalizeCmd.Flags().StringVar(&normalizePatterns, "patterns", os.Getenv("CUSTOMS_PATTERNS_FILE"),
		"Pattern file overriding the embedded lexicon")
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	initLogger("warn", false)

	mode, err := domain.ParseSummaryMode(normalizeMode)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if normalizeFile != "" && normalizeFile != "-" {
		f, err := os.Open(normalizeFile)
		if err != nil {
			return fmt.Errorf("open record: %w", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	res, err := previewRecord(data, mode, normalizePatterns)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

// previewRecord decodes data and summarizes it with the pattern file at
// patterns, or the embedded one when patterns is empty.
func previewRecord(data []byte, mode domain.SummaryMode, patterns string) (*ports.PreviewResult, error) {
	raw, err := tracking.DecodePayload(data)
	if err != nil {
		return nil, err
	}
	set, err := tracking.LoadPatternSet(patterns)
	if err != nil {
		return nil, err
	}
	svc := service.NewTrackingService(service.TrackingDeps{
		Normalizer: tracking.NewNormalizer(tracking.NewClassifier(set)),
	}, zerolog.Nop())
	return svc.Preview(raw, mode)
}

func writeJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
