package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/customs-tracking/internal/infrastructure/provider/seventeentrack"
)

var (
	sampleNumber string
	sampleEvent  string
	sampleKey    string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a signed sample webhook body",
	Long: `Prints a webhook body carrying three customs milestones, signed with the
provider key, ready to be posted to /webhooks/17track.`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVarP(&sampleNumber, "number", "n", "",
		"Tracking number")
	sampleCmd.Flags().StringVar(&sampleEvent, "event", seventeentrack.EventTrackingUpdated,
		"Webhook event (TRACKING_UPDATED, TRACKING_STOPPED)")
	sampleCmd.Flags().StringVar(&sampleKey, "key", os.Getenv("TRACK17_API_KEY"),
		"Signing key (default: $TRACK17_API_KEY)")
	_ = sampleCmd.MarkFlagRequired("number")
}

func runSample(cmd *cobra.Command, _ []string) error {
	if sampleKey == "" {
		return fmt.Errorf("a signing key is required: pass --key or set TRACK17_API_KEY")
	}
	body, err := seventeentrack.SampleWebhook(sampleEvent, sampleNumber, sampleKey, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return err
}
