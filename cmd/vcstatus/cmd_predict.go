package main

import (
	"encoding/json"
	"fmt"

	"vcstatus/internal/common"
	"vcstatus/internal/ml"
	"vcstatus/internal/storage"

	"github.com/spf13/cobra"
)

var predictFlags struct {
	fundingTotalUSD     float64
	fundingRounds       float64
	fundingDurationDays float64
	isInUS              float64
	jsonInput           string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict operating or closed for one record",
	Long: `Predict classifies one record with the saved model and label encoder.
Features that are not given count as 0. Duration and country flags are
taken as already derived values.`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.Float64Var(&predictFlags.fundingTotalUSD, "funding-total-usd", 0, "Total funding in USD")
	f.Float64Var(&predictFlags.fundingRounds, "funding-rounds", 0, "Number of funding rounds")
	f.Float64Var(&predictFlags.fundingDurationDays, "funding-duration-days", 0, "Days between first and last funding")
	f.Float64Var(&predictFlags.isInUS, "is-in-us", 0, "1 if headquartered in the USA, else 0")
	f.StringVar(&predictFlags.jsonInput, "json", "", "Feature mapping as a JSON object (overrides the feature flags)")
}

func predictInput(cmd *cobra.Command) (map[string]any, error) {
	input := make(map[string]any)
	if predictFlags.jsonInput != "" {
		if err := json.Unmarshal([]byte(predictFlags.jsonInput), &input); err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
		return input, nil
	}

	flagToFeature := []struct {
		flag    string
		feature string
		value   float64
	}{
		{"funding-total-usd", common.ColFundingTotalUSD, predictFlags.fundingTotalUSD},
		{"funding-rounds", common.ColFundingRounds, predictFlags.fundingRounds},
		{"funding-duration-days", common.FeatFundingDurationDays, predictFlags.fundingDurationDays},
		{"is-in-us", common.FeatIsInUS, predictFlags.isInUS},
	}
	for _, m := range flagToFeature {
		if cmd.Flags().Changed(m.flag) {
			input[m.feature] = m.value
		}
	}
	return input, nil
}

func runPredict(cmd *cobra.Command, _ []string) error {
	input, err := predictInput(cmd)
	if err != nil {
		return err
	}

	predictor := ml.NewPredictor(storage.DirReader{Dir: settings.ArtifactDir}, defaultMetrics())

	status, err := predictor.Predict(input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}
