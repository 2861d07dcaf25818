package main

import (
	"fmt"

	"vcstatus/internal/ml"
	"vcstatus/internal/storage"

	"github.com/spf13/cobra"
)

var trainFlags struct {
	source string
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Clean the source table, fit the model and save the artifact pair",
	RunE:  runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringVar(&trainFlags.source, "source", "", "CSV path or http(s) URL (default SOURCE_PATH)")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	store, err := storage.New(settings.ArtifactDir)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	trainer := ml.NewTrainer(settings, store, defaultMetrics())

	model, encoder, err := trainer.Train(cmd.Context(), trainFlags.source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model and label encoder saved to %s\n", store.Location())
	fmt.Fprintf(out, "Fit:     %s\n", model.FitID)
	fmt.Fprintf(out, "Classes: %v\n", encoder.Classes)
	fmt.Fprintf(out, "Trees:   %d\n", len(model.Forest.Trees))
	return nil
}
