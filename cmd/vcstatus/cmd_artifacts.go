package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"vcstatus/internal/storage"

	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List training runs recorded in the artifact store, newest first",
	RunE:  runArtifacts,
}

func runArtifacts(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	store, err := storage.Open(settings.ArtifactDir)
	if errors.Is(err, storage.ErrArtifactNotFound) {
		fmt.Fprintf(out, "No artifacts in %s\n", settings.ArtifactDir)
		fmt.Fprintf(out, "Run 'vcstatus train' to fit a model.\n")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	infos, err := store.ListArtifacts()
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}

	current := ""
	if pair, err := store.LoadArtifactPair(); err == nil {
		current = pair.Info.FitID
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tFIT ID\tCREATED\tROWS\tHOLDOUT\tTREES\tSOURCE")
	for _, info := range infos {
		marker := ""
		if info.FitID == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			marker, info.FitID, info.CreatedAt.Format(time.RFC3339),
			info.TrainingRows, info.HoldoutRows, info.Estimators, info.SourcePath)
	}
	return tw.Flush()
}
