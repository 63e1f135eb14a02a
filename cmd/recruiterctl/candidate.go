package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/recruiter-assistant/internal/config"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
)

var candidateCmd = &cobra.Command{
	Use:   "candidate <phone>",
	Short: "Print the candidate record for a phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCandidate(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(candidateCmd)
}

func runCandidate(ctx context.Context, phone string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}

	repo := repositories.NewCandidateRepository(
		repositories.NewGormWorksheet(db, cfg.Store.SheetName),
		repositories.CandidateDefaults{},
		cfg.Store.Timeout,
	)

	candidate, err := repo.FindByPhone(ctx, phone)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("no candidate registered for %s", phone)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(models.CandidateResponse{
		Status:      "found",
		CVProcessed: candidate.HasProcessedCV(),
		Candidate:   candidate,
	})
}
