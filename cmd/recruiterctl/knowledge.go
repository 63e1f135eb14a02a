package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/config"
	"alfredoptarigan/recruiter-assistant/internal/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Load job profile documents (PDF or Word) into the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the knowledge base a question about the position",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd, askCmd)

	ingestCmd.Flags().String("doc-type", "", "document type stored with every chunk (default KB_DOC_TYPE)")
	_ = viper.BindPFlag("doc-type", ingestCmd.Flags().Lookup("doc-type"))
}

func newKnowledgeBase(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.KnowledgeBase, error) {
	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, cfg.Gemini.ModelTimeout, log)
	if err != nil {
		return nil, err
	}
	qdrant, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		return nil, err
	}
	if err := qdrant.InitCollection(ctx); err != nil {
		return nil, err
	}

	docType := cfg.Qdrant.DocType
	if override := viper.GetString("doc-type"); override != "" {
		docType = override
	}

	return services.NewKnowledgeBase(
		gemini,
		qdrant,
		services.NewTextChunker(),
		services.NewPromptBuilder(cfg.Recruiting.Position),
		docType,
		cfg.Qdrant.TopK,
		log,
	), nil
}

func runIngest(ctx context.Context, paths []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	kb, err := newKnowledgeBase(ctx, cfg, log)
	if err != nil {
		return err
	}
	extractor := services.NewTextExtractor()

	failed := 0
	for _, path := range paths {
		source := filepath.Base(path)
		log := log.With(zap.String("source", source))

		text, err := extractor.ExtractText(path)
		if err != nil {
			log.Error("failed to extract text", zap.Error(err))
			failed++
			continue
		}

		chunks, err := kb.Ingest(ctx, source, text)
		if err != nil {
			log.Error("failed to ingest document", zap.Int("stored_chunks", chunks), zap.Error(err))
			failed++
			continue
		}
		fmt.Printf("✅ %s: %d chunks\n", source, chunks)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

func runAsk(ctx context.Context, question string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	kb, err := newKnowledgeBase(ctx, cfg, log)
	if err != nil {
		return err
	}

	answer, err := kb.Ask(ctx, nil, question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
