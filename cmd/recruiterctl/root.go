package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/config"
	"alfredoptarigan/recruiter-assistant/internal/logger"
)

const app = "recruiterctl"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "recruiterctl manages the WhatsApp recruiter assistant: knowledge base, messages and candidates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindEnv("debug", "LOG_DEBUG")
	_ = viper.BindEnv("json", "LOG_JSON")
}

// setup loads the service configuration and a logger honouring the CLI flags.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}
