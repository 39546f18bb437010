// Package cli implements the labinsight command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	"github.com/anime-shed/lab-report-inspector-go/internal/container"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/internal/service"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// ServiceProvider builds the lab report service and a function releasing it
type ServiceProvider func(cfg *config.Config) (service.LabReportService, func(), error)

// ContainerProvider builds the service from the application container
func ContainerProvider(cfg *config.Config) (service.LabReportService, func(), error) {
	c, err := container.NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}
	return c.Service(), func() { _ = c.Close() }, nil
}

type app struct {
	provider ServiceProvider
	cfg      *config.Config
	out      io.Writer
}

// NewRootCommand creates the labinsight command tree
func NewRootCommand(provider ServiceProvider) *cobra.Command {
	a := &app{provider: provider}

	rootCmd := &cobra.Command{
		Use:   "labinsight",
		Short: "Lab report inspector - quality checks, text extraction and interpretation of lab reports",
		Long: `labinsight analyzes lab report images (JPEG, PNG) and PDFs.

Images go through a quality gate, enhancement and OCR; PDFs through their
text layer. The extracted text and, when needed, the document itself are
interpreted by a generative model into a summary, key findings,
recommendations and risk factors.

Required environment variables for interpretation:
  GEMINI_API_KEY - API key of the generative language API`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logLevel, _ := cmd.Flags().GetString("log-level")
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			// Command output goes to stdout; logs go to stderr
			logger.Configure(logLevel, cmd.ErrOrStderr())
			a.cfg = cfg
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	rootCmd.PersistentFlags().String("env-file", ".env", "Path of the .env file to load")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		a.newAnalyzeCommand(),
		a.newQualityCommand(),
		a.newOCRCommand(),
		a.newAskCommand(),
		a.newServeCommand(),
	)
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	log := logger.WithComponent("cmd")

	if err := NewRootCommand(ContainerProvider).Execute(); err != nil {
		log.WithError(err).Error("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) service() (service.LabReportService, func(), error) {
	svc, release, err := a.provider(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	if release == nil {
		release = func() {}
	}
	return svc, release, nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
