package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/anime-shed/lab-report-inspector-go/internal/analyzer"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (a *app) newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze one or more lab reports and print the reports as JSON",
		Example: `  # Analyze a single scan
  labinsight analyze cbc.jpg

  # Analyze a folder of reports with four workers, keeping rejected images
  labinsight analyze reports/*.pdf reports/*.png --workers 4 --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runAnalyze,
	}
	cmd.Flags().Bool("force", false, "Continue with images that fail the quality gate")
	cmd.Flags().IntP("workers", "w", 2, "Number of documents analyzed in parallel")
	cmd.Flags().Duration("timeout", 5*time.Minute, "Overall timeout")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	workers, _ := cmd.Flags().GetInt("workers")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	log := logger.WithComponent("analyze")
	log.WithFields(logrus.Fields{
		"files":   len(args),
		"workers": workers,
		"force":   force,
	}).Info("Starting batch analysis")

	svc, release, err := a.service()
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := signalContext(cmd.Context(), timeout)
	defer cancel()

	opts := analyzer.DefaultOptions().WithForce(force)
	reports := make([]*models.AnalysisReport, len(args))

	pool := analyzer.NewWorkerPool(workers)
	pool.Start()
	for i, path := range args {
		pool.Submit(func() {
			doc, err := readDocument(path)
			if err != nil {
				log.WithError(err).WithField("file", path).Error("Failed to read document")
				reports[i] = &models.AnalysisReport{
					Document: filepath.Base(path),
					Result:   models.DegradedResult(),
					Warnings: []string{err.Error()},
				}
				return
			}
			reports[i] = svc.Analyze(ctx, doc, opts)
		})
	}
	pool.Wait()
	pool.Close()

	stats := pool.GetStats()
	log.WithFields(logrus.Fields{
		"total":     stats.TotalJobs,
		"completed": stats.CompletedJobs,
	}).Info("Batch analysis finished")

	if len(reports) == 1 {
		return a.printJSON(reports[0])
	}
	return a.printJSON(reports)
}

func (a *app) newQualityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quality [file]",
		Short: "Run the image quality gate and print metrics and issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			svc, release, err := a.service()
			if err != nil {
				return err
			}
			defer release()

			report, err := svc.CheckQuality(doc)
			if err != nil {
				return err
			}
			return a.printJSON(report)
		},
	}
}

func (a *app) newOCRCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr [file]",
		Short: "Extract text from a lab report",
		Long: `Extract text from an image with OCR, or from the text layer of a PDF.

With --expected, the word and character error rates of the extraction
against the reference transcription are reported as well.`,
		Example: `  labinsight ocr cbc.png
  labinsight ocr cbc.png --expected "$(cat cbc.txt)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, _ := cmd.Flags().GetString("expected")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			svc, release, err := a.service()
			if err != nil {
				return err
			}
			defer release()

			ctx, cancel := signalContext(cmd.Context(), timeout)
			defer cancel()

			report, err := svc.ExtractText(ctx, doc, expected)
			if err != nil {
				return err
			}
			return a.printJSON(report)
		},
	}
	cmd.Flags().String("expected", "", "Reference transcription used to measure accuracy")
	cmd.Flags().Duration("timeout", 2*time.Minute, "Processing timeout")
	return cmd
}

func (a *app) newAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a follow-up question about an analysis",
		Long: `Ask a follow-up question about an analysis.

The context file holds either the JSON output of "labinsight analyze"
(a report or a bare result) or plain context text.`,
		Example: `  labinsight analyze cbc.jpg > cbc.json
  labinsight ask --question "Is my hemoglobin low?" --context-file cbc.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, _ := cmd.Flags().GetString("question")
			contextFile, _ := cmd.Flags().GetString("context-file")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			question = strings.TrimSpace(question)
			if question == "" {
				return errors.New("--question cannot be empty")
			}
			raw, err := os.ReadFile(contextFile)
			if err != nil {
				return fmt.Errorf("failed to read context file: %w", err)
			}
			analysisContext := contextFromFile(raw)
			if analysisContext == "" {
				return errors.New("context file is empty")
			}

			svc, release, err := a.service()
			if err != nil {
				return err
			}
			defer release()

			ctx, cancel := signalContext(cmd.Context(), timeout)
			defer cancel()

			return a.printJSON(models.AskResponse{
				Question: question,
				Answer:   svc.Ask(ctx, question, analysisContext),
			})
		},
	}
	cmd.Flags().StringP("question", "q", "", "Question to ask")
	cmd.Flags().StringP("context-file", "c", "", "File with a prior analysis or context text")
	cmd.Flags().Duration("timeout", time.Minute, "Processing timeout")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("context-file")
	return cmd
}

// contextFromFile accepts an AnalysisReport, a bare AnalysisResult or plain text
func contextFromFile(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var report struct {
			Result *models.AnalysisResult `json:"result"`
		}
		if err := json.Unmarshal(raw, &report); err == nil && report.Result != nil {
			return models.BuildAnalysisContext(*report.Result)
		}
		var result models.AnalysisResult
		if err := json.Unmarshal(raw, &result); err == nil && result.Summary() != "" {
			return models.BuildAnalysisContext(result)
		}
	}
	return trimmed
}

// readDocument loads a file and infers its media type from content and extension
func readDocument(path string) (models.UploadedDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.UploadedDocument{}, fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return models.UploadedDocument{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > models.MaxDocumentSize {
		return models.UploadedDocument{}, fmt.Errorf("%s is too large: %d bytes exceeds the %d byte limit", path, info.Size(), models.MaxDocumentSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.UploadedDocument{}, fmt.Errorf("failed to read file: %w", err)
	}
	name := filepath.Base(path)
	return models.NewUploadedDocument(name, string(validation.DetectMediaType(name, data)), data), nil
}

// signalContext is cancelled on SIGINT, SIGTERM or after timeout
func signalContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
