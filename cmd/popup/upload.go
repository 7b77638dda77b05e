package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/api"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/converter"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/database"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/metrics"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/processor"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/spike"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/ui"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Process a sample and upload it to the tracking service",
	Long: `Parse the pipeline output described by a sample configuration and
upload the resulting document to the Eyrie tracking service.

Missing or unreadable artifacts are reported and left out of the
document; only an invalid sample configuration stops the upload before
it starts. The sample is created when the service does not know it yet
and updated otherwise.

Credentials are taken from --username/--password, then EYRIE_USER and
EYRIE_PASSWORD, then api.username in the tool config. The password is
prompted for when only a username is known.`,
	Example: `  popup upload -s barcode01_config.yaml
  popup upload -s barcode01_config.yaml --api https://eyrie.example.org/api
  popup upload -s barcode01_config.yaml --dry-run --print-payload`,
	RunE: runUpload,
}

var (
	uploadSample       string
	uploadAPI          string
	uploadUsername     string
	uploadPassword     string
	uploadDryRun       bool
	uploadPrintPayload bool
	uploadMetricsFile  string
	uploadNoLedger     bool
)

func init() {
	uploadCmd.Flags().StringVarP(&uploadSample, "sample", "s", "", "Sample configuration file (required)")
	uploadCmd.Flags().StringVar(&uploadAPI, "api", "", "Tracking service API URL (overrides api.url)")
	uploadCmd.Flags().StringVar(&uploadUsername, "username", "", "Tracking service username")
	uploadCmd.Flags().StringVar(&uploadPassword, "password", "", "Tracking service password")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Process the sample without uploading")
	uploadCmd.Flags().BoolVar(&uploadPrintPayload, "print-payload", false, "Print the upload document as JSON")
	uploadCmd.Flags().StringVar(&uploadMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile (overrides metrics.textfile)")
	uploadCmd.Flags().BoolVar(&uploadNoLedger, "no-ledger", false, "Do not record the attempt in the upload ledger")
	uploadCmd.MarkFlagRequired("sample")
}

func runUpload(cmd *cobra.Command, args []string) error {
	toolCfg, err := loadToolConfig()
	if err != nil {
		return err
	}

	cfg, err := config.LoadSample(uploadSample)
	if err != nil {
		return err
	}
	id := cfg.Sample.SampleID
	runDir := converter.RunDirectory(cfg)

	printInfo("Processing sample %s (run %s)", id, runDir)
	printDebug("Run root: %s", cfg.RunRoot())

	recorder := metrics.NewRecorder(id)
	proc := processor.New(cfg,
		processor.WithSpikeDetector(spike.NewDetector(toolCfg.Spike.Species)),
		processor.WithObserver(traceObserver{}),
		processor.WithObserver(recorder),
	)
	data := proc.Process()
	stats := proc.Stats()

	if data.NanoPlot == nil || data.NanoPlot.Unprocessed.Count()+data.NanoPlot.Processed.Count() == 0 {
		printWarning("No structured nanoplot data found")
	}
	if verbose {
		printInfo("Artifacts: %d found, %d missing, %d unparsable", stats.Found, stats.Missing, stats.ParseFailures)
	}

	payload := converter.New().Convert(data, runDir)
	if payload.QC == converter.QCFailed {
		printWarning("%s", payload.Comments)
	}

	if uploadPrintPayload {
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		fmt.Println(string(out))
	}

	attempt := &database.Upload{
		SampleID:        id,
		SequencingRunID: cfg.Sample.SequencingRunID,
		RunDirectory:    runDir,
		QC:              payload.QC,
		Spike:           stats.Spike,
		Contaminants:    stats.Contaminants,
	}

	metricsFile := toolCfg.Metrics.Textfile
	if uploadMetricsFile != "" {
		metricsFile = uploadMetricsFile
	}

	if uploadDryRun {
		attempt.DryRun = true
		recordAttempt(toolCfg, attempt)
		writeMetrics(recorder, metricsFile)
		printSuccess("Dry run complete for %s; nothing was uploaded", id)
		return nil
	}

	baseURL := toolCfg.API.URL
	if uploadAPI != "" {
		baseURL = uploadAPI
	}
	username, password, err := credentials(toolCfg, uploadUsername, uploadPassword)
	if err != nil {
		return err
	}

	client := api.NewClient(
		api.WithBaseURL(baseURL),
		api.WithTimeout(toolCfg.Timeout()),
		api.WithCredentials(username, password),
		api.WithDebug(debug),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.TestConnection(ctx); err != nil {
		printError("Cannot connect to %s", client.ServiceRoot())
		attempt.Retryable = true
		abandonAttempt(toolCfg, attempt, recorder, metricsFile, err)
		return fmt.Errorf("tracking service unavailable: %w", err)
	}
	printDebug("Connected to %s", client.ServiceRoot())

	if err := client.Authenticate(ctx); err != nil {
		attempt.Retryable = api.IsRetryable(err)
		abandonAttempt(toolCfg, attempt, recorder, metricsFile, err)
		return fmt.Errorf("authentication failed: %w", err)
	}
	if info := client.TokenInfo(); info != nil {
		printDebug("Authenticated as %s (token expires %s)", info.Subject, info.ExpiresAt.Format(time.RFC3339))
	}

	result, elapsed := upload(ctx, client, id, payload)
	attempt.Duration = elapsed
	recorder.ObserveUpload(result.Action, result.OK, elapsed)

	attempt.Action = result.Action
	attempt.StatusCode = result.StatusCode
	attempt.OK = result.OK
	attempt.Retryable = result.Retryable
	if result.Err != nil {
		attempt.Error = result.Err.Error()
	}
	recordAttempt(toolCfg, attempt)
	writeMetrics(recorder, metricsFile)

	if !result.OK {
		if result.StatusCode != 0 {
			printError("Upload failed: HTTP %d", result.StatusCode)
			if result.Body != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", result.Body)
			}
		}
		if result.Retryable {
			printWarning("The failure looks transient; retrying later may succeed")
		}
		return fmt.Errorf("upload of %s failed: %v", id, result.Err)
	}

	printSuccess("Sample %s %s at %s", id, result.Action, client.BaseURL)
	return nil
}

// upload sends the payload behind a spinner and times the attempt
func upload(ctx context.Context, client *api.Client, id string, payload *converter.Payload) (api.UploadResult, time.Duration) {
	var spinner *ui.Spinner
	if !quiet {
		spinner = ui.NewSpinner(os.Stderr, fmt.Sprintf("Uploading %s to %s", id, client.BaseURL))
		spinner.Start()
	}

	start := time.Now()
	result := client.Upload(ctx, id, payload)
	elapsed := time.Since(start)

	if spinner != nil {
		spinner.Stop("")
	}
	return result, elapsed
}

// abandonAttempt records an attempt that stopped before the payload was
// sent and still writes the metrics for it.
func abandonAttempt(cfg *config.Config, attempt *database.Upload, recorder *metrics.Recorder, metricsFile string, err error) {
	attempt.Error = err.Error()
	recorder.ObserveUpload("", false, 0)
	recordAttempt(cfg, attempt)
	writeMetrics(recorder, metricsFile)
}

// recordAttempt appends the attempt to the upload ledger. Ledger
// failures never fail the command.
func recordAttempt(cfg *config.Config, attempt *database.Upload) {
	if uploadNoLedger || !cfg.Ledger.Enabled || cfg.Ledger.Path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Ledger.Path), 0755); err != nil {
		printWarning("Upload ledger unavailable: %v", err)
		return
	}
	db, err := database.Initialize(cfg.Ledger.Path)
	if err != nil {
		printWarning("Upload ledger unavailable: %v", err)
		return
	}
	defer db.Close()

	if last, err := db.LastUpload(attempt.SampleID); err == nil && last != nil {
		printDebug("Previous attempt for %s at %s (ok=%t)", last.SampleID,
			last.UploadedAt.Local().Format("2006-01-02 15:04:05"), last.OK)
	}
	if err := db.RecordUpload(attempt); err != nil {
		printWarning("Could not record upload: %v", err)
		return
	}
	printDebug("Recorded upload %s in %s", attempt.ID, db.Path())
}

func writeMetrics(recorder *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		printWarning("Could not write metrics: %v", err)
		return
	}
	printDebug("Wrote metrics to %s", path)
}
