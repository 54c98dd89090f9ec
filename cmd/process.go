// =============================================================================
// SWIFT MT Engine - Process Command
// =============================================================================
//
// This file defines the 'process' command, the batch pipeline over the input
// directory.
//
// COMMAND USAGE:
//   swiftmt process [flags]
//
// FLAGS:
//   --dry-run  : Parse and validate without writing or archiving anything
//   --file     : Process only this file
//   --profile  : Process only files handled by this profile code
//
// PROCESSING PIPELINE:
//   1. Load the profiles
//   2. Discover message files in the input directory
//   3. Match each file to a profile
//   4. Process the files concurrently (at most max_concurrency at a time)
//   5. Print and write the run summary
//   6. Write the metrics textfile
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/converter"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/metrics"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun      bool
	filePath    string
	profileCode string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every message file in the input directory",
	Long: `The process command scans the input directory for message files (.fin,
.rje, .txt), matches each to a profile from the configs directory, and
converts it.

For every file the configured outputs are written to the output directory:
  - XML export of the parsed messages
  - XLSX validation report
  - Normalized FIN file

Files are processed concurrently and independently.

On success:
  - The original file is moved to the input archive
  - Outputs are copied to the output archive

On error:
  - An error log is written to the output directory
  - The original file stays in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runProcess(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Parse and validate without writing outputs or archiving")
	processCmd.Flags().StringVar(&filePath, "file", "",
		"Process only this file")
	processCmd.Flags().StringVar(&profileCode, "profile", "",
		"Process only files handled by this profile code")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context) error {
	startTime := time.Now()
	runID := uuid.New().String()
	log := logger.With().Str("run", runID).Logger()

	// =========================================================================
	// STEP 1: LOAD PROFILES
	// =========================================================================

	profiles, err := config.LoadProfiles(mainConfig.ConfigsDir)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	log.Info().Int("profiles", len(profiles)).Msg("profiles loaded")

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir,
		mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = files.DiscoverInputFiles("")
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}
	if len(inputFiles) == 0 {
		fmt.Println("No message files found in the input directory.")
		return nil
	}

	// =========================================================================
	// STEP 3: MATCH PROFILES
	// =========================================================================

	jobs := make([]converter.Job, 0, len(inputFiles))
	for _, file := range inputFiles {
		p := config.MatchProfile(file, profiles)
		if profileCode != "" && (p == nil || p.Code != profileCode) {
			continue
		}
		jobs = append(jobs, converter.Job{Path: file, Profile: p})
	}
	log.Info().Int("files", len(jobs)).Int("concurrency", mainConfig.MaxConcurrency).Msg("processing files")

	// =========================================================================
	// STEP 4: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := converter.RunAll(ctx, jobs, mainConfig, mainConfig.MaxConcurrency,
		converter.WithLogger(log),
		converter.WithRunID(runID),
		converter.WithDryRun(dryRun),
	)

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(results),
	}
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		summary.TotalMessages += result.Stats.Messages
		summary.ParseFailures += result.Stats.ParseFailures
		summary.InvalidMessages += result.Stats.Invalid
		summary.ValidationErrors += result.Stats.ValidationErrors

		if result.Success {
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFiles: result.OutputFiles,
				ArchivePath: result.ArchivePath,
				Messages:    result.Stats.Messages,
				Invalid:     result.Stats.Invalid,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Printf("  ✓ %s: %d message(s), %d invalid, %d unparsed\n",
				name, result.Stats.Messages, result.Stats.Invalid, result.Stats.ParseFailures)
		} else {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
		}
	}
	summary.EndTime = time.Now()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:       %d\n", summary.TotalFiles)
	fmt.Printf("Successful:        %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:            %d\n", summary.FailedFiles)
	fmt.Printf("Messages:          %d\n", summary.TotalMessages)
	fmt.Printf("Invalid messages:  %d\n", summary.InvalidMessages)
	fmt.Printf("Time elapsed:      %s\n", summary.EndTime.Sub(startTime))

	if !dryRun {
		path, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			log.Warn().Err(err).Msg("failed to write summary log")
		} else {
			log.Info().Str("summary", path).Msg("summary written")
		}
	}

	// =========================================================================
	// STEP 6: METRICS TEXTFILE
	// =========================================================================

	if mainConfig.MetricsFile != "" {
		if err := metrics.WriteTextfile(mainConfig.MetricsFile); err != nil {
			log.Warn().Err(err).Msg("failed to write metrics textfile")
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}
