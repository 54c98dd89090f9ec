// =============================================================================
// SWIFT MT Engine - File Manager Utility
// =============================================================================
//
// File handling for batch runs over message files:
//   - Discovery of input files (.fin, .rje, .txt by default)
//   - Archival of processed inputs and produced outputs
//   - Per-file error logs and the per-run summary log
//   - Output file naming
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the input archive after successful processing
//   - Output files are copied to the output archive
//   - Failed files stay where they are so they can be fixed and re-run
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultInputExtensions are the extensions picked up by DiscoverInputFiles
// when no pattern is given.
var DefaultInputExtensions = []string{".fin", ".rje", ".txt"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for batch runs.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2025/01/15/pay_0001.fin
	UseTimestampSubdirs bool

	// ArchiveOnSuccess controls archival. Empty archive directories also
	// disable it.
	ArchiveOnSuccess bool

	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// EnsureDirectories creates every configured directory.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files of the input directory matching
// pattern, sorted by name. An empty pattern matches DefaultInputExtensions.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	var files []string
	if pattern != "" {
		matches, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
		files = matches
	} else {
		entries, err := os.ReadDir(fm.InputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
		for _, e := range entries {
			if hasInputExtension(e.Name()) {
				files = append(files, filepath.Join(fm.InputDir, e.Name()))
			}
		}
	}

	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		result = append(result, file)
	}
	sort.Strings(result)
	return result, nil
}

func hasInputExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range DefaultInputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the input archive and returns the
// new path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess || fm.InputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the output archive.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess || fm.OutputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}
	return archivePath, nil
}

func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)
	if fm.UseTimestampSubdirs {
		now := fm.clock()
		return filepath.Join(archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName)
	}
	return filepath.Join(archiveDir, fileName)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputBaseName expands a name format without extension.
//
// Placeholders:
//
//	{uuid}      - A random UUID
//	{timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//	{date}      - Current date (YYYYMMDD)
//	{time}      - Current time (HHMMSS)
//	{key}       - Any key of params, e.g. {original} or {profile}
//
// EXAMPLE:
//
//	format: "{profile}_{original}_{date}"
//	params: {"profile": "PAY", "original": "pay_0001"}
//	output: "PAY_pay_0001_20250115"
func GenerateOutputBaseName(format string, params map[string]string) string {
	now := time.Now()
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// GenerateOutputFileName expands format and appends ext unless the result
// already ends with it.
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	result := GenerateOutputBaseName(format, params)
	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one parse failure or rule violation.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	MessageIndex int
	Line         int
	MessageType  string
	Code         string
	RuleID       string
	Tag          string
	Value        string
	Location     string
}

// WriteErrorLog writes entries to <outputDir>/<name>_errors.txt. Nothing is
// written and "" is returned when entries is empty.
func WriteErrorLog(entries []ErrorLogEntry, outputDir, name string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, name+"_errors.txt")
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "SWIFT MT Engine - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"), len(entries))

	for i, e := range entries {
		fmt.Fprintf(w, "Error #%d\n", i+1)
		fmt.Fprintf(w, "  Timestamp:      %s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  File:           %s\n", e.FileName)
		fmt.Fprintf(w, "  Error Type:     %s\n", e.ErrorType)
		fmt.Fprintf(w, "  Message:        %s\n", e.ErrorMessage)
		if e.MessageIndex > 0 {
			fmt.Fprintf(w, "  Message #:      %d\n", e.MessageIndex)
		}
		if e.Line > 0 {
			fmt.Fprintf(w, "  Line:           %d\n", e.Line)
		}
		if e.MessageType != "" {
			fmt.Fprintf(w, "  Message Type:   MT%s\n", e.MessageType)
		}
		if e.Code != "" {
			fmt.Fprintf(w, "  Code:           %s\n", e.Code)
		}
		if e.RuleID != "" {
			fmt.Fprintf(w, "  Rule:           %s\n", e.RuleID)
		}
		if e.Tag != "" {
			fmt.Fprintf(w, "  Field:          %s\n", e.Tag)
		}
		if e.Value != "" {
			fmt.Fprintf(w, "  Value:          %s\n", e.Value)
		}
		if e.Location != "" {
			fmt.Fprintf(w, "  Location:       %s\n", e.Location)
		}
		w.WriteString("\n")
	}

	w.WriteString("================================================================================\n" +
		"End of Error Log\n")
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one run over the input directory.
type ProcessingSummary struct {
	RunID            string
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      int
	TotalMessages    int
	ParseFailures    int
	InvalidMessages  int
	ValidationErrors int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo describes a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFiles []string
	ArchivePath string
	Messages    int
	Invalid     int
	ProcessTime time.Duration
}

// FailedFileInfo describes a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes the summary to
// <outputDir>/processing_summary_<timestamp>.txt.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("processing_summary_%s.txt", summary.StartTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "SWIFT MT Engine - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Messages:     %d\n"+
		"  Parse Failures:     %d\n"+
		"  Invalid Messages:   %d\n"+
		"  Validation Errors:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalMessages,
		summary.ParseFailures,
		summary.InvalidMessages,
		summary.ValidationErrors)

	if len(summary.ProcessedFiles) > 0 {
		w.WriteString("Successful Files:\n")
		w.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(w, "  Output:       %s\n", out)
			}
			if pf.ArchivePath != "" {
				fmt.Fprintf(w, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(w, "  Messages:     %d (%d invalid)\n", pf.Messages, pf.Invalid)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		w.WriteString("Failed Files:\n")
		w.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	w.WriteString("================================================================================\n" +
		"End of Summary\n")
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// StripExtension returns the base name of path without its extension.
func StripExtension(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
