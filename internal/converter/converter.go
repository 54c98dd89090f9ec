// =============================================================================
// SWIFT MT Engine - Batch Converter
// =============================================================================
//
// The Converter processes one message file from end to end:
//
//   1. Read the file and split it into messages
//   2. Parse every message
//   3. Check each message type against the profile
//   4. Validate every parsed message
//   5. Build the XML export (export rules and static fields applied)
//   6. Write the outputs (XML, XLSX report, normalized FIN, error log)
//   7. Archive the input and outputs
//
// A message that fails to parse is recorded as a failure. With
// continue_on_error the remaining messages are still processed; without it
// the whole file fails. A file fails when no message in it could be parsed.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/batch"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/metrics"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/report"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/xmlwriter"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/pkg/utils"
)

// ErrNoMessages is returned for files without a single parseable message.
var ErrNoMessages = errors.New("no message could be parsed")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of processing one file.
type Result struct {
	// FilePath is the path of the input file.
	FilePath string

	// Profile is the code of the profile that handled the file.
	Profile string

	// OutputFiles are the files written, in XML, XLSX, FIN order.
	OutputFiles []string

	// ErrorLog is the error log path, empty when nothing failed.
	ErrorLog string

	// ArchivePath is where the input was moved, empty when not archived.
	ArchivePath string

	Success bool
	Error   error
	Stats   ProcessingStats
}

// ProcessingStats counts the messages of one file.
type ProcessingStats struct {
	Messages         int
	Parsed           int
	ParseFailures    int
	Valid            int
	Invalid          int
	ValidationErrors int
	ProcessingTime   time.Duration
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter processes a single message file.
type Converter struct {
	inputPath   string
	profile     *config.Profile
	mainConfig  *config.MainConfig
	engine      *validation.Engine
	files       *utils.FileManager
	transformer *Transformer
	logger      zerolog.Logger
	runID       string
	dryRun      bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Default: the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithEngine sets the validation engine. Default: validation.Default.
func WithEngine(e *validation.Engine) Option {
	return func(c *Converter) { c.engine = e }
}

// WithRunID tags the outputs with a run identifier.
func WithRunID(id string) Option {
	return func(c *Converter) { c.runID = id }
}

// WithDryRun parses and validates without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// New creates a Converter for one file.
func New(inputPath string, profile *config.Profile, mainConfig *config.MainConfig, opts ...Option) *Converter {
	if profile == nil {
		profile = config.DefaultProfile()
	}
	c := &Converter{
		inputPath:   inputPath,
		profile:     profile,
		mainConfig:  mainConfig,
		engine:      validation.Default,
		transformer: NewTransformer(profile.ExportRules),
		logger:      log.Logger,
		runID:       uuid.New().String(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.files = utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir,
		mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir)
	c.files.UseTimestampSubdirs = mainConfig.ArchiveByDate

	c.logger = c.logger.With().
		Str("file", filepath.Base(inputPath)).
		Str("profile", profile.Code).
		Logger()
	return c
}

// parsed is a message that parsed, with its validation result.
type parsed struct {
	index  int
	entry  batch.Entry
	msg    *message.Message
	result *validation.Result
}

// failed is a message that did not parse.
type failed struct {
	index int
	entry batch.Entry
	err   error
}

// Run processes the file. It never panics on bad input; every failure is
// reported through the Result.
func (c *Converter) Run(ctx context.Context) Result {
	start := time.Now()
	result := Result{FilePath: c.inputPath, Profile: c.profile.Code}

	finish := func(err error) Result {
		result.Error = err
		result.Success = err == nil
		result.Stats.ProcessingTime = time.Since(start)
		metrics.RecordFile(result.Success)
		if err != nil {
			c.logger.Error().Err(err).Msg("file failed")
		} else {
			c.logger.Info().
				Int("messages", result.Stats.Messages).
				Int("invalid", result.Stats.Invalid).
				Int("parse_failures", result.Stats.ParseFailures).
				Dur("elapsed", result.Stats.ProcessingTime).
				Msg("file processed")
		}
		return result
	}

	// =========================================================================
	// STEP 1: READ THE FILE
	// =========================================================================

	c.logger.Debug().Msg("reading message file")
	file, err := batch.Read(c.inputPath, c.profile.Input)
	if err != nil {
		return finish(fmt.Errorf("failed to read message file: %w", err))
	}
	result.Stats.Messages = file.Count()
	if file.Count() == 0 {
		return finish(fmt.Errorf("%w: file is empty", ErrNoMessages))
	}

	// =========================================================================
	// STEP 2-4: PARSE, CHECK TYPE, VALIDATE
	// =========================================================================

	var (
		messages []parsed
		failures []failed
	)
	opts := validation.Options{
		StopOnFirstError: c.profile.StopOnFirst(c.mainConfig),
		DisabledRules:    c.profile.DisabledRules,
	}

	for i, entry := range file.Entries {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		m, err := c.parse(entry)
		if err != nil {
			c.logger.Warn().Err(err).Int("message", i+1).Int("line", entry.Line).Msg("message failed to parse")
			if !c.mainConfig.ContinueOnError {
				result.Stats.ParseFailures++
				return finish(fmt.Errorf("message %d (line %d): %w", i+1, entry.Line, err))
			}
			failures = append(failures, failed{index: i + 1, entry: entry, err: err})
			continue
		}

		res := c.engine.Check(m, opts)
		metrics.RecordValidation(m.Type, res.Codes())
		if !res.Valid() {
			c.logger.Debug().
				Int("message", i+1).
				Str("type", m.Type).
				Strs("codes", res.Codes()).
				Msg("message failed validation")
		}
		messages = append(messages, parsed{index: i + 1, entry: entry, msg: m, result: res})
	}

	result.Stats.Parsed = len(messages)
	result.Stats.ParseFailures = len(failures)
	for _, p := range messages {
		if p.result.Valid() {
			result.Stats.Valid++
		} else {
			result.Stats.Invalid++
			result.Stats.ValidationErrors += len(p.result.Errors)
		}
	}

	// =========================================================================
	// STEP 5: BUILD THE EXPORT
	// =========================================================================

	doc, err := c.buildDocument(messages, failures)
	if err != nil {
		return finish(err)
	}

	if c.dryRun {
		c.logger.Info().Msg("dry run, no output written")
		if len(messages) == 0 {
			return finish(ErrNoMessages)
		}
		return finish(nil)
	}

	// =========================================================================
	// STEP 6: WRITE THE OUTPUTS
	// =========================================================================

	base := utils.GenerateOutputBaseName(c.mainConfig.UUIDFormat, map[string]string{
		"original": utils.StripExtension(c.inputPath),
		"profile":  c.profile.Code,
	})

	result.ErrorLog, err = utils.WriteErrorLog(c.errorEntries(messages, failures), c.mainConfig.OutputDir, base)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to write error log")
	}

	if len(messages) == 0 {
		return finish(ErrNoMessages)
	}

	outputs, err := c.writeOutputs(base, doc, messages, failures)
	result.OutputFiles = outputs
	if err != nil {
		return finish(err)
	}

	// =========================================================================
	// STEP 7: ARCHIVE
	// =========================================================================

	for _, out := range outputs {
		if _, err := c.files.ArchiveOutputFile(out); err != nil {
			c.logger.Warn().Err(err).Str("output", out).Msg("failed to archive output")
		}
	}
	archived, err := c.files.ArchiveInputFile(c.inputPath)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to archive input")
	} else if archived != c.inputPath {
		result.ArchivePath = archived
	}

	return finish(nil)
}

// parse parses one entry and checks its type against the profile.
func (c *Converter) parse(entry batch.Entry) (*message.Message, error) {
	start := time.Now()
	m, err := message.Parse(entry.Raw)
	if err == nil && !c.profile.Accepts(m.Type) {
		err = &types.ParseError{
			Kind:        types.WrongMessageType,
			MessageType: m.Type,
			Detail:      fmt.Sprintf("profile %s does not accept this type", c.profile.Code),
		}
	}

	mt := ""
	if m != nil {
		mt = m.Type
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind, ok := types.KindOf(err); ok {
			outcome = kind.String()
		}
	}
	metrics.RecordParse(mt, outcome, time.Since(start))

	if err != nil {
		return nil, err
	}
	return m, nil
}

// =============================================================================
// OUTPUT WRITING
// =============================================================================

func (c *Converter) writeOutputs(base string, doc *xmlwriter.Document, messages []parsed, failures []failed) ([]string, error) {
	var outputs []string
	dir := c.mainConfig.OutputDir

	if c.mainConfig.Outputs.XML {
		path := filepath.Join(dir, base+".xml")
		out, err := xmlwriter.Generate(doc)
		if err != nil {
			return outputs, err
		}
		if err := os.WriteFile(path, out, 0644); err != nil {
			return outputs, fmt.Errorf("failed to write XML output: %w", err)
		}
		outputs = append(outputs, path)
		c.logger.Debug().Str("output", path).Msg("XML written")
	}

	if c.mainConfig.Outputs.XLSX {
		path := filepath.Join(dir, base+".xlsx")
		if err := c.buildReport(messages, failures).Write(path); err != nil {
			return outputs, err
		}
		outputs = append(outputs, path)
		c.logger.Debug().Str("output", path).Msg("report written")
	}

	if c.mainConfig.Outputs.FIN {
		path := filepath.Join(dir, base+".fin")
		texts := make([]string, len(messages))
		for i, p := range messages {
			texts[i] = p.msg.Serialize()
		}
		sep := "\n" + c.profile.Input.Separator + "\n"
		if err := os.WriteFile(path, []byte(strings.Join(texts, sep)+"\n"), 0644); err != nil {
			return outputs, fmt.Errorf("failed to write FIN output: %w", err)
		}
		outputs = append(outputs, path)
		c.logger.Debug().Str("output", path).Msg("FIN written")
	}

	return outputs, nil
}

func (c *Converter) buildReport(messages []parsed, failures []failed) *report.Report {
	r := &report.Report{
		Source:      filepath.Base(c.inputPath),
		Profile:     c.profile.Code,
		RunID:       c.runID,
		GeneratedAt: time.Now(),
	}
	for _, p := range messages {
		r.Messages = append(r.Messages, report.MessageRow{
			Index:     p.index,
			Type:      p.msg.Type,
			Reference: p.msg.Reference(),
			Sender:    p.msg.SenderBIC(),
			Receiver:  p.msg.ReceiverBIC(),
			Errors:    p.result.Errors,
		})
	}
	for _, f := range failures {
		r.Failures = append(r.Failures, report.FailureRow{
			Index:  f.index,
			Line:   f.entry.Line,
			Kind:   failureKind(f.err),
			Detail: f.err.Error(),
		})
	}
	return r
}

func (c *Converter) errorEntries(messages []parsed, failures []failed) []utils.ErrorLogEntry {
	now := time.Now()
	name := filepath.Base(c.inputPath)

	var entries []utils.ErrorLogEntry
	for _, f := range failures {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     name,
			ErrorType:    failureKind(f.err),
			ErrorMessage: f.err.Error(),
			MessageIndex: f.index,
			Line:         f.entry.Line,
		})
	}
	for _, p := range messages {
		for _, e := range p.result.Errors {
			entry := utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     name,
				ErrorType:    "validation",
				ErrorMessage: e.Message,
				MessageIndex: p.index,
				Line:         p.entry.Line,
				MessageType:  p.msg.Type,
				Code:         e.Code,
				RuleID:       e.RuleID,
				Tag:          e.Tag,
				Value:        e.Value,
			}
			if e.Sequence != "" {
				entry.Location = fmt.Sprintf("%s[%d]", e.Sequence, e.Instance)
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

func failureKind(err error) string {
	if kind, ok := types.KindOf(err); ok {
		return kind.String()
	}
	return "ParseError"
}
