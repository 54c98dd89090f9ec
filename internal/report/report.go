// =============================================================================
// SWIFT MT Engine - Validation Report Workbook
// =============================================================================
//
// Writes the outcome of a batch run over one input file as an XLSX workbook
// for operations teams:
//   - Summary:  counts per outcome
//   - Messages: one row per message with its identification and status
//   - Errors:   one row per rule violation or parse failure
//
// =============================================================================

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
)

const (
	SheetSummary  = "Summary"
	SheetMessages = "Messages"
	SheetErrors   = "Errors"
)

// Report is the outcome of one input file.
type Report struct {
	Source      string
	Profile     string
	RunID       string
	GeneratedAt time.Time
	Messages    []MessageRow
	Failures    []FailureRow
}

// MessageRow is a message that parsed.
type MessageRow struct {
	Index     int
	Type      string
	Reference string
	Sender    string
	Receiver  string
	Errors    []validation.ValidationError
}

// FailureRow is a message that did not parse.
type FailureRow struct {
	Index  int
	Line   int
	Kind   string
	Detail string
}

// Valid counts the messages without violations.
func (r *Report) Valid() int {
	n := 0
	for _, m := range r.Messages {
		if len(m.Errors) == 0 {
			n++
		}
	}
	return n
}

// ErrorCount counts the violations over all messages.
func (r *Report) ErrorCount() int {
	n := 0
	for _, m := range r.Messages {
		n += len(m.Errors)
	}
	return n
}

// =============================================================================
// WORKBOOK GENERATION
// =============================================================================

// Write saves the report as an XLSX workbook. Failures are returned as
// *types.ConversionError.
func (r *Report) Write(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := r.build(f); err != nil {
		return &types.ConversionError{Format: "xlsx", Op: "encode", Err: err}
	}
	if err := f.SaveAs(path); err != nil {
		return &types.ConversionError{Format: "xlsx", Op: "write", Err: err}
	}
	return nil
}

func (r *Report) build(f *excelize.File) error {
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetMessages, SheetErrors} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return err
	}

	summary := [][]interface{}{
		{"Source", r.Source},
		{"Profile", r.Profile},
		{"Run", r.RunID},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Messages", len(r.Messages) + len(r.Failures)},
		{"Valid", r.Valid()},
		{"Invalid", len(r.Messages) - r.Valid()},
		{"Parse failures", len(r.Failures)},
		{"Rule violations", r.ErrorCount()},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 18); err != nil {
		return err
	}

	messages := [][]interface{}{{"#", "Type", "Reference", "Sender", "Receiver", "Status", "Errors"}}
	for _, m := range r.Messages {
		status := "valid"
		if len(m.Errors) > 0 {
			status = "invalid"
		}
		messages = append(messages, []interface{}{
			m.Index, "MT" + m.Type, m.Reference, m.Sender, m.Receiver, status, len(m.Errors),
		})
	}
	for _, fl := range r.Failures {
		messages = append(messages, []interface{}{fl.Index, "", "", "", "", "unparsed", 1})
	}
	if err := writeTable(f, SheetMessages, messages, header); err != nil {
		return err
	}

	errs := [][]interface{}{{"#", "Type", "Reference", "Code", "Rule", "Tag", "Location", "Value", "Message"}}
	for _, m := range r.Messages {
		for _, e := range m.Errors {
			var loc string
			if e.Sequence != "" {
				loc = fmt.Sprintf("%s[%d]", e.Sequence, e.Instance)
			}
			errs = append(errs, []interface{}{
				m.Index, "MT" + m.Type, m.Reference, e.Code, e.RuleID, e.Tag, loc, e.Value, e.Message,
			})
		}
	}
	for _, fl := range r.Failures {
		errs = append(errs, []interface{}{
			fl.Index, "", "", fl.Kind, "", "", fmt.Sprintf("line %d", fl.Line), "", fl.Detail,
		})
	}
	return writeTable(f, SheetErrors, errs, header)
}

// writeTable writes rows with a styled, filtered and frozen header row.
func writeTable(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
