// =============================================================================
// SWIFT MT Engine - XLSX Field Catalogue Parser
// =============================================================================
//
// This module reads field catalogues maintained by operations teams as XLSX
// workbooks. A catalogue declares field tags the engine does not build in,
// each with the component notation of its content, and registers them with
// the field extension registry so messages carrying them parse to typed
// values instead of passthrough text.
//
// CATALOGUE STRUCTURE (Expected Columns):
//
//   | Column A | Column B         | Column C     | Column D | Column E               |
//   |----------|------------------|--------------|----------|------------------------|
//   | Tag      | Name             | Format       | Enabled  | Description            |
//   | 29B      | Sender Reference | 4*35x        | yes      | Bilateral extension    |
//   | 44S      | Regulatory Code  | 4!c[/30x]    | yes      |                        |
//   | 95Z      | Legacy Party     | 3*35x        | no       | Retired in 2024        |
//
// Column positions are configurable via CatalogueColumns.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
)

// =============================================================================
// CATALOGUE STRUCTURE
// =============================================================================

// Catalogue is a parsed field catalogue.
type Catalogue struct {
	// SourceFile is the path to the workbook.
	SourceFile string

	// Sheet is the worksheet the entries were read from.
	Sheet string

	// Entries are the declared fields in row order.
	Entries []*FieldDefinition
}

// FieldDefinition declares one custom field.
type FieldDefinition struct {
	// Tag is the raw field tag, e.g. "44S".
	Tag string

	// Name is the human readable field name.
	Name string

	// Format is the component notation, e.g. "4!c[/30x]".
	Format string

	// Enabled entries are registered; disabled ones are kept for reference.
	Enabled bool

	Description string

	// Row is the 1-based worksheet row, for error messages.
	Row int
}

// =============================================================================
// CATALOGUE COLUMN CONFIGURATION
// =============================================================================

// CatalogueColumns defines which columns hold which data. Indices are
// 0-based (A=0, B=1, ...).
type CatalogueColumns struct {
	TagColumn         int
	NameColumn        int
	FormatColumn      int
	EnabledColumn     int
	DescriptionColumn int

	// DataStartRow is the first data row (0-based).
	DataStartRow int

	// Sheet is the worksheet to read. Empty reads the first sheet.
	Sheet string
}

// DefaultCatalogueColumns returns the default column layout.
func DefaultCatalogueColumns() CatalogueColumns {
	return CatalogueColumns{
		TagColumn:         0, // Column A
		NameColumn:        1, // Column B
		FormatColumn:      2, // Column C
		EnabledColumn:     3, // Column D
		DescriptionColumn: 4, // Column E
		DataStartRow:      1, // Row 2
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a catalogue with the default column layout.
func Parse(cataloguePath string) (*Catalogue, error) {
	return ParseWithConfig(cataloguePath, DefaultCatalogueColumns())
}

// ParseWithConfig reads a catalogue with a custom column layout.
func ParseWithConfig(cataloguePath string, columns CatalogueColumns) (*Catalogue, error) {
	f, err := excelize.OpenFile(cataloguePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue file: %w", err)
	}
	defer f.Close()

	sheetName := columns.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("catalogue file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	catalogue := &Catalogue{SourceFile: cataloguePath, Sheet: sheetName}
	seen := make(map[string]int)

	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		def, err := parseRow(row, columns, i+1)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
		}
		if prev, dup := seen[def.Tag]; dup {
			return nil, fmt.Errorf("row %d: tag %s already declared on row %d", i+1, def.Tag, prev)
		}
		seen[def.Tag] = i + 1
		catalogue.Entries = append(catalogue.Entries, def)
	}

	return catalogue, nil
}

// parseRow extracts a FieldDefinition from a single row.
func parseRow(row []string, columns CatalogueColumns, rowNumber int) (*FieldDefinition, error) {
	getCell := func(index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	def := &FieldDefinition{
		Tag:         strings.ToUpper(getCell(columns.TagColumn)),
		Name:        getCell(columns.NameColumn),
		Format:      getCell(columns.FormatColumn),
		Enabled:     normalizeEnabled(getCell(columns.EnabledColumn)),
		Description: getCell(columns.DescriptionColumn),
		Row:         rowNumber,
	}

	if def.Tag == "" {
		return nil, fmt.Errorf("missing tag")
	}
	if def.Format == "" {
		return nil, fmt.Errorf("tag %s: missing format", def.Tag)
	}
	if def.Name == "" {
		def.Name = def.Tag
	}
	return def, nil
}

// =============================================================================
// REGISTRATION
// =============================================================================

// Register compiles every enabled entry and adds it to reg. It returns the
// number of registered tags. Nothing is registered when any entry fails.
func (c *Catalogue) Register(reg *field.Registry) (int, error) {
	type compiled struct {
		tag string
		fn  field.ParseFunc
	}
	var ready []compiled

	for _, def := range c.Entries {
		if !def.Enabled {
			continue
		}
		if field.IsBuiltin(def.Tag) {
			return 0, fmt.Errorf("row %d: %w: %s", def.Row, field.ErrBuiltinTag, def.Tag)
		}
		fn, err := field.FormatParser(def.Name, def.Format)
		if err != nil {
			return 0, fmt.Errorf("row %d: tag %s: %w", def.Row, def.Tag, err)
		}
		ready = append(ready, compiled{def.Tag, fn})
	}

	for i, r := range ready {
		if err := reg.Register(r.tag, r.fn); err != nil {
			for _, done := range ready[:i] {
				reg.Unregister(done.tag)
			}
			return 0, err
		}
	}
	return len(ready), nil
}

// Load parses a catalogue and registers it with the default registry.
func Load(cataloguePath string) (*Catalogue, int, error) {
	c, err := Parse(cataloguePath)
	if err != nil {
		return nil, 0, err
	}
	n, err := c.Register(field.Default)
	if err != nil {
		return nil, 0, err
	}
	return c, n, nil
}

// =============================================================================
// TEMPLATE GENERATION
// =============================================================================

// WriteTemplate writes an empty catalogue workbook with the header row and
// the given entries.
func WriteTemplate(path string, entries ...FieldDefinition) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Catalogue"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	header := []interface{}{"Tag", "Name", "Format", "Enabled", "Description"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, e := range entries {
		enabled := "no"
		if e.Enabled {
			enabled = "yes"
		}
		row := []interface{}{e.Tag, e.Name, e.Format, enabled, e.Description}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeEnabled maps the Enabled column to a boolean. Blank means enabled.
func normalizeEnabled(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "no", "n", "false", "0", "disabled", "off":
		return false
	default:
		return true
	}
}
