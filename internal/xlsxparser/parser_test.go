package xlsxparser

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
)

func catalogueFile(t *testing.T, entries ...FieldDefinition) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogue.xlsx")
	require.NoError(t, WriteTemplate(path, entries...))
	return path
}

func TestParseCatalogue(t *testing.T) {
	path := catalogueFile(t,
		FieldDefinition{Tag: "29b", Name: "Sender Reference", Format: "4*35x", Enabled: true},
		FieldDefinition{Tag: "44S", Name: "Regulatory Code", Format: "4!c[/30x]", Enabled: true, Description: "bilateral"},
		FieldDefinition{Tag: "95Z", Name: "Legacy Party", Format: "3*35x"},
	)

	c, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "Catalogue", c.Sheet)
	require.Len(t, c.Entries, 3)
	assert.Equal(t, "29B", c.Entries[0].Tag)
	assert.Equal(t, 2, c.Entries[0].Row)
	assert.Equal(t, "bilateral", c.Entries[1].Description)
	assert.False(t, c.Entries[2].Enabled)
}

func TestRegisterCatalogue(t *testing.T) {
	path := catalogueFile(t,
		FieldDefinition{Tag: "44S", Name: "Regulatory Code", Format: "4!c[/30x]", Enabled: true},
		FieldDefinition{Tag: "95Z", Name: "Legacy Party", Format: "3*35x"},
	)
	c, err := Parse(path)
	require.NoError(t, err)

	reg := field.NewRegistry()
	n, err := c.Register(reg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"44S"}, reg.Tags())

	fn, ok := reg.Lookup("44S")
	require.True(t, ok)
	f, err := fn("44S", "ABCD/FREE TEXT")
	require.NoError(t, err)
	assert.Equal(t, "44S", f.Tag())
	assert.Equal(t, "ABCD/FREE TEXT", f.Serialize())

	_, err = fn("44S", "AB")
	assert.Error(t, err)
}

func TestRegisterRejectsBuiltin(t *testing.T) {
	path := catalogueFile(t,
		FieldDefinition{Tag: "44S", Name: "Regulatory Code", Format: "4!c", Enabled: true},
		FieldDefinition{Tag: "32A", Name: "Clash", Format: "16x", Enabled: true},
	)
	c, err := Parse(path)
	require.NoError(t, err)

	reg := field.NewRegistry()
	_, err = c.Register(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, field.ErrBuiltinTag))
	assert.Empty(t, reg.Tags())
}

func TestParseCatalogueErrors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)

	path := catalogueFile(t,
		FieldDefinition{Tag: "44S", Format: "4!c", Enabled: true},
		FieldDefinition{Tag: "44S", Format: "16x", Enabled: true},
	)
	_, err = Parse(path)
	assert.ErrorContains(t, err, "already declared")

	path = catalogueFile(t, FieldDefinition{Tag: "44S", Enabled: true})
	_, err = Parse(path)
	assert.ErrorContains(t, err, "missing format")
}

func TestParseWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Fields")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Fields", "A1", &[]interface{}{"Format", "Tag"}))
	require.NoError(t, f.SetSheetRow("Fields", "A2", &[]interface{}{"16x", "29B"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	c, err := ParseWithConfig(path, CatalogueColumns{
		TagColumn:         1,
		NameColumn:        9,
		FormatColumn:      0,
		EnabledColumn:     9,
		DescriptionColumn: 9,
		DataStartRow:      1,
		Sheet:             "Fields",
	})
	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, "29B", c.Entries[0].Tag)
	assert.Equal(t, "29B", c.Entries[0].Name)
	assert.True(t, c.Entries[0].Enabled)
}
