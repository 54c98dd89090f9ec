package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/batch"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/xmlwriter"
)

const mt900 = "{1:F01BANKBEBBAXXX0000000000}{2:I900BANKDEFFXXXXN}{4:\n" +
	":20:C11126A1378\n" +
	":21:5482ABC\n" +
	":25:9-9876543\n" +
	":32A:250102USD233530,\n" +
	"-}"

// mt101 lacks 21F, which its rule set requires.
const mt101 = "{1:F01BANKBEBBAXXX0000000000}{2:I101BANKDEFFXXXXN}{4:\n" +
	":20:11FF99RR\n" +
	":28D:1/1\n" +
	":50H:/12345\nORDERING CO\n" +
	":30:250103\n" +
	":21:TX1\n" +
	":32B:EUR100,00\n" +
	":33B:USD110,00\n" +
	":59:/DE89370400440532013000\nBENEFICIARY\n" +
	":71A:SHA\n" +
	":36:0,9\n" +
	"-}"

var broken = mt900[:len(mt900)-2] + ":71A:SHA\n-}"

type workspace struct {
	main  *config.MainConfig
	input string
}

func newWorkspace(t *testing.T, name, content string) workspace {
	t.Helper()
	root := t.TempDir()
	main := config.Default()
	main.InputDir = filepath.Join(root, "input")
	main.OutputDir = filepath.Join(root, "output")
	main.InputArchiveDir = filepath.Join(root, "input_archive")
	main.OutputArchiveDir = filepath.Join(root, "output_archive")
	main.UUIDFormat = "{profile}_{original}"
	main.Outputs = config.OutputSettings{XML: true, XLSX: true, FIN: true}

	for _, dir := range []string{main.InputDir, main.OutputDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}
	input := filepath.Join(main.InputDir, name)
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))
	return workspace{main: main, input: input}
}

func profile(code string) *config.Profile {
	p := config.DefaultProfile()
	p.Code = code
	return p
}

func run(w workspace, p *config.Profile, opts ...Option) Result {
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return New(w.input, p, w.main, opts...).Run(context.Background())
}

func TestRunWritesOutputs(t *testing.T) {
	w := newWorkspace(t, "pay_0001.fin", mt900+"\n$\n"+mt101+"\n$\n"+broken+"\n")

	result := run(w, profile("PAY"))
	require.NoError(t, result.Error)
	assert.True(t, result.Success)

	assert.Equal(t, ProcessingStats{
		Messages:         3,
		Parsed:           2,
		ParseFailures:    1,
		Valid:            1,
		Invalid:          1,
		ValidationErrors: 1,
		ProcessingTime:   result.Stats.ProcessingTime,
	}, result.Stats)

	require.Len(t, result.OutputFiles, 3)
	assert.Equal(t, filepath.Join(w.main.OutputDir, "PAY_pay_0001.xml"), result.OutputFiles[0])
	assert.Equal(t, filepath.Join(w.main.OutputDir, "PAY_pay_0001.xlsx"), result.OutputFiles[1])
	assert.Equal(t, filepath.Join(w.main.OutputDir, "PAY_pay_0001.fin"), result.OutputFiles[2])
	assert.Equal(t, filepath.Join(w.main.OutputDir, "PAY_pay_0001_errors.txt"), result.ErrorLog)

	f, err := os.Open(result.OutputFiles[0])
	require.NoError(t, err)
	defer f.Close()
	doc, err := xmlwriter.Decode(f)
	require.NoError(t, err)
	require.Len(t, doc.Messages, 2)
	assert.True(t, doc.Messages[0].Valid)
	assert.False(t, doc.Messages[1].Valid)
	assert.Equal(t, "D54", doc.Messages[1].Errors[0].Code)
	require.Len(t, doc.Failures, 1)
	assert.Equal(t, 3, doc.Failures[0].Index)
	assert.Equal(t, "UnparsedContent", doc.Failures[0].Kind)

	fin, err := batch.Read(result.OutputFiles[2], config.InputSettings{})
	require.NoError(t, err)
	require.Equal(t, 2, fin.Count())
	assert.Equal(t, mt900, fin.Entries[0].Raw)

	assert.NoFileExists(t, w.input)
	assert.FileExists(t, filepath.Join(w.main.InputArchiveDir, "pay_0001.fin"))
	assert.Equal(t, filepath.Join(w.main.InputArchiveDir, "pay_0001.fin"), result.ArchivePath)
	assert.FileExists(t, filepath.Join(w.main.OutputArchiveDir, "PAY_pay_0001.xml"))
}

func TestRunStopsWithoutContinueOnError(t *testing.T) {
	w := newWorkspace(t, "pay.fin", broken+"\n$\n"+mt900)
	w.main.ContinueOnError = false

	result := run(w, profile("PAY"))
	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, types.ErrUnparsedContent))
	assert.Equal(t, 1, result.Stats.ParseFailures)
	assert.FileExists(t, w.input)
}

func TestRunRejectsUnacceptedType(t *testing.T) {
	w := newWorkspace(t, "pay.fin", mt900+"\n$\n"+mt101)
	p := profile("PAY")
	p.MessageTypes = []string{"101"}

	result := run(w, p)
	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.Parsed)
	assert.Equal(t, 1, result.Stats.ParseFailures)

	data, err := os.ReadFile(result.ErrorLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WrongMessageType")
}

func TestRunNothingParsed(t *testing.T) {
	w := newWorkspace(t, "bad.fin", broken)

	result := run(w, profile("PAY"))
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, ErrNoMessages))
	assert.Empty(t, result.OutputFiles)
	assert.FileExists(t, result.ErrorLog)
	assert.FileExists(t, w.input)
}

func TestRunEmptyFile(t *testing.T) {
	w := newWorkspace(t, "empty.fin", "\n$\n")

	result := run(w, profile("PAY"))
	assert.True(t, errors.Is(result.Error, ErrNoMessages))
	assert.Equal(t, 0, result.Stats.Messages)
}

func TestRunDryRun(t *testing.T) {
	w := newWorkspace(t, "pay.fin", mt900)

	result := run(w, profile("PAY"), WithDryRun(true))
	require.NoError(t, result.Error)
	assert.Empty(t, result.OutputFiles)
	assert.FileExists(t, w.input)

	entries, err := os.ReadDir(w.main.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunCancelled(t *testing.T) {
	w := newWorkspace(t, "pay.fin", mt900)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(w.input, profile("PAY"), w.main, WithLogger(zerolog.Nop())).Run(ctx)
	assert.True(t, errors.Is(result.Error, context.Canceled))
}

func TestRunDisabledRules(t *testing.T) {
	w := newWorkspace(t, "pay.fin", mt101)
	p := profile("PAY")
	p.DisabledRules = []string{"D54"}

	result := run(w, p)
	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.Valid)
	assert.Empty(t, result.ErrorLog)
}

func TestExportMessage(t *testing.T) {
	m, err := message.Parse(mt101)
	require.NoError(t, err)

	tr := NewTransformer([]config.TransformationRule{
		{Field: "32B", Actions: []config.TransformationAction{{Type: "decimal_point"}}},
		{Field: "59", Actions: []config.TransformationAction{{Type: "mask"}}},
		{Field: KeyReference, Actions: []config.TransformationAction{{Type: "lowercase"}}},
	})

	xm, err := ExportMessage(4, m, nil, tr)
	require.NoError(t, err)

	assert.Equal(t, 4, xm.Index)
	assert.Equal(t, "101", xm.Type)
	assert.True(t, xm.Valid)
	assert.Equal(t, "I", xm.Header.Direction)
	assert.Equal(t, "11ff99rr", xm.Header.Reference)

	require.NotEmpty(t, xm.Sequences)
	seq := xm.Sequences[0]
	assert.Equal(t, "B", seq.Name)
	assert.Equal(t, 1, seq.Index)

	values := map[string]string{}
	for _, f := range seq.Fields {
		values[f.Tag] = f.Value
	}
	assert.Equal(t, "EUR100.00", values["32B"])
	assert.Equal(t, "/******************3000\n*******IARY", values["59"])
	assert.Equal(t, "0,9", values["36"])
}

func TestExportMessageTransformError(t *testing.T) {
	m, err := message.Parse(mt900)
	require.NoError(t, err)

	tr := NewTransformer([]config.TransformationRule{
		{Field: "20", Actions: []config.TransformationAction{{Type: "explode"}}},
	})
	_, err = ExportMessage(1, m, nil, tr)
	assert.ErrorContains(t, err, "unknown transformation type")
}

func TestRunAll(t *testing.T) {
	w := newWorkspace(t, "a.fin", mt900)
	second := filepath.Join(w.main.InputDir, "b.fin")
	require.NoError(t, os.WriteFile(second, []byte(mt101), 0644))
	w.main.Outputs = config.OutputSettings{XML: true}

	results := RunAll(context.Background(), []Job{
		{Path: w.input, Profile: profile("A")},
		{Path: filepath.Join(w.main.InputDir, "c.fin")},
		{Path: second, Profile: profile("B")},
	}, w.main, 2, WithLogger(zerolog.Nop()))

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, "A", results[0].Profile)
	assert.EqualError(t, results[1].Error, "no matching profile found")
	assert.True(t, results[2].Success)
	assert.Equal(t, 1, results[2].Stats.Invalid)
}
