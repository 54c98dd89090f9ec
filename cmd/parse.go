// =============================================================================
// SWIFT MT Engine - Parse Command
// =============================================================================
//
// COMMAND USAGE:
//   swiftmt parse [file|-] [flags]
//
// FLAGS:
//   --type    : Require this message type (e.g. 103)
//   --format  : text (default) or xml
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/converter"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/xmlwriter"
)

var (
	parseType   string
	parseFormat string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse SWIFT MT messages and print their fields",
	Long: `Parse reads one or more messages from a file (or stdin) and prints the
header identification and every block 4 field in textual order.

With --format xml the messages are printed as the XML export used by the
process command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(args)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseType, "type", "", "Require this message type (e.g. 103)")
	parseCmd.Flags().StringVar(&parseFormat, "format", "text", "Output format: text or xml")
}

func runParse(args []string) error {
	if parseFormat != "text" && parseFormat != "xml" {
		return fmt.Errorf("unknown format %q", parseFormat)
	}

	entries, err := readMessages(args, "")
	if err != nil {
		return err
	}

	doc := &xmlwriter.Document{}
	failed := 0
	for i, entry := range entries {
		var m *message.Message
		if parseType != "" {
			m, err = message.ParseAs(entry.Raw, message.NormalizeType(parseType))
		} else {
			m, err = message.Parse(entry.Raw)
		}
		if err != nil {
			failed++
			logger.Error().Err(err).Int("message", i+1).Int("line", entry.Line).Msg("parse failed")
			doc.Failures = append(doc.Failures, xmlwriter.Failure{Index: i + 1, Line: entry.Line, Detail: err.Error()})
			continue
		}

		xm, err := converter.ExportMessage(i+1, m, nil, nil)
		if err != nil {
			return err
		}
		if parseFormat == "xml" {
			doc.Messages = append(doc.Messages, xm)
			continue
		}
		printMessage(xm)
	}

	if parseFormat == "xml" {
		if err := xmlwriter.Write(os.Stdout, doc, xmlwriter.DefaultGenerateOptions()); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d message(s) failed to parse", failed, len(entries))
	}
	return nil
}

func printMessage(m xmlwriter.Message) {
	fmt.Printf("=== Message %d: MT%s ===\n", m.Index, m.Type)
	fmt.Printf("Sender:    %s\n", m.Header.Sender)
	fmt.Printf("Receiver:  %s\n", m.Header.Receiver)
	fmt.Printf("Reference: %s\n", m.Header.Reference)
	if m.Header.UETR != "" {
		fmt.Printf("UETR:      %s\n", m.Header.UETR)
	}
	for _, f := range m.Body {
		fmt.Printf(":%s:%s\n", f.Tag, f.Value)
	}
	for _, s := range m.Sequences {
		fmt.Printf("--- Sequence %s[%d]\n", s.Name, s.Index)
		for _, f := range s.Fields {
			fmt.Printf(":%s:%s\n", f.Tag, f.Value)
		}
	}
	fmt.Println()
}
