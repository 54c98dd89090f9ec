// =============================================================================
// SWIFT MT Engine - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   swiftmt validate [file|-] [flags]
//
// FLAGS:
//   --stop-on-first-error : Report only the first violated rule per message
//   --disable             : Rule IDs or codes to skip (repeatable)
//
// The command exits non-zero when any message fails to parse or validate.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
)

var (
	stopOnFirstError bool
	disabledRules    []string
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check SWIFT MT messages against the network validation rules",
	Long: `Validate parses every message of a file (or stdin) and runs the rule set
of its message type. Each violation is printed with its network code.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&stopOnFirstError, "stop-on-first-error", false,
		"Report only the first violated rule per message")
	validateCmd.Flags().StringSliceVar(&disabledRules, "disable", nil,
		"Rule IDs (MT103-C5) or codes (D75) to skip")
}

func runValidate(args []string) error {
	entries, err := readMessages(args, "")
	if err != nil {
		return err
	}

	opts := validation.Options{
		StopOnFirstError: stopOnFirstError || mainConfig.StopOnFirstError,
		DisabledRules:    disabledRules,
	}

	bad := 0
	for i, entry := range entries {
		m, err := message.Parse(entry.Raw)
		if err != nil {
			bad++
			fmt.Printf("  ✗ message %d (line %d): %v\n", i+1, entry.Line, err)
			continue
		}

		res := validation.Default.Check(m, opts)
		if res.Valid() {
			fmt.Printf("  ✓ message %d MT%s %s: valid (%d rules)\n", i+1, m.Type, res.Reference, res.RulesChecked)
			continue
		}
		bad++
		fmt.Printf("  ✗ message %d MT%s %s: %d violation(s)\n", i+1, m.Type, res.Reference, len(res.Errors))
		fmt.Print(validation.FormatErrors(res.Errors))
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d message(s) failed", bad, len(entries))
	}
	return nil
}
