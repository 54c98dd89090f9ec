package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
)

var serializeCmd = &cobra.Command{
	Use:   "serialize [file|-]",
	Short: "Parse and re-serialize SWIFT MT messages",
	Long: `Serialize parses every message of a file (or stdin) and prints it back in
wire form, separated by "$" lines. A message that parses is printed
unchanged, so the command doubles as a round-trip check.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := readMessages(args, "")
		if err != nil {
			return err
		}

		out := make([]string, 0, len(entries))
		for i, entry := range entries {
			m, err := message.Parse(entry.Raw)
			if err != nil {
				return fmt.Errorf("message %d (line %d): %w", i+1, entry.Line, err)
			}
			text := m.Serialize()
			if text != entry.Raw {
				logger.Warn().Int("message", i+1).Msg("serialized form differs from input")
			}
			out = append(out, text)
		}
		fmt.Println(strings.Join(out, "\n$\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serializeCmd)
}
