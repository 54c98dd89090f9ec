package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [type]",
	Short: "List the validation rules of a message type",
	Long: `Without an argument, rules lists the supported message types. With a
message type (103 or MT103) it lists the rules run for that type, in order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			sets := make(map[string]bool)
			for _, t := range validation.Default.Types() {
				sets[t] = true
			}
			for _, t := range message.Types() {
				schema, _ := message.Lookup(t)
				marker := ""
				if sets[t] {
					marker = " (rule set)"
				}
				fmt.Printf("MT%s  %s%s\n", t, schema.Name, marker)
			}
			return nil
		}

		mt := message.NormalizeType(args[0])
		if _, ok := message.Lookup(mt); !ok {
			return fmt.Errorf("unsupported message type %q", args[0])
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tDESCRIPTION")
		for _, r := range validation.Default.Rules(mt) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Code, r.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
