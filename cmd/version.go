package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X 'github.com/GoPlasmatic/SwiftMTMessage-sub001/cmd.Version=1.2.0'"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("SWIFT MT Engine")
		fmt.Printf("Version:       %s\n", Version)
		fmt.Printf("Build Date:    %s\n", BuildDate)
		fmt.Printf("Go Version:    %s\n", runtime.Version())
		fmt.Printf("Message types: %d\n", len(message.Types()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
