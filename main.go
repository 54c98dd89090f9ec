// =============================================================================
// SWIFT MT Engine - Main Entry Point
// =============================================================================
//
// USAGE:
//   swiftmt parse       - Print the fields of SWIFT MT messages
//   swiftmt validate    - Check messages against the network rules
//   swiftmt serialize   - Re-serialize messages
//   swiftmt process     - Convert every file in the input directory
//   swiftmt serve       - Start the HTTP service
//   swiftmt rules       - List message types and their rules
//   swiftmt version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : engine (envelope, format, field, message, validation) and
//                  the batch, export, server and ambient packages
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/cmd"
)

func main() {
	cmd.Execute()
}
