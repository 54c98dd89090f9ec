package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/batch"
)

// readMessages reads the messages of the file named by args, or of stdin
// when args is empty or "-". Files may hold several messages.
func readMessages(args []string, separator string) ([]batch.Entry, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	entries, err := batch.Split(string(data), separator)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no message found in input")
	}
	return entries, nil
}
