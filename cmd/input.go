package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/skovand/redline/internal/edit"
	"github.com/skovand/redline/internal/proposal"
)

// readActionInput loads the action batch from the file argument or, when no
// argument is given, from piped stdin. The extractor accepts both raw JSON
// batches and markdown proposals carrying a fenced JSON block.
func readActionInput(args []string) ([]edit.Action, error) {
	data, err := readRawInput(args)
	if err != nil {
		return nil, err
	}
	return proposal.ExtractActions(data)
}

func readRawInput(args []string) ([]byte, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", args[0], err)
		}
		return data, nil
	}

	stdinStat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to check stdin: %w", err)
	}
	if (stdinStat.Mode() & os.ModeCharDevice) != 0 {
		return nil, errors.New("no input: pass a file argument or pipe a batch to stdin")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}
