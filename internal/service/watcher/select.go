package watcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrSelectionCancelled indicates the operator aborted device selection.
var ErrSelectionCancelled = errors.New("device selection cancelled")

// SelectDevice prompts the operator to pick one of the enumerated camera
// indices. Invalid input is re-prompted; end of input or a canceled
// context aborts with ErrSelectionCancelled, even while a read is blocked
// waiting on the operator.
func SelectDevice(ctx context.Context, available []int, in io.Reader, out io.Writer) (int, error) {
	if len(available) == 0 {
		return 0, ErrNoDeviceAvailable
	}

	valid := make(map[int]bool, len(available))
	for _, index := range available {
		valid[index] = true
	}

	fmt.Fprintf(out, "Available cameras: %v\n", available)

	// Reads happen on their own goroutine so cancellation is observed
	// even while the scanner is blocked on the operator's input.
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return 0, ErrSelectionCancelled
		}

		fmt.Fprint(out, "Choose a camera index: ")

		var line string

		select {
		case <-ctx.Done():
			return 0, ErrSelectionCancelled
		case text, ok := <-lines:
			if !ok {
				return 0, ErrSelectionCancelled
			}

			line = text
		}

		index, err := strconv.Atoi(line)
		if err != nil || !valid[index] {
			fmt.Fprintf(out, "Invalid choice %q, pick one of %v\n", line, available)

			continue
		}

		return index, nil
	}
}
