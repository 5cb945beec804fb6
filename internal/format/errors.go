package format

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevices means there is nothing that can safely be formatted.
	ErrNoDevices = errors.New("no unmounted partitions")

	// ErrDeclined means the user answered no to the confirmation.
	ErrDeclined = errors.New("format declined")

	// ErrNotInteractive means confirmation was needed but nobody can answer.
	ErrNotInteractive = errors.New("confirmation required: stdin is not a terminal (use --yes)")
)

// MkfsError is returned when mkfs.ocfs2 ran and exited non-zero.
type MkfsError struct {
	Device   string
	ExitCode int
	Output   string
}

func (e *MkfsError) Error() string {
	return fmt.Sprintf("Format error: %s", e.Output)
}

// DeviceError is returned when the requested device is not eligible.
type DeviceError struct {
	Device string
	Reason string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Device, e.Reason)
}
