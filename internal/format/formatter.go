package format

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// DeviceLister returns the devices that are currently safe to format.
type DeviceLister interface {
	Eligible() ([]string, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Recorder keeps a log of completed runs.
type Recorder interface {
	Record(opts Options, argv []string, res *Result, started time.Time) error
}

// Formatter drives one format: device check, validation, confirmation,
// invocation and result mapping.
type Formatter struct {
	Binary  string
	Devices DeviceLister
	Runner  Runner

	// Confirm is asked before anything is written. Nil skips the question.
	Confirm Confirmer

	// History is optional; failures to record are logged, never returned.
	History Recorder
}

// Prepare checks that opts describe a runnable format and returns the
// argv that would be executed.
func (f *Formatter) Prepare(opts Options) ([]string, error) {
	devices, err := f.Devices.Eligible()
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if !containsDevice(devices, opts.Device) {
		return nil, &DeviceError{Device: opts.Device, Reason: "not an unmounted partition"}
	}

	return opts.Command(f.Binary), nil
}

// Format runs mkfs.ocfs2 for opts. A non-zero exit is returned as *MkfsError
// together with the Result.
func (f *Formatter) Format(ctx context.Context, opts Options) (*Result, error) {
	argv, err := f.Prepare(opts)
	if err != nil {
		return nil, err
	}

	if f.Confirm != nil {
		ok, err := f.Confirm.Confirm(fmt.Sprintf("Are you sure you want to format %s?", opts.Device))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
	}

	started := time.Now()
	res, err := f.Runner.Run(ctx, argv[0], argv[1:])
	if err != nil {
		return nil, err
	}

	if f.History != nil {
		if err := f.History.Record(opts, argv, res, started); err != nil {
			logrus.WithError(err).Warn("failed to record format history")
		}
	}

	if !res.Success {
		return res, &MkfsError{Device: opts.Device, ExitCode: res.ExitCode, Output: res.Output}
	}
	return res, nil
}

// containsDevice matches device against the list directly or through
// symlinks such as /dev/disk/by-label/*.
func containsDevice(devices []string, device string) bool {
	resolved, err := filepath.EvalSymlinks(device)
	if err != nil {
		resolved = device
	}
	for _, d := range devices {
		if d == device || d == resolved {
			return true
		}
	}
	return false
}
