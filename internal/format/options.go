package format

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"
)

const (
	// DefaultBinary is the formatting utility invoked when none is configured.
	DefaultBinary = "mkfs.ocfs2"

	// MaxLabelLen is OCFS2_MAX_VOL_LABEL_LEN.
	MaxLabelLen = 64

	MinNodes = 2
	MaxNodes = 255

	DefaultLabel = "oracle"
	DefaultNodes = 4
)

// Options holds everything gathered from the user for one format run.
// Zero values (empty label, Auto sizes, zero nodes) are left out of the
// command line so mkfs.ocfs2 applies its own defaults.
type Options struct {
	Device      string `json:"device"`
	Label       string `json:"label,omitempty"`
	ClusterSize Size   `json:"cluster_size,omitempty"`
	BlockSize   Size   `json:"block_size,omitempty"`
	Nodes       int    `json:"nodes,omitempty"`
}

// DefaultOptions returns the preset values shown before the user edits anything.
func DefaultOptions() Options {
	return Options{
		Label: DefaultLabel,
		Nodes: DefaultNodes,
	}
}

// Validate checks every field and returns all problems at once.
func (o Options) Validate() error {
	var err error

	if o.Device == "" {
		err = multierr.Append(err, errors.New("device is required"))
	}
	if len(o.Label) > MaxLabelLen {
		err = multierr.Append(err, fmt.Errorf("volume label is %d bytes, maximum is %d", len(o.Label), MaxLabelLen))
	}
	if !ClusterSizes.Contains(o.ClusterSize) {
		err = multierr.Append(err, fmt.Errorf("cluster size %s must be a power of two in %s", o.ClusterSize.Arg(), ClusterSizes))
	}
	if !BlockSizes.Contains(o.BlockSize) {
		err = multierr.Append(err, fmt.Errorf("block size %s must be a power of two in %s", o.BlockSize.Arg(), BlockSizes))
	}
	if o.Nodes != 0 && (o.Nodes < MinNodes || o.Nodes > MaxNodes) {
		err = multierr.Append(err, fmt.Errorf("number of nodes %d must be between %d and %d", o.Nodes, MinNodes, MaxNodes))
	}

	return err
}

// Args builds the mkfs.ocfs2 arguments: [-L label] [-c cluster] [-b block] [-n nodes] device
func (o Options) Args() []string {
	var args []string

	if o.Label != "" {
		args = append(args, "-L", o.Label)
	}
	if o.ClusterSize != Auto {
		args = append(args, "-c", o.ClusterSize.Arg())
	}
	if o.BlockSize != Auto {
		args = append(args, "-b", o.BlockSize.Arg())
	}
	if o.Nodes != 0 {
		args = append(args, "-n", strconv.Itoa(o.Nodes))
	}

	return append(args, o.Device)
}

// Command returns the full argv with binary first.
func (o Options) Command(binary string) []string {
	if binary == "" {
		binary = DefaultBinary
	}
	return append([]string{binary}, o.Args()...)
}
