package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Asker is the interactive side of option collection.
type Asker interface {
	Ask(label, def string) (string, error)
	Choose(label string, items []string, def string) (string, error)
}

type field struct {
	desc         string
	advancedOnly bool
	ask          func(a Asker, desc string, devices []string, o *Options) error
}

// fields are asked in this order; block size only in advanced mode.
var fields = []field{
	{"Device", false, askDevice},
	{"Volume Label", false, askLabel},
	{"Cluster Size", false, askClusterSize},
	{"Number of Nodes", false, askNodes},
	{"Block Size", true, askBlockSize},
}

// Collect walks the user through every field, starting from opts. The
// result still needs Validate.
func Collect(a Asker, devices []string, opts Options, advanced bool) (Options, error) {
	if len(devices) == 0 {
		return opts, ErrNoDevices
	}

	for _, f := range fields {
		if f.advancedOnly && !advanced {
			continue
		}
		if err := f.ask(a, f.desc, devices, &opts); err != nil {
			return opts, fmt.Errorf("%s: %w", strings.ToLower(f.desc), err)
		}
	}
	return opts, nil
}

func askDevice(a Asker, desc string, devices []string, o *Options) error {
	dev, err := a.Choose(desc, devices, o.Device)
	if err != nil {
		return err
	}
	o.Device = dev
	return nil
}

func askLabel(a Asker, desc string, _ []string, o *Options) error {
	label, err := a.Ask(desc, o.Label)
	if err != nil {
		return err
	}
	o.Label = label
	return nil
}

func askClusterSize(a Asker, desc string, _ []string, o *Options) error {
	return askSize(a, fmt.Sprintf("%s (Auto, %s)", desc, ClusterSizes), &o.ClusterSize)
}

func askBlockSize(a Asker, desc string, _ []string, o *Options) error {
	return askSize(a, fmt.Sprintf("%s (Auto, %s)", desc, BlockSizes), &o.BlockSize)
}

func askSize(a Asker, label string, s *Size) error {
	def := "Auto"
	if *s != Auto {
		def = s.Arg()
	}
	answer, err := a.Ask(label, def)
	if err != nil {
		return err
	}
	size, err := ParseSize(answer)
	if err != nil {
		return err
	}
	*s = size
	return nil
}

func askNodes(a Asker, desc string, _ []string, o *Options) error {
	def := ""
	if o.Nodes != 0 {
		def = strconv.Itoa(o.Nodes)
	}
	answer, err := a.Ask(fmt.Sprintf("%s (%d-%d)", desc, MinNodes, MaxNodes), def)
	if err != nil {
		return err
	}
	if answer == "" {
		o.Nodes = 0
		return nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return fmt.Errorf("invalid number %q", answer)
	}
	o.Nodes = n
	return nil
}
