package partition

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// Partition is a block device as reported by lsblk.
type Partition struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Type       string `json:"type"`
	Size       uint64 `json:"size"`
	FSType     string `json:"fstype,omitempty"`
	Label      string `json:"label,omitempty"`
	Mountpoint string `json:"mountpoint,omitempty"`
	Parent     string `json:"parent,omitempty"`

	// Set when the device itself or anything stacked on it is mounted.
	InUse bool `json:"in_use"`
}

// Eligible reports whether the partition can be formatted.
func (p Partition) Eligible() bool {
	return p.Type == "part" && !p.InUse
}

// lsblkOutput represents the JSON output from lsblk
type lsblkOutput struct {
	Blockdevices []lsblkDevice `json:"blockdevices"`
}

type lsblkDevice struct {
	Name       string        `json:"name"`
	Kname      string        `json:"kname"`
	Path       string        `json:"path"`
	Type       string        `json:"type"`
	Size       byteCount     `json:"size"`
	FSType     string        `json:"fstype"`
	Label      string        `json:"label"`
	Mountpoint string        `json:"mountpoint"`
	Children   []lsblkDevice `json:"children,omitempty"`
}

// byteCount accepts both the numeric and the quoted size that different
// util-linux releases emit for -b.
type byteCount uint64

func (b *byteCount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*b = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %s: %w", data, err)
	}
	*b = byteCount(n)
	return nil
}

// Lister collects partitions from lsblk.
type Lister struct {
	// exec returns lsblk JSON output; replaced in tests
	exec func() ([]byte, error)

	isBlock func(path string) bool
}

// NewLister returns a Lister backed by the lsblk binary.
func NewLister() *Lister {
	return &Lister{exec: runLsblk, isBlock: IsBlockDevice}
}

func runLsblk() ([]byte, error) {
	cmd := exec.Command("lsblk", "-J", "-b", "-o", "NAME,KNAME,PATH,TYPE,SIZE,FSTYPE,LABEL,MOUNTPOINT")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("lsblk failed: %w", err)
	}
	return out, nil
}

// List returns every partition, sorted by path.
func (l *Lister) List() ([]Partition, error) {
	out, err := l.exec()
	if err != nil {
		return nil, err
	}
	return parseLsblk(out)
}

// Eligible returns the sorted paths of partitions with nothing mounted.
// Entries whose device node is missing are skipped.
func (l *Lister) Eligible() ([]string, error) {
	parts, err := l.List()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, p := range parts {
		if p.Eligible() && l.isBlock(p.Path) {
			paths = append(paths, p.Path)
		}
	}
	return paths, nil
}

func parseLsblk(data []byte) ([]Partition, error) {
	var output lsblkOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	var parts []Partition
	for _, dev := range output.Blockdevices {
		collect(dev, "", &parts)
	}

	// A device with several parents (multipath maps, MD members) is
	// repeated under each of them.
	seen := make(map[string]bool, len(parts))
	unique := parts[:0]
	for _, p := range parts {
		if seen[p.Path] {
			continue
		}
		seen[p.Path] = true
		unique = append(unique, p)
	}
	parts = unique

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Path < parts[j].Path
	})
	return parts, nil
}

// collect walks the device tree, appending partitions to parts.
func collect(dev lsblkDevice, parent string, parts *[]Partition) {
	path := dev.Path
	if path == "" {
		// lsblk before 2.33 has no PATH column
		path = "/dev/" + dev.Kname
		if dev.Kname == "" {
			path = "/dev/" + dev.Name
		}
	}

	if dev.Type == "part" {
		*parts = append(*parts, Partition{
			Name:       dev.Name,
			Path:       path,
			Type:       dev.Type,
			Size:       uint64(dev.Size),
			FSType:     dev.FSType,
			Label:      dev.Label,
			Mountpoint: dev.Mountpoint,
			Parent:     parent,
			InUse:      inUse(dev),
		})
	}

	for _, child := range dev.Children {
		collect(child, path, parts)
	}
}

// inUse reports whether dev or any holder stacked on it is mounted.
// Active swap shows up as the mountpoint "[SWAP]".
func inUse(dev lsblkDevice) bool {
	if dev.Mountpoint != "" {
		return true
	}
	for _, child := range dev.Children {
		if inUse(child) {
			return true
		}
	}
	return false
}
