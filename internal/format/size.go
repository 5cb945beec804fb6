package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size is a byte count handed to mkfs.ocfs2. The zero value is Auto.
type Size uint64

// Auto leaves the choice to mkfs.ocfs2; the flag is omitted entirely.
const Auto Size = 0

const (
	kib = 1 << 10
	mib = 1 << 20
)

// SizeRange is an inclusive power-of-two range of accepted sizes.
type SizeRange struct {
	Min Size
	Max Size
}

// Limits from mkfs.ocfs2 (MIN/MAX_CLUSTER_SIZE, OCFS2_MIN/MAX_BLOCKSIZE)
var (
	ClusterSizes = SizeRange{Min: 4 * kib, Max: 1 * mib}
	BlockSizes   = SizeRange{Min: 512, Max: 4 * kib}
)

// ParseSize accepts "auto", a plain byte count, or a count with a binary
// K/M/G suffix. Spaces and a trailing "B" or "bytes" are ignored, so
// "4K", "4 KB", "4 KiB", "4.0 KiB" and "4096" are all the same size.
func ParseSize(s string) (Size, error) {
	t := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if t == "" || t == "auto" {
		return Auto, nil
	}

	if strings.HasSuffix(t, "bytes") {
		t = strings.TrimSuffix(t, "bytes")
	} else {
		t = strings.TrimSuffix(t, "b")
	}

	m := sizePattern.FindStringSubmatch(t)
	if m == nil {
		return Auto, fmt.Errorf("invalid size %q", s)
	}

	mult := uint64(1)
	switch m[2] {
	case "k":
		mult = kib
	case "m":
		mult = mib
	case "g":
		mult = 1 << 30
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Auto, fmt.Errorf("invalid size %q", s)
	}
	v := n * float64(mult)
	if v != math.Trunc(v) {
		return Auto, fmt.Errorf("invalid size %q: not a whole number of bytes", s)
	}
	if v >= math.MaxUint64 {
		return Auto, fmt.Errorf("invalid size %q: too large", s)
	}
	return Size(v), nil
}

// Decimal digits with an optional fraction, then an optional unit. The "i"
// of KiB/MiB/GiB is only valid right after the unit letter.
var sizePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)(?:([kmg])i?)?$`)

// Arg renders the size the way mkfs.ocfs2 expects it on the command line.
func (s Size) Arg() string {
	switch {
	case s >= mib && s%mib == 0:
		return fmt.Sprintf("%dM", uint64(s/mib))
	case s >= kib && s%kib == 0:
		return fmt.Sprintf("%dK", uint64(s/kib))
	default:
		return strconv.FormatUint(uint64(s), 10)
	}
}

func (s Size) String() string {
	if s == Auto {
		return "Auto"
	}
	return humanize.IBytes(uint64(s))
}

// Choices lists Auto followed by every power of two from Min to Max.
func (r SizeRange) Choices() []Size {
	choices := []Size{Auto}
	for size := r.Min; size <= r.Max; size <<= 1 {
		choices = append(choices, size)
	}
	return choices
}

// Contains reports whether s is Auto or a power of two inside the range.
func (r SizeRange) Contains(s Size) bool {
	if s == Auto {
		return true
	}
	return s&(s-1) == 0 && s >= r.Min && s <= r.Max
}

func (r SizeRange) String() string {
	return fmt.Sprintf("%s-%s", r.Min.Arg(), r.Max.Arg())
}
