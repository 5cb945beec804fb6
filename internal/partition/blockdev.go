package partition

import (
	"golang.org/x/sys/unix"
)

// IsBlockDevice reports whether path (after following symlinks) is a block
// special file.
func IsBlockDevice(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFBLK
}
