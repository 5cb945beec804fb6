package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "device only",
			opts: Options{Device: "/dev/sdb1"},
			want: []string{"/dev/sdb1"},
		},
		{
			name: "defaults",
			opts: Options{Device: "/dev/sdb1", Label: "oracle", Nodes: 4},
			want: []string{"-L", "oracle", "-n", "4", "/dev/sdb1"},
		},
		{
			name: "everything",
			opts: Options{Device: "/dev/sdc2", Label: "shared", ClusterSize: 64 * 1024, BlockSize: 4096, Nodes: 8},
			want: []string{"-L", "shared", "-c", "64K", "-b", "4K", "-n", "8", "/dev/sdc2"},
		},
		{
			name: "auto sizes omitted",
			opts: Options{Device: "/dev/sdb1", Label: "x", ClusterSize: Auto, BlockSize: Auto},
			want: []string{"-L", "x", "/dev/sdb1"},
		},
		{
			name: "small block size",
			opts: Options{Device: "/dev/sdb1", BlockSize: 512},
			want: []string{"-b", "512", "/dev/sdb1"},
		},
		{
			name: "largest cluster size",
			opts: Options{Device: "/dev/sdb1", ClusterSize: 1 << 20},
			want: []string{"-c", "1M", "/dev/sdb1"},
		},
		{
			name: "label with spaces stays one argument",
			opts: Options{Device: "/dev/sdb1", Label: "my volume"},
			want: []string{"-L", "my volume", "/dev/sdb1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.opts.Args()); diff != "" {
				t.Errorf("Args() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	opts := Options{Device: "/dev/sdb1", Nodes: 2}

	want := []string{"mkfs.ocfs2", "-n", "2", "/dev/sdb1"}
	if diff := cmp.Diff(want, opts.Command("")); diff != "" {
		t.Errorf("Command(\"\") mismatch (-want +got):\n%s", diff)
	}

	want = []string{"/sbin/mkfs.ocfs2", "-n", "2", "/dev/sdb1"}
	if diff := cmp.Diff(want, opts.Command("/sbin/mkfs.ocfs2")); diff != "" {
		t.Errorf("Command(path) mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultOptions(t *testing.T) {
	want := Options{Label: "oracle", Nodes: 4}
	if diff := cmp.Diff(want, DefaultOptions()); diff != "" {
		t.Errorf("DefaultOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErrs []string
	}{
		{
			name: "valid defaults",
			opts: Options{Device: "/dev/sdb1", Label: "oracle", Nodes: 4},
		},
		{
			name: "valid everything",
			opts: Options{Device: "/dev/sdb1", Label: strings.Repeat("a", MaxLabelLen), ClusterSize: 1 << 20, BlockSize: 512, Nodes: MaxNodes},
		},
		{
			name: "nodes omitted",
			opts: Options{Device: "/dev/sdb1"},
		},
		{
			name:     "missing device",
			opts:     Options{},
			wantErrs: []string{"device is required"},
		},
		{
			name:     "label too long",
			opts:     Options{Device: "/dev/sdb1", Label: strings.Repeat("a", MaxLabelLen+1)},
			wantErrs: []string{"volume label is 65 bytes"},
		},
		{
			name:     "one node",
			opts:     Options{Device: "/dev/sdb1", Nodes: 1},
			wantErrs: []string{"number of nodes 1"},
		},
		{
			name:     "too many nodes",
			opts:     Options{Device: "/dev/sdb1", Nodes: 256},
			wantErrs: []string{"number of nodes 256"},
		},
		{
			name: "everything wrong",
			opts: Options{Label: strings.Repeat("x", 100), ClusterSize: 2048, BlockSize: 3000, Nodes: -1},
			wantErrs: []string{
				"device is required",
				"volume label",
				"cluster size 2K",
				"block size 3000",
				"number of nodes -1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			errs := multierr.Errors(err)
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("Validate() = %v, want %d errors", err, len(tt.wantErrs))
			}
			for i, want := range tt.wantErrs {
				if !strings.Contains(errs[i].Error(), want) {
					t.Errorf("error %d = %q, want it to contain %q", i, errs[i], want)
				}
			}
		})
	}
}
