package partition

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Trimmed output of lsblk -J -b from a host with a mounted root disk, a
// data disk with a free partition and an LVM-backed one, and a swap.
const sampleLsblk = `{
   "blockdevices": [
      {"name":"sdb", "kname":"sdb", "path":"/dev/sdb", "type":"disk", "size":107374182400, "fstype":null, "label":null, "mountpoint":null,
         "children": [
            {"name":"sdb2", "kname":"sdb2", "path":"/dev/sdb2", "type":"part", "size":53687091200, "fstype":"LVM2_member", "label":null, "mountpoint":null,
               "children": [
                  {"name":"vg0-data", "kname":"dm-0", "path":"/dev/mapper/vg0-data", "type":"lvm", "size":53687091200, "fstype":"xfs", "label":null, "mountpoint":"/srv"}
               ]
            },
            {"name":"sdb1", "kname":"sdb1", "path":"/dev/sdb1", "type":"part", "size":53687091200, "fstype":"ocfs2", "label":"oracle", "mountpoint":null}
         ]
      },
      {"name":"sda", "kname":"sda", "path":"/dev/sda", "type":"disk", "size":"21474836480", "fstype":null, "label":null, "mountpoint":null,
         "children": [
            {"name":"sda1", "kname":"sda1", "path":"/dev/sda1", "type":"part", "size":"20401094656", "fstype":"ext4", "label":"root", "mountpoint":"/"},
            {"name":"sda2", "kname":"sda2", "path":"/dev/sda2", "type":"part", "size":"1073741824", "fstype":"swap", "label":null, "mountpoint":"[SWAP]"}
         ]
      },
      {"name":"sr0", "kname":"sr0", "path":"/dev/sr0", "type":"rom", "size":1073741312, "fstype":null, "label":null, "mountpoint":null}
   ]
}`

func fakeLister(out string, err error) *Lister {
	return &Lister{
		exec:    func() ([]byte, error) { return []byte(out), err },
		isBlock: func(string) bool { return true },
	}
}

func TestList(t *testing.T) {
	parts, err := fakeLister(sampleLsblk, nil).List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	want := []Partition{
		{Name: "sda1", Path: "/dev/sda1", Type: "part", Size: 20401094656, FSType: "ext4", Label: "root", Mountpoint: "/", Parent: "/dev/sda", InUse: true},
		{Name: "sda2", Path: "/dev/sda2", Type: "part", Size: 1073741824, FSType: "swap", Mountpoint: "[SWAP]", Parent: "/dev/sda", InUse: true},
		{Name: "sdb1", Path: "/dev/sdb1", Type: "part", Size: 53687091200, FSType: "ocfs2", Label: "oracle", Parent: "/dev/sdb"},
		{Name: "sdb2", Path: "/dev/sdb2", Type: "part", Size: 53687091200, FSType: "LVM2_member", Parent: "/dev/sdb", InUse: true},
	}
	if diff := cmp.Diff(want, parts); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestEligible(t *testing.T) {
	got, err := fakeLister(sampleLsblk, nil).Eligible()
	if err != nil {
		t.Fatalf("Eligible() error: %v", err)
	}
	if diff := cmp.Diff([]string{"/dev/sdb1"}, got); diff != "" {
		t.Errorf("Eligible() mismatch (-want +got):\n%s", diff)
	}
}

func TestEligibleSkipsMissingNodes(t *testing.T) {
	l := fakeLister(sampleLsblk, nil)
	l.isBlock = func(path string) bool { return path != "/dev/sdb1" }

	got, err := l.Eligible()
	if err != nil {
		t.Fatalf("Eligible() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Eligible() = %v, want none", got)
	}
}

// Two SAN paths to the same LUN; lsblk prints the multipath map and its
// partition under both.
const multipathLsblk = `{
   "blockdevices": [
      {"name":"sdc", "kname":"sdc", "path":"/dev/sdc", "type":"disk", "size":10737418240,
         "children": [
            {"name":"mpatha", "kname":"dm-1", "path":"/dev/mapper/mpatha", "type":"mpath", "size":10737418240,
               "children": [
                  {"name":"mpatha1", "kname":"dm-2", "path":"/dev/mapper/mpatha1", "type":"part", "size":10736369664}
               ]
            }
         ]
      },
      {"name":"sdd", "kname":"sdd", "path":"/dev/sdd", "type":"disk", "size":10737418240,
         "children": [
            {"name":"mpatha", "kname":"dm-1", "path":"/dev/mapper/mpatha", "type":"mpath", "size":10737418240,
               "children": [
                  {"name":"mpatha1", "kname":"dm-2", "path":"/dev/mapper/mpatha1", "type":"part", "size":10736369664}
               ]
            }
         ]
      }
   ]
}`

func TestEligibleMultipathListedOnce(t *testing.T) {
	l := fakeLister(multipathLsblk, nil)

	got, err := l.Eligible()
	if err != nil {
		t.Fatalf("Eligible() error: %v", err)
	}
	if diff := cmp.Diff([]string{"/dev/mapper/mpatha1"}, got); diff != "" {
		t.Errorf("Eligible() mismatch (-want +got):\n%s", diff)
	}

	parts, err := l.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(parts) != 1 || parts[0].Parent != "/dev/mapper/mpatha" {
		t.Errorf("List() = %+v, want one partition under /dev/mapper/mpatha", parts)
	}
}

func TestListWithoutPathColumn(t *testing.T) {
	out := `{"blockdevices":[{"name":"vdb","kname":"vdb","type":"disk","size":"100","children":[{"name":"vdb1","kname":"vdb1","type":"part","size":"50"}]}]}`

	parts, err := fakeLister(out, nil).List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(parts) != 1 || parts[0].Path != "/dev/vdb1" || parts[0].Parent != "/dev/vdb" {
		t.Errorf("List() = %+v, want /dev/vdb1 under /dev/vdb", parts)
	}
}

func TestListErrors(t *testing.T) {
	execErr := errors.New("lsblk failed: exit status 1")
	if _, err := fakeLister("", execErr).List(); !errors.Is(err, execErr) {
		t.Errorf("List() error = %v, want %v", err, execErr)
	}

	if _, err := fakeLister("not json", nil).List(); err == nil {
		t.Error("List() accepted invalid JSON")
	}

	if _, err := fakeLister(`{"blockdevices":[{"name":"x","type":"part","size":"big"}]}`, nil).List(); err == nil {
		t.Error("List() accepted a non-numeric size")
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, nil); err != nil {
		t.Fatalf("PrintJSON() error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("PrintJSON(nil) = %q, want []", got)
	}

	buf.Reset()
	parts := []Partition{{Name: "sdb1", Path: "/dev/sdb1", Type: "part", Size: 1024}}
	if err := PrintJSON(&buf, parts); err != nil {
		t.Fatalf("PrintJSON() error: %v", err)
	}
	var decoded []Partition
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("PrintJSON() produced invalid JSON: %v", err)
	}
	if diff := cmp.Diff(parts, decoded); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil)
	if !strings.Contains(buf.String(), "No partitions found") {
		t.Errorf("PrintTable(nil) = %q", buf.String())
	}

	buf.Reset()
	parts, _ := fakeLister(sampleLsblk, nil).List()
	PrintTable(&buf, parts)
	out := buf.String()
	for _, want := range []string{"/dev/sdb1", "50 GiB", "[SWAP]", "(holder mounted)"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintTable() output missing %q:\n%s", want, out)
		}
	}
}

func TestIsBlockDevice(t *testing.T) {
	if IsBlockDevice("/dev/null") {
		t.Error("IsBlockDevice(/dev/null) = true, want false for a character device")
	}
	if IsBlockDevice(t.TempDir()) {
		t.Error("IsBlockDevice(dir) = true")
	}
}
