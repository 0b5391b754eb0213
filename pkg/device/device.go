// Package device resolves target block devices and their partition paths.
package device

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// Path resolves a short device name like "sda" or "nvme0n1" to its node
// under /dev. Absolute names pass through unchanged.
func Path(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name
	}
	return "/dev/" + name
}

// PartitionPath returns the device node for partition n of the named
// device, following the kernel naming scheme: devices whose name ends in
// a digit (nvme0n1, mmcblk0) get a "p" separator, the rest concatenate.
func PartitionPath(name string, n int) string {
	path := Path(name)
	suffix := strconv.Itoa(n)
	if last := path[len(path)-1]; last >= '0' && last <= '9' {
		return path + "p" + suffix
	}
	return path + suffix
}

// Validate checks that the named device exists and is a block special
// file. It returns the resolved /dev path.
func Validate(name string) (string, error) {
	if name == "" {
		return "", errors.New(errors.ErrMissingDevice, "no target device given")
	}

	path := Path(name)

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrNotBlockDevice, "%s does not exist", path)
		}
		return "", errors.Wrapf(err, errors.ErrNotBlockDevice, "cannot stat %s", path)
	}

	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return "", errors.Newf(errors.ErrNotBlockDevice, "%s is not a block device", path)
	}

	return path, nil
}
