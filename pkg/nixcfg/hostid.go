package nixcfg

import (
	"os"
	"strings"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// NormalizeHostID trims whitespace and shortens a machine id to the 8
// characters ZFS uses as networking.hostId.
func NormalizeHostID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if len(id) < 8 {
		return "", errors.Newf(errors.ErrMachineID, "machine id %q is too short", id)
	}
	return id[:8], nil
}

// HostID reads the machine id file and returns its first 8 characters,
// the value ZFS uses to tie a pool to its importing host.
func HostID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrMachineID, "cannot read machine id from %s", path)
	}

	id, err := NormalizeHostID(string(data))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrMachineID, "machine id in %s is unusable", path)
	}
	return id, nil
}
