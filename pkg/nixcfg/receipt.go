package nixcfg

import (
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// Receipt records what an install produced. It is written into persisted
// state next to the rendered configuration after a successful run, so the
// installed system carries its own provisioning record.
type Receipt struct {
	Device     string    `toml:"device"`
	Pool       string    `toml:"pool"`
	Datasets   []string  `toml:"datasets"`
	Snapshot   string    `toml:"snapshot"`
	Host       string    `toml:"host"`
	User       string    `toml:"user"`
	StartedAt  time.Time `toml:"started_at"`
	FinishedAt time.Time `toml:"finished_at"`
}

// Write marshals the receipt as TOML and writes it atomically to path
func (r Receipt) Write(path string) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot marshal receipt for %s", path)
	}
	return WriteFile(path, data)
}
