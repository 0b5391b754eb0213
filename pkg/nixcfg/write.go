package nixcfg

import (
	"os"

	"github.com/google/renameio"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// WriteFile atomically replaces path with data. The document appears
// complete or not at all; a render that fails mid-way never leaves a
// truncated configuration behind.
func WriteFile(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return nil
}

// LoadTemplate returns the template text to render: the contents of path
// when given, the embedded default otherwise.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplateParse, "cannot read template %s", path)
	}
	return string(data), nil
}
