// Package nixcfg renders the target system's configuration document.
//
// Rendering takes a typed Context and a template; the default template is
// embedded in the binary and can be swapped with any file the operator
// supplies.
package nixcfg

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

//go:embed templates/configuration.nix.tmpl
var defaultTemplate string

// DefaultHardwareImport is the import expression for the hardware
// description relocated next to the rendered document
const DefaultHardwareImport = "./hardware-configuration.nix"

// DefaultTemplate returns the embedded configuration template
func DefaultTemplate() string {
	return defaultTemplate
}

// Context carries every value interpolated into the configuration document
type Context struct {
	// User is the primary account name, prompted from the operator
	User string
	// Host is the system host name, prompted from the operator
	Host string
	// HostID is the first 8 characters of the machine id
	HostID string
	// Snapshot is the blank snapshot the root dataset rolls back to on boot
	Snapshot string
	// HardwareImport is the Nix path expression importing the relocated
	// hardware description, usually ./hardware-configuration.nix
	HardwareImport string
}

// Render executes the template over the context and returns the document
func Render(tmplText string, ctx Context) (string, error) {
	tmpl, err := template.New("configuration.nix").Parse(tmplText)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTemplateParse, "configuration template does not parse")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", errors.Wrap(err, errors.ErrTemplateRender, "configuration template failed to render")
	}

	return buf.String(), nil
}
