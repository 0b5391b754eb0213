package render

// Message constants
const (
	MsgShort = "Render the system configuration document"
	MsgLong  = `Render produces the configuration.nix document an install would write,
from explicit flag values, without touching any disk.

The machine id defaults to the one of the running system; pass
--machine-id to render for another host.`
	MsgExample = `  # Print the configuration for alice@box1
  nixzfs render --user alice --host box1

  # Render for another machine into a file
  nixzfs render --user bob --host box2 \
    --machine-id 0123456789abcdef0123456789abcdef -o configuration.nix`

	// Flag descriptions
	MsgFlagUser      = "Primary user account name"
	MsgFlagHost      = "System host name"
	MsgFlagMachineID = "Machine id to derive the ZFS host id from (default: read from the machine id file)"
	MsgFlagTemplate  = "Configuration template file (default: embedded template)"
	MsgFlagOutput    = "Write to this file instead of stdout"
	MsgFlagConfig    = "TOML config file overriding the built-in defaults"
)
