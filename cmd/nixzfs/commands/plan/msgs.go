package plan

// Message constants
const (
	MsgShort = "Print the commands an install would run"
	MsgLong  = `Plan prints every external command 'nixzfs install' would execute
against the target disk, in order, without running any of them.

The device must exist and be a block device, but no root privilege is
required. Interactive steps (prompts, configuration rendering, the
install receipt) are skipped; they run no external commands.`
	MsgExample = `  # Preview an install of /dev/sda
  nixzfs plan sda

  # Preview with a different pool name
  NIXZFS_POOL_NAME=tank nixzfs plan nvme0n1`

	// Flag descriptions
	MsgFlagConfig = "TOML config file overriding the built-in defaults"
)
