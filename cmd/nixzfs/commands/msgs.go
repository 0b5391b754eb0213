package commands

// Message constants
const (
	MsgRootShort = "Install NixOS onto a ZFS disk with an ephemeral root"
	MsgRootLong  = `nixzfs partitions a disk, builds an encrypted ZFS layout whose root
dataset rolls back to a blank snapshot on every boot, mounts it, writes
the system configuration, and runs the NixOS installer.

Everything on the root dataset disappears at reboot; only the home and
state datasets persist. Run 'nixzfs plan <device>' first to see every
command an install would execute.

WARNING: 'nixzfs install' overwrites the target disk without asking.`

	MsgVersionShort = "Print version information"
	MsgVersionLong  = "Print detailed version information including commit hash and build date"

	MsgTopicsShort = "Display available documentation topics"
	MsgTopicsLong  = "Display a list of all available help topics that provide additional documentation beyond command help."

	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `Generate a shell completion script for nixzfs.

Load it in the current session or install it in your shell's completion
directory; see your shell's documentation for the exact location.`

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
)
