package install

// Message constants
const (
	MsgShort = "Install NixOS onto the target disk"
	MsgLong  = `Install partitions the target disk, creates the ZFS pool and dataset
layout with an ephemeral root, mounts everything under the target root,
writes the system configuration, and runs nixos-install.

The target disk is overwritten without confirmation. Use
'nixzfs plan <device>' to review the exact command sequence first.

You will be prompted for a user name, a host name, and one passphrase
per encrypted dataset.`
	MsgExample = `  # Install onto /dev/sda
  nixzfs install sda

  # Install onto an NVMe disk with a custom pool name
  NIXZFS_POOL_NAME=tank nixzfs install nvme0n1

  # Use your own configuration template
  nixzfs install sda --template ./my-configuration.nix.tmpl`

	MsgDoneFormat = "\nInstalled %s. Configuration written to %s"

	// Flag descriptions
	MsgFlagConfig   = "TOML config file overriding the built-in defaults"
	MsgFlagTemplate = "Configuration template file (default: embedded template)"
)
