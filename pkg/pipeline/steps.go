package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/RaubJo/nixzfs/pkg/device"
	"github.com/RaubJo/nixzfs/pkg/errors"
	"github.com/RaubJo/nixzfs/pkg/nixcfg"
)

func preconditionSteps() []step {
	return []step{
		{
			name:  "validate-device",
			label: "Validate target device",
			run: func(_ context.Context, p *pipeline) error {
				path, err := p.opts.ValidateDevice(p.opts.Device)
				if err != nil {
					return err
				}
				p.state.DevicePath = path
				p.state.BootPart = device.PartitionPath(p.opts.Device, 1)
				p.state.DataPart = device.PartitionPath(p.opts.Device, 2)
				return nil
			},
		},
		{
			name:  "check-root",
			label: "Check privileges",
			local: true,
			run: func(_ context.Context, p *pipeline) error {
				if uid := p.opts.Geteuid(); uid != 0 {
					return errors.Newf(errors.ErrNotRoot, "must run as root, not uid %d", uid)
				}
				return nil
			},
		},
	}
}

func partitionSteps() []step {
	return []step{
		{
			name:  "partition-label",
			label: "Write GPT partition table",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "parted", "-s", p.state.DevicePath, "mklabel", "gpt")
			},
		},
		{
			name:  "partition-boot",
			label: "Create boot partition",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "parted", "-s", p.state.DevicePath,
					"mkpart", "primary", "fat32", p.cfg.Boot.Start, p.cfg.Boot.End)
			},
		},
		{
			name:  "partition-flag-boot",
			label: "Mark boot partition as ESP",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "parted", "-s", p.state.DevicePath, "set", "1", "esp", "on")
			},
		},
		{
			name:  "partition-data",
			label: "Create data partition",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "parted", "-s", p.state.DevicePath,
					"mkpart", "primary", p.cfg.Boot.End, "100%")
			},
		},
	}
}

func provisionSteps() []step {
	return []step{
		{
			name:  "format-boot",
			label: "Format boot partition",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mkfs.vfat", "-F", "32", "-n", p.cfg.Boot.Label, p.state.BootPart)
			},
		},
		{
			name:  "pool-create",
			label: "Create storage pool",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "zpool", "create", "-f",
					"-o", "ashift="+strconv.Itoa(p.cfg.Pool.Ashift),
					"-O", "compression="+p.cfg.Pool.Compression,
					"-O", "mountpoint=none",
					p.cfg.Pool.Name, p.state.DataPart)
			},
		},
		{
			name:  "dataset-root",
			label: "Create ephemeral root dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "zfs", "create",
					"-o", "mountpoint=legacy",
					"-o", "xattr=sa",
					"-o", "acltype=posixacl",
					p.cfg.RootDataset())
			},
		},
		{
			// The blank snapshot must exist before anything writes to the
			// root dataset; it is the rollback target on every boot.
			name:  "snapshot-blank",
			label: "Snapshot blank root",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "zfs", "snapshot", p.cfg.BlankSnapshot())
			},
		},
		{
			name:  "dataset-nix",
			label: "Create nix store dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "zfs", "create",
					"-o", "mountpoint=legacy",
					"-o", "atime=off",
					p.cfg.NixDataset())
			},
		},
		{
			name:  "dataset-home",
			label: "Create encrypted home dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.execInteractive(ctx, "zfs", persistentDatasetArgs(p, p.cfg.HomeDataset())...)
			},
		},
		{
			name:  "dataset-state",
			label: "Create encrypted state dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.execInteractive(ctx, "zfs", persistentDatasetArgs(p, p.cfg.StateDataset())...)
			},
		},
	}
}

// persistentDatasetArgs builds the zfs create argv shared by the home and
// state datasets. Passphrase entry is delegated to zfs itself, which is
// why these run interactively.
func persistentDatasetArgs(p *pipeline, dataset string) []string {
	return []string{
		"create",
		"-o", "mountpoint=legacy",
		"-o", "com.sun:auto-snapshot=" + strconv.FormatBool(p.cfg.Datasets.AutoSnapshot),
		"-o", "encryption=" + p.cfg.Datasets.Encryption,
		"-o", "keyformat=" + p.cfg.Datasets.Keyformat,
		dataset,
	}
}

func mountSteps() []step {
	return []step{
		{
			name:  "mount-root",
			label: "Mount root dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mount", "-t", "zfs", p.cfg.RootDataset(), p.cfg.Mount.Root)
			},
		},
		{
			// Through the runner rather than os.MkdirAll so the plan and
			// the recorded command stream show every mutation.
			name:  "make-mountpoints",
			label: "Create mount points",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mkdir", "-p",
					p.cfg.Mount.Root+"/boot",
					p.cfg.Mount.Root+"/nix",
					p.cfg.Mount.Root+"/home",
					p.cfg.Mount.Root+"/state")
			},
		},
		{
			name:  "mount-boot",
			label: "Mount boot partition",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mount", p.state.BootPart, p.cfg.Mount.Root+"/boot")
			},
		},
		{
			name:  "mount-nix",
			label: "Mount nix store dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mount", "-t", "zfs", p.cfg.NixDataset(), p.cfg.Mount.Root+"/nix")
			},
		},
		{
			name:  "mount-home",
			label: "Mount home dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mount", "-t", "zfs", p.cfg.HomeDataset(), p.cfg.Mount.Root+"/home")
			},
		},
		{
			name:  "mount-state",
			label: "Mount state dataset",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "mount", "-t", "zfs", p.cfg.StateDataset(), p.cfg.Mount.Root+"/state")
			},
		},
	}
}

func configSteps() []step {
	return []step{
		{
			name:  "generate-config",
			label: "Generate hardware configuration",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "nixos-generate-config", "--root", p.cfg.Mount.Root)
			},
		},
		{
			name:  "relocate-artifacts",
			label: "Relocate configuration into persisted state",
			run: func(ctx context.Context, p *pipeline) error {
				if err := p.exec(ctx, "mkdir", "-p", p.cfg.StateNixosDir()); err != nil {
					return err
				}
				if err := p.exec(ctx, "mv",
					p.livePath("hardware-configuration.nix"),
					p.statePath("hardware-configuration.nix")); err != nil {
					return err
				}
				// The generated default stays around as a reference, never used
				if err := p.exec(ctx, "mv",
					p.livePath("configuration.nix"),
					p.statePath("configuration.nix.original")); err != nil {
					return err
				}
				// Provenance: the binary that produced this system
				return p.exec(ctx, "cp", "/proc/self/exe", p.statePath("nixzfs.original"))
			},
		},
		{
			name:  "prompt-user",
			label: "Ask for user name",
			local: true,
			run: func(_ context.Context, p *pipeline) error {
				answer, err := p.opts.Prompter.Ask("Enter user name")
				if err != nil {
					return err
				}
				p.state.User = answer
				return nil
			},
		},
		{
			name:  "prompt-host",
			label: "Ask for host name",
			local: true,
			run: func(_ context.Context, p *pipeline) error {
				answer, err := p.opts.Prompter.Ask("Enter host name")
				if err != nil {
					return err
				}
				p.state.Host = answer
				return nil
			},
		},
		{
			name:  "render-config",
			label: "Render system configuration",
			local: true,
			run: func(_ context.Context, p *pipeline) error {
				hostID, err := nixcfg.HostID(p.cfg.Paths.MachineID)
				if err != nil {
					return err
				}
				p.state.HostID = hostID

				tmpl := p.opts.Template
				if tmpl == "" {
					tmpl = nixcfg.DefaultTemplate()
				}

				doc, err := nixcfg.Render(tmpl, nixcfg.Context{
					User:           p.state.User,
					Host:           p.state.Host,
					HostID:         hostID,
					Snapshot:       p.cfg.BlankSnapshot(),
					HardwareImport: nixcfg.DefaultHardwareImport,
				})
				if err != nil {
					return err
				}

				path := p.statePath("configuration.nix")
				if err := nixcfg.WriteFile(path, []byte(doc)); err != nil {
					return err
				}
				p.configPath = path
				return nil
			},
		},
	}
}

func installSteps() []step {
	return []step{
		{
			// The live /etc/nixos path points into persisted state so the
			// installed system and the state dataset never diverge.
			name:  "symlink-config",
			label: "Link live configuration to persisted state",
			run: func(ctx context.Context, p *pipeline) error {
				return p.exec(ctx, "ln", "-s",
					p.statePath("configuration.nix"),
					p.livePath("configuration.nix"))
			},
		},
		{
			name:  "install",
			label: "Run installer",
			run: func(ctx context.Context, p *pipeline) error {
				return p.execInteractive(ctx, "nixos-install", "--no-root-passwd")
			},
		},
		{
			name:  "write-receipt",
			label: "Write install receipt",
			local: true,
			run: func(_ context.Context, p *pipeline) error {
				receipt := nixcfg.Receipt{
					Device: p.state.DevicePath,
					Pool:   p.cfg.Pool.Name,
					Datasets: []string{
						p.cfg.RootDataset(),
						p.cfg.NixDataset(),
						p.cfg.HomeDataset(),
						p.cfg.StateDataset(),
					},
					Snapshot:   p.cfg.BlankSnapshot(),
					Host:       p.state.Host,
					User:       p.state.User,
					StartedAt:  p.startedAt,
					FinishedAt: time.Now().UTC(),
				}

				path := p.statePath("receipt.toml")
				if err := receipt.Write(path); err != nil {
					return err
				}
				p.receiptPath = path
				return nil
			},
		},
	}
}
