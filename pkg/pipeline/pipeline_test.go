package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaubJo/nixzfs/pkg/config"
	"github.com/RaubJo/nixzfs/pkg/device"
	"github.com/RaubJo/nixzfs/pkg/errors"
	"github.com/RaubJo/nixzfs/pkg/nixcfg"
	"github.com/RaubJo/nixzfs/pkg/prompt"
	"github.com/RaubJo/nixzfs/pkg/runner"
	"github.com/RaubJo/nixzfs/pkg/style"
)

// allStepNames is the full journal order of a successful run
var allStepNames = []string{
	"validate-device",
	"check-root",
	"partition-label",
	"partition-boot",
	"partition-flag-boot",
	"partition-data",
	"format-boot",
	"pool-create",
	"dataset-root",
	"snapshot-blank",
	"dataset-nix",
	"dataset-home",
	"dataset-state",
	"mount-root",
	"make-mountpoints",
	"mount-boot",
	"mount-nix",
	"mount-home",
	"mount-state",
	"generate-config",
	"relocate-artifacts",
	"prompt-user",
	"prompt-host",
	"render-config",
	"symlink-config",
	"install",
	"write-receipt",
}

// testOptions builds install options against fakes: a recording runner,
// scripted prompt answers, a rooted temp mount tree, and a synthetic
// machine id. The persisted configuration directory is pre-created
// because the mkdir that would make it only runs on a real system.
func testOptions(t *testing.T, dev string) (Options, *runner.Recorder, *prompt.Scripted) {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Mount.Root = t.TempDir()
	require.NoError(t, os.MkdirAll(cfg.StateNixosDir(), 0755))

	machineID := filepath.Join(t.TempDir(), "machine-id")
	require.NoError(t, os.WriteFile(machineID, []byte("0123456789abcdef0123456789abcdef\n"), 0644))
	cfg.Paths.MachineID = machineID

	rec := &runner.Recorder{}
	answers := &prompt.Scripted{Answers: []string{"alice", "box1"}}

	opts := Options{
		Device:   dev,
		Config:   cfg,
		Runner:   rec,
		Prompter: answers,
		Geteuid:  func() int { return 0 },
		ValidateDevice: func(name string) (string, error) {
			return device.Path(name), nil
		},
	}
	return opts, rec, answers
}

// wantSequence is the exact delegate transcript for a successful run
func wantSequence(cfg config.Config, devPath, bootPart, dataPart string) []string {
	mr := cfg.Mount.Root
	stateDir := cfg.StateNixosDir()
	liveDir := cfg.LiveNixosDir()

	return []string{
		"parted -s " + devPath + " mklabel gpt",
		"parted -s " + devPath + " mkpart primary fat32 1MiB 1GiB",
		"parted -s " + devPath + " set 1 esp on",
		"parted -s " + devPath + " mkpart primary 1GiB 100%",
		"mkfs.vfat -F 32 -n boot " + bootPart,
		"zpool create -f -o ashift=12 -O compression=on -O mountpoint=none rpool " + dataPart,
		"zfs create -o mountpoint=legacy -o xattr=sa -o acltype=posixacl rpool/ephemeral/root",
		"zfs snapshot rpool/ephemeral/root@blank",
		"zfs create -o mountpoint=legacy -o atime=off rpool/ephemeral/nix",
		"zfs create -o mountpoint=legacy -o com.sun:auto-snapshot=true -o encryption=aes-256-gcm -o keyformat=passphrase rpool/persistent/home",
		"zfs create -o mountpoint=legacy -o com.sun:auto-snapshot=true -o encryption=aes-256-gcm -o keyformat=passphrase rpool/persistent/state",
		"mount -t zfs rpool/ephemeral/root " + mr,
		"mkdir -p " + mr + "/boot " + mr + "/nix " + mr + "/home " + mr + "/state",
		"mount " + bootPart + " " + mr + "/boot",
		"mount -t zfs rpool/ephemeral/nix " + mr + "/nix",
		"mount -t zfs rpool/persistent/home " + mr + "/home",
		"mount -t zfs rpool/persistent/state " + mr + "/state",
		"nixos-generate-config --root " + mr,
		"mkdir -p " + stateDir,
		"mv " + liveDir + "/hardware-configuration.nix " + stateDir + "/hardware-configuration.nix",
		"mv " + liveDir + "/configuration.nix " + stateDir + "/configuration.nix.original",
		"cp /proc/self/exe " + stateDir + "/nixzfs.original",
		"ln -s " + stateDir + "/configuration.nix " + liveDir + "/configuration.nix",
		"nixos-install --no-root-passwd",
	}
}

func stepNames(steps []StepResult) []string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	return names
}

func TestInstallRunsFullSequence(t *testing.T) {
	opts, rec, answers := testOptions(t, "sda")

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	want := wantSequence(opts.Config, "/dev/sda", "/dev/sda1", "/dev/sda2")
	assert.Equal(t, want, rec.Lines())

	// Journal covers every step, in order, all successful
	assert.Equal(t, allStepNames, stepNames(result.Steps))
	for _, s := range result.Steps {
		assert.Equal(t, style.StatusOK, s.Status, "step %s", s.Name)
		assert.NoError(t, s.Err, "step %s", s.Name)
	}

	// Prompts happen between artifact relocation and rendering
	assert.Equal(t, []string{"Enter user name", "Enter host name"}, answers.Asked)

	assert.Equal(t, "/dev/sda", result.State.DevicePath)
	assert.Equal(t, "/dev/sda1", result.State.BootPart)
	assert.Equal(t, "/dev/sda2", result.State.DataPart)
	assert.Equal(t, "alice", result.State.User)
	assert.Equal(t, "box1", result.State.Host)
	assert.Equal(t, "01234567", result.State.HostID)
}

func TestInstallInteractiveDelegates(t *testing.T) {
	opts, rec, _ := testOptions(t, "sda")

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	// Only the passphrase-prompting dataset creations and the installer
	// itself get the operator's terminal
	var interactive []string
	for _, cmd := range rec.Commands {
		if cmd.Interactive {
			interactive = append(interactive, cmd.String())
		}
	}
	require.Len(t, interactive, 3)
	assert.Contains(t, interactive[0], "rpool/persistent/home")
	assert.Contains(t, interactive[1], "rpool/persistent/state")
	assert.Equal(t, "nixos-install --no-root-passwd", interactive[2])
}

func TestInstallRendersConfiguration(t *testing.T) {
	opts, _, _ := testOptions(t, "sda")

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(opts.Config.StateNixosDir(), "configuration.nix"), result.ConfigPath)
	data, err := os.ReadFile(result.ConfigPath)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, "users.users.alice = {")
	assert.Contains(t, doc, "uid = 1000;")
	assert.Contains(t, doc, `home = "/home/alice";`)
	assert.Contains(t, doc, `networking.hostName = "box1";`)
	assert.Contains(t, doc, `networking.hostId = "01234567";`)
	assert.Contains(t, doc, "zfs rollback -r rpool/ephemeral/root@blank")
}

func TestInstallCustomTemplate(t *testing.T) {
	opts, _, _ := testOptions(t, "sda")
	opts.Template = "host={{ .Host }} snapshot={{ .Snapshot }}"

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	data, err := os.ReadFile(result.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "host=box1 snapshot=rpool/ephemeral/root@blank", string(data))
}

func TestInstallWritesReceipt(t *testing.T) {
	opts, _, _ := testOptions(t, "sda")

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(opts.Config.StateNixosDir(), "receipt.toml"), result.ReceiptPath)
	data, err := os.ReadFile(result.ReceiptPath)
	require.NoError(t, err)

	var receipt nixcfg.Receipt
	require.NoError(t, toml.Unmarshal(data, &receipt))

	assert.Equal(t, "/dev/sda", receipt.Device)
	assert.Equal(t, "rpool", receipt.Pool)
	assert.Equal(t, []string{
		"rpool/ephemeral/root",
		"rpool/ephemeral/nix",
		"rpool/persistent/home",
		"rpool/persistent/state",
	}, receipt.Datasets)
	assert.Equal(t, "rpool/ephemeral/root@blank", receipt.Snapshot)
	assert.Equal(t, "box1", receipt.Host)
	assert.Equal(t, "alice", receipt.User)
	assert.False(t, receipt.FinishedAt.Before(receipt.StartedAt))
}

func TestPartitionNamesTrailingDigitDevice(t *testing.T) {
	opts, rec, _ := testOptions(t, "nvme0n1")

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	lines := rec.Lines()
	assert.Equal(t, "mkfs.vfat -F 32 -n boot /dev/nvme0n1p1", lines[4])
	assert.Contains(t, lines[5], "rpool /dev/nvme0n1p2")
	assert.Equal(t, "mount /dev/nvme0n1p1 "+opts.Config.Mount.Root+"/boot", lines[13])
}

func TestMissingDeviceRunsNothing(t *testing.T) {
	opts, rec, _ := testOptions(t, "")
	opts.ValidateDevice = nil // use the real validator

	result, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingDevice))

	assert.Empty(t, rec.Commands)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "validate-device", result.Steps[0].Name)
	assert.Equal(t, style.StatusFail, result.Steps[0].Status)
}

func TestNotABlockDeviceRunsNothing(t *testing.T) {
	// A regular file fails validation the same way a missing node does
	plain := filepath.Join(t.TempDir(), "not-a-disk")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0644))

	opts, rec, _ := testOptions(t, plain)
	opts.ValidateDevice = nil

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotBlockDevice))
	assert.Empty(t, rec.Commands)
}

func TestNotRootRunsNothing(t *testing.T) {
	opts, rec, _ := testOptions(t, "sda")
	opts.Geteuid = func() int { return 1000 }

	result, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotRoot))

	assert.Empty(t, rec.Commands)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, style.StatusOK, result.Steps[0].Status)
	assert.Equal(t, "check-root", result.Steps[1].Name)
	assert.Equal(t, style.StatusFail, result.Steps[1].Status)
}

func TestDelegateFailureStopsPipeline(t *testing.T) {
	opts, rec, _ := testOptions(t, "sda")
	rec.FailOn = func(cmd runner.Command) error {
		if cmd.Name == "zpool" {
			return errors.New(errors.ErrDelegateFailed, "zpool create failed").
				WithDetail("stderr", "cannot create 'rpool': pool already exists")
		}
		return nil
	}

	result, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDelegateFailed))

	// Four partition commands, the boot format, then the failing create;
	// nothing after it was attempted
	lines := rec.Lines()
	require.Len(t, lines, 6)
	assert.Contains(t, lines[5], "zpool create")

	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "pool-create", last.Name)
	assert.Equal(t, style.StatusFail, last.Status)
	assert.Error(t, last.Err)
}

func TestPromptFailureStopsBeforeInstall(t *testing.T) {
	opts, rec, answers := testOptions(t, "sda")
	answers.Answers = nil // no scripted answers: the first prompt fails

	result, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPromptRead))

	// Everything up to artifact relocation ran; the symlink and the
	// installer never did
	assert.Len(t, rec.Commands, 22)
	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "prompt-user", last.Name)
	assert.Equal(t, style.StatusFail, last.Status)
}

func TestUnreadableMachineIDStopsRender(t *testing.T) {
	opts, _, _ := testOptions(t, "sda")
	opts.Config.Paths.MachineID = filepath.Join(t.TempDir(), "absent")

	result, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMachineID))

	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "render-config", last.Name)

	_, statErr := os.Stat(filepath.Join(opts.Config.StateNixosDir(), "configuration.nix"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDryRunMatchesInstall(t *testing.T) {
	opts, rec, _ := testOptions(t, "sda")

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	// Same configuration, dry mode: identical delegate sequence
	var out bytes.Buffer
	dry := runner.NewDryRunner(&out)
	dryOpts := opts
	dryOpts.Runner = dry
	dryOpts.Prompter = nil
	dryOpts.DryRun = true

	result, err := Run(context.Background(), dryOpts)
	require.NoError(t, err)

	var dryLines []string
	for _, cmd := range dry.Commands {
		dryLines = append(dryLines, cmd.String())
	}
	assert.Equal(t, rec.Lines(), dryLines)

	// The printed plan is the transcript, one command per line
	printed := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, printed, len(dryLines))
	for i, line := range printed {
		assert.Equal(t, "$ "+dryLines[i], line)
	}

	// Local-only steps are journaled as skipped
	skipped := map[string]bool{}
	for _, s := range result.Steps {
		if s.Status == style.StatusSkip {
			skipped[s.Name] = true
		}
	}
	assert.Equal(t, map[string]bool{
		"check-root":    true,
		"prompt-user":   true,
		"prompt-host":   true,
		"render-config": true,
		"write-receipt": true,
	}, skipped)
}

func TestDryRunTouchesNothing(t *testing.T) {
	opts, _, _ := testOptions(t, "sda")
	opts.Runner = runner.NewDryRunner(nil)
	opts.Prompter = nil
	opts.DryRun = true

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Empty(t, result.ConfigPath)
	assert.Empty(t, result.ReceiptPath)
	_, statErr := os.Stat(filepath.Join(opts.Config.StateNixosDir(), "configuration.nix"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDryRunDefaultLayout(t *testing.T) {
	// Against the stock configuration the plan shows the canonical /mnt
	// sequence
	cfg, err := config.Load("")
	require.NoError(t, err)

	var out bytes.Buffer
	opts := Options{
		Device: "sda",
		Config: cfg,
		Runner: runner.NewDryRunner(&out),
		DryRun: true,
		ValidateDevice: func(name string) (string, error) {
			return device.Path(name), nil
		},
	}

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)

	want := wantSequence(cfg, "/dev/sda", "/dev/sda1", "/dev/sda2")
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		lines = append(lines, strings.TrimPrefix(l, "$ "))
	}
	assert.Equal(t, want, lines)
	assert.Contains(t, out.String(), "$ mount -t zfs rpool/ephemeral/root /mnt\n")
}

func TestStatusLinesReportProgress(t *testing.T) {
	opts, rec, _ := testOptions(t, "sda")
	rec.FailOn = func(cmd runner.Command) error {
		if cmd.Name == "zpool" {
			return errors.New(errors.ErrDelegateFailed, "zpool create failed")
		}
		return nil
	}

	var out bytes.Buffer
	opts.Display = style.NewPlainDisplay(&out)

	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	text := out.String()
	assert.Contains(t, text, "  ok  Validate target device\n")
	assert.Contains(t, text, "  ok  Format boot partition\n")
	assert.Contains(t, text, "fail  Create storage pool\n")
	assert.NotContains(t, text, "Create ephemeral root dataset")
}
