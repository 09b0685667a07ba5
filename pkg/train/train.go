package train

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cyclopcam/detprep/pkg/shell"
	"github.com/cyclopcam/logs"
)

// RegistryEnv is the environment variable through which the training script finds the registry file
const RegistryEnv = "DETPREP_DATASETS"

// DefaultScript is the bundled entry point, which registers the datasets of the registry
// named by RegistryEnv before training
const DefaultScript = "tools/train_net.py"

// OverrideSeparator ends the launcher's own flags. Everything after it is passed to the
// training script as config overrides.
const OverrideSeparator = "--"

// SplitOverrides splits a command line into the launcher's own arguments, and the config
// overrides that follow OverrideSeparator. Override values are passed through verbatim,
// so they may contain spaces.
func SplitOverrides(args []string) (own, overrides []string) {
	for i, a := range args {
		if a == OverrideSeparator {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

// LaunchOptions are the standard arguments of a detectron2 training entry point
type LaunchOptions struct {
	Python      string // Interpreter
	Script      string // Entry point, eg tools/train_net.py
	ConfigFile  string
	Resume      bool
	EvalOnly    bool
	NumGPUs     int
	NumMachines int
	MachineRank int
	DistURL     string
	Opts        []string // Config overrides, as KEY VALUE pairs
}

func DefaultLaunchOptions() LaunchOptions {
	return LaunchOptions{
		Python:      "python3",
		Script:      DefaultScript,
		NumGPUs:     1,
		NumMachines: 1,
		DistURL:     "auto",
	}
}

func (o *LaunchOptions) Validate() error {
	if o.ConfigFile == "" {
		return fmt.Errorf("A config file is required")
	}
	if o.NumGPUs < 0 {
		return fmt.Errorf("Invalid number of GPUs %v", o.NumGPUs)
	}
	if o.NumMachines < 1 {
		return fmt.Errorf("Invalid number of machines %v", o.NumMachines)
	}
	if o.MachineRank < 0 || o.MachineRank >= o.NumMachines {
		return fmt.Errorf("Machine rank %v is out of range for %v machines", o.MachineRank, o.NumMachines)
	}
	if o.NumMachines > 1 && o.DistURL == "auto" {
		return fmt.Errorf("dist-url=auto is not supported for multi-machine jobs")
	}
	if len(o.Opts)%2 != 0 {
		return fmt.Errorf("Config overrides must be KEY VALUE pairs, got %v values", len(o.Opts))
	}
	return nil
}

// Args returns the command line of the entry point, excluding the interpreter
func (o *LaunchOptions) Args() []string {
	args := []string{o.Script, "--config-file", o.ConfigFile}
	if o.Resume {
		args = append(args, "--resume")
	}
	if o.EvalOnly {
		args = append(args, "--eval-only")
	}
	args = append(args,
		"--num-gpus", strconv.Itoa(o.NumGPUs),
		"--num-machines", strconv.Itoa(o.NumMachines),
		"--machine-rank", strconv.Itoa(o.MachineRank),
		"--dist-url", o.DistURL,
	)
	return append(args, o.Opts...)
}

// Trainer launches the external training framework against a dataset registry.
// Training, evaluation, and distributed coordination all happen inside the framework.
type Trainer struct {
	Log          logs.Log
	RegistryPath string
	Stdout       io.Writer // nil = os.Stdout
	Stderr       io.Writer // nil = os.Stderr
}

func NewTrainer(log logs.Log, registryPath string) *Trainer {
	return &Trainer{
		Log:          log,
		RegistryPath: registryPath,
	}
}

// Command returns the child process that Launch would run
func (t *Trainer) Command(opt LaunchOptions) (shell.Command, error) {
	if err := opt.Validate(); err != nil {
		return shell.Command{}, err
	}
	return shell.Command{
		Name:   opt.Python,
		Args:   opt.Args(),
		Env:    []string{RegistryEnv + "=" + t.RegistryPath},
		Stdout: t.Stdout,
		Stderr: t.Stderr,
	}, nil
}

// Describe formats a command for logs and dry runs
func Describe(cmd shell.Command) string {
	parts := append([]string{}, cmd.Env...)
	parts = append(parts, cmd.Name)
	for _, a := range cmd.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Launch runs the training entry point to completion. Cancelling ctx terminates it.
func (t *Trainer) Launch(ctx context.Context, opt LaunchOptions) error {
	cmd, err := t.Command(opt)
	if err != nil {
		return err
	}
	t.Log.Infof("Launching %v", Describe(cmd))
	if err := shell.RunStreaming(ctx, cmd); err != nil {
		return err
	}
	t.Log.Infof("Training finished")
	return nil
}
