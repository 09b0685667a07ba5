package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/detprep/pkg/train"
	"github.com/cyclopcam/logs"
)

func main() {
	defaults := train.DefaultLaunchOptions()

	args, overrides := train.SplitOverrides(os.Args)

	parser := argparse.NewParser("trainnet", "Train an object detector on the converted datasets, with detectron2. "+
		"Config overrides go after '--', as KEY VALUE pairs, eg -- SOLVER.BASE_LR 0.01")
	configFile := parser.String("", "config-file", &argparse.Options{Help: "Path to the detectron2 config file", Required: true})
	resume := parser.Flag("", "resume", &argparse.Options{Help: "Resume from the last checkpoint in the output directory", Default: false})
	evalOnly := parser.Flag("", "eval-only", &argparse.Options{Help: "Evaluate only", Default: false})
	numGPUs := parser.Int("", "num-gpus", &argparse.Options{Help: "Number of GPUs per machine", Default: defaults.NumGPUs})
	numMachines := parser.Int("", "num-machines", &argparse.Options{Help: "Total number of machines", Default: defaults.NumMachines})
	machineRank := parser.Int("", "machine-rank", &argparse.Options{Help: "Rank of this machine (unique per machine)", Default: 0})
	distURL := parser.String("", "dist-url", &argparse.Options{Help: "Initialization URL for distributed training", Default: defaults.DistURL})
	registryFile := parser.String("", "registry", &argparse.Options{Help: "Dataset registry JSON file (default is the built-in registry, rooted at --datasets)", Default: ""})
	datasetsRoot := parser.String("", "datasets", &argparse.Options{Help: "Root of the built-in dataset registry", Default: "datasets"})
	python := parser.String("", "python", &argparse.Options{Help: "Python interpreter", Default: defaults.Python})
	script := parser.String("", "script", &argparse.Options{Help: "Training entry point. The default registers the datasets of the registry before training", Default: defaults.Script})
	dryRun := parser.Flag("n", "dry-run", &argparse.Options{Help: "Print the command instead of running it", Default: false})
	err := parser.Parse(args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		panic(err)
	}

	launch := train.LaunchOptions{
		Python:      *python,
		Script:      *script,
		ConfigFile:  *configFile,
		Resume:      *resume,
		EvalOnly:    *evalOnly,
		NumGPUs:     *numGPUs,
		NumMachines: *numMachines,
		MachineRank: *machineRank,
		DistURL:     *distURL,
		Opts:        overrides,
	}
	if err := launch.Validate(); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, launch, *registryFile, *datasetsRoot, *dryRun); err != nil {
		logger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger logs.Log, launch train.LaunchOptions, registryFile, datasetsRoot string, dryRun bool) error {
	var registry *train.Registry
	registryPath := registryFile
	if registryFile != "" {
		r, err := train.LoadRegistry(registryFile)
		if err != nil {
			return err
		}
		registry = r
	} else {
		registry = train.DefaultRegistry(filepath.ToSlash(datasetsRoot))
		registryPath = filepath.Join(datasetsRoot, "detprep_registry.json")
	}
	if abs, err := filepath.Abs(registryPath); err == nil {
		registryPath = abs
	}

	missing := registry.Check(logger)
	if len(missing) != 0 {
		logger.Warnf("%v of %v registered datasets are incomplete", len(missing), len(registry.Datasets))
	}

	trainer := train.NewTrainer(logger, registryPath)
	if dryRun {
		cmd, err := trainer.Command(launch)
		if err != nil {
			return err
		}
		fmt.Println(train.Describe(cmd))
		return nil
	}

	if registryFile == "" {
		if err := registry.Save(registryPath); err != nil {
			return fmt.Errorf("Failed to write dataset registry: %w", err)
		}
		logger.Infof("Wrote dataset registry to %v", registryPath)
	}
	return trainer.Launch(ctx, launch)
}
