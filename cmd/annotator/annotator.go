package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/detprep/pkg/config"
	"github.com/cyclopcam/detprep/pkg/convert"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/detprep/pkg/vocab"
	"github.com/cyclopcam/logs"
)

// Sources
const (
	srcCOCO   = "coco"
	srcILSVRC = "ilsvrc"
)

func main() {
	parser := argparse.NewParser("annotator", "Convert dataset annotations into a video object vocabulary")
	src := parser.Selector("", "src", []string{srcCOCO, srcILSVRC}, &argparse.Options{Help: "Source dataset", Default: srcCOCO})
	dest := parser.Selector("", "dest", vocab.Names, &argparse.Options{Help: "Destination vocabulary", Default: vocab.VidOR})
	input := parser.String("i", "input", &argparse.Options{Help: "Root directory of the source dataset", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Where to write converted annotations: a directory, or gs://bucket/prefix (default is --input)", Default: ""})
	configFile := parser.String("c", "config", &argparse.Options{Help: "Optional JSON config file", Default: ""})
	exclude := parser.String("", "exclude", &argparse.Options{Help: "Comma-separated list of annotation files to skip (eg n02419796_3142.xml)", Default: ""})
	unknown := parser.String("", "unknown", &argparse.Options{Help: "What to do with source classes outside the vocabulary: drop, warn, error", Default: ""})
	vocabFile := parser.String("", "vocab", &argparse.Options{Help: "Vocabulary JSON file, replacing the built-in tables", Default: ""})
	quiet := parser.Flag("q", "quiet", &argparse.Options{Help: "Don't show progress bars", Default: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		panic(err)
	}

	cfg := &config.Config{}
	if *configFile != "" {
		if cfg, err = config.Load(*configFile); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	}
	// Flags override the config file
	if *exclude != "" {
		cfg.Exclude = strings.Split(*exclude, ",")
	}
	if *unknown != "" {
		cfg.UnknownCategory = *unknown
	}
	if *vocabFile != "" {
		cfg.Vocab = *vocabFile
	}
	if *output != "" {
		if cfg.Output, err = config.ParseLocation(*output); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	} else if cfg.Output.IsEmpty() {
		cfg.Output = config.StorageConfig{Filesystem: &config.StorageConfigFS{Root: *input}}
	}

	if err := run(logger, cfg, *src, *dest, *input, !*quiet); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(logger logs.Log, cfg *config.Config, src, dest, input string, showProgress bool) error {
	logger.Infof("Converting %v annotations in %v to %v", src, input, dest)

	var v *vocab.Vocab
	var err error
	if cfg.Vocab != "" {
		v, err = vocab.Load(cfg.Vocab)
	} else {
		v, err = vocab.Get(dest)
	}
	if err != nil {
		return err
	}
	policy, err := convert.ParseCategoryPolicy(cfg.UnknownCategory)
	if err != nil {
		return err
	}
	store, err := storage.Open(logger, cfg.Output)
	if err != nil {
		return fmt.Errorf("Failed to open output storage: %w", err)
	}

	opt := convert.Options{
		Log:     logger,
		Vocab:   v,
		Policy:  policy,
		Exclude: cfg.Exclude,
	}
	if showProgress {
		opt.Progress = os.Stderr
	}

	report := convert.NewReport("annotator", src, v.Name)
	var outputs []convert.Output
	switch src {
	case srcCOCO:
		outputs, err = convert.ConvertCOCO(input, opt, report)
	case srcILSVRC:
		outputs, err = convert.ConvertILSVRC(input, opt, report)
	default:
		err = fmt.Errorf("Unknown source '%v'", src)
	}
	if err != nil {
		return err
	}
	if err := convert.WriteOutputs(logger, store, outputs, report); err != nil {
		return err
	}
	if err := convert.SaveReport(logger, store, report); err != nil {
		return err
	}
	report.Log(logger)
	return nil
}
