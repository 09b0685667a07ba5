package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/detprep/pkg/convert"
	"github.com/cyclopcam/detprep/pkg/frameanno"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/detprep/pkg/videox"
	"github.com/cyclopcam/detprep/pkg/vocab"
	"github.com/cyclopcam/logs"
)

func main() {
	parser := argparse.NewParser("extractframes", "Extract frames from videos, or annotate extracted frames")
	dataset := parser.Selector("", "dataset", vocab.Names, &argparse.Options{Help: "Dataset", Default: vocab.VidVRD})
	input := parser.String("i", "input", &argparse.Options{Help: "Root directory of the dataset", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Frames directory (default is <input>/frames@<f>). With --anno-only, where to write the annotation file (default is <input>)", Default: ""})
	stride := parser.Int("", "f", &argparse.Options{Help: "Sample one frame out of every f", Default: 1})
	annoOnly := parser.Flag("", "anno-only", &argparse.Options{Help: "Annotate frames that were already extracted, instead of extracting", Default: false})
	split := parser.Selector("", "split", []string{frameanno.SplitTrain, frameanno.SplitTest}, &argparse.Options{Help: "Split to annotate (with --anno-only)", Default: frameanno.SplitTrain})
	framesDir := parser.String("", "frames", &argparse.Options{Help: "Frames directory to annotate (default is <input>/frames@<f>)", Default: ""})
	backend := parser.Selector("", "backend", videox.Backends, &argparse.Options{Help: "Video decoder", Default: videox.BackendFFmpeg})
	quality := parser.Int("", "quality", &argparse.Options{Help: "JPEG quality", Default: videox.DefaultJPEGQuality})
	unknown := parser.String("", "unknown", &argparse.Options{Help: "What to do with categories outside the vocabulary: drop, warn, error", Default: "drop"})
	vocabFile := parser.String("", "vocab", &argparse.Options{Help: "Vocabulary JSON file, replacing the built-in tables", Default: ""})
	quiet := parser.Flag("q", "quiet", &argparse.Options{Help: "Don't show progress bars", Default: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}
	if *stride < 1 {
		fmt.Print(parser.Usage(fmt.Errorf("--f must be at least 1")))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := os.Stderr
	if *quiet {
		progress = nil
	}

	defaultFrames := filepath.Join(*input, videox.FramesDirName(*stride))
	if *annoOnly {
		if *framesDir == "" {
			*framesDir = defaultFrames
		}
		if *output == "" {
			*output = *input
		}
		err = annotate(ctx, logger, *dataset, *input, *output, *framesDir, *split, *stride, *unknown, *vocabFile, progress)
	} else {
		if *output == "" {
			*output = defaultFrames
		}
		err = extract(ctx, logger, *input, *output, *stride, *backend, *quality, progress)
	}
	if err != nil {
		logger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func extract(ctx context.Context, logger logs.Log, input, output string, stride int, backend string, quality int, progress *os.File) error {
	open, err := videox.NewOpener(backend, quality)
	if err != nil {
		return err
	}
	frames, err := storage.OpenLocation(logger, output)
	if err != nil {
		return err
	}
	e := &videox.Extractor{
		Log:    logger,
		Open:   open,
		Frames: frames,
		Stride: stride,
	}
	if progress != nil {
		e.Progress = progress
	}
	_, err = e.ExtractAll(ctx, filepath.Join(input, videox.VideosDir))
	return err
}

func annotate(ctx context.Context, logger logs.Log, dataset, input, output, framesDir, split string, stride int, unknown, vocabFile string, progress *os.File) error {
	var v *vocab.Vocab
	var err error
	if vocabFile != "" {
		v, err = vocab.Load(vocabFile)
	} else {
		v, err = vocab.Get(dataset)
	}
	if err != nil {
		return err
	}
	policy, err := convert.ParseCategoryPolicy(unknown)
	if err != nil {
		return err
	}
	frames, err := storage.OpenLocation(logger, framesDir)
	if err != nil {
		return err
	}
	store, err := storage.OpenLocation(logger, output)
	if err != nil {
		return err
	}
	a := &frameanno.Annotator{
		Log:    logger,
		Vocab:  v,
		Policy: policy,
		Stride: stride,
		Frames: frames,
	}
	if progress != nil {
		a.Progress = progress
	}
	report := convert.NewReport("extractframes", dataset, v.Name)
	out, err := a.AnnotateSplit(ctx, dataset, input, split, report)
	if err != nil {
		return err
	}
	if err := convert.WriteOutputs(logger, store, []convert.Output{out}, report); err != nil {
		return err
	}
	if err := convert.SaveReport(logger, store, report); err != nil {
		return err
	}
	report.Log(logger)
	return nil
}
