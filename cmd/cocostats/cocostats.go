package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/logs"
	"github.com/dustin/go-humanize"
)

func main() {
	parser := argparse.NewParser("cocostats", "Validate a COCO-style annotation file and print per-category statistics")
	input := parser.String("i", "input", &argparse.Options{Help: "Annotation file (a local path, or gs://bucket/object)", Required: true})
	bboxArea := parser.Flag("", "bbox-area", &argparse.Options{Help: "Require area == width * height (not true for upstream COCO files, whose area comes from segmentation)", Default: false})
	maxProblems := parser.Int("", "max-problems", &argparse.Options{Help: "Stop validating after this many problems (0 = no limit)", Default: 20})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		panic(err)
	}

	raw, err := storage.ReadLocation(logger, *input)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	ds, err := coco.Decode(bytes.NewReader(raw))
	if err != nil {
		logger.Errorf("Failed to decode %v: %v", *input, err)
		os.Exit(1)
	}
	doc := &coco.Document{
		Info:        ds.Info,
		Type:        coco.DocumentType,
		Licenses:    ds.Licenses,
		Categories:  ds.Categories,
		Images:      ds.Images,
		Annotations: ds.Annotations,
	}
	logger.Infof("%v: %v categories, %v images, %v annotations", *input,
		len(doc.Categories), humanize.Comma(int64(len(doc.Images))), humanize.Comma(int64(len(doc.Annotations))))

	printStats(coco.ComputeStats(doc))

	if err := coco.Validate(doc, coco.ValidateOptions{CheckArea: *bboxArea, MaxProblems: *maxProblems}); err != nil {
		logger.Errorf("Validation failed:\n%v", err)
		os.Exit(1)
	}
	logger.Infof("Validation passed")
}

func printStats(stats []coco.CategoryStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "id\tname\tinstances\timages\tmean area\tstddev\tmedian\taspect\tmin height\t")
	for _, s := range stats {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%.0f\t%.0f\t%.0f\t%.2f\t%.0f\t\n",
			s.CategoryID, s.Name, humanize.Comma(int64(s.Instances)), humanize.Comma(int64(s.Images)),
			s.MeanArea, s.StdDevArea, s.MedianArea, s.MeanAspect, s.MinBoxHeight)
	}
	w.Flush()
}
