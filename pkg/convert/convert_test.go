package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/detprep/pkg/ilsvrc"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/detprep/pkg/vocab"
	"github.com/cyclopcam/logs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func tinyVocab() *vocab.Vocab {
	return &vocab.Vocab{
		Name:       "tiny",
		Categories: []coco.Category{{ID: 1, Name: "dog"}, {ID: 2, Name: "cat"}},
		COCOMap:    map[string]int{"dog": 1, "cat": 2},
		ILSVRCMap:  map[string]int{"n02084071": 1, "n02121808": 2},
	}
}

func testOptions(t *testing.T) Options {
	return Options{
		Log:     logs.NewTestingLog(t),
		Vocab:   tinyVocab(),
		Policy:  PolicyDrop,
		Exclude: []string{"n02084071_3142.xml"},
	}
}

type xmlObject struct {
	name                   string
	xmin, ymin, xmax, ymax int
}

func writeXML(t *testing.T, dir, folder, filename string, objects ...xmlObject) {
	require.NoError(t, os.MkdirAll(dir, 0755))
	s := strings.Builder{}
	fmt.Fprintf(&s, "<annotation><folder>%v</folder><filename>%v</filename><size><width>500</width><height>375</height></size>", folder, filename)
	for _, o := range objects {
		fmt.Fprintf(&s, "<object><name>%v</name><bndbox><xmin>%v</xmin><ymin>%v</ymin><xmax>%v</xmax><ymax>%v</ymax></bndbox></object>", o.name, o.xmin, o.ymin, o.xmax, o.ymax)
	}
	s.WriteString("</annotation>")
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename+".xml"), []byte(s.String()), 0644))
}

func makeILSVRC(t *testing.T) string {
	root := t.TempDir()
	annoRoot := filepath.Join(root, filepath.FromSlash(ilsvrc.TrainAnnotationsDir))
	dogDir := filepath.Join(annoRoot, ilsvrc.Train2013Dir, "n02084071")
	writeXML(t, dogDir, "n02084071", "n02084071_1",
		xmlObject{"n02084071", 10, 20, 50, 80},
		xmlObject{"n00007846", 0, 0, 5, 5},
	)
	writeXML(t, dogDir, "n02084071", "n02084071_3142", xmlObject{"n02084071", 1, 1, 2, 2})
	writeXML(t, dogDir, "n02084071", "n02084071_7")
	// n02121808 has no folder at all

	for _, folder := range ilsvrc.Train2014Dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(annoRoot, folder), 0755))
	}
	dir2014 := filepath.Join(annoRoot, ilsvrc.Train2014Dirs[0])
	writeXML(t, dir2014, "ILSVRC2014_train_0000", "ILSVRC2014_train_00010002",
		xmlObject{"n02121808", 100, 100, 110, 130},
		xmlObject{"n02084071", 0, 0, 1, 1},
	)
	// Same 5 digit suffix as the file above
	writeXML(t, dir2014, "ILSVRC2014_train_0000", "ILSVRC2014_train_00110002", xmlObject{"n02121808", 0, 0, 1, 1})
	return root
}

func TestConvertILSVRC(t *testing.T) {
	root := makeILSVRC(t)
	report := NewReport("annotator", "ilsvrc", "tiny")
	outputs, err := ConvertILSVRC(root, testOptions(t), report)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	require.Equal(t, "train_2013_tiny.json", outputs[0].Name)
	require.Equal(t, "train_2014_tiny.json", outputs[1].Name)

	d2013 := outputs[0].Doc
	require.Equal(t, []coco.Image{
		{ID: 20130011, FileName: "n02084071/n02084071_1.JPEG", Width: 500, Height: 375},
	}, d2013.Images)
	expect2013 := []coco.Annotation{
		{ID: 20130000001, ImageID: 20130011, CategoryID: 1, BBox: coco.BBox{10, 20, 40, 60}, Area: 2400, BBoxMode: 1},
	}
	if diff := cmp.Diff(expect2013, d2013.Annotations); diff != "" {
		t.Errorf("2013 annotations mismatch (-want +got):\n%v", diff)
	}

	d2014 := outputs[1].Doc
	require.Len(t, d2014.Images, 1)
	require.Equal(t, int64(201499910002), d2014.Images[0].ID)
	require.Equal(t, "ILSVRC2014_train_0000/ILSVRC2014_train_00010002.JPEG", d2014.Images[0].FileName)
	expect2014 := []coco.Annotation{
		{ID: 20140000001, ImageID: 201499910002, CategoryID: 2, BBox: coco.BBox{100, 100, 10, 30}, Area: 300, BBoxMode: 1},
		{ID: 20140000002, ImageID: 201499910002, CategoryID: 1, BBox: coco.BBox{0, 0, 1, 1}, Area: 1, BBoxMode: 1},
	}
	if diff := cmp.Diff(expect2014, d2014.Annotations); diff != "" {
		t.Errorf("2014 annotations mismatch (-want +got):\n%v", diff)
	}

	require.Equal(t, map[string]int{
		SkipExcluded:        1,
		SkipNoObjects:       1,
		SkipUnknownCategory: 1,
		SkipMissingFolder:   1,
		SkipDuplicateImage:  1,
	}, report.Skipped)

	for _, out := range outputs {
		require.NoError(t, coco.Validate(out.Doc, coco.ValidateOptions{CheckArea: true}))
		require.Equal(t, tinyVocab().Categories, out.Doc.Categories)
		require.Equal(t, "ImageNet", out.Doc.Info.Contributor)
	}

	// Repeated runs produce identical documents
	again, err := ConvertILSVRC(root, testOptions(t), NewReport("annotator", "ilsvrc", "tiny"))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(outputs, again))
}

func TestConvertILSVRCPolicyError(t *testing.T) {
	root := makeILSVRC(t)
	opt := testOptions(t)
	opt.Policy = PolicyError
	_, err := ConvertILSVRC(root, opt, NewReport("annotator", "ilsvrc", "tiny"))
	require.ErrorIs(t, err, ErrUnknownCategory)
	require.Contains(t, err.Error(), "n00007846")
}

func TestConvertILSVRCMissing2014Folder(t *testing.T) {
	root := makeILSVRC(t)
	last := ilsvrc.Train2014Dirs[len(ilsvrc.Train2014Dirs)-1]
	require.NoError(t, os.RemoveAll(filepath.Join(root, filepath.FromSlash(ilsvrc.TrainAnnotationsDir), last)))
	_, err := ConvertILSVRC(root, testOptions(t), NewReport("annotator", "ilsvrc", "tiny"))
	require.Error(t, err)
}

func writeJSON(t *testing.T, filename string, v any) {
	require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filename, b, 0644))
}

type sourceFile struct {
	Licenses    []coco.License    `json:"licenses"`
	Categories  []coco.Category   `json:"categories"`
	Images      []coco.Image      `json:"images"`
	Annotations []coco.Annotation `json:"annotations"`
}

var cocoCategories = []coco.Category{
	{ID: 11, Name: "fire hydrant", Supercategory: "outdoor"},
	{ID: 17, Name: "cat", Supercategory: "animal"},
	{ID: 18, Name: "dog", Supercategory: "animal"},
}

func makeCOCO(t *testing.T, minivalIDs []int64) string {
	root := t.TempDir()
	train := sourceFile{
		Categories: cocoCategories,
		Images: []coco.Image{
			{ID: 9, FileName: "COCO_train2014_000000000009.jpg", Width: 640, Height: 480, License: 3, CocoURL: "http://images.cocodataset.org/train2014/COCO_train2014_000000000009.jpg"},
			{ID: 25, FileName: "COCO_train2014_000000000025.jpg", Width: 640, Height: 426},
			{ID: 30, FileName: "COCO_train2014_000000000030.jpg", Width: 640, Height: 428},
		},
		Annotations: []coco.Annotation{
			{ID: 100, ImageID: 25, CategoryID: 18, BBox: coco.BBox{1.5, 2.5, 30, 40}, Area: 950.25, IsCrowd: 1},
			{ID: 101, ImageID: 9, CategoryID: 11, BBox: coco.BBox{0, 0, 10, 10}, Area: 80},
			{ID: 102, ImageID: 9, CategoryID: 17, BBox: coco.BBox{5, 5, 20, 20}, Area: 310.5},
		},
	}
	val := sourceFile{
		Categories: cocoCategories,
		Images: []coco.Image{
			{ID: 42, FileName: "COCO_val2014_000000000042.jpg", Width: 640, Height: 478},
			{ID: 73, FileName: "COCO_val2014_000000000073.jpg", Width: 427, Height: 640},
			{ID: 74, FileName: "COCO_val2014_000000000074.jpg", Width: 640, Height: 426},
		},
		Annotations: []coco.Annotation{
			{ID: 200, ImageID: 42, CategoryID: 18, BBox: coco.BBox{1, 1, 2, 2}, Area: 3},
			{ID: 201, ImageID: 73, CategoryID: 17, BBox: coco.BBox{3, 3, 4, 4}, Area: 15},
			{ID: 202, ImageID: 74, CategoryID: 11, BBox: coco.BBox{3, 3, 4, 4}, Area: 15},
		},
	}
	minival := sourceFile{Categories: cocoCategories}
	for _, id := range minivalIDs {
		minival.Images = append(minival.Images, coco.Image{ID: id})
	}
	writeJSON(t, filepath.Join(root, COCOTrainFile), train)
	writeJSON(t, filepath.Join(root, COCOValFile), val)
	writeJSON(t, filepath.Join(root, COCOMinivalFile), minival)
	return root
}

func TestConvertCOCO(t *testing.T) {
	root := makeCOCO(t, []int64{73})
	report := NewReport("annotator", "coco", "tiny")
	outputs, err := ConvertCOCO(root, testOptions(t), report)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	require.Equal(t, "train_tiny.json", outputs[0].Name)
	require.Equal(t, "val_minus_minival_tiny.json", outputs[1].Name)

	train := outputs[0].Doc
	// Every train image is kept, including those with nothing left after filtering
	require.Equal(t, []int64{9, 25, 30}, imageIDs(train))
	require.Equal(t, "http://images.cocodataset.org/train2014/COCO_train2014_000000000009.jpg", train.Images[0].CocoURL)
	expectTrain := []coco.Annotation{
		{ID: 102, ImageID: 9, CategoryID: 2, BBox: coco.BBox{5, 5, 20, 20}, Area: 310.5, BBoxMode: 1},
		{ID: 100, ImageID: 25, CategoryID: 1, BBox: coco.BBox{1.5, 2.5, 30, 40}, Area: 950.25, BBoxMode: 1},
	}
	if diff := cmp.Diff(expectTrain, train.Annotations); diff != "" {
		t.Errorf("train annotations mismatch (-want +got):\n%v", diff)
	}

	val := outputs[1].Doc
	require.Equal(t, []int64{42, 74}, imageIDs(val))
	require.Len(t, val.Annotations, 1)
	require.Equal(t, int64(200), val.Annotations[0].ID)
	require.Equal(t, 1, val.Annotations[0].CategoryID)

	require.Equal(t, 2, report.Skipped[SkipUnknownCategory])

	for _, out := range outputs {
		require.NoError(t, coco.Validate(out.Doc, coco.ValidateOptions{}))
		require.Equal(t, "COCO Consortium", out.Doc.Info.Contributor)
	}
}

func TestConvertCOCOMinivalNotInVal(t *testing.T) {
	root := makeCOCO(t, []int64{73, 999})
	_, err := ConvertCOCO(root, testOptions(t), NewReport("annotator", "coco", "tiny"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "999")
}

func TestConvertCOCODuplicateImage(t *testing.T) {
	root := makeCOCO(t, []int64{73, 73})
	_, err := ConvertCOCO(root, testOptions(t), NewReport("annotator", "coco", "tiny"))
	require.ErrorContains(t, err, "duplicate image IDs, starting with 73")
}

func imageIDs(doc *coco.Document) []int64 {
	ids := []int64{}
	for _, img := range doc.Images {
		ids = append(ids, img.ID)
	}
	return ids
}

func TestWriteOutputsAndReport(t *testing.T) {
	log := logs.NewTestingLog(t)
	root := makeCOCO(t, nil)
	report := NewReport("annotator", "coco", "tiny")
	outputs, err := ConvertCOCO(root, testOptions(t), report)
	require.NoError(t, err)

	outDir := t.TempDir()
	store, err := storage.NewStorageFS(log, outDir)
	require.NoError(t, err)
	require.NoError(t, WriteOutputs(log, store, outputs, report))
	require.NoError(t, SaveReport(log, store, report))

	raw, err := os.ReadFile(filepath.Join(outDir, "train_tiny.json"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), `{"info":{`))
	require.Contains(t, string(raw), `"type":"instances","liscenses":[`)

	decoded, err := coco.Load(filepath.Join(outDir, "val_minus_minival_tiny.json"))
	require.NoError(t, err)
	require.Equal(t, []int64{42, 73, 74}, decoded.ImageIDs())

	saved := &Report{}
	b, err := os.ReadFile(filepath.Join(outDir, report.Filename()))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, saved))
	require.Equal(t, report.RunID, saved.RunID)
	require.Len(t, saved.Outputs, 2)
	require.Equal(t, 3, saved.Outputs[0].Images)
	require.Equal(t, 2, saved.Outputs[0].Annotations)
	require.Equal(t, filepath.Join(outDir, "train_tiny.json"), saved.Outputs[0].Location)
	require.Empty(t, saved.Outputs[0].URL)
	require.False(t, saved.Finished.Before(saved.Started))
}

func TestParseCategoryPolicy(t *testing.T) {
	for _, s := range []string{"drop", "warn", "error"} {
		p, err := ParseCategoryPolicy(s)
		require.NoError(t, err)
		require.Equal(t, s, p.String())
	}
	p, err := ParseCategoryPolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyDrop, p)
	_, err = ParseCategoryPolicy("keep")
	require.Error(t, err)
}
