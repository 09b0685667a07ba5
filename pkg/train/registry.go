package train

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/cyclopcam/detprep/pkg/iox"
	"github.com/cyclopcam/logs"
)

// Dataset is a named split that the training framework can load: a COCO-style
// annotation file, and the folder that its image file names are relative to.
type Dataset struct {
	Name        string `json:"name"`
	Annotations string `json:"annotations"`
	ImageRoot   string `json:"imageRoot"`
}

// Registry is the set of datasets handed to the training framework
type Registry struct {
	Datasets []Dataset `json:"datasets"`
}

// DefaultRegistry returns the standard VidOR, COCO and ILSVRC splits, relative to root.
// The layout is the one that the converters produce when run against
// root/vidor, root/coco and root/ILSVRC2015.
func DefaultRegistry(root string) *Registry {
	r := &Registry{}
	add := func(name, annotations, images string) {
		r.Datasets = append(r.Datasets, Dataset{
			Name:        name,
			Annotations: path.Join(root, annotations),
			ImageRoot:   path.Join(root, images),
		})
	}
	for _, stride := range []int{16, 32, 64} {
		for _, split := range []string{"train", "test"} {
			add(fmt.Sprintf("vidor_%v_%v", split, stride),
				fmt.Sprintf("vidor/d2_%v_%v.json", split, stride),
				fmt.Sprintf("vidor/frames@%v", stride))
		}
	}
	add("vidor_coco_train", "coco/train_vidor.json", "coco/train2014")
	add("vidor_coco_val_minus_minival", "coco/val_minus_minival_vidor.json", "coco/val2014")
	add("vidor_ilsvrc_train2013", "ILSVRC2015/train_2013_vidor.json", "ILSVRC2015/Data/DET/train/ILSVRC2013_train")
	add("vidor_ilsvrc_train2014", "ILSVRC2015/train_2014_vidor.json", "ILSVRC2015/Data/DET/train")
	return r
}

// LoadRegistry reads a registry JSON file
func LoadRegistry(filename string) (*Registry, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	r := &Registry{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("Failed to parse registry %v: %w", filename, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("Invalid registry %v: %w", filename, err)
	}
	return r, nil
}

func (r *Registry) Validate() error {
	seen := map[string]bool{}
	for _, ds := range r.Datasets {
		if ds.Name == "" || ds.Annotations == "" || ds.ImageRoot == "" {
			return fmt.Errorf("Dataset '%v' must have a name, annotations, and imageRoot", ds.Name)
		}
		if seen[ds.Name] {
			return fmt.Errorf("Dataset '%v' is registered twice", ds.Name)
		}
		seen[ds.Name] = true
	}
	return nil
}

func (r *Registry) Find(name string) (Dataset, bool) {
	for _, ds := range r.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}

// Save writes the registry atomically
func (r *Registry) Save(filename string) error {
	b, err := json.MarshalIndent(r, "", "\t")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	return iox.WriteStreamToFile(filename, bytes.NewReader(b))
}

// Check logs a warning for every dataset whose annotation file or image folder is missing,
// and returns the names of those datasets. Missing datasets are not fatal, because a
// training config usually only references a few of them.
func (r *Registry) Check(log logs.Log) []string {
	missing := []string{}
	for _, ds := range r.Datasets {
		ok := true
		if st, err := os.Stat(ds.Annotations); err != nil || st.IsDir() {
			log.Warnf("Dataset %v: annotations %v not found", ds.Name, ds.Annotations)
			ok = false
		}
		if st, err := os.Stat(ds.ImageRoot); err != nil || !st.IsDir() {
			log.Warnf("Dataset %v: image folder %v not found", ds.Name, ds.ImageRoot)
			ok = false
		}
		if !ok {
			missing = append(missing, ds.Name)
		}
	}
	return missing
}
