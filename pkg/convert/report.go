package convert

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/logs"
	"github.com/google/uuid"
)

// Reasons for skipping source records
const (
	SkipExcluded        = "excluded"         // Annotation file is on the exclusion list
	SkipNoObjects       = "no_objects"       // Annotation file has no objects
	SkipUnknownCategory = "unknown_category" // Object class is not in the vocabulary
	SkipDuplicateImage  = "duplicate_image"  // Synthesized image ID collides with an earlier image
	SkipMissingFolder   = "missing_folder"   // Synset folder does not exist in the source
	SkipEmptyFrame      = "empty_frame"      // Sampled frame has no boxes
)

// Report summarizes a conversion run
type Report struct {
	RunID    string          `json:"runId"`
	Tool     string          `json:"tool"`
	Source   string          `json:"source"`
	Dest     string          `json:"dest"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Outputs  []OutputSummary `json:"outputs"`
	Skipped  map[string]int  `json:"skipped"`
}

type OutputSummary struct {
	Name        string `json:"name"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	Images      int    `json:"images"`
	Annotations int    `json:"annotations"`
}

func NewReport(tool, source, dest string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Tool:    tool,
		Source:  source,
		Dest:    dest,
		Started: time.Now().UTC(),
		Outputs: []OutputSummary{},
		Skipped: map[string]int{},
	}
}

func (r *Report) Skip(reason string) {
	r.Skipped[reason]++
}

func (r *Report) AddOutput(name, location, url string, doc *coco.Document) {
	r.Outputs = append(r.Outputs, OutputSummary{
		Name:        name,
		Location:    location,
		URL:         url,
		Images:      len(doc.Images),
		Annotations: len(doc.Annotations),
	})
}

func (r *Report) Finish() {
	r.Finished = time.Now().UTC()
}

// Filename is where the report is stored, relative to the output root
func (r *Report) Filename() string {
	return "reports/" + r.RunID + ".json"
}

func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "\t")
}

// Log writes a summary of the report
func (r *Report) Log(log logs.Log) {
	for _, o := range r.Outputs {
		log.Infof("%v: %v images, %v annotations", o.Name, o.Images, o.Annotations)
	}
	reasons := make([]string, 0, len(r.Skipped))
	for reason := range r.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		log.Infof("Skipped %v: %v", reason, r.Skipped[reason])
	}
	log.Infof("Run %v finished in %.1f seconds", r.RunID, r.Finished.Sub(r.Started).Seconds())
}
