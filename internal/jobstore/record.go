// Package jobstore holds the authoritative in-memory table of render jobs,
// replicated on a best-effort basis to a KV cache and a blob object store.
package jobstore

import "time"

// Status is a job's position in the pending -> processing -> {completed,failed} machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// SourceVideoRef is one source video staged in scratch storage.
type SourceVideoRef struct {
	ScratchPath  string `json:"-"`
	OriginalName string `json:"originalName"`
}

// TemplateMetadata mirrors the probed properties of a template asset.
type TemplateMetadata struct {
	HasAlphaChannel bool   `json:"hasAlphaChannel"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	PixelFormat     string `json:"pixelFormat,omitempty"`
}

// TemplateRef is one template asset staged in scratch storage, tagged with
// the variant it applies to and its probed metadata.
type TemplateRef struct {
	Variant      string           `json:"variant"`
	ScratchPath  string           `json:"-"`
	OriginalName string           `json:"originalName"`
	Metadata     TemplateMetadata `json:"metadata"`
}

// Payload is the set of inputs a job renders from.
type Payload struct {
	Sources   []SourceVideoRef       `json:"sources"`
	Templates map[string]TemplateRef `json:"templates"`
}

// OutputArtifact is one completed render.
type OutputArtifact struct {
	Variant  string `json:"variant"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// JobRecord is the authoritative, mutable record of a render job. Only the
// worker mutates status/progress/result/error/timestamps; the HTTP surface
// only reads.
type JobRecord struct {
	ID                string           `json:"jobId"`
	Owner             string           `json:"-"`
	Status            Status           `json:"status"`
	Progress          int              `json:"progress"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
	StartedAt         *time.Time       `json:"startedAt,omitempty"`
	FinishedAt        *time.Time       `json:"finishedAt,omitempty"`
	Error             string           `json:"error,omitempty"`
	Result            []OutputArtifact `json:"result,omitempty"`
	CompletedVariants int              `json:"completedVariants"`
	TotalVariants     int              `json:"totalVariants"`
	Payload           Payload          `json:"-"`
}

// Clone returns a deep-enough copy safe to hand to a reader without holding
// the store's lock, preventing torn reads of the {status, progress, result}
// triple while the worker mutates the original concurrently.
func (j *JobRecord) Clone() *JobRecord {
	cp := *j
	if j.Result != nil {
		cp.Result = append([]OutputArtifact(nil), j.Result...)
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		cp.FinishedAt = &t
	}
	return &cp
}
