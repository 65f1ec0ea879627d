// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// IngestStage is one step of the multi-stage upload pipeline. Stages form a
// fixed sequence; a status record only ever advances to the next stage.
type IngestStage string

const (
	StageSubmitted        IngestStage = "submitted"
	StageLayoutDetected   IngestStage = "layout-detected"
	StageMetadataParsed   IngestStage = "metadata-parsed"
	StageAssetsUploaded   IngestStage = "assets-uploaded"
	StageSummaryExtracted IngestStage = "summary-extracted"
	StageStored           IngestStage = "stored"
)

// stageOrder maps each stage to its position in the pipeline sequence.
var stageOrder = map[IngestStage]int{
	StageSubmitted:        0,
	StageLayoutDetected:   1,
	StageMetadataParsed:   2,
	StageAssetsUploaded:   3,
	StageSummaryExtracted: 4,
	StageStored:           5,
}

// Valid reports whether s is a known pipeline stage.
func (s IngestStage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Next returns the stage that follows s. The final stage returns itself.
func (s IngestStage) Next() IngestStage {
	switch s {
	case StageSubmitted:
		return StageLayoutDetected
	case StageLayoutDetected:
		return StageMetadataParsed
	case StageMetadataParsed:
		return StageAssetsUploaded
	case StageAssetsUploaded:
		return StageSummaryExtracted
	case StageSummaryExtracted:
		return StageStored
	default:
		return s
	}
}

// CanAdvance reports whether a record at stage s may move to stage to.
// Only the immediate successor is a legal transition.
func (s IngestStage) CanAdvance(to IngestStage) bool {
	from, ok1 := stageOrder[s]
	next, ok2 := stageOrder[to]
	return ok1 && ok2 && next == from+1
}

// IngestStatus tracks one file through the upload pipeline, keyed by the
// request id handed back at submission.
type IngestStatus struct {
	// RequestID identifies the upload request.
	RequestID string `json:"request_id" yaml:"request_id"`

	// Filename is the name of the submitted file.
	Filename string `json:"filename" yaml:"filename"`

	// Stage is the last completed pipeline stage.
	Stage IngestStage `json:"stage" yaml:"stage"`

	// RequestedAt is when the upload was submitted.
	RequestedAt time.Time `json:"requested_at" yaml:"requested_at"`

	// UpdatedAt is when the stage last advanced.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
