package publish

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in a publish build.
type Stage func(ctx context.Context, bs *buildState) error

// StageName is a strongly-typed identifier for a publish stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareStructure StageName = "prepare_structure"
	StageComputeNodes     StageName = "compute_nodes"
	StageWriteDatabase    StageName = "write_database"
	StagePublish          StageName = "publish"
	StageWriteBuildInfo   StageName = "write_build_info"
)

// StageErrorKind classifies the outcome of a failed stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the failing stage and its cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// pipeline returns the ordered stages of a full build.
func (p *Publisher) pipeline() []StageDef {
	return []StageDef{
		{Name: StagePrepareStructure, Fn: p.stagePrepareStructure},
		{Name: StageComputeNodes, Fn: p.stageComputeNodes},
		{Name: StageWriteDatabase, Fn: p.stageWriteDatabase},
		{Name: StagePublish, Fn: p.stagePublish},
		{Name: StageWriteBuildInfo, Fn: p.stageWriteBuildInfo},
	}
}
