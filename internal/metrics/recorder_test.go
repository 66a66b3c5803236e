package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration("publish", time.Second)
		r.IncStageResult("publish", ResultFatal)
		r.IncBuildOutcome(BuildOutcomeFailed)
		r.SetNodeCount("directory", 1)
		r.IncPagesRendered()
		r.SetIndexDocuments(0)
		r.AddMirroredFiles("media", 0, 0)
	})
}
