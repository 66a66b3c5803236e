package publish

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docd/internal/logfields"
	"git.home.luguber.info/inful/docd/internal/metrics"
)

// runStages executes stages in order, recording timing and stopping on the first error.
func (p *Publisher) runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			p.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return &StageError{Kind: StageErrorCanceled, Stage: st.Name, Err: err}
		}

		slog.Debug("Stage starting", logfields.BuildID(bs.buildID), logfields.Stage(string(st.Name)))
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.report.StageDurations[st.Name] = dur
		p.recorder.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			kind, result := StageErrorFatal, metrics.ResultFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind, result = StageErrorCanceled, metrics.ResultCanceled
			}
			p.recorder.IncStageResult(string(st.Name), result)
			slog.Error("Stage failed",
				logfields.BuildID(bs.buildID),
				logfields.Stage(string(st.Name)),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			return &StageError{Kind: kind, Stage: st.Name, Err: err}
		}

		p.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		slog.Info("Stage complete",
			logfields.BuildID(bs.buildID),
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
