// Package metrics records publish build metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics collection needs
// no nil checks at call sites:
//
//	recorder := metrics.NewPrometheusRecorder(nil)
//	pub := publish.New(cfg, publish.WithRecorder(recorder))
//
// A PrometheusRecorder can be exported once per build with WriteTextfile (for node
// exporter style collection) or served continuously with HTTPHandler.
package metrics
