// Package metrics records stage and run outcomes of a release pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	p := pipeline.New(cfg, ws, runner).WithRecorder(metrics.NoopRecorder{})
//
// A release run is a short-lived process with nothing to scrape, so the
// Prometheus implementation writes its registry to a node-exporter textfile
// once the run finishes:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	defer rec.WriteTextfile("/var/lib/node_exporter/textfile/charmrelease.prom")
package metrics
