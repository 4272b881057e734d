// Package checker implements the scan pipeline: independent analyzer
// stages probe a target concurrently, normalize their results into
// findings, and the pipeline aggregates findings into a scored, graded
// report with ranked recommendations.
//
// Stages are isolated: a probe failure, timeout, or panic inside one stage
// degrades to a single error-status finding and never aborts the scan.
package checker
