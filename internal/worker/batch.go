package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/hoverlex/internal/model"
	"gopkg.in/yaml.v3"
)

// Preparer prepares one anchor against an already loaded document
type Preparer interface {
	PrepareSpec(spec model.AnchorSpec) *model.Report
}

// PreparerFunc adapts a function to a Preparer
type PreparerFunc func(spec model.AnchorSpec) *model.Report

// PrepareSpec calls f
func (f PreparerFunc) PrepareSpec(spec model.AnchorSpec) *model.Report {
	return f(spec)
}

// PrepareJob prepares a single anchor spec
type PrepareJob struct {
	Spec     model.AnchorSpec
	Preparer Preparer
}

// Execute runs the preparation unless ctx is already done
func (j *PrepareJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &PrepareResult{Report: &model.Report{Spec: j.Spec, Error: err.Error()}, Err: err}
	}
	return &PrepareResult{Report: j.Preparer.PrepareSpec(j.Spec)}
}

// PrepareResult wraps a report for the pool
type PrepareResult struct {
	Report *model.Report
	Err    error
}

// GetError returns the job error. Rejected anchors are not errors.
func (r *PrepareResult) GetError() error {
	return r.Err
}

// BatchExtractor prepares many anchors concurrently. The document behind the
// Preparer is shared read-only by all workers.
type BatchExtractor struct {
	preparer    Preparer
	concurrency int
}

// NewBatchExtractor creates a batch extractor
func NewBatchExtractor(preparer Preparer, concurrency int) *BatchExtractor {
	return &BatchExtractor{
		preparer:    preparer,
		concurrency: concurrency,
	}
}

// Process prepares specs and returns reports in input order
func (b *BatchExtractor) Process(ctx context.Context, specs []model.AnchorSpec) []*model.Report {
	if len(specs) == 0 {
		return []*model.Report{}
	}

	jobs := make([]Job, len(specs))
	for i, spec := range specs {
		jobs[i] = &PrepareJob{Spec: spec, Preparer: b.preparer}
	}

	results := NewPool(ctx, b.concurrency).Run(jobs)

	reports := make([]*model.Report, len(results))
	for i, res := range results {
		if res == nil {
			msg := "not run"
			if cause := context.Cause(ctx); cause != nil {
				msg += ": " + cause.Error()
			}
			reports[i] = &model.Report{Spec: specs[i], Error: msg}
			continue
		}
		reports[i] = res.(*PrepareResult).Report
	}
	return reports
}

// AnchorFile is the YAML layout read by ReadAnchorSpecs
type AnchorFile struct {
	Source  string             `yaml:"source,omitempty"` // Document to load when none is given on the command line
	Anchors []model.AnchorSpec `yaml:"anchors"`
}

// ReadAnchorSpecs reads an anchor file. Entries with neither path nor match are rejected.
func ReadAnchorSpecs(filePath string) (*AnchorFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read anchors: %w", err)
	}

	var file AnchorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse anchors: %w", err)
	}

	for i, spec := range file.Anchors {
		if spec.Path == "" && spec.Match == "" {
			return nil, fmt.Errorf("anchor %d: needs a path or a match", i+1)
		}
		if spec.Nth < 0 {
			return nil, fmt.Errorf("anchor %d: nth must not be negative", i+1)
		}
	}
	return &file, nil
}
