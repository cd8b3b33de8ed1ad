// Package drift extracts baseline drift metrics from monitoring-job
// constraint violation documents.
package drift

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"driftwatch/internal/model"
)

// BaselineDriftCheck is the violation type carrying a drift distance.
const BaselineDriftCheck = "baseline_drift_check"

// Violation descriptions embed the measured distance and the configured
// threshold, e.g. "baseline drift distance: 0.39 exceeds threshold: 0.1".
var baselineDriftPattern = regexp.MustCompile(`distance: (.+) exceeds threshold: (.+)`)

// MetricName returns the wire metric name for a drifted feature.
func MetricName(feature string) string {
	return "feature_baseline_drift_" + feature
}

// ParseViolations decodes a constraint_violations.json document.
func ParseViolations(r io.Reader) (*model.ConstraintViolations, error) {
	var doc model.ConstraintViolations
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode constraint violations: %w", err)
	}
	return &doc, nil
}

// BaselineDrift extracts one DriftMetric per baseline_drift_check violation.
// Violations of other check types, or whose description does not match the
// expected format, are skipped. A matched description with an unparsable
// distance or threshold is an error.
func BaselineDrift(doc *model.ConstraintViolations, pipelineName string) ([]model.DriftMetric, error) {
	var metrics []model.DriftMetric
	for _, v := range doc.Violations {
		if v.ConstraintCheckType != BaselineDriftCheck {
			continue
		}
		matches := baselineDriftPattern.FindStringSubmatch(v.Description)
		if matches == nil {
			continue
		}
		value, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			return nil, fmt.Errorf("feature %s: parse drift distance %q: %w", v.FeatureName, matches[1], err)
		}
		threshold, err := strconv.ParseFloat(matches[2], 64)
		if err != nil {
			return nil, fmt.Errorf("feature %s: parse drift threshold %q: %w", v.FeatureName, matches[2], err)
		}
		metrics = append(metrics, model.DriftMetric{
			MetricName:   MetricName(v.FeatureName),
			FeatureName:  v.FeatureName,
			PipelineName: pipelineName,
			Value:        value,
			Threshold:    threshold,
		})
	}
	return metrics, nil
}
