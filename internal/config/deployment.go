package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
)

// Per-stage deployment parameters are read from <stage>-config.json files
// (staging-config.json, prod-config.json). Field names are part of the
// deployment contract and pass through unchanged.

// VariantConfig pins the model package and traffic weight for an endpoint
// variant. An empty ModelPackageVersion deploys the latest approved package.
type VariantConfig struct {
	ModelPackageVersion  string  `json:"model_package_version,omitempty"`
	InitialVariantWeight float64 `json:"initial_variant_weight"`
	VariantName          string  `json:"variant_name,omitempty"`
	InstanceCount        int     `json:"instance_count,omitempty"`
	InstanceType         string  `json:"instance_type,omitempty"`
}

// AutoScalingConfig holds endpoint autoscaling parameters.
type AutoScalingConfig struct {
	MinCapacity      int     `json:"min_capacity"`
	MaxCapacity      int     `json:"max_capacity"`
	TargetValue      float64 `json:"target_value"`
	ScaleInCooldown  int     `json:"scale_in_cooldown"`
	ScaleOutCooldown int     `json:"scale_out_cooldown"`
}

// ScheduleConfig enables drift monitoring for a stage: a cron schedule for
// monitoring runs and the threshold alarm raised over the drift metric.
type ScheduleConfig struct {
	ScheduleExpression            string  `json:"schedule_expression"`
	MetricName                    string  `json:"metric_name"`
	MetricThreshold               float64 `json:"metric_threshold"`
	ComparisonOperator            string  `json:"comparison_operator"`
	Period                        int     `json:"period"`
	EvaluationPeriods             int     `json:"evaluation_periods"`
	DatapointsToAlarm             int     `json:"datapoints_to_alarm"`
	Statistic                     string  `json:"statistic"`
	DataCaptureSamplingPercentage float64 `json:"data_capture_sampling_percentage"`
}

// DeploymentConfig is the full per-stage deployment parameter set.
type DeploymentConfig struct {
	StageName           string             `json:"stage_name"`
	InstanceCount       int                `json:"instance_count"`
	InstanceType        string             `json:"instance_type"`
	VariantConfig       *VariantConfig     `json:"variant_config,omitempty"`
	AutoScaling         *AutoScalingConfig `json:"auto_scaling,omitempty"`
	ScheduleConfig      *ScheduleConfig    `json:"schedule_config,omitempty"`
	ModelMonitorEnabled bool               `json:"model_monitor_enabled,omitempty"`
}

// LoadDeploymentConfig reads and validates a single stage config file.
func LoadDeploymentConfig(path string) (*DeploymentConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deployment config: %w", err)
	}
	var dc DeploymentConfig
	if err := json.Unmarshal(b, &dc); err != nil {
		return nil, fmt.Errorf("parse deployment config %s: %w", filepath.Base(path), err)
	}
	dc.applyDefaults()
	if err := dc.validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment config %s: %w", filepath.Base(path), err)
	}
	return &dc, nil
}

// LoadStageConfigs loads <stage>-config.json for every requested stage.
func LoadStageConfigs(dir string, stages []string) (map[string]*DeploymentConfig, error) {
	out := make(map[string]*DeploymentConfig, len(stages))
	for _, stage := range stages {
		dc, err := LoadDeploymentConfig(filepath.Join(dir, stage+"-config.json"))
		if err != nil {
			return nil, err
		}
		if dc.StageName != stage {
			return nil, fmt.Errorf("stage config %s declares stage_name %q", stage, dc.StageName)
		}
		out[stage] = dc
	}
	return out, nil
}

func (dc *DeploymentConfig) applyDefaults() {
	if dc.InstanceCount == 0 {
		dc.InstanceCount = 1
	}
	if dc.InstanceType == "" {
		dc.InstanceType = "ml.t2.medium"
	}
	if vc := dc.VariantConfig; vc != nil {
		if vc.InitialVariantWeight == 0 {
			vc.InitialVariantWeight = 1.0
		}
		if vc.InstanceCount == 0 {
			vc.InstanceCount = dc.InstanceCount
		}
		if vc.InstanceType == "" {
			vc.InstanceType = dc.InstanceType
		}
	}
	if sc := dc.ScheduleConfig; sc != nil {
		if sc.ComparisonOperator == "" {
			sc.ComparisonOperator = "GreaterThanThreshold"
		}
		if sc.Period == 0 {
			sc.Period = 60
		}
		if sc.EvaluationPeriods == 0 {
			sc.EvaluationPeriods = 1
		}
		if sc.DatapointsToAlarm == 0 {
			sc.DatapointsToAlarm = 1
		}
		if sc.Statistic == "" {
			sc.Statistic = "Average"
		}
		if sc.DataCaptureSamplingPercentage == 0 {
			sc.DataCaptureSamplingPercentage = 100
		}
	}
}

func (dc *DeploymentConfig) validate() error {
	if dc.StageName == "" {
		return fmt.Errorf("stage_name is required")
	}
	if sc := dc.ScheduleConfig; sc != nil {
		if sc.MetricName == "" {
			return fmt.Errorf("schedule_config.metric_name is required")
		}
		if _, err := cron.ParseStandard(sc.ScheduleExpression); err != nil {
			return fmt.Errorf("schedule_config.schedule_expression: %w", err)
		}
		if sc.DatapointsToAlarm > sc.EvaluationPeriods {
			return fmt.Errorf("schedule_config.datapoints_to_alarm exceeds evaluation_periods")
		}
	}
	return nil
}
