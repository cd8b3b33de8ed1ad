package model

import "time"

// DeploymentStatus is the lifecycle state of an endpoint deployment.
type DeploymentStatus string

const (
	DeploymentCreating  DeploymentStatus = "Creating"
	DeploymentUpdating  DeploymentStatus = "Updating"
	DeploymentInService DeploymentStatus = "InService"
)

// DefaultVariantName is used when a stage config does not pin a variant name.
// The same variant name must be reused when updating an endpoint, otherwise
// autoscaling deregistration fails.
const DefaultVariantName = "LatestApproved"

// AutoScaling holds endpoint autoscaling bounds and cooldowns.
type AutoScaling struct {
	MinCapacity      int     `json:"min_capacity"`
	MaxCapacity      int     `json:"max_capacity"`
	TargetValue      float64 `json:"target_value"`
	ScaleInCooldown  int     `json:"scale_in_cooldown"`
	ScaleOutCooldown int     `json:"scale_out_cooldown"`
}

// DataCapture configures inference request/response capture for monitoring.
type DataCapture struct {
	Enabled            bool    `json:"enabled"`
	DestinationPath    string  `json:"destination_path"`
	SamplingPercentage float64 `json:"sampling_percentage"`
}

// EndpointDeployment is a model package served behind a named endpoint for a
// given stage. One deployment exists per endpoint name; redeploys update it
// in place.
type EndpointDeployment struct {
	ID                     string           `json:"id"`
	EndpointName           string           `json:"endpoint_name"`
	StageName              string           `json:"stage_name"`
	GroupName              string           `json:"group_name"`
	PackageVersion         int              `json:"package_version"`
	VariantName            string           `json:"variant_name"`
	InstanceCount          int              `json:"instance_count"`
	InstanceType           string           `json:"instance_type"`
	InitialVariantWeight   float64          `json:"initial_variant_weight"`
	AutoScaling            *AutoScaling     `json:"auto_scaling,omitempty"`
	DataCapture            *DataCapture     `json:"data_capture,omitempty"`
	MonitoringScheduleName string           `json:"monitoring_schedule_name,omitempty"`
	Status                 DeploymentStatus `json:"status"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}
