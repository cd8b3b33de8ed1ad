package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/service"
)

// Services bundles the injected services for route registration.
type Services struct {
	Registry    service.RegistryService
	Pipelines   service.PipelineService
	Triggers    service.TriggerService
	Alarms      service.AlarmService
	Monitoring  service.MonitoringService
	Deployments service.DeploymentService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoints
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Model package registry
	app.Post("/groups", CreateGroup(svcs.Registry))
	app.Get("/groups", ListGroups(svcs.Registry))
	app.Get("/groups/:name", GetGroup(svcs.Registry))
	app.Post("/groups/:name/packages", RegisterPackage(svcs.Registry))
	app.Get("/groups/:name/packages", ListPackages(svcs.Registry))
	app.Get("/groups/:name/packages/latest-approved", LatestApproved(svcs.Registry))
	app.Get("/groups/:name/packages/approved", VersionedApproved(svcs.Registry))
	app.Get("/groups/:name/packages/:version", GetPackage(svcs.Registry))
	app.Get("/groups/:name/packages/:version/artifact-url", ArtifactURL(svcs.Registry))
	app.Put("/groups/:name/packages/:version/approval", UpdateApproval(svcs.Registry))

	// Pipelines and executions
	app.Post("/pipelines", CreatePipeline(svcs.Pipelines))
	app.Get("/pipelines", ListPipelines(svcs.Pipelines))
	app.Get("/pipelines/:name", GetPipeline(svcs.Pipelines))
	app.Post("/pipelines/:name/executions", StartExecution(svcs.Pipelines))
	app.Get("/pipelines/:name/executions", ListExecutions(svcs.Pipelines))
	app.Get("/executions/:id", GetExecution(svcs.Pipelines))

	// Retraining trigger rules
	app.Post("/pipelines/:name/rules", CreateTriggerRule(svcs.Triggers))
	app.Get("/pipelines/:name/rules", ListTriggerRules(svcs.Triggers))
	app.Put("/rules/:name/enable", SetTriggerRuleEnabled(svcs.Triggers, true))
	app.Put("/rules/:name/disable", SetTriggerRuleEnabled(svcs.Triggers, false))

	// Drift alarms
	app.Post("/alarms", CreateAlarm(svcs.Alarms))
	app.Get("/alarms", ListAlarms(svcs.Alarms))
	app.Get("/alarms/:name", GetAlarm(svcs.Alarms))

	// Endpoint deployments
	app.Post("/deployments", Deploy(svcs.Deployments))
	app.Get("/deployments", ListDeployments(svcs.Deployments))
	app.Get("/deployments/:endpoint", GetDeployment(svcs.Deployments))

	// Platform event webhooks
	app.Post("/events/model-package-state-change", ModelPackageStateChangeEvent(svcs.Deployments))
	app.Post("/events/pipeline-execution-state-change", PipelineExecutionStateChangeEvent(svcs.Triggers))
	app.Post("/events/alarm-state-change", AlarmStateChangeEvent(svcs.Alarms))
	app.Post("/events/monitoring-result", MonitoringResultEvent(svcs.Monitoring))
}
