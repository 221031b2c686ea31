// Package services implements the business logic layer of BikePulse. It sits
// between the HTTP and websocket transports and the pure aggregation code in
// dataprocessing.
//
// DashboardService owns the loaded, immutable dataset. Every query applies
// the date filter and recomputes the requested summaries, recording
// aggregation metrics and spans on the way:
//
//	svc := services.NewDashboardService(table, metrics, logger)
//	bounds, _ := svc.Bounds()
//	dash, err := svc.Dashboard(ctx, bounds)
//
// A summary the dataset cannot support (hourly without an hr column, scatter
// without temp) does not fail the dashboard; it is reported in
// Dashboard.Errors instead. Asked for on its own through Summary or Export,
// the same condition is returned as a *dataprocessing.MissingColumnError.
//
// HealthService backs the health, readiness and version endpoints.
package services
