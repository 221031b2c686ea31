// Package http implements the HTTP handlers of the BikePulse API. Handlers
// stay thin: they parse and validate the query, call the dashboard service
// and render the result with go-chi/render.
//
// # Routes
//
//	GET /api/dashboard?start=&end=            combined dashboard payload
//	GET /api/dashboard/range                  dataset bounds for the date widget
//	GET /api/dashboard/{table}                one summary table
//	GET /api/dashboard/export/{table}.{fmt}   csv or xlsx download
//	GET /api/dashboard/export.xlsx            every summary, one sheet each
//	GET /api/health, /ready, /live            health probes
//	GET /api/version                          build information
//
// Omitted start or end dates default to the dataset bounds.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are written by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/missing-column",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "the loaded dataset has no \"hr\" column, required by hourly",
//	    "instance": "/api/dashboard/hourly"
//	}
package http
