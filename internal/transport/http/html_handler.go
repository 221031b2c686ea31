package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"bikepulse/pkg/contracts"
	"bikepulse/pkg/contracts/domain"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>BikePulse</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 4px; }
        .info { background-color: #d1ecf1; color: #0c5460; }
        .warning { background-color: #fff3cd; color: #856404; }
    </style>
</head>
<body>
    <h1>BikePulse {{.Version}}</h1>
    {{if .Ready}}
    <div class="status info">
        <strong>Dataset:</strong> {{.Start}} to {{.End}}
    </div>
    {{else}}
    <div class="status warning">
        <strong>Dataset:</strong> not loaded
    </div>
    {{end}}
    <h2>Endpoints</h2>
    <ul>
        <li><a href="/api/dashboard">Dashboard</a></li>
        <li><a href="/api/dashboard/range">Date range</a></li>
        <li><a href="/api/dashboard/monthly">Monthly summary</a></li>
        <li><a href="/api/dashboard/export/monthly.csv">Monthly summary (CSV)</a></li>
        <li><a href="/api/dashboard/export.xlsx">All summaries (XLSX)</a></li>
        <li><a href="/api/health">Health check</a></li>
        <li><a href="/api/version">Version info</a></li>
        <li><code>/ws</code> live filter socket</li>
    </ul>
</body>
</html>
`))

type indexPage struct {
	Version string
	Ready   bool
	Start   string
	End     string
}

// ServeIndex serves the landing page listing the API endpoints
func ServeIndex(service DashboardServiceInterface, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		page := indexPage{Version: contracts.Version}
		if bounds, err := service.Bounds(); err == nil {
			page.Ready = true
			page.Start = bounds.Start.Format(domain.DateLayout)
			page.End = bounds.End.Format(domain.DateLayout)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, page); err != nil {
			logger.ErrorContext(r.Context(), "failed to render index page",
				slog.String("error", err.Error()))
		}
	}
}
