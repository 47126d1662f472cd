package catalog

import (
	"net/http"
	"time"

	"github.com/alucardeht/home-display-agent/internal/tools"
)

func monitorEntries() []Entry {
	return []Entry{
		{
			Name:        "monitor_health",
			Description: "Check the health status of all services",
			Backend:     Monitor,
			Method:      http.MethodGet,
			Path:        "/health",
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
		{
			Name:        "monitor_stream_status",
			Description: "Get the current stream/display status",
			Backend:     Monitor,
			Method:      http.MethodGet,
			Path:        "/stream/status",
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
		{
			Name:        "monitor_failures",
			Description: "Get recent failures and errors",
			Backend:     Monitor,
			Method:      http.MethodGet,
			Path:        "/failures",
			Params: []Param{
				{Name: "limit", Type: "integer", Description: "Maximum number of failures to return", Default: 10, In: InQuery},
				{Name: "service", Type: "string", Description: "Filter by service name", In: InQuery},
			},
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
		{
			Name:        "monitor_metrics",
			Description: "Get system metrics and statistics",
			Backend:     Monitor,
			Method:      http.MethodGet,
			Path:        "/metrics",
			Params: []Param{
				{
					Name:        "period",
					Type:        "string",
					Description: "Time period for metrics",
					Enum:        []any{"1h", "6h", "24h", "7d"},
					Default:     "1h",
					In:          InQuery,
				},
			},
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
	}
}
