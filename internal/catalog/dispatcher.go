package catalog

import (
	"net/http"
	"time"

	"github.com/alucardeht/home-display-agent/internal/tools"
)

func dispatcherEntries() []Entry {
	jobID := func(desc string) Param {
		return Param{Name: "job_id", Type: "string", Description: desc, Required: true, In: InPath}
	}

	return []Entry{
		{
			Name:        "dispatcher_enqueue",
			Description: "Enqueue a display job for processing",
			Backend:     Dispatcher,
			Method:      http.MethodPost,
			Path:        "/enqueue",
			Params: []Param{
				{
					Name:        "job_type",
					Type:        "string",
					Description: "Type of job (image, video, slideshow)",
					Enum:        []any{"image", "video", "slideshow"},
					Required:    true,
				},
				{Name: "source", Type: "string", Description: "Path or URL to the content", Required: true},
				{Name: "priority", Type: "integer", Description: "Job priority (higher = more urgent)", Default: 5},
				{Name: "options", Type: "object", Description: "Additional job options"},
			},
			Timeout:     10 * time.Second,
			Annotations: tools.NonIdempotentWriteAnnotations(),
		},
		{
			Name:        "dispatcher_queue_status",
			Description: "Get the current queue status",
			Backend:     Dispatcher,
			Method:      http.MethodGet,
			Path:        "/queue/status",
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
		{
			Name:        "dispatcher_job_status",
			Description: "Get the status of a specific job",
			Backend:     Dispatcher,
			Method:      http.MethodGet,
			Path:        "/job/{job_id}",
			Params:      []Param{jobID("The job ID to check")},
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
		{
			Name:        "dispatcher_cancel",
			Description: "Cancel a pending or running job",
			Backend:     Dispatcher,
			Method:      http.MethodDelete,
			Path:        "/job/{job_id}",
			Params:      []Param{jobID("The job ID to cancel")},
			Timeout:     10 * time.Second,
			Annotations: tools.DestructiveAnnotations(),
		},
	}
}
