package catalog

import (
	"net/http"
	"time"

	"github.com/alucardeht/home-display-agent/internal/tools"
)

func audioEntries() []Entry {
	return []Entry{
		{
			Name:        "audio_identify",
			Description: "Identify audio content from a file or stream",
			Backend:     Audio,
			Method:      http.MethodPost,
			Path:        "/identify",
			Params: []Param{
				{Name: "source", Type: "string", Description: "Path or URL to the audio source", Required: true},
				{Name: "duration", Type: "integer", Description: "Duration in seconds to analyze", Default: 10},
			},
			Timeout:     30 * time.Second,
			Annotations: tools.NonIdempotentWriteAnnotations(),
		},
		{
			Name:        "audio_status",
			Description: "Get the status of an audio identification job",
			Backend:     Audio,
			Method:      http.MethodGet,
			Path:        "/status/{job_id}",
			Params: []Param{
				{Name: "job_id", Type: "string", Description: "The job ID to check", Required: true, In: InPath},
			},
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
	}
}
