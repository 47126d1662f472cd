package catalog

import (
	"net/http"
	"time"

	"github.com/alucardeht/home-display-agent/internal/tools"
)

func imageEntries() []Entry {
	return []Entry{
		{
			Name:        "image_optimize",
			Description: "Optimize an image for display",
			Backend:     Image,
			Method:      http.MethodPost,
			Path:        "/optimize",
			Params: []Param{
				{Name: "source", Type: "string", Description: "Path or URL to the image", Required: true},
				{Name: "width", Type: "integer", Description: "Target width in pixels"},
				{Name: "height", Type: "integer", Description: "Target height in pixels"},
				{
					Name:        "format",
					Type:        "string",
					Description: "Output format (jpeg, png, webp)",
					Enum:        []any{"jpeg", "png", "webp"},
					Default:     "webp",
				},
				{Name: "quality", Type: "integer", Description: "Output quality (1-100)", Default: 85},
			},
			// Large sources are re-encoded synchronously.
			Timeout:     60 * time.Second,
			Annotations: tools.SafeWriteAnnotations(),
		},
		{
			Name:        "image_info",
			Description: "Get metadata and info about an image",
			Backend:     Image,
			Method:      http.MethodPost,
			Path:        "/info",
			Params: []Param{
				{Name: "source", Type: "string", Description: "Path or URL to the image", Required: true},
			},
			Timeout:     30 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
	}
}
