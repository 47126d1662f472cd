package catalog

import (
	"net/http"
	"time"

	"github.com/alucardeht/home-display-agent/internal/tools"
)

func overlayEntries() []Entry {
	return []Entry{
		{
			Name:        "overlay_create",
			Description: "Create an overlay image with text and graphics",
			Backend:     Overlay,
			Method:      http.MethodPost,
			Path:        "/create",
			Params: []Param{
				{Name: "template", Type: "string", Description: "Template name to use", Required: true},
				{Name: "data", Type: "object", Description: "Data to populate the template", Required: true},
				{Name: "width", Type: "integer", Description: "Overlay width in pixels", Default: 1920},
				{Name: "height", Type: "integer", Description: "Overlay height in pixels", Default: 1080},
			},
			Timeout:     30 * time.Second,
			Annotations: tools.NonIdempotentWriteAnnotations(),
		},
		{
			Name:        "overlay_list_templates",
			Description: "List available overlay templates",
			Backend:     Overlay,
			Method:      http.MethodGet,
			Path:        "/templates",
			Timeout:     10 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
		{
			Name:        "overlay_preview",
			Description: "Generate a preview of an overlay",
			Backend:     Overlay,
			Method:      http.MethodPost,
			Path:        "/preview",
			Params: []Param{
				{Name: "template", Type: "string", Description: "Template name to use", Required: true},
				{Name: "data", Type: "object", Description: "Data to populate the template", Required: true},
			},
			Timeout:     30 * time.Second,
			Annotations: tools.ReadOnlyAnnotations(),
		},
	}
}
