// Package catalog is the table of tools exposed by the agent. Each entry
// describes one backend route; the same entry produces the tool's input
// schema and the outbound request.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alucardeht/home-display-agent/internal/backend"
	"github.com/alucardeht/home-display-agent/internal/config"
	"github.com/alucardeht/home-display-agent/internal/tools"
)

type Backend string

const (
	Audio      Backend = "audio"
	Image      Backend = "image"
	Overlay    Backend = "overlay"
	Dispatcher Backend = "dispatcher"
	Monitor    Backend = "monitor"
)

type Placement int

const (
	InBody Placement = iota
	InPath
	InQuery
)

// Param is one argument of a tool. A missing optional argument takes
// Default; with no Default it is left out of the request.
type Param struct {
	Name        string
	Type        string
	Description string
	Default     any
	Enum        []any
	Required    bool
	In          Placement
}

type Entry struct {
	Name        string
	Description string
	Backend     Backend
	Method      string
	Path        string
	Params      []Param
	Timeout     time.Duration
	Annotations map[string]bool
}

// Doer executes a backend request. *backend.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req backend.Request) (any, error)
}

// Entries returns every route in catalog order.
func Entries() []Entry {
	return slices.Concat(
		audioEntries(),
		imageEntries(),
		overlayEntries(),
		dispatcherEntries(),
		monitorEntries(),
	)
}

// Tools binds entries to their backend base URLs.
func Tools(entries []Entry, services config.ServiceConfig, client Doer) []tools.Tool {
	result := make([]tools.Tool, 0, len(entries))
	for _, e := range entries {
		result = append(result, newRoute(e, BaseURL(services, e.Backend), client))
	}
	return result
}

func BaseURL(services config.ServiceConfig, b Backend) string {
	switch b {
	case Audio:
		return services.AudioIDURL
	case Image:
		return services.ImageOptURL
	case Overlay:
		return services.OverlayURL
	case Dispatcher:
		return services.DispatcherURL
	case Monitor:
		return services.MonitorURL
	default:
		return ""
	}
}

func (e Entry) Schema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(e.Params)),
	}

	for _, p := range e.Params {
		prop := &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
			Enum:        p.Enum,
		}
		if p.Default != nil {
			raw, err := json.Marshal(p.Default)
			if err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[p.Name] = prop

		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return schema
}

// Request builds the outbound call for args against baseURL.
func (e Entry) Request(baseURL string, args map[string]any) (backend.Request, error) {
	path := e.Path
	var body map[string]any
	var query url.Values

	for _, p := range e.Params {
		v, ok := args[p.Name]
		if !ok {
			if p.Required {
				return backend.Request{}, &tools.MissingArgumentError{Key: p.Name}
			}
			if p.Default == nil {
				continue
			}
			v = p.Default
		}

		switch p.In {
		case InPath, InQuery:
			s, ok := scalar(v)
			if !ok {
				return backend.Request{}, &tools.ArgumentTypeError{Key: p.Name, Reason: "must be a string, number or boolean"}
			}
			if p.In == InPath {
				path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(s))
				break
			}
			if query == nil {
				query = url.Values{}
			}
			query.Set(p.Name, s)
		default:
			if body == nil {
				body = make(map[string]any)
			}
			body[p.Name] = v
		}
	}

	req := backend.Request{
		Backend: string(e.Backend),
		Method:  e.Method,
		URL:     baseURL + path,
		Query:   query,
		Timeout: e.Timeout,
	}
	if body != nil {
		req.Body = body
	}
	return req, nil
}

// scalar renders v for a path segment or query value. Objects and arrays
// have no such form.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

type route struct {
	entry   Entry
	baseURL string
	client  Doer
	title   string
	schema  *jsonschema.Schema
}

func newRoute(e Entry, baseURL string, client Doer) *route {
	return &route{
		entry:   e,
		baseURL: baseURL,
		client:  client,
		title:   cases.Title(language.English).String(strings.ReplaceAll(e.Name, "_", " ")),
		schema:  e.Schema(),
	}
}

func (r *route) Name() string { return r.entry.Name }
func (r *route) Description() string { return r.entry.Description }
func (r *route) Schema() *jsonschema.Schema { return r.schema }
func (r *route) Title() string { return r.title }
func (r *route) Annotations() map[string]bool { return r.entry.Annotations }

func (r *route) Execute(ctx context.Context, args map[string]any) (any, error) {
	req, err := r.entry.Request(r.baseURL, args)
	if err != nil {
		return nil, err
	}
	return r.client.Do(ctx, req)
}
