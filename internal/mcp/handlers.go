package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/home-display-agent/internal/tools"
	"github.com/alucardeht/home-display-agent/pkg/protocol"
	"github.com/alucardeht/home-display-agent/pkg/version"
)

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		s.initialized.Store(true)
		return nil, nil
	case "ping":
		return map[string]interface{}{}, nil
	case "tools/list":
		return s.handleListTools(), nil
	case "tools/call":
		return s.handleCallTool(ctx, req)
	default:
		if req.Notif {
			s.log.Debug("ignoring notification", "method", req.Method)
			return nil, nil
		}
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}
}

func (s *Server) handleInitialize(req *jsonrpc2.Request) (interface{}, error) {
	var params protocol.InitializeParams
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, invalidParams("failed to parse initialize request: %v", err)
		}
	}

	s.mu.Lock()
	s.clientInfo = params.ClientInfo
	s.mu.Unlock()

	negotiated := version.Negotiate(params.ProtocolVersion)
	s.log.Info("client initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"protocol", negotiated)

	return protocol.InitializeResult{
		ProtocolVersion: negotiated,
		Capabilities: map[string]any{
			"tools": map[string]any{},
		},
		ServerInfo: protocol.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
	}, nil
}

func (s *Server) handleListTools() protocol.ListToolsResult {
	return protocol.ListToolsResult{Tools: Describe(s.dispatcher.Tools())}
}

func (s *Server) handleCallTool(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	if req.Params == nil {
		return nil, invalidParams("tools/call requires params")
	}

	var params protocol.CallToolParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, invalidParams("failed to parse tool call request: %v", err)
	}
	if params.Name == "" {
		return nil, invalidParams("tool name is required")
	}

	res := s.dispatcher.Call(ctx, params.Name, params.Arguments)
	return protocol.TextResult(res.Text(), !res.OK()), nil
}

// Describe converts tools into their tools/list wire form.
func Describe(list []tools.Tool) []protocol.Tool {
	result := make([]protocol.Tool, 0, len(list))
	for _, t := range list {
		def := protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			def.Title = annotated.Title()
			def.Annotations = annotated.Annotations()
		}
		result = append(result, def)
	}
	return result
}

func invalidParams(format string, args ...any) *jsonrpc2.Error {
	return &jsonrpc2.Error{
		Code:    jsonrpc2.CodeInvalidParams,
		Message: fmt.Sprintf(format, args...),
	}
}
