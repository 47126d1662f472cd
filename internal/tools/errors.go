package tools

import "fmt"

type ErrorKind string

const (
	KindUpstream         ErrorKind = "upstream"
	KindNetwork          ErrorKind = "network"
	KindUnknownTool      ErrorKind = "unknown_tool"
	KindInvalidArguments ErrorKind = "invalid_arguments"
	KindInternal         ErrorKind = "internal"
)

// ToolError is the failure half of a tool result. Its message is what the
// caller sees as the text payload.
type ToolError struct {
	Kind    ErrorKind
	Tool    string
	Status  int
	Message string
}

func (e *ToolError) Error() string {
	switch e.Kind {
	case KindUpstream:
		return fmt.Sprintf("HTTP error: %d - %s", e.Status, e.Message)
	case KindNetwork:
		return fmt.Sprintf("Request error: %s", e.Message)
	default:
		return fmt.Sprintf("Error executing tool %s: %s", e.Tool, e.Message)
	}
}

func NewUpstreamError(name string, status int, body string) *ToolError {
	return &ToolError{Kind: KindUpstream, Tool: name, Status: status, Message: body}
}

func NewNetworkError(name string, err error) *ToolError {
	return &ToolError{Kind: KindNetwork, Tool: name, Message: err.Error()}
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Kind:    KindUnknownTool,
		Tool:    name,
		Message: fmt.Sprintf("Unknown tool: %s", name),
	}
}

func NewInvalidArgumentsError(name string, err error) *ToolError {
	return &ToolError{Kind: KindInvalidArguments, Tool: name, Message: err.Error()}
}

func NewToolExecutionError(name string, err error) *ToolError {
	return &ToolError{Kind: KindInternal, Tool: name, Message: err.Error()}
}

// MissingArgumentError marks a required key absent from the arguments.
type MissingArgumentError struct {
	Key string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Key)
}

// ArgumentTypeError marks an argument whose value cannot be sent where the
// route places it.
type ArgumentTypeError struct {
	Key    string
	Reason string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Key, e.Reason)
}
