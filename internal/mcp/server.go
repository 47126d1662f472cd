package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/home-display-agent/internal/dispatch"
	"github.com/alucardeht/home-display-agent/internal/logger"
	"github.com/alucardeht/home-display-agent/pkg/protocol"
)

const ServerName = "home-display-agent"

type Server struct {
	dispatcher *dispatch.Dispatcher
	log        *slog.Logger
	startTime  time.Time

	initialized atomic.Bool
	mu          sync.RWMutex
	clientInfo  protocol.Implementation
}

func NewServer(dispatcher *dispatch.Dispatcher) *Server {
	return &Server{
		dispatcher: dispatcher,
		log:        logger.ForComponent("mcp"),
		startTime:  time.Now(),
	}
}

// Serve speaks newline-delimited JSON-RPC 2.0 on rwc until the peer
// disconnects or ctx is cancelled. Requests are handled concurrently.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	out := &syncWriter{w: rwc}
	codec := LineCodec{Invalid: func(line []byte, err error) { s.reject(out, line, err) }}
	stream := jsonrpc2.NewBufferedStream(framedConn{Reader: rwc, Writer: out, Closer: rwc}, codec)
	handler := jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(s.handle))
	conn := jsonrpc2.NewConn(ctx, stream, handler,
		jsonrpc2.SetLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelWarn)))

	select {
	case <-conn.DisconnectNotify():
		s.log.Info("client disconnected", "uptime", time.Since(s.startTime))
	case <-ctx.Done():
		s.log.Info("shutting down")
		_ = conn.Close()
	}
	return nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	s.log.Info("serving MCP on stdio")
	return s.Serve(ctx, &stdioReadWriteCloser{reader: os.Stdin, writer: os.Stdout})
}

func (s *Server) Initialized() bool {
	return s.initialized.Load()
}

type errorResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *jsonrpc2.ID    `json:"id"`
	Error   *jsonrpc2.Error `json:"error"`
}

// reject answers a line that is not a JSON-RPC message. Unparseable JSON
// gets a parse error with a null id; anything else is an invalid request,
// echoing its id when one can be read.
func (s *Server) reject(w io.Writer, line []byte, cause error) {
	resp := errorResponse{
		JSONRPC: "2.0",
		Error:   &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "Invalid Request"},
	}

	if !json.Valid(line) {
		resp.Error = &jsonrpc2.Error{Code: jsonrpc2.CodeParseError, Message: "Parse error"}
	} else {
		var withID struct {
			ID *jsonrpc2.ID `json:"id"`
		}
		if json.Unmarshal(line, &withID) == nil {
			resp.ID = withID.ID
		}
	}

	s.log.Warn("rejected malformed message",
		"code", resp.Error.Code,
		"bytes", len(line),
		"error", cause)

	if err := (LineCodec{}).WriteObject(w, resp); err != nil {
		s.log.Debug("failed to write rejection", "error", err)
	}
}

func (s *Server) ClientInfo() protocol.Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}

// LineCodec frames one JSON value per line, as MCP's stdio transport does.
// Invalid, when set, receives lines that do not decode and reading goes on
// with the next line. Without it a bad line ends the stream.
type LineCodec struct {
	Invalid func(line []byte, err error)
}

func (LineCodec) WriteObject(stream io.Writer, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = stream.Write(data)
	return err
}

func (c LineCodec) ReadObject(stream *bufio.Reader, v interface{}) error {
	for {
		line, err := stream.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			uerr := json.Unmarshal(trimmed, v)
			if uerr == nil || c.Invalid == nil {
				return uerr
			}
			c.Invalid(trimmed, uerr)
			reset(v)
		}
		if err != nil {
			return err
		}
	}
}

// reset clears whatever a failed decode left behind in v.
func reset(v interface{}) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv.Elem().SetZero()
	}
}

// syncWriter keeps rejections from interleaving with the connection's own
// writes. Each framed message reaches it as a single Write.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type framedConn struct {
	io.Reader
	io.Writer
	io.Closer
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *stdioReadWriteCloser) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

func (s *stdioReadWriteCloser) Close() error {
	rerr := s.reader.Close()
	werr := s.writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
