package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// HandlerFunc processes one decoded request. The returned value is
// serialized as the response result; a returned error becomes the
// response's error payload (message only, no internals leak across the
// process boundary).
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server is the subprocess side of the channel. It frames requests from
// its input stream, dispatches them to registered handlers and writes
// response envelopes to its output stream.
type Server struct {
	info     PeerInfo
	handlers map[string]HandlerFunc

	writeMu sync.Mutex
	out     io.Writer
}

// NewServer creates a server with the built-in initialize handler.
func NewServer(info PeerInfo) *Server {
	s := &Server{
		info:     info,
		handlers: make(map[string]HandlerFunc),
	}
	s.Handle("initialize", s.handleInitialize)
	return s
}

// Handle registers a handler under a method name, replacing any previous
// registration.
func (s *Server) Handle(method string, h HandlerFunc) {
	s.handlers[method] = h
}

// Run reads line-framed messages from r until EOF or ctx cancellation.
// Each request is dispatched on its own goroutine so a slow handler never
// blocks framing of subsequent input; writes are serialized internally.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = w

	var wg sync.WaitGroup
	defer wg.Wait()

	var framer Framer
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range framer.Push(buf[:n]) {
				s.dispatchLine(ctx, line, &wg)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
	}
}

func (s *Server) dispatchLine(ctx context.Context, line string, wg *sync.WaitGroup) {
	var in incoming
	if err := json.Unmarshal([]byte(line), &in); err != nil {
		slog.Warn("rpc: skipping malformed line", "error", err)
		return
	}
	if in.Method == "" {
		slog.Warn("rpc: skipping message without method")
		return
	}

	// Notification: dispatch without a reply.
	if in.ID == nil {
		if h, ok := s.handlers[in.Method]; ok {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := h(ctx, in.Params); err != nil {
					slog.Warn("rpc: notification handler failed", "method", in.Method, "error", err)
				}
			}()
		} else {
			slog.Debug("rpc: ignoring unknown notification", "method", in.Method)
		}
		return
	}

	id := *in.ID
	h, ok := s.handlers[in.Method]
	if !ok {
		s.writeError(id, CodeMethodNotFound, fmt.Sprintf("unknown method %q", in.Method))
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := h(ctx, in.Params)
		if err != nil {
			s.writeError(id, CodeInternalError, err.Error())
			return
		}
		s.writeResult(id, result)
	}()
}

func (s *Server) handleInitialize(_ context.Context, _ json.RawMessage) (any, error) {
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{"tools": map[string]any{}},
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) writeResult(id int64, result any) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.writeError(id, CodeInternalError, fmt.Sprintf("encode result: %v", err))
		return
	}
	s.writeLine(Response{JSONRPC: Version, ID: id, Result: raw})
}

func (s *Server) writeError(id int64, code int, message string) {
	s.writeLine(Response{JSONRPC: Version, ID: id, Error: &ErrorObject{Code: code, Message: message}})
}

func (s *Server) writeLine(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("rpc: encode response", "error", err)
		return
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		slog.Warn("rpc: write response", "error", err)
	}
}
