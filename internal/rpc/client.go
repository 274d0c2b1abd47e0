package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultRequestTimeout bounds a single outstanding request.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultConnectTimeout bounds the initialize handshake.
	DefaultConnectTimeout = 15 * time.Second
)

// pendingCall is one entry of the pending-request table. It is resolved
// exactly once: whichever of response arrival, timeout or teardown removes
// it from the table first delivers the outcome.
type pendingCall struct {
	method string
	ch     chan outcome
	timer  *time.Timer
}

type outcome struct {
	result json.RawMessage
	err    error
}

// ClientOptions tunes a Client. Zero values mean defaults.
type ClientOptions struct {
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	ClientInfo     PeerInfo
}

// Client owns one subprocess channel. Multiple goroutines may issue
// requests concurrently; they share the single byte stream and are
// multiplexed by request id.
type Client struct {
	transport Transport
	opts      ClientOptions

	writeMu sync.Mutex
	stdin   io.WriteCloser

	mu      sync.Mutex
	pending map[int64]*pendingCall
	closed  bool

	nextID   atomic.Int64
	readDone chan struct{}
}

// NewClient creates a client over the given transport. Connect must be
// called before any request.
func NewClient(transport Transport, opts ClientOptions) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ClientInfo.Name == "" {
		opts.ClientInfo = PeerInfo{Name: "nag", Version: "0.1.0"}
	}
	return &Client{
		transport: transport,
		opts:      opts,
		pending:   make(map[int64]*pendingCall),
		readDone:  make(chan struct{}),
	}
}

// Connect starts the subprocess, wires its streams and performs the
// initialize/initialized handshake.
func (c *Client) Connect(ctx context.Context) error {
	stdin, stdout, stderr, err := c.transport.Start(ctx)
	if err != nil {
		return &TransportError{Op: "connect", Err: err}
	}
	c.stdin = stdin

	go c.readLoop(stdout)
	go logStderr(stderr)

	hctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      c.opts.ClientInfo,
	}
	raw, err := c.request(hctx, "initialize", params, c.opts.ConnectTimeout)
	if err != nil {
		c.Close()
		return &HandshakeError{Err: err}
	}

	var res InitializeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		c.Close()
		return &HandshakeError{Err: fmt.Errorf("decode initialize result: %w", err)}
	}
	slog.Debug("rpc connected", "server", res.ServerInfo.Name, "protocol", res.ProtocolVersion)

	if err := c.Notify("initialized", map[string]any{}); err != nil {
		c.Close()
		return &HandshakeError{Err: err}
	}
	return nil
}

// Request sends a call and blocks until its single outcome: the matching
// response, a TimeoutError after the request timeout, or ctx cancellation.
func (c *Client) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.request(ctx, method, params, c.opts.RequestTimeout)
}

// Call is Request plus decoding of the result into out (out may be nil).
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	raw, err := c.request(ctx, method, params, c.opts.RequestTimeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}

	id := c.nextID.Add(1)
	pc := &pendingCall{method: method, ch: make(chan outcome, 1)}
	pc.timer = time.AfterFunc(timeout, func() {
		if taken := c.take(id); taken != nil {
			taken.ch <- outcome{err: &TimeoutError{Method: method, ID: id}}
		}
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		pc.timer.Stop()
		return nil, &TransportError{Op: "request", Err: errors.New("client closed")}
	}
	c.pending[id] = pc
	c.mu.Unlock()

	req := Request{JSONRPC: Version, ID: id, Method: method, Params: raw}
	if err := c.writeLine(req); err != nil {
		if taken := c.take(id); taken != nil {
			taken.timer.Stop()
		}
		return nil, &TransportError{Op: "write", Err: err}
	}

	select {
	case out := <-pc.ch:
		return out.result, out.err
	case <-ctx.Done():
		if taken := c.take(id); taken != nil {
			taken.timer.Stop()
		}
		return nil, ctx.Err()
	}
}

// Notify sends a fire-and-forget notification. Only a synchronous write
// failure is surfaced.
func (c *Client) Notify(method string, params any) error {
	raw, err := marshalParams(params)
	if err != nil {
		return fmt.Errorf("encode %s params: %w", method, err)
	}
	if err := c.writeLine(Notification{JSONRPC: Version, Method: method, Params: raw}); err != nil {
		return &TransportError{Op: "notify", Err: err}
	}
	return nil
}

// Close terminates the subprocess and fails every outstanding call.
// Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.transport.Close()
	c.failPending(&TransportError{Op: "close", Err: errors.New("connection closed")})
	return err
}

// take removes and returns the pending entry for id, or nil if it was
// already resolved. This is the single compare-and-clear step that makes
// response delivery, timeout and teardown mutually exclusive.
func (c *Client) take(id int64) *pendingCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return pc
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]*pendingCall)
	c.mu.Unlock()

	for _, pc := range pending {
		pc.timer.Stop()
		pc.ch <- outcome{err: err}
	}
}

// readLoop frames the subprocess stdout and dispatches each line to its
// pending entry. One corrupt line never wedges the channel.
func (c *Client) readLoop(stdout io.Reader) {
	defer close(c.readDone)

	var framer Framer
	buf := make([]byte, 32*1024)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			for _, line := range framer.Push(buf[:n]) {
				c.handleLine(line)
			}
		}
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && !errors.Is(err, io.EOF) {
				slog.Warn("rpc read loop ended", "error", err)
			}
			c.failPending(&TransportError{Op: "read", Err: err})
			return
		}
	}
}

func (c *Client) handleLine(line string) {
	var in incoming
	if err := json.Unmarshal([]byte(line), &in); err != nil {
		slog.Warn("rpc: dropping malformed line", "error", err)
		return
	}

	// Server-initiated traffic: nag's server never calls back, so anything
	// carrying a method here is logged and ignored.
	if in.Method != "" {
		slog.Debug("rpc: ignoring server-initiated message", "method", in.Method)
		return
	}
	if in.ID == nil {
		slog.Warn("rpc: dropping response without id")
		return
	}

	pc := c.take(*in.ID)
	if pc == nil {
		slog.Debug("rpc: response for unknown id", "id", *in.ID)
		return
	}
	pc.timer.Stop()

	if in.Error != nil {
		pc.ch <- outcome{err: &RPCError{Method: pc.method, Remote: *in.Error}}
		return
	}
	pc.ch <- outcome{result: in.Result}
}

func (c *Client) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.stdin.Write(data)
	return err
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	return json.Marshal(params)
}

// logStderr mirrors the subprocess error stream into the log, line by line.
func logStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			slog.Debug("server", "stderr", line)
		}
	}
}
