// Package rpc implements the newline-delimited JSON-RPC 2.0 transport nag
// uses between the agent process and its tool server subprocess.
package rpc

import "encoding/json"

// Version is the JSON-RPC protocol version carried on every message.
const Version = "2.0"

// ProtocolVersion identifies the tool protocol spoken over the transport.
const ProtocolVersion = "2025-03-26"

// Request is a call that expects exactly one Response with the same ID.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Notification is a one-way message: no ID, no response.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response carries either a result or an error payload, never both.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the error payload of a failed Response.
type ErrorObject struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes used by the server.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// incoming is the union shape used to classify a framed line before
// dispatching it. A message with a method is a request (or, without an id,
// a notification); a message without a method is a response.
type incoming struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   *ErrorObject    `json:"error"`
}

// InitializeParams is the payload of the initialize handshake request.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      PeerInfo       `json:"clientInfo"`
}

// InitializeResult is the server's half of the handshake.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      PeerInfo       `json:"serverInfo"`
}

// PeerInfo identifies one end of the channel.
type PeerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
