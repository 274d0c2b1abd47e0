package rpc

import "fmt"

// TransportError reports a broken channel: the subprocess could not be
// spawned, or its stream closed while calls were outstanding. Fatal to the
// connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HandshakeError reports that the initialize exchange did not complete
// before the connect deadline.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake failed: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// TimeoutError reports that a single request exceeded its deadline. The
// connection stays alive; only this call fails.
type TimeoutError struct {
	Method string
	ID     int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %q (id %d) timed out", e.Method, e.ID)
}

// RPCError carries a remote handler's error payload back to the caller.
type RPCError struct {
	Method string
	Remote ErrorObject
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %q: %s", e.Method, e.Remote.Message)
}
