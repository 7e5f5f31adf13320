// Package rpc implements the line-delimited JSON-RPC 2.0 transport this plugin
// speaks with its host over stdin/stdout.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Standard JSON-RPC error codes used by this plugin.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeOperationError = -32000
)

// Request is one inbound JSON-RPC call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCError is the error member of a Response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Response is one outbound JSON-RPC reply. ID is never omitted: a parse
// failure has no request id to echo back and must still serialize "id":null,
// per JSON-RPC 2.0 and this plugin's own parse-error contract.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Handler is the function signature every registered RPC method must satisfy.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher is a simple method-name → Handler routing table.
type Dispatcher struct {
	methods map[string]Handler
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{methods: make(map[string]Handler)}
}

// Register adds a handler for method. Registering the same name twice panics —
// this only ever happens at process startup wiring, and a duplicate registration
// is a programming error, not a runtime condition.
func (d *Dispatcher) Register(method string, h Handler) {
	if _, exists := d.methods[method]; exists {
		panic(fmt.Sprintf("rpc: method %q already registered", method))
	}
	d.methods[method] = h
}

// maxLineBytes bounds a single JSON-RPC message; large enough for translated
// request/response bodies with embedded images.
const maxLineBytes = 64 * 1024 * 1024

// Serve runs the line-delimited request/response loop until r is exhausted or ctx
// is cancelled, writing one JSON response line to w per input line.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := d.handleLine(ctx, line)
		if err := writeResponse(w, resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (d *Dispatcher) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{JSONRPC: "2.0", Error: &RPCError{Code: CodeParseError, Message: "parse error: " + err.Error()}}
	}

	handler, ok := d.methods[req.Method]
	if !ok {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}}
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		log.WithFields(log.Fields{"method": req.Method}).WithError(err).Debug("rpc operation failed")
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{Code: CodeOperationError, Message: err.Error()}}
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func writeResponse(w io.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
