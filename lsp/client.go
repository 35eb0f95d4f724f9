// Copyright 2025 Dave Lage (rockerBOO)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/MDBrothers/ada-mcp-bridge/logger"
	"github.com/MDBrothers/ada-mcp-bridge/types"
)

const (
	// DefaultRequestTimeout is applied to most LSP requests.
	DefaultRequestTimeout = 30 * time.Second
	// LongRequestTimeout is used by a handful of integration-style calls
	// that are known to be slower (workspace-wide symbol search, rename).
	LongRequestTimeout = 60 * time.Second

	shutdownGrace = 5 * time.Second
)

// ClientStatus is a coarse connectivity state surfaced to the readiness
// tool and to the health monitor.
type ClientStatus int32

const (
	StatusConnecting ClientStatus = iota
	StatusConnected
	StatusError
	StatusDisconnected
	StatusRestarting
)

func (s ClientStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	case StatusDisconnected:
		return "disconnected"
	case StatusRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}

// Client is one ada_language_server subprocess connection: framed
// JSON-RPC transport, request/response correlation (delegated to
// jsonrpc2.Conn's pending-id table), a diagnostics push store, and a
// per-client open-file registration cache.
type Client struct {
	command string
	args    []string
	cwd     string

	cmd    *exec.Cmd
	conn   *jsonrpc2.Conn
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	status    ClientStatus
	lastError string
	pid       int

	diagMu      sync.Mutex
	diagnostics map[string][]types.Diagnostic

	openMu sync.Mutex
	open   map[string]bool

	totalRequests      atomic.Int64
	successfulRequests atomic.Int64
	failedRequests     atomic.Int64
}

// NewClient constructs a Client for the given command/args/working
// directory without spawning it. Call Connect to start the subprocess.
func NewClient(command string, args []string, cwd string) (*Client, error) {
	if err := sanitizeArgs(args); err != nil {
		return nil, err
	}
	return &Client{
		command:     command,
		args:        args,
		cwd:         cwd,
		status:      StatusConnecting,
		diagnostics: make(map[string][]types.Diagnostic),
		open:        make(map[string]bool),
	}, nil
}

// sanitizeArgs rejects shell metacharacters in subprocess arguments. The
// command is spawned directly (never through a shell) but a config-supplied
// argument list is still an injection surface if later copied into a
// shell-invoking helper, so we hold it to the same bar here.
func sanitizeArgs(args []string) error {
	const forbidden = ";|&$`"
	for _, a := range args {
		if strings.ContainsAny(a, forbidden) || strings.Contains(a, "$(") {
			return fmt.Errorf("unsafe characters in language server argument: %q", a)
		}
	}
	return nil
}

// stdioReadWriteCloser adapts a subprocess's stdin/stdout pipes to a single
// io.ReadWriteCloser for jsonrpc2's buffered stream.
type stdioReadWriteCloser struct {
	in  io.WriteCloser
	out io.ReadCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.out.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.in.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	inErr := s.in.Close()
	outErr := s.out.Close()
	if inErr != nil {
		return inErr
	}
	return outErr
}

// clientHandler answers server-initiated requests (e.g.
// workspace/configuration) and dispatches server-initiated notifications
// (diagnostics, log messages) arriving on the same connection.
type clientHandler struct {
	client *Client
}

func (h *clientHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		h.client.handleNotification(req.Method, req.Params)
		return
	}
	// Server-initiated request: the core implements no server->client
	// capabilities, so every such request gets a default empty result.
	if err := conn.Reply(ctx, req.ID, map[string]any{}); err != nil {
		logger.Warn("failed to reply to server-initiated request {Method}: {Error}", req.Method, err.Error())
	}
}

func (c *Client) handleNotification(method string, params *json.RawMessage) {
	switch method {
	case "textDocument/publishDiagnostics":
		c.handlePublishDiagnostics(params)
	case "window/logMessage", "window/showMessage":
		c.handleLogMessage(method, params)
	default:
		// Unhandled notifications (e.g. $/progress) are discarded; the
		// core has no use for indexing-progress telemetry.
	}
}

type publishDiagnosticsParams struct {
	URI         string `json:"uri"`
	Diagnostics []struct {
		Range struct {
			Start struct{ Line, Character uint32 } `json:"start"`
			End   struct{ Line, Character uint32 } `json:"end"`
		} `json:"range"`
		Severity int    `json:"severity"`
		Code     any    `json:"code"`
		Source   string `json:"source"`
		Message  string `json:"message"`
	} `json:"diagnostics"`
}

func (c *Client) handlePublishDiagnostics(raw *json.RawMessage) {
	if raw == nil {
		return
	}
	var p publishDiagnosticsParams
	if err := json.Unmarshal(*raw, &p); err != nil {
		logger.Warn("malformed publishDiagnostics notification: {Error}", err.Error())
		return
	}
	path, err := URIToPath(p.URI)
	if err != nil {
		path = p.URI
	}
	diags := make([]types.Diagnostic, 0, len(p.Diagnostics))
	for _, d := range p.Diagnostics {
		sev := types.DiagnosticSeverity(d.Severity)
		if sev == 0 {
			sev = types.SeverityInformation
		}
		code := ""
		if d.Code != nil {
			code = fmt.Sprintf("%v", d.Code)
		}
		startLine, startCol := FromWirePosition(d.Range.Start.Line, d.Range.Start.Character)
		endLine, endCol := FromWirePosition(d.Range.End.Line, d.Range.End.Character)
		diags = append(diags, types.Diagnostic{
			File: path,
			Range: types.Range{
				Start: types.Position{Line: startLine, Column: startCol},
				End:   types.Position{Line: endLine, Column: endCol},
			},
			Message:  d.Message,
			Severity: sev,
			Code:     code,
			Source:   d.Source,
		})
	}

	c.diagMu.Lock()
	c.diagnostics[p.URI] = diags
	c.diagMu.Unlock()
}

func (c *Client) handleLogMessage(method string, raw *json.RawMessage) {
	if raw == nil {
		return
	}
	var p struct {
		Type    int    `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(*raw, &p); err != nil {
		return
	}
	msg := p.Message
	switch p.Type {
	case 1:
		logger.Error("LS {Method}: {Message}", method, msg)
	case 2:
		logger.Warn("LS {Method}: {Message}", method, msg)
	case 3:
		logger.Info("LS {Method}: {Message}", method, msg)
	default:
		logger.Debug("LS {Method}: {Message}", method, msg)
	}
}

// Connect spawns the subprocess and establishes the framed JSON-RPC
// connection over its stdio. It does not perform the initialize handshake;
// see Bootstrap.
func (c *Client) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, c.command, c.args...)
	cmd.Dir = c.cwd
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		cancel()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		cancel()
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		cancel()
		return fmt.Errorf("start language server: %w", err)
	}

	rwc := &stdioReadWriteCloser{in: stdin, out: stdout}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(runCtx, stream, &clientHandler{client: c})

	c.mu.Lock()
	c.cmd = cmd
	c.conn = conn
	c.ctx = runCtx
	c.cancel = cancel
	c.pid = cmd.Process.Pid
	c.status = StatusConnecting
	c.mu.Unlock()

	go c.drainStderr(stderr)
	go c.watchDisconnect(conn)
	go c.watchExit(cmd)

	return nil
}

func (c *Client) drainStderr(stderr io.ReadCloser) {
	buf := make([]byte, 4096)
	for {
		n, err := stderr.Read(buf)
		if n > 0 {
			logger.Debug("LS stderr: {Line}", strings.TrimRight(string(buf[:n]), "\n"))
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) watchDisconnect(conn *jsonrpc2.Conn) {
	<-conn.DisconnectNotify()
	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.status = StatusDisconnected
	}
	c.mu.Unlock()
}

func (c *Client) watchExit(cmd *exec.Cmd) {
	_ = cmd.Wait()
	c.mu.Lock()
	c.status = StatusDisconnected
	c.mu.Unlock()
}

// IsRunning reports whether the subprocess is believed to still be alive.
// The health monitor polls this.
func (c *Client) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cmd == nil || c.cmd.Process == nil {
		return false
	}
	return c.status != StatusDisconnected
}

func (c *Client) Context() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

func (c *Client) setStatus(s ClientStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.status = StatusError
	c.lastError = err.Error()
	c.mu.Unlock()
}

// SendRequest issues method/params and decodes the result into result,
// allocating a fresh request id (handled internally by jsonrpc2.Conn) and
// enforcing timeout. A nil result is valid for requests whose response
// body is not needed.
func (c *Client) SendRequest(ctx context.Context, method string, params, result any, timeout time.Duration) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return &ConnectionLostError{Reason: "not connected"}
	}

	c.totalRequests.Add(1)

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := conn.Call(reqCtx, method, params, result)
	if err == nil {
		c.successfulRequests.Add(1)
		if c.status2() == StatusError {
			c.setStatus(StatusConnected)
		}
		return nil
	}

	c.failedRequests.Add(1)

	if reqCtx.Err() != nil {
		return &TimeoutError{Method: method}
	}
	if rpcErr, ok := err.(*jsonrpc2.Error); ok {
		return &ProtocolError{Code: int(rpcErr.Code), Message: rpcErr.Message, Data: rpcErr.Data}
	}
	c.setError(err)
	return &ConnectionLostError{Reason: err.Error()}
}

func (c *Client) status2() ClientStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SendNotification is a fire-and-forget write: no id, no pending entry.
func (c *Client) SendNotification(ctx context.Context, method string, params any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return &ConnectionLostError{Reason: "not connected"}
	}
	return conn.Notify(ctx, method, params)
}

// GetDiagnostics returns a filtered snapshot of the diagnostics store.
// uri == "" matches every file; severity is one of
// error|warning|hint|info|all (unknown strings match nothing).
func (c *Client) GetDiagnostics(uri string, severity string) map[string][]types.Diagnostic {
	allowed := severityFilter(severity)

	c.diagMu.Lock()
	defer c.diagMu.Unlock()

	out := make(map[string][]types.Diagnostic)
	for u, diags := range c.diagnostics {
		if uri != "" && u != uri {
			continue
		}
		var filtered []types.Diagnostic
		for _, d := range diags {
			if allowed == nil || allowed[d.Severity] {
				filtered = append(filtered, d)
			}
		}
		out[u] = filtered
	}
	return out
}

func severityFilter(severity string) map[types.DiagnosticSeverity]bool {
	switch severity {
	case "", "all":
		return nil
	case "error":
		return map[types.DiagnosticSeverity]bool{types.SeverityError: true}
	case "warning":
		return map[types.DiagnosticSeverity]bool{types.SeverityWarning: true}
	case "hint":
		return map[types.DiagnosticSeverity]bool{types.SeverityHint: true, types.SeverityInformation: true}
	case "info":
		return map[types.DiagnosticSeverity]bool{types.SeverityInformation: true}
	default:
		return map[types.DiagnosticSeverity]bool{}
	}
}

// IsFileOpen reports whether uri has already been announced with
// textDocument/didOpen on this client.
func (c *Client) IsFileOpen(uri string) bool {
	c.openMu.Lock()
	defer c.openMu.Unlock()
	return c.open[uri]
}

// MarkFileOpen records that uri has been announced. Idempotent.
func (c *Client) MarkFileOpen(uri string) {
	c.openMu.Lock()
	defer c.openMu.Unlock()
	c.open[uri] = true
}

// Shutdown performs the best-effort LSP shutdown/exit sequence, then
// terminates the subprocess with a SIGTERM-then-SIGKILL grace period.
func (c *Client) Shutdown(ctx context.Context) error {
	c.mu.RLock()
	conn := c.conn
	cmd := c.cmd
	c.mu.RUnlock()

	if conn != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = conn.Call(shutdownCtx, "shutdown", nil, nil)
		cancel()
		_ = conn.Notify(ctx, "exit", nil)
		conn.Close()
	}

	c.cancel()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return terminateProcess(cmd, shutdownGrace)
}

func terminateProcess(cmd *exec.Cmd, grace time.Duration) error {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return cmd.Process.Kill()
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return cmd.Process.Kill()
	}
}

// ClientMetrics is a point-in-time snapshot implementing
// types.ClientMetricsProvider.
type ClientMetrics struct {
	Command   string
	Status    ClientStatus
	LastError string
	Connected bool
	Total     int64
	Succeeded int64
	Failed    int64
}

func (m *ClientMetrics) GetCommand() string       { return m.Command }
func (m *ClientMetrics) GetStatus() int           { return int(m.Status) }
func (m *ClientMetrics) GetLastError() string     { return m.LastError }
func (m *ClientMetrics) IsConnected() bool        { return m.Connected }
func (m *ClientMetrics) TotalRequests() int64      { return m.Total }
func (m *ClientMetrics) SuccessfulRequests() int64 { return m.Succeeded }
func (m *ClientMetrics) FailedRequests() int64     { return m.Failed }

// GetMetrics returns a consistent snapshot of this client's counters.
func (c *Client) GetMetrics() types.ClientMetricsProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &ClientMetrics{
		Command:   c.command,
		Status:    c.status,
		LastError: c.lastError,
		Connected: c.status == StatusConnected || c.status == StatusConnecting,
		Total:     c.totalRequests.Load(),
		Succeeded: c.successfulRequests.Load(),
		Failed:    c.failedRequests.Load(),
	}
}
