package langsvc

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/jfxbuilder/java"
)

const typeHierarchyCommand = "java.navigate.openTypeHierarchy"

var log = commonlog.GetLogger("jfxbuilder.langsvc")

// Options configures a jdtls process.
type Options struct {
	// Command is the server executable followed by its arguments.
	Command []string
	// DataDir is passed as -data when set.
	DataDir string
	// RootDir is the workspace root sent in initialize.
	RootDir string
	// InitTimeout bounds initialize plus the wait for the server to report
	// that the project import finished.
	InitTimeout time.Duration
}

// Client talks to a Java language server. It is safe for concurrent use.
type Client struct {
	conn *jsonrpc2.Conn
	cmd  *exec.Cmd

	mu          sync.RWMutex
	diagnostics map[string][]Diagnostic
	versions    map[string]int32
	listeners   []func(uri string, diags []Diagnostic)

	ready     chan struct{}
	readyOnce sync.Once
}

type stdio struct {
	io.ReadCloser
	io.WriteCloser
}

func (s stdio) Close() error {
	werr := s.WriteCloser.Close()
	rerr := s.ReadCloser.Close()
	return errors.CombineErrors(werr, rerr)
}

// Start launches the language server, performs the initialize handshake
// and waits for the server to become ready.
func Start(ctx context.Context, opts Options) (*Client, error) {
	if len(opts.Command) == 0 {
		return nil, errors.WithHint(errors.New("no language server command configured"),
			"set jdtls.command in jfxbuilder.toml or JFXBUILDER_JDTLS_COMMAND")
	}
	args := append([]string(nil), opts.Command[1:]...)
	if opts.DataDir != "" {
		args = append(args, "-data", opts.DataDir)
	}
	cmd := exec.Command(opts.Command[0], args...)
	cmd.Dir = opts.RootDir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create jdtls stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create jdtls stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create jdtls stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "failed to start %s", opts.Command[0]),
			"install Eclipse JDT LS and make sure jdtls.command points to it")
	}
	go drainStderr(stderr)

	c := NewClient(ctx, stdio{ReadCloser: stdout, WriteCloser: stdin})
	c.cmd = cmd

	initCtx := ctx
	if opts.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, opts.InitTimeout)
		defer cancel()
	}
	if err := c.Initialize(initCtx, opts.RootDir); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.WaitReady(initCtx); err != nil {
		log.Warning("language server did not report ready, continuing", "error", err)
	}
	return c, nil
}

// NewClient wraps an established stream. The caller performs Initialize.
func NewClient(ctx context.Context, rwc io.ReadWriteCloser) *Client {
	c := &Client{
		diagnostics: make(map[string][]Diagnostic),
		versions:    make(map[string]int32),
		ready:       make(chan struct{}),
	}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	c.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(c.handle))
	return c
}

func drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		log.Debug("jdtls stderr", "line", scanner.Text())
	}
}

// Initialize establishes the session for the workspace rooted at rootDir.
func (c *Client) Initialize(ctx context.Context, rootDir string) error {
	params := map[string]any{
		"processId": os.Getpid(),
		"rootUri":   PathToURI(rootDir),
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"documentSymbol": map[string]any{
					"hierarchicalDocumentSymbolSupport": true,
				},
				"typeDefinition":     map[string]any{"linkSupport": true},
				"publishDiagnostics": map[string]any{},
				"synchronization":    map[string]any{"didSave": true},
			},
			"workspace": map[string]any{
				"executeCommand": map[string]any{},
				"configuration":  true,
			},
		},
		"initializationOptions": map[string]any{
			"extendedClientCapabilities": map[string]any{
				"classFileContentsSupport": true,
			},
		},
	}
	var result json.RawMessage
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return errors.Wrapf(err, "jdtls initialize failed for workspace %s", rootDir)
	}
	if err := c.conn.Notify(ctx, "initialized", map[string]any{}); err != nil {
		return errors.Wrap(err, "jdtls initialized notification failed")
	}
	return nil
}

// WaitReady blocks until the server reports that it finished importing the
// workspace, or ctx ends.
func (c *Client) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for jdtls")
	case <-c.conn.DisconnectNotify():
		return errors.New("jdtls connection closed")
	}
}

// Shutdown ends the session and waits for the process to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.conn.Call(ctx, "shutdown", nil, nil); err != nil {
		return errors.Wrap(err, "jdtls shutdown RPC failed")
	}
	if err := c.conn.Notify(ctx, "exit", nil); err != nil {
		return errors.Wrap(err, "jdtls exit notification failed")
	}
	return c.Close()
}

func (c *Client) Close() error {
	err := c.conn.Close()
	if errors.Is(err, jsonrpc2.ErrClosed) {
		err = nil
	}
	if c.cmd != nil && c.cmd.Process != nil {
		if werr := c.cmd.Wait(); werr != nil {
			log.Debug("jdtls exited", "error", werr)
		}
	}
	return err
}

// OnDiagnostics registers fn to be called for every publishDiagnostics
// notification after the cache is updated. fn runs on the connection's read
// loop and must not wait on a call to this client.
func (c *Client) OnDiagnostics(fn func(uri string, diags []Diagnostic)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Client) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case "textDocument/publishDiagnostics":
		var params publishDiagnosticsParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		c.storeDiagnostics(params)
	case "language/status":
		var status languageStatus
		if err := unmarshalParams(req, &status); err != nil {
			return nil, err
		}
		log.Debug("jdtls status", "type", status.Type, "message", status.Message)
		if status.Type == "Started" || status.Type == "ServiceReady" {
			c.readyOnce.Do(func() { close(c.ready) })
		}
	case "window/logMessage", "window/showMessage":
		var msg struct {
			Type    int    `json:"type"`
			Message string `json:"message"`
		}
		if err := unmarshalParams(req, &msg); err != nil {
			return nil, err
		}
		log.Debug("jdtls message", "type", msg.Type, "message", msg.Message)
	case "workspace/configuration":
		var params struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return make([]any, len(params.Items)), nil
	default:
		if !req.Notif {
			log.Debug("ignoring server request", "method", req.Method)
		}
	}
	return nil, nil
}

func unmarshalParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(*req.Params, v), "decoding %s params", req.Method)
}

func (c *Client) storeDiagnostics(params publishDiagnosticsParams) {
	diags := make([]Diagnostic, 0, len(params.Diagnostics))
	for i := range params.Diagnostics {
		diags = append(diags, params.Diagnostics[i].toDiagnostic())
	}
	c.mu.Lock()
	c.diagnostics[params.URI] = diags
	listeners := append([]func(string, []Diagnostic){}, c.listeners...)
	c.mu.Unlock()

	log.Debug("diagnostics published", "uri", params.URI, "count", len(diags))
	for _, fn := range listeners {
		fn(params.URI, append([]Diagnostic(nil), diags...))
	}
}

// Diagnostics returns the most recently published diagnostics for uri.
func (c *Client) Diagnostics(ctx context.Context, uri string) ([]Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Diagnostic(nil), c.diagnostics[uri]...), nil
}

// TypeHierarchy resolves the hierarchy of the type at pos. It returns nil
// without error when there is no type there.
func (c *Client) TypeHierarchy(ctx context.Context, uri string, pos Position, dir Direction, depth int) (*java.ClassHierarchyItem, error) {
	args, err := hierarchyArguments(uri, pos, dir, depth)
	if err != nil {
		return nil, err
	}
	var result *typeHierarchyItem
	params := map[string]any{"command": typeHierarchyCommand, "arguments": args}
	if err := c.conn.Call(ctx, "workspace/executeCommand", params, &result); err != nil {
		return nil, errors.Wrapf(err, "type hierarchy at %s:%d:%d", uri, pos.Line, pos.Character)
	}
	if result == nil {
		return nil, nil
	}
	return result.toModel(make(map[string]*java.ClassHierarchyItem)), nil
}

// hierarchyArguments encodes each argument as a JSON string, the form the
// openTypeHierarchy command expects.
func hierarchyArguments(uri string, pos Position, dir Direction, depth int) ([]string, error) {
	values := []any{
		textDocumentPositionParams{TextDocument: textDocumentIdentifier{URI: uri}, Position: pos},
		int(dir),
		depth,
	}
	args := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "encoding type hierarchy arguments")
		}
		args[i] = string(data)
	}
	return args, nil
}

func (c *Client) DocumentSymbols(ctx context.Context, uri string) ([]Symbol, error) {
	var result []documentSymbol
	params := map[string]any{"textDocument": textDocumentIdentifier{URI: uri}}
	if err := c.conn.Call(ctx, "textDocument/documentSymbol", params, &result); err != nil {
		return nil, errors.Wrapf(err, "document symbols of %s", uri)
	}
	symbols := make([]Symbol, 0, len(result))
	for i := range result {
		symbols = append(symbols, result[i].toSymbol())
	}
	return symbols, nil
}

func (c *Client) TypeDefinition(ctx context.Context, uri string, pos Position) ([]Location, error) {
	var raw json.RawMessage
	params := textDocumentPositionParams{TextDocument: textDocumentIdentifier{URI: uri}, Position: pos}
	if err := c.conn.Call(ctx, "textDocument/typeDefinition", params, &raw); err != nil {
		return nil, errors.Wrapf(err, "type definition at %s:%d:%d", uri, pos.Line, pos.Character)
	}
	locations, err := decodeLocations(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decoding type definition")
	}
	return locations, nil
}

// SyncDocument opens uri with text on first use and sends the full text as
// a change afterwards.
func (c *Client) SyncDocument(ctx context.Context, uri, text string) error {
	c.mu.Lock()
	version, open := c.versions[uri]
	version++
	c.versions[uri] = version
	c.mu.Unlock()

	if !open {
		params := map[string]any{
			"textDocument": map[string]any{
				"uri":        uri,
				"languageId": "java",
				"version":    version,
				"text":       text,
			},
		}
		return errors.Wrapf(c.conn.Notify(ctx, "textDocument/didOpen", params), "opening %s", uri)
	}
	params := map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": version},
		"contentChanges": []map[string]any{{"text": text}},
	}
	if err := c.conn.Notify(ctx, "textDocument/didChange", params); err != nil {
		return errors.Wrapf(err, "changing %s", uri)
	}
	return errors.Wrapf(c.conn.Notify(ctx, "textDocument/didSave", map[string]any{
		"textDocument": textDocumentIdentifier{URI: uri},
	}), "saving %s", uri)
}

// CloseDocument forgets uri on the server and in the diagnostics cache.
func (c *Client) CloseDocument(ctx context.Context, uri string) error {
	c.mu.Lock()
	_, open := c.versions[uri]
	delete(c.versions, uri)
	delete(c.diagnostics, uri)
	c.mu.Unlock()
	if !open {
		return nil
	}
	params := map[string]any{"textDocument": textDocumentIdentifier{URI: uri}}
	return errors.Wrapf(c.conn.Notify(ctx, "textDocument/didClose", params), "closing %s", uri)
}

var _ Service = (*Client)(nil)
