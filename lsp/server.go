// Package lsp serves builder generation to editors over the Language
// Server Protocol. Constructions of JavaFX scene classes are flagged with
// hint diagnostics, and a code action runs the generator through
// workspace/executeCommand.
package lsp

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/jfxbuilder/builder"
	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/workspace"
)

const lsName = "jfxbuilder"

var log = commonlog.GetLogger("jfxbuilder.lsp")

type Server struct {
	engine    *builder.Engine
	hints     *workspace.HintScanner
	documents *workspace.Documents
	version   string

	handler protocol.Handler
	server  *server.Server

	mu     sync.Mutex
	notify glsp.NotifyFunc
	call   glsp.CallFunc
	root   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer wires engine and hints to an LSP handler. Edits made by the
// engine are sent to the editor with workspace/applyEdit.
func NewServer(engine *builder.Engine, hints *workspace.HintScanner, documents *workspace.Documents, version string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		engine:    engine,
		hints:     hints,
		documents: documents,
		version:   version,
		root:      ".",
		ctx:       ctx,
		cancel:    cancel,
	}
	engine.Edits = &clientEdits{server: s}

	s.handler = protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		Shutdown:                s.shutdown,
		SetTrace:                s.setTrace,
		TextDocumentDidOpen:     s.textDocumentDidOpen,
		TextDocumentDidChange:   s.textDocumentDidChange,
		TextDocumentDidClose:    s.textDocumentDidClose,
		TextDocumentDidSave:     s.textDocumentDidSave,
		TextDocumentCodeAction:  s.textDocumentCodeAction,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
	}
	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

func (s *Server) RunStdio() error {
	defer s.wait()
	return s.server.RunStdio()
}

// wait stops background work and waits for it to finish.
func (s *Server) wait() {
	s.cancel()
	s.engine.Cancel()
	s.drain()
}

// drain waits for background work without cancelling it.
func (s *Server) drain() {
	s.wg.Wait()
}

// Root is the workspace folder reported by the editor.
func (s *Server) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.bind(ctx)
	root := "."
	if params.RootURI != nil && *params.RootURI != "" {
		root = langsvc.URIToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		root = *params.RootPath
	}
	s.mu.Lock()
	s.root = filepath.Clean(root)
	s.mu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindRefactorRewrite, protocol.CodeActionKindQuickFix},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandGenerate, CommandGenerateAll},
	}

	log.Info("initialized", "root", s.root)
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.bind(ctx)
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.wait()
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.bind(ctx)
	doc := params.TextDocument
	s.documents.Open(doc.URI, doc.Text, doc.Version)
	s.refreshHints(doc.URI)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.documents.Update(params.TextDocument.URI, whole.Text, params.TextDocument.Version)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.documents.Close(params.TextDocument.URI)
	s.publish(params.TextDocument.URI, nil)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if params.Text != nil {
		version := int32(0)
		if doc, ok := s.documents.Get(uri); ok {
			version = doc.Version
		}
		s.documents.Update(uri, *params.Text, version)
	}
	s.refreshHints(uri)
	return nil
}

// bind remembers how to reach the editor. Requests are handled on the
// connection's read loop, so work that talks back to the editor runs in
// the background using these.
func (s *Server) bind(ctx *glsp.Context) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = ctx.Notify
	s.call = ctx.Call
}

func (s *Server) client() (glsp.NotifyFunc, glsp.CallFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notify, s.call
}

func (s *Server) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// refreshHints rescans a Java document in the background and publishes
// its hints.
func (s *Server) refreshHints(uri string) {
	if s.hints == nil || !strings.HasSuffix(strings.ToLower(uri), ".java") {
		return
	}
	s.background(func(ctx context.Context) {
		path := langsvc.URIToPath(uri)
		hints, err := s.hints.Scan(ctx, path)
		if err != nil {
			if ctx.Err() == nil {
				log.Warning("hint scan failed", "path", path, "error", err)
			}
			return
		}
		s.publish(uri, hints)
	})
}

func (s *Server) publish(uri string, hints []workspace.Hint) {
	notify, _ := s.client()
	if notify == nil {
		return
	}
	diagnostics := make([]protocol.Diagnostic, 0, len(hints))
	for _, h := range hints {
		diagnostics = append(diagnostics, toProtocolDiagnostic(h.Diagnostic()))
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *Server) showMessage(typ protocol.MessageType, message string) {
	notify, _ := s.client()
	if notify == nil {
		log.Info("message", "text", message)
		return
	}
	notify(protocol.ServerWindowShowMessage, protocol.ShowMessageParams{Type: typ, Message: message})
}

func toProtocolDiagnostic(d langsvc.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverity(d.Severity)
	source := d.Source
	pd := protocol.Diagnostic{
		Range:    toProtocolRange(d.Range),
		Severity: &severity,
		Source:   &source,
		Message:  d.Message,
	}
	if d.Code != "" {
		pd.Code = &protocol.IntegerOrString{Value: d.Code}
	}
	return pd
}

func toProtocolRange(r langsvc.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(r.Start.Line), Character: protocol.UInteger(r.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(r.End.Line), Character: protocol.UInteger(r.End.Character)},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
