package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/jfxbuilder/builder"
	"github.com/dhamidi/jfxbuilder/java"
	"github.com/dhamidi/jfxbuilder/langsvc"
	"github.com/dhamidi/jfxbuilder/workspace"
)

const (
	CommandGenerate    = "jfxbuilder.generate"
	CommandGenerateAll = "jfxbuilder.generateAll"
)

var errEditRejected = errors.New("editor rejected the edit")

func (s *Server) textDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	doc, ok := s.documents.Get(uri)
	if !ok || !strings.HasSuffix(strings.ToLower(uri), ".java") {
		return nil, nil
	}
	return codeActions(uri, doc.Text, int(params.Range.Start.Line), params.Context.Diagnostics), nil
}

// codeActions offers generation for the construction on line, and for
// every construction in the document when there are several.
func codeActions(uri, text string, line int, diagnostics []protocol.Diagnostic) []protocol.CodeAction {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return nil
	}
	var actions []protocol.CodeAction
	if c, ok := java.FindConstruction(line, strings.TrimSuffix(lines[line], "\r")); ok {
		title := "Generate " + c.SimpleName + "Builder"
		kind := protocol.CodeActionKindRefactorRewrite
		var related []protocol.Diagnostic
		for _, d := range diagnostics {
			if d.Source != nil && *d.Source == workspace.HintSource && int(d.Range.Start.Line) == line {
				related = append(related, d)
			}
		}
		if len(related) > 0 {
			kind = protocol.CodeActionKindQuickFix
		}
		actions = append(actions, protocol.CodeAction{
			Title:       title,
			Kind:        &kind,
			Diagnostics: related,
			IsPreferred: boolPtr(len(related) > 0),
			Command: &protocol.Command{
				Title:     title,
				Command:   CommandGenerate,
				Arguments: []any{uri, line},
			},
		})
	}
	if len(java.FindConstructions([]byte(text))) > 1 {
		kind := protocol.CodeActionKindRefactorRewrite
		actions = append(actions, protocol.CodeAction{
			Title: "Generate all builders in file",
			Kind:  &kind,
			Command: &protocol.Command{
				Title:     "Generate all builders in file",
				Command:   CommandGenerateAll,
				Arguments: []any{uri},
			},
		})
	}
	return actions
}

// workspaceExecuteCommand starts generation in the background and returns
// at once; the outcome is reported with window/showMessage.
func (s *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	s.bind(ctx)
	switch params.Command {
	case CommandGenerate:
		uri, line, err := generateArgs(params.Arguments)
		if err != nil {
			return nil, err
		}
		s.background(func(ctx context.Context) { s.generate(ctx, uri, line) })
	case CommandGenerateAll:
		uri, err := uriArg(params.Arguments)
		if err != nil {
			return nil, err
		}
		s.background(func(ctx context.Context) { s.generateAll(ctx, uri) })
	default:
		return nil, errors.Newf("unknown command %q", params.Command)
	}
	return nil, nil
}

func (s *Server) generate(ctx context.Context, uri string, line int) {
	path := langsvc.URIToPath(uri)
	result, err := s.engine.Generate(ctx, builder.Request{Path: path, Line: line})
	if err != nil {
		s.report(err)
		return
	}
	if result.Skipped {
		log.Info("no enclosing class, nothing generated", "path", path, "target", result.Target)
		return
	}
	s.showMessage(protocol.MessageTypeInfo, generatedMessage(result))
	s.refreshHints(uri)
}

func (s *Server) generateAll(ctx context.Context, uri string) {
	path := langsvc.URIToPath(uri)
	results, err := s.engine.GenerateAll(ctx, path)
	if err != nil {
		s.report(err)
	}
	var names []string
	for _, r := range results {
		if !r.Skipped {
			names = append(names, r.Target+"Builder")
		}
	}
	if len(names) > 0 {
		s.showMessage(protocol.MessageTypeInfo, "Generated "+strings.Join(names, ", "))
	}
	s.refreshHints(uri)
}

func (s *Server) report(err error) {
	typ, message, ok := messageFor(err)
	if !ok {
		if errors.Is(err, builder.ErrCancelled) {
			log.Debug("generation abandoned", "error", err)
		} else {
			log.Error("generation failed", "error", err)
		}
		return
	}
	s.showMessage(typ, message)
}

// messageFor maps a generation error to what the user sees. Only input
// that does not fit and an empty result are shown; cancellation and tool
// failures are logged.
func messageFor(err error) (protocol.MessageType, string, bool) {
	switch {
	case errors.Is(err, builder.ErrNoMembers):
		return protocol.MessageTypeInfo, "No members found", true
	case errors.Is(err, builder.ErrClassNotFound):
		return protocol.MessageTypeInfo, "Class not found", true
	case errors.Is(err, builder.ErrNotJava):
		return protocol.MessageTypeError, "Not a Java file", true
	case errors.Is(err, builder.ErrNotConstruction):
		return protocol.MessageTypeError, "No constructor call found on this line", true
	}
	return 0, "", false
}

func generatedMessage(r *builder.Result) string {
	msg := fmt.Sprintf("Generated %sBuilder with %d methods", r.Target, r.Methods)
	if r.TypeParameters != "" {
		msg += " and type parameters " + r.TypeParameters
	}
	return msg
}

func generateArgs(args []any) (string, int, error) {
	uri, err := uriArg(args)
	if err != nil {
		return "", 0, err
	}
	if len(args) < 2 {
		return "", 0, errors.New("missing line argument")
	}
	switch v := args[1].(type) {
	case float64:
		return uri, int(v), nil
	case int:
		return uri, v, nil
	}
	return "", 0, errors.Newf("line argument must be a number, got %T", args[1])
}

func uriArg(args []any) (string, error) {
	if len(args) == 0 {
		return "", errors.New("missing document argument")
	}
	uri, ok := args[0].(string)
	if !ok || uri == "" {
		return "", errors.Newf("document argument must be a URI, got %T", args[0])
	}
	return uri, nil
}

// clientEdits applies engine edits through the editor so open buffers and
// undo history stay consistent.
type clientEdits struct {
	server *Server
}

func (c *clientEdits) ApplyEdit(ctx context.Context, edit *langsvc.WorkspaceEdit) error {
	_, call := c.server.client()
	if call == nil {
		return errors.New("no editor connection")
	}
	label := "Generate builder"
	var response protocol.ApplyWorkspaceEditResponse
	call(protocol.ServerWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{
		Label: &label,
		Edit:  toProtocolEdit(edit),
	}, &response)
	if !response.Applied {
		reason := ""
		if response.FailureReason != nil {
			reason = *response.FailureReason
		}
		return errors.Wrapf(errEditRejected, "%s", reason)
	}
	return nil
}

func toProtocolEdit(edit *langsvc.WorkspaceEdit) protocol.WorkspaceEdit {
	changes := make(map[protocol.DocumentUri][]protocol.TextEdit, len(edit.Changes))
	for uri, edits := range edit.Changes {
		for _, e := range edits {
			changes[uri] = append(changes[uri], protocol.TextEdit{Range: toProtocolRange(e.Range), NewText: e.NewText})
		}
	}
	return protocol.WorkspaceEdit{Changes: changes}
}
