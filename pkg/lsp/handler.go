package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/vito/lil/pkg/lil"
)

const diagnosticSource = "lil"

// Handler serves the language server's methods. It is a jrpc2.Assigner.
type Handler struct {
	methods handler.Map

	srv *jrpc2.Server

	mu       sync.Mutex
	files    map[DocumentURI]*File
	rootPath string
}

var _ jrpc2.Assigner = (*Handler)(nil)

// NewHandler creates a handler with no open documents.
func NewHandler(ctx context.Context) *Handler {
	h := &Handler{
		files: make(map[DocumentURI]*File),
	}
	h.methods = handler.Map{
		"initialize":              h.handleInitialize,
		"initialized":             h.handleInitialized,
		"shutdown":                h.handleShutdown,
		"exit":                    h.handleExit,
		"textDocument/didOpen":    h.handleTextDocumentDidOpen,
		"textDocument/didChange":  h.handleTextDocumentDidChange,
		"textDocument/didClose":   h.handleTextDocumentDidClose,
		"textDocument/hover":      h.handleTextDocumentHover,
		"textDocument/definition": h.handleTextDocumentDefinition,
		"textDocument/formatting": h.handleTextDocumentFormatting,
	}
	return h
}

// SetServer sets the server used to push notifications to the client.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.srv = srv
}

func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	return h.methods.Assign(ctx, method)
}

// File is an open document and what was last learned from it.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic
	// AST is nil when the text does not parse.
	AST lil.Node
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

// file returns a snapshot of an open document.
func (h *Handler) file(uri DocumentURI) (File, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	if !ok {
		return File{}, false
	}
	return *f, true
}

func (h *Handler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, uri)
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
}

// updateFile re-parses and re-checks the document, then publishes its
// diagnostics. An empty diagnostic list is published too, so that stale
// errors clear.
func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("document not found: %v", uri)
	}

	f.Text = text
	if version != nil {
		f.Version = *version
	}

	filename := string(uri)
	if fp, err := fromURI(uri); err == nil {
		filename = fp
	}

	f.Diagnostics = []Diagnostic{}
	f.AST = nil

	node, err := lil.Parse(filename, []byte(text))
	if err != nil {
		slog.DebugContext(ctx, "parse failed", "path", filename, "error", err)
		f.Diagnostics = append(f.Diagnostics, errorToDiagnostics(err)...)
	} else {
		f.AST = node
		if _, err := lil.TypeCheck(ctx, node); err != nil {
			slog.DebugContext(ctx, "type check failed", "path", filename, "error", err)
			f.Diagnostics = append(f.Diagnostics, errorToDiagnostics(err)...)
		}
	}

	params := &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: f.Diagnostics,
		Version:     f.Version,
	}
	h.mu.Unlock()

	slog.InfoContext(ctx, "file updated", "path", filename, "diagnostics", len(params.Diagnostics))

	h.publishDiagnostics(ctx, params)
	return nil
}

func (h *Handler) publishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) {
	if h.srv == nil {
		return
	}
	if err := h.srv.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

// errorToDiagnostics converts a parse or type error to diagnostics. Errors
// without a location are reported at the start of the document.
func errorToDiagnostics(err error) []Diagnostic {
	var loc *lil.SourceLocation

	var parseErr interface {
		ParseErrorLocation() *lil.SourceLocation
	}
	var inferErr *lil.InferError
	if errors.As(err, &parseErr) {
		loc = parseErr.ParseErrorLocation()
	} else if errors.As(err, &inferErr) {
		loc = inferErr.Location
	}

	rng := Range{
		Start: Position{Line: 0, Character: 0},
		End:   Position{Line: 0, Character: 1},
	}
	if loc != nil {
		rng = locationToRange(loc)
	}

	return []Diagnostic{
		{
			Range:    rng,
			Severity: SeverityError,
			Source:   diagnosticSource,
			Message:  err.Error(),
		},
	}
}

// locationToRange converts a 1-based source location to a 0-based LSP
// range.
func locationToRange(loc *lil.SourceLocation) Range {
	start := Position{Line: loc.Line - 1, Character: loc.Column - 1}
	end := Position{Line: start.Line, Character: start.Character + max(loc.Length, 1)}
	if loc.End != nil {
		end = Position{Line: loc.End.Line - 1, Character: loc.End.Column - 1}
	}
	return Range{Start: start, End: end}
}

// nodeAtPosition finds the innermost node under an LSP position.
func nodeAtPosition(root lil.Node, pos Position) lil.Node {
	return lil.NodeAt(root, pos.Line+1, pos.Character+1)
}
