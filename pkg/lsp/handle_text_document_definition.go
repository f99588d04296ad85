package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/vito/lil/pkg/lil"
)

// handleTextDocumentDefinition jumps from a variable to the let or function
// parameter that binds it.
func (h *Handler) handleTextDocumentDefinition(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DefinitionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok || f.AST == nil {
		return nil, nil
	}

	v, ok := nodeAtPosition(f.AST, params.Position).(*lil.Var)
	if !ok {
		return nil, nil
	}

	var loc *lil.SourceLocation
	switch binder := lil.BindingOf(f.AST, v).(type) {
	case *lil.Let:
		loc = binder.NameLoc
	case *lil.Function:
		loc = binder.ParamLoc
	}
	if loc == nil {
		return nil, nil
	}

	return &Location{
		URI:   params.TextDocument.URI,
		Range: locationToRange(loc),
	}, nil
}
