package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/vito/lil/pkg/lil"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok || f.AST == nil {
		return nil, nil
	}

	node := nodeAtPosition(f.AST, params.Position)
	if node == nil {
		return nil, nil
	}

	line, col := params.Position.Line+1, params.Position.Character+1

	var label string
	loc := node.GetSourceLocation()
	switch n := node.(type) {
	case *lil.Let:
		if !n.NameLoc.Contains(line, col) {
			return nil, nil
		}
		t, err := lil.InferAt(ctx, f.AST, n.Right)
		if err != nil {
			return nil, nil
		}
		label = fmt.Sprintf("%s: %s", n.Name, t)
		loc = n.NameLoc
	case *lil.Function:
		if !n.ParamLoc.Contains(line, col) {
			return nil, nil
		}
		label = fmt.Sprintf("%s: %s", n.Param, n.ParamType)
		loc = n.ParamLoc
	case *lil.Var:
		t, err := lil.InferAt(ctx, f.AST, n)
		if err != nil {
			return nil, nil
		}
		label = fmt.Sprintf("%s: %s", n.Name, t)
	default:
		t, err := lil.InferAt(ctx, f.AST, n)
		if err != nil {
			return nil, nil
		}
		label = t.String()
	}

	slog.DebugContext(ctx, "hover", "uri", params.TextDocument.URI, "position", params.Position, "label", label)

	rng := locationToRange(loc)
	return &Hover{
		Contents: MarkupContent{
			Kind:  PlainText,
			Value: label,
		},
		Range: &rng,
	}, nil
}
