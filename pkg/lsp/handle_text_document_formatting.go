package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/vito/lil/pkg/lil"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	formatted, err := lil.FormatFile([]byte(f.Text))
	if err != nil {
		// The parse error is already published as a diagnostic.
		return []TextEdit{}, nil
	}

	if formatted == f.Text {
		return []TextEdit{}, nil
	}

	return []TextEdit{
		{
			Range: Range{
				Start: Position{Line: 0, Character: 0},
				End:   endOfText(f.Text),
			},
			NewText: formatted,
		},
	}, nil
}

func endOfText(text string) Position {
	var pos Position
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			pos.Line++
			pos.Character = 0
		} else {
			pos.Character++
		}
	}
	return pos
}
