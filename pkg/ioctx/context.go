// Package ioctx carries the output streams of a run in its context, so
// that tests and the REPL can capture what a program run prints.
package ioctx

import (
	"context"
	"io"
)

type streamKey int

const (
	stdoutKey streamKey = iota
	stderrKey
)

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey, w)
}

// StdoutFromContext returns the stdout writer, or io.Discard if none was
// set.
func StdoutFromContext(ctx context.Context) io.Writer {
	return writerFrom(ctx, stdoutKey)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey, w)
}

// StderrFromContext returns the stderr writer, or io.Discard if none was
// set.
func StderrFromContext(ctx context.Context) io.Writer {
	return writerFrom(ctx, stderrKey)
}

func writerFrom(ctx context.Context, key streamKey) io.Writer {
	if w, ok := ctx.Value(key).(io.Writer); ok {
		return w
	}
	return io.Discard
}
