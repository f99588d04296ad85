package lil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vito/lil/pkg/hm"
	"github.com/vito/lil/pkg/ioctx"
)

// Result is the outcome of running a program.
type Result struct {
	Node  Node
	Type  hm.Type // nil when type checking was skipped or failed
	Value Value
}

// RunSource parses, checks and evaluates a program. Errors that point at
// the source are returned as *SourceError.
func RunSource(ctx context.Context, cfg RunConfig, filename string, source []byte) (*Result, error) {
	node, err := Parse(filename, source)
	if err != nil {
		return nil, ConvertError(err, string(source))
	}

	if cfg.Debug {
		_, _ = pretty.Fprintf(ioctx.StderrFromContext(ctx), "%# v\n", node)
	}

	res := &Result{Node: node}

	if cfg.Typecheck {
		t, err := TypeCheck(ctx, node)
		if err != nil {
			if cfg.Strict {
				return nil, ConvertError(err, string(source))
			}
			slog.WarnContext(ctx, "type check failed; evaluating anyway", "error", err)
		} else {
			slog.DebugContext(ctx, "type check completed", "type", t)
			res.Type = t
		}
	}

	val, err := Eval(ctx, node)
	if err != nil {
		return nil, ConvertError(err, string(source))
	}
	res.Value = val

	return res, nil
}

// RunFile runs the program in filePath.
func RunFile(ctx context.Context, cfg RunConfig, filePath string) (*Result, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source file")
	}
	return RunSource(ctx, cfg, filePath, source)
}

// CheckResult is the outcome of type checking one file.
type CheckResult struct {
	Path string
	Type hm.Type
	Err  error
}

// CheckFiles type-checks each file with its own checker, several at a
// time. Syntax and type errors are reported per file; failing to read a
// file aborts the whole run.
func CheckFiles(ctx context.Context, paths []string) ([]CheckResult, error) {
	results := make([]CheckResult, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		eg.Go(func() error {
			source, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "checking %s", path)
			}
			results[i] = checkSource(ctx, path, source)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkSource(ctx context.Context, path string, source []byte) CheckResult {
	res := CheckResult{Path: path}
	node, err := Parse(path, source)
	if err != nil {
		res.Err = ConvertError(err, string(source))
		return res
	}
	t, err := TypeCheck(ctx, node)
	if err != nil {
		res.Err = ConvertError(err, string(source))
		return res
	}
	slog.DebugContext(ctx, "checked", "path", path, "type", t)
	res.Type = t
	return res
}

// Describe renders a result for display, with its type when known and
// requested.
func (r *Result) Describe(withType bool) string {
	if withType && r.Type != nil {
		return fmt.Sprintf("%s : %s", r.Value, r.Type)
	}
	return r.Value.String()
}
