package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/kr/pretty"
	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/vito/lil/pkg/hm"
	"github.com/vito/lil/pkg/ioctx"
	"github.com/vito/lil/pkg/lil"
)

const (
	promptMain = "lil> "
	promptCont = "...  "
)

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

var replCommandDefs = []struct {
	name string
	desc string
}{
	{"help", "Show this help"},
	{"let NAME = EXPR", "Bind a name for the rest of the session"},
	{"type EXPR", "Show the type of an expression"},
	{"ast EXPR", "Show the syntax tree of an expression"},
	{"env", "List session bindings"},
	{"reset", "Drop all session bindings"},
	{"quit", "Leave the REPL"},
}

// replSession holds the bindings made with :let. Each entry is checked
// against typeEnv and evaluated in evalEnv.
type replSession struct {
	cfg     lil.RunConfig
	typeEnv *hm.Env
	evalEnv *lil.EvalEnv
	out     io.Writer
}

func newReplSession(cfg lil.RunConfig, out io.Writer) *replSession {
	return &replSession{
		cfg:     cfg,
		typeEnv: hm.NewEnv(),
		evalEnv: lil.NewEvalEnv(),
		out:     out,
	}
}

// historyFilePath returns the path to the history file, respecting
// XDG_DATA_HOME (default ~/.local/share/lil/history).
func historyFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "lil_history")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "lil", "history")
}

func runREPL(ctx context.Context, cfg Config) error {
	rc, err := runConfig(cfg)
	if err != nil {
		return err
	}

	histPath := historyFilePath()

	ln := liner.NewLiner()
	defer ln.Close() //nolint:errcheck
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if err := os.MkdirAll(filepath.Dir(histPath), 0755); err != nil {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	out := ioctx.StdoutFromContext(ctx)
	session := newReplSession(rc, out)

	_, _ = fmt.Fprintln(out, dimStyle.Render("lil REPL. Type :help for commands, Ctrl+D to exit."))

	for {
		input, ok := readInput(ln)
		if !ok {
			_, _ = fmt.Fprintln(out)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(input, ":") {
			if quit := session.handleCommand(ctx, input[1:]); quit {
				return nil
			}
			continue
		}

		res, err := session.eval(ctx, input)
		if err != nil {
			session.printError(err)
			continue
		}
		_, _ = fmt.Fprintln(out, renderResult(res, true))
	}
}

// readInput keeps prompting while the input so far only fails to parse
// because it ends too early.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := lil.Parse("<repl>", []byte(src)); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

func incomplete(err error) bool {
	var parseErr *lil.ParseError
	return errors.As(err, &parseErr) && strings.HasSuffix(parseErr.Msg, "end of input")
}

func (r *replSession) parse(src string) (lil.Node, error) {
	node, err := lil.Parse("<repl>", []byte(src))
	if err != nil {
		return nil, lil.ConvertError(err, src)
	}
	return node, nil
}

func (r *replSession) check(ctx context.Context, src string, node lil.Node) (hm.Type, error) {
	if !r.cfg.Typecheck {
		return nil, nil
	}
	t, err := lil.Infer(ctx, r.typeEnv, node)
	if err != nil {
		if r.cfg.Strict {
			return nil, lil.ConvertError(err, src)
		}
		r.printError(lil.ConvertError(err, src))
		return nil, nil
	}
	return t, nil
}

func (r *replSession) eval(ctx context.Context, src string) (*lil.Result, error) {
	node, err := r.parse(src)
	if err != nil {
		return nil, err
	}

	t, err := r.check(ctx, src, node)
	if err != nil {
		return nil, err
	}

	val, err := lil.EvalNode(ctx, r.evalEnv, node)
	if err != nil {
		return nil, lil.ConvertError(err, src)
	}

	return &lil.Result{Node: node, Type: t, Value: val}, nil
}

func (r *replSession) bind(ctx context.Context, def string) error {
	name, src, found := strings.Cut(def, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" || strings.ContainsAny(name, " \t\n") {
		return errors.New("usage: :let NAME = EXPR")
	}
	src = strings.TrimSpace(src)

	res, err := r.eval(ctx, src)
	if err != nil {
		return err
	}

	// A failed or skipped check leaves the name out of the type
	// environment, so later uses report it as unbound.
	if res.Type != nil {
		r.typeEnv.Bind(name, res.Type)
	} else {
		r.typeEnv.Unbind(name)
	}
	r.evalEnv.Set(name, res.Value)

	_, _ = fmt.Fprintf(r.out, "%s = %s\n", name, renderResult(res, true))
	return nil
}

func (r *replSession) handleCommand(ctx context.Context, cmdLine string) (quit bool) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(cmdLine), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		maxName := 0
		for _, def := range replCommandDefs {
			maxName = max(maxName, len(def.name))
		}
		_, _ = fmt.Fprintln(r.out, "Available commands:")
		for _, def := range replCommandDefs {
			_, _ = fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("  :%-*s - %s", maxName, def.name, def.desc)))
		}

	case "quit", "exit":
		return true

	case "let":
		if err := r.bind(ctx, rest); err != nil {
			r.printError(err)
		}

	case "type":
		node, err := r.parse(rest)
		if err != nil {
			r.printError(err)
			return false
		}
		t, err := lil.Infer(ctx, r.typeEnv, node)
		if err != nil {
			r.printError(lil.ConvertError(err, rest))
			return false
		}
		_, _ = fmt.Fprintln(r.out, typeStyle.Render(t.String()))

	case "ast":
		node, err := r.parse(rest)
		if err != nil {
			r.printError(err)
			return false
		}
		_, _ = pretty.Fprintf(r.out, "%# v\n", node)

	case "env":
		names := r.evalEnv.Names()
		sort.Strings(names)
		for _, name := range names {
			val, _ := r.evalEnv.Get(name)
			line := name + " = " + resultStyle.Render(val.String())
			if t, ok := r.typeEnv.TypeOf(name); ok {
				line += typeStyle.Render(" : " + t.String())
			}
			_, _ = fmt.Fprintln(r.out, line)
		}

	case "reset":
		r.typeEnv = hm.NewEnv()
		r.evalEnv = lil.NewEvalEnv()
		_, _ = fmt.Fprintln(r.out, resultStyle.Render("Environment reset."))

	default:
		r.printError(fmt.Errorf("unknown command :%s (try :help)", cmd))
	}

	return false
}

func (r *replSession) printError(err error) {
	var sourceErr *lil.SourceError
	if errors.As(err, &sourceErr) {
		_, _ = fmt.Fprint(r.out, sourceErr.FormatWithHighlighting())
		return
	}
	_, _ = fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
}
