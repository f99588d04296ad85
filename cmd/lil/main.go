package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vito/lil/pkg/ioctx"
	"github.com/vito/lil/pkg/lil"
	"github.com/vito/lil/pkg/lsp"
)

// Config holds the application configuration
type Config struct {
	Debug     bool
	File      string
	Expr      string
	NoCheck   bool
	Advisory  bool
	AST       bool
	PrintType bool
}

var (
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	typeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pathStyle   = lipgloss.NewStyle().Bold(true)
)

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "lil [flags] [file]",
		Short: "lil expression language",
		Long: `lil is a tiny typed expression language with integers, booleans,
let bindings and single-argument closures.`,
		Example: `  # Run a lil program
  lil prog.lil

  # Evaluate an expression
  lil -e 'let x = 1 + 2 in x = 3'

  # Start interactive REPL
  lil

  # Print the inferred type with the result
  lil --type prog.lil`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stderr, cfg.Debug)

			switch {
			case cfg.Expr != "":
				return run(cmd.Context(), cfg, "<expr>", []byte(cfg.Expr))
			case len(args) == 1:
				cfg.File = args[0]
				source, err := os.ReadFile(cfg.File)
				if err != nil {
					return errors.Wrap(err, "failed to read source file")
				}
				return run(cmd.Context(), cfg, cfg.File, source)
			default:
				return runREPL(cmd.Context(), cfg)
			}
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&cfg.Expr, "eval", "e", "", "Evaluate an expression instead of a file")
	rootCmd.Flags().BoolVar(&cfg.NoCheck, "no-check", false, "Skip the type checker")
	rootCmd.Flags().BoolVar(&cfg.Advisory, "advisory", false, "Report type errors but evaluate anyway")
	rootCmd.Flags().BoolVar(&cfg.AST, "ast", false, "Print the parsed syntax tree and exit")
	rootCmd.Flags().BoolVar(&cfg.PrintType, "type", false, "Print the inferred type with the result")

	rootCmd.AddCommand(checkCmd(), fmtCmd(), lspCmd())

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			var sourceErr *lil.SourceError
			if errors.As(err, &sourceErr) {
				_, _ = fmt.Fprint(w, sourceErr.FormatWithHighlighting())
				return
			}
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(dest io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(dest, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// runConfig layers the command line over lil.toml and the environment.
func runConfig(cfg Config) (lil.RunConfig, error) {
	dir := "."
	if cfg.File != "" {
		dir = filepath.Dir(cfg.File)
	}

	rc, err := lil.LoadRunConfig(dir)
	if err != nil {
		return rc, err
	}
	if cfg.NoCheck {
		rc.Typecheck = false
	}
	if cfg.Advisory {
		rc.Strict = false
	}
	if cfg.PrintType {
		rc.PrintType = true
	}
	rc.Debug = cfg.Debug
	return rc, nil
}

func run(ctx context.Context, cfg Config, filename string, source []byte) error {
	if cfg.AST {
		node, err := lil.Parse(filename, source)
		if err != nil {
			return lil.ConvertError(err, string(source))
		}
		_, err = pretty.Fprintf(ioctx.StdoutFromContext(ctx), "%# v\n", node)
		return err
	}

	rc, err := runConfig(cfg)
	if err != nil {
		return err
	}

	res, err := lil.RunSource(ctx, rc, filename, source)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ioctx.StdoutFromContext(ctx), renderResult(res, rc.PrintType))
	return err
}

func renderResult(res *lil.Result, withType bool) string {
	out := resultStyle.Render(res.Value.String())
	if withType && res.Type != nil {
		out += typeStyle.Render(" : " + res.Type.String())
	}
	return out
}

func checkCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "check [flags] file...",
		Short: "Type check lil source files",
		Long: `Type check lil source files without running them.

Each file is checked on its own, and its type or error is printed.`,
		Example: `  # Check a couple of files
  lil check a.lil b.lil`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(os.Stderr, debug)
			return runCheck(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func runCheck(ctx context.Context, paths []string) error {
	results, err := lil.CheckFiles(ctx, paths)
	if err != nil {
		return err
	}

	stdout := ioctx.StdoutFromContext(ctx)
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			_, _ = fmt.Fprintf(stdout, "%s %s\n", pathStyle.Render(res.Path), errorStyle.Render("FAIL"))
			var sourceErr *lil.SourceError
			if errors.As(res.Err, &sourceErr) {
				_, _ = fmt.Fprint(stdout, sourceErr.FormatWithHighlighting())
			} else {
				_, _ = fmt.Fprintln(stdout, res.Err.Error())
			}
			continue
		}
		_, _ = fmt.Fprintf(stdout, "%s %s %s\n",
			pathStyle.Render(res.Path),
			okStyle.Render("ok"),
			typeStyle.Render(res.Type.String()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to check", failed, len(results))
	}
	return nil
}

func lspCmd() *cobra.Command {
	var (
		debug   bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the lil language server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(cmd.Context(), debug, logFile)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Path to LSP log file (stderr if not specified)")

	return cmd
}

func runLSP(ctx context.Context, debug bool, logPath string) error {
	var logDest io.Writer
	if logPath != "" {
		logFile, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("open lsp log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	} else {
		logDest = os.Stderr
	}

	logger := setupLogging(logDest, debug)

	logger.InfoContext(ctx, "starting LSP server")

	handler := lsp.NewHandler(ctx)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush:   true,
		Concurrency: 1,
		Logger:      func(text string) { logger.Debug(text) },
	})

	// Store server reference in handler for diagnostics
	handler.SetServer(srv)

	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

func fmtCmd() *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format lil source files",
		Long: `Format lil source files according to the canonical style.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.`,
		Example: `  # Format a file and print to stdout
  lil fmt prog.lil

  # Format a file in place
  lil fmt -w prog.lil

  # Format all .lil files in a directory
  lil fmt -w ./examples

  # List files that need formatting
  lil fmt -l ./examples`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(ioctx.StdoutFromContext(cmd.Context()), args, write, list)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files that would be formatted")

	return cmd
}

func runFmt(out io.Writer, paths []string, write, list bool) error {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("accessing %s: %w", path, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return fmt.Errorf("reading directory %s: %w", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".lil") {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		} else {
			files = append(files, path)
		}
	}

	for _, file := range files {
		if err := formatFile(out, file, write, list); err != nil {
			return fmt.Errorf("formatting %s: %w", file, err)
		}
	}

	return nil
}

func formatFile(out io.Writer, path string, write, list bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	formatted, err := lil.FormatFile(source)
	if err != nil {
		return err
	}

	changed := string(source) != formatted

	if list && !write {
		if changed {
			_, _ = fmt.Fprintln(out, path)
		}
		return nil
	}

	if write {
		if changed {
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return err
			}
			if list {
				_, _ = fmt.Fprintln(out, path)
			}
		}
		return nil
	}

	_, err = fmt.Fprint(out, formatted)
	return err
}
