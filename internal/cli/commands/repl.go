package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/glyph/internal/runner"
	starctx "github.com/leapstack-labs/glyph/internal/starlark"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "glyph> "
	replMorePrompt = "  ...> "
)

// ReplOptions holds options for the repl command.
type ReplOptions struct {
	Inputs map[string]string
}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	opts := &ReplOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start an interactive session.

Expressions are evaluated and their values rendered. Statements such as
assignments and function definitions are kept for later lines. A line
ending in ':' starts a block, which an empty line ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, opts)
		},
	}

	cmd.Flags().StringToStringVarP(&opts.Inputs, "input", "i", nil, "Bind a YAML file as a global (name=file.yaml)")

	return cmd
}

func runRepl(cmd *cobra.Command, opts *ReplOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, ContextOptions{Inputs: opts.Inputs})
	if err != nil {
		return err
	}
	defer cleanup()

	historyFile := cmdCtx.Cfg.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
			cmdCtx.Logger.Warn("history disabled", "path", historyFile, "error", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "glyph interactive session")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	session := newReplSession(cmd.Context(), cmdCtx, cmd.OutOrStdout(), cmd.ErrOrStderr())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.interrupt()
			rl.SetPrompt(session.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if session.handle(line) {
			break
		}
		rl.SetPrompt(session.prompt())
	}

	return nil
}

// replSession holds the state of one interactive session between lines.
type replSession struct {
	ctx    context.Context
	cmdCtx *CommandContext
	out    io.Writer
	errOut io.Writer
	block  strings.Builder
}

func newReplSession(ctx context.Context, cmdCtx *CommandContext, out, errOut io.Writer) *replSession {
	return &replSession{ctx: ctx, cmdCtx: cmdCtx, out: out, errOut: errOut}
}

func (s *replSession) prompt() string {
	if s.block.Len() > 0 {
		return replMorePrompt
	}
	return replPrompt
}

func (s *replSession) interrupt() {
	s.block.Reset()
}

// handle processes one input line and reports whether the session ends.
func (s *replSession) handle(line string) bool {
	trimmed := strings.TrimSpace(line)

	if s.block.Len() > 0 {
		if trimmed != "" {
			s.block.WriteString(strings.TrimRight(line, " \t") + "\n")
			return false
		}
		src := s.block.String()
		s.block.Reset()
		s.eval(src)
		return false
	}

	switch {
	case trimmed == "":
		return false
	case strings.HasPrefix(trimmed, "."):
		return s.dotCommand(trimmed)
	case strings.HasSuffix(trimmed, ":"):
		s.block.WriteString(trimmed + "\n")
		return false
	}

	s.eval(trimmed)
	return false
}

func (s *replSession) eval(src string) {
	res, err := s.cmdCtx.Runner.Interactive(s.ctx, src)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	if err := renderResults(s.cmdCtx, []*runner.Result{res}); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
}

func (s *replSession) dotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.out)
	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .clear          Clear the screen
  .quit / .exit   Exit the session

Globals:
  arr             Array functions (arr.range, arr.join, arr.sort, ...)
  emit(*values)   Render values after the current line
  assert_eq(a, b) Fail unless a equals b

Tips:
  - A line ending in ':' starts a block; finish it with an empty line
  - Use arrow keys to navigate history
  - Tab completion works for arr functions
`
	_, _ = fmt.Fprintln(w, help)
}

// newReplCompleter completes dot-commands and arr functions.
func newReplCompleter() *readline.PrefixCompleter {
	names := make([]string, 0, len(starctx.Module.Members))
	for name := range starctx.Module.Members {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]readline.PrefixCompleterInterface, 0, len(names)+4)
	for _, name := range names {
		items = append(items, readline.PcItem("arr."+name+"("))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
