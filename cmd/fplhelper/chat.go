package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aman-zulfiqar/fpl-advisor/internal/advisor"
)

var chatShowSQL bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `chat reads one question per line and answers each in turn. The conversation
is kept in memory for the session only. An empty line or "exit" ends the session;
"/history" prints the conversation so far.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator(ctx)
		if err != nil {
			return err
		}

		pterm.DefaultHeader.WithFullWidth().Println("FPL Assistant")
		pterm.Info.Println("Ask anything about FPL players. Empty line to quit.")
		a.warnIfEmpty(ctx)

		return runChat(ctx, advisor.NewSession(orch), cmd.InOrStdin(), cmd.OutOrStdout(), chatShowSQL)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatShowSQL, "sql", false, "print the generated SQL for each answer")
}

// runChat is the read-answer loop. It returns when in is exhausted, an empty
// line is read or ctx is cancelled.
func runChat(ctx context.Context, s *advisor.Session, in io.Reader, w io.Writer, showSQL bool) error {
	renderer := newMarkdownRenderer()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(w, pterm.Cyan("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "", "exit", "quit":
			return nil
		case "/history":
			printHistory(w, s.History())
			continue
		}

		stop := startSpinner("Thinking...")
		out := s.Ask(ctx, line)
		stop()

		renderOutcome(w, renderer, out, showSQL)
		fmt.Fprintln(w)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func printHistory(w io.Writer, msgs []advisor.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, pterm.Gray("(no messages yet)"))
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "%s: %s\n", m.Role, m.Content)
	}
}
