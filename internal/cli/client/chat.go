package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/cloo-solutions/roadmapbot/internal/chat"
	"github.com/cloo-solutions/roadmapbot/internal/cli"
	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/logging"
	"github.com/cloo-solutions/roadmapbot/internal/profile"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

type markdownRenderer interface {
	Render(in string) (string, error)
}

var sessionCommands = []cli.SessionCommand{
	{Name: "/copy", Description: "copy the last handoff prompt to the clipboard"},
	{Name: "/history", Description: "print the transcript"},
	{Name: "/exit", Description: "leave the session"},
}

// ChatCmd creates the interactive chat command.
func ChatCmd() *cobra.Command {
	var (
		profilePath string
		plain       bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the roadmap assistant",
		Long: "Starts an interactive session grounded in the knowledge base.\n\n" +
			"Commands inside the session:\n" + cli.SessionHelp(sessionCommands),
		Annotations: cli.SessionCommandsAnnotation(sessionCommands),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			prof, err := profile.Load(profilePath)
			if err != nil {
				return err
			}
			logger, err := newClientLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			var renderer markdownRenderer
			if !plain {
				renderer, err = glamour.NewTermRenderer(
					glamour.WithAutoStyle(),
					glamour.WithWordWrap(80),
				)
				if err != nil {
					return fmt.Errorf("failed to create markdown renderer: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			session := chat.NewSession(api, prof, logger)
			return runREPL(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout(), renderer)
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "Assistant profile YAML (greeting and fallback document)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print replies as raw markdown")

	return cmd
}

func newClientLogger(cmd *cobra.Command) (*zap.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug {
		return zap.NewNop(), nil
	}
	return logging.New(true)
}

func runREPL(ctx context.Context, s *chat.Session, in io.Reader, out io.Writer, renderer markdownRenderer) error {
	userPrompt := color.New(color.FgGreen).FprintfFunc()
	info := color.New(color.FgCyan).FprintfFunc()
	warn := color.New(color.FgYellow).FprintfFunc()

	info(out, "Loading knowledge base...\n")
	s.Start(ctx)
	if s.UsingFallback() {
		warn(out, "Knowledge base unavailable, using the built-in demo roadmap.\n")
	}
	for _, turn := range s.Turns() {
		printTurn(out, turn, renderer)
	}
	info(out, "Type /copy, /history or /exit.\n")

	scanner := bufio.NewScanner(in)
	for {
		userPrompt(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "exit", "quit":
			return nil
		case "/history":
			for _, turn := range s.Turns() {
				printTurn(out, turn, renderer)
			}
			continue
		case "/copy":
			prompt := s.LastHandoffPrompt()
			if prompt == "" {
				warn(out, "No handoff prompt to copy yet.\n")
				continue
			}
			if err := clipboardWriteAll(prompt); err != nil {
				warn(out, "Could not copy to clipboard: %v\n", err)
				continue
			}
			info(out, "Handoff prompt copied to clipboard.\n")
			continue
		}

		turn, err := s.Submit(ctx, line)
		switch {
		case errors.Is(err, chat.ErrEmptyQuestion):
			continue
		case errors.Is(err, chat.ErrBusy):
			warn(out, "Still waiting for the previous answer.\n")
			continue
		case err != nil:
			return err
		}
		printTurn(out, turn, renderer)
		if turn.HandoffPrompt != "" {
			info(out, "Type /copy to copy the prompt.\n")
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func printTurn(out io.Writer, turn domain.ChatTurn, renderer markdownRenderer) {
	if turn.Role == domain.RoleUser {
		color.New(color.FgGreen).Fprintf(out, "\nYou: %s\n", turn.Content)
		return
	}

	color.New(color.FgCyan, color.Bold).Fprint(out, "\nAssistant:\n")
	text := turn.Content
	if renderer != nil {
		if rendered, err := renderer.Render(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(out, strings.TrimRight(text, "\n"))
}
