package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/usecase/chat"
)

const chatPrompt = "> "

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question answering with conversation memory",
	Long: `Starts an interactive session. Each answer uses the most recent turns of the
conversation as context. Type /reset to forget the conversation and /exit to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// asker is the part of the chat service the loop needs.
type asker interface {
	Ask(ctx context.Context, sessionID, question string) (domain.Answer, error)
	Reset(ctx context.Context, sessionID string) error
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.pipeline()
	if err != nil {
		return err
	}

	svc := chat.New(p.answers, a.sessions(), a.cfg.Chat.HistoryTurns)
	cmd.Printf("Ask about %s circulars (%d chunks indexed). /reset clears history, /exit quits.\n",
		a.cfg.Corpus.Name, p.corpus.Len())
	return chatLoop(a.context(cmd.Context()), cmd.InOrStdin(), cmd.OutOrStdout(), svc, uuid.NewString())
}

// chatLoop reads questions line by line until EOF, /exit or cancellation. A failed
// question prints an error and the loop keeps going.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, svc asker, sessionID string) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		_, _ = fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := svc.Reset(ctx, sessionID); err != nil {
				_, _ = fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			_, _ = fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		ans, err := svc.Ask(ctx, sessionID, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			_, _ = fmt.Fprintf(out, "Error: %s\n", describeFailure(err))
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\n\n", ans.Render())
	}
}

func describeFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return "the model provider timed out, please try again"
	case errors.Is(err, domain.ErrEmbeddingService), errors.Is(err, domain.ErrGenerationService):
		return "the model provider is unavailable, please try again (" + err.Error() + ")"
	default:
		return err.Error()
	}
}
