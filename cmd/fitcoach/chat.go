package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Desarso/fitcoach"
	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/sessions"
	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to your coach in the terminal",
		Long:  "Starts a conversation with your coach. Mention news, trends or studies to get a web-grounded answer with sources. Type /quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, coach, err := a.openCoach(fitcoach.WithKeyPrompt(promptKey(os.Stdin, cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			defer coach.Close()

			conv, err := coach.StartConversation(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w (run `fitcoach profile set` first)", err)
			}
			return chatLoop(cmd.Context(), conv, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// chatLoop reads one message per line and prints each reply before reading
// the next, so a submission never finds the conversation busy.
func chatLoop(ctx context.Context, conv *sessions.Conversation, in io.Reader, out io.Writer) error {
	for _, t := range conv.Turns() {
		printTurn(out, t)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}

		resolved, err := conv.Submit(line)
		if err != nil {
			// Blank lines are ignored
			continue
		}
		select {
		case turn := <-resolved:
			printTurn(out, turn)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func printTurn(out io.Writer, t models.Turn) {
	if t.Role != models.RoleModel {
		return
	}
	prefix := "coach"
	if t.IsError {
		prefix = "error"
	}
	fmt.Fprintf(out, "%s: %s\n", prefix, t.Text)
}
