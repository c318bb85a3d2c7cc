package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/config"
	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/logging"
)

func newChatCmd() *cobra.Command {
	var calendarID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to Donna in your terminal",
		Long: `A text conversation with the assistant. Ask about your schedule,
add events, or cancel them; Donna asks before anything changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			logger := logging.New(cfg.LogLevel, cfg.DevMode)
			defer logger.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runChat(ctx, cfg, logger, calendarID)
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar new events land on (default: last used)")
	return cmd
}

func runChat(ctx context.Context, cfg *config.Config, logger *zap.Logger, calendarID string) error {
	sess, err := newSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	if calendarID != "" {
		if err := sess.store.SetLastCalendar(calendarID); err != nil {
			return err
		}
	}

	fmt.Println("Donna is listening. Type a message, or \"exit\" to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := chatTurn(ctx, sess, line); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("donna> Sorry, something went wrong: %v\n", err)
		}
	}

	fmt.Println("Goodbye!")
	return scanner.Err()
}

// chatTurn sends one message and, when the reply ends on a confirmation
// question, resolves it with an inline prompt so the machine is idle again
// before the next read.
func chatTurn(ctx context.Context, sess *session, line string) error {
	resp, err := sess.converse(ctx, line)
	if err != nil {
		return err
	}
	fmt.Printf("donna> %s\n", resp.Reply)

	switch sess.machine.State() {
	case conversation.StateAwaitingCreateConfirmation:
		return confirmCreate(ctx, sess)
	case conversation.StateAwaitingDeleteConfirmation:
		return confirmDelete(ctx, sess)
	case conversation.StateAwaitingMultiDeleteSelection:
		return pickAndDelete(ctx, sess)
	}
	return nil
}

func confirmCreate(ctx context.Context, sess *session) error {
	prompt := promptui.Prompt{Label: "Add it to your calendar", IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		sess.machine.Cancel()
		fmt.Println("donna> Okay, I won't add it.")
		return nil
	}

	done, err := sess.executeCreate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("donna> %s\n", done)
	return nil
}

func confirmDelete(ctx context.Context, sess *session) error {
	pending := sess.machine.PendingDelete()
	if pending == nil {
		sess.machine.Cancel()
		return nil
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Delete %q", eventTitle(*pending)),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		sess.machine.Cancel()
		fmt.Println("donna> Okay, I won't delete anything.")
		return nil
	}

	done, err := sess.executeDelete(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("donna> %s\n", done)
	return nil
}

func pickAndDelete(ctx context.Context, sess *session) error {
	candidates := sess.machine.Candidates()
	items := make([]string, 0, len(candidates)+1)
	for _, event := range candidates {
		items = append(items, fmt.Sprintf("%s - %s", eventTitle(event), eventWhen(event)))
	}
	items = append(items, "None of these")

	sel := promptui.Select{
		Label: "Which one should I delete",
		Items: items,
		Size:  len(items),
	}
	idx, _, err := sel.Run()
	if err != nil || idx == len(items)-1 {
		sess.machine.Cancel()
		fmt.Println("donna> Okay, I won't delete anything.")
		return nil
	}

	if err := sess.machine.Select(idx + 1); err != nil {
		sess.machine.Cancel()
		return err
	}
	return confirmDelete(ctx, sess)
}
