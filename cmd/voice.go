package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/apiclient"
	"github.com/omriShneor/donna/internal/config"
	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/logging"
	"github.com/omriShneor/donna/internal/voice"
)

func newVoiceCmd() *cobra.Command {
	var calendarID string

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Hands-free conversation with spoken replies",
		Long: `A spoken conversation with the assistant. Utterances are read line
by line from stdin, so a speech-to-text front end can pipe transcripts in.
Replies are synthesized through the server and played with a local audio
player when one is installed; the text is always printed.

Say "exit", "quit" or "goodbye" to leave, "mute" to pause listening.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			logger := logging.New(cfg.LogLevel, cfg.DevMode)
			defer logger.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runVoice(ctx, cfg, logger, calendarID)
		},
	}

	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar new events land on (default: last used)")
	return cmd
}

func runVoice(ctx context.Context, cfg *config.Config, logger *zap.Logger, calendarID string) error {
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

	loop, err := voice.New(voice.Config{
		Recognizer: voice.NewLineRecognizer(os.Stdin),
		Respond:    sess.respond,
		Speaker:    newSpeaker(sess.api),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	fmt.Println("Donna is listening. Say something, or \"goodbye\" to leave.")
	loop.Start()

	select {
	case <-ctx.Done():
	case <-loop.Done():
	}
	loop.Stop()
	return nil
}

// respond handles one utterance. Confirmation states are answered locally
// with yes/no parsing; everything else is a fresh converse turn.
func (s *session) respond(ctx context.Context, utterance string) (string, error) {
	switch s.machine.State() {
	case conversation.StateAwaitingCreateConfirmation:
		return s.answerCreate(ctx, utterance)
	case conversation.StateAwaitingDeleteConfirmation:
		return s.answerDelete(ctx, utterance)
	case conversation.StateAwaitingMultiDeleteSelection:
		return s.answerSelection(utterance)
	}

	resp, err := s.converse(ctx, utterance)
	if err != nil {
		return "", err
	}
	if resp.Speech != "" {
		return resp.Speech, nil
	}
	return resp.Reply, nil
}

func (s *session) answerCreate(ctx context.Context, utterance string) (string, error) {
	if conversation.IsNegative(utterance) {
		s.machine.Cancel()
		return "Okay, I won't add it.", nil
	}
	if !conversation.IsAffirmative(utterance) {
		return "Please say yes or no.", nil
	}
	return s.executeCreate(ctx)
}

func (s *session) answerDelete(ctx context.Context, utterance string) (string, error) {
	if conversation.IsNegative(utterance) {
		s.machine.Cancel()
		return "Okay, I won't delete anything.", nil
	}
	if !conversation.IsAffirmative(utterance) {
		return "Please say yes or no.", nil
	}
	return s.executeDelete(ctx)
}

func (s *session) answerSelection(utterance string) (string, error) {
	if conversation.IsNegative(utterance) {
		s.machine.Cancel()
		return "Okay, I won't delete anything.", nil
	}

	choice := conversation.ParseSelection(utterance)
	if choice == 0 {
		return "Say the number of the event to delete, or no to cancel.", nil
	}
	if err := s.machine.Select(choice); err != nil {
		return fmt.Sprintf("Please pick a number between 1 and %d.", len(s.machine.Candidates())), nil
	}

	pending := s.machine.PendingDelete()
	return fmt.Sprintf("Should I delete %s on %s?", eventTitle(*pending), eventWhen(*pending)), nil
}

// speaker prints every reply and, when a player binary and the server's
// speech endpoint are both available, also plays the synthesized audio.
type speaker struct {
	api    *apiclient.Client
	player string
}

func newSpeaker(api *apiclient.Client) *speaker {
	for _, candidate := range []string{"afplay", "mpg123", "mpv"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return &speaker{api: api, player: path}
		}
	}
	return &speaker{api: api}
}

func (s *speaker) Speak(ctx context.Context, text string) error {
	fmt.Printf("donna> %s\n", text)
	if s.player == "" {
		return nil
	}

	audio, err := s.api.Synthesize(ctx, text)
	if err != nil {
		// A server without TTS configured still works as a text loop.
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
			return nil
		}
		return err
	}
	return s.play(ctx, audio)
}

func (s *speaker) play(ctx context.Context, audio []byte) error {
	f, err := os.CreateTemp("", "donna-*.mp3")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return exec.CommandContext(ctx, s.player, f.Name()).Run()
}
