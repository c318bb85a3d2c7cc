package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/omriShneor/donna/internal/config"
	"github.com/omriShneor/donna/internal/logging"
	"github.com/omriShneor/donna/internal/prefs"
)

func newCalendarsCmd() *cobra.Command {
	var (
		list    bool
		enable  string
		disable string
	)

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Choose which calendars Donna reads",
		Long: `Schedule questions fan out over the selected calendars. New
calendars start selected; use this command to narrow the set down.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			logger := logging.New(cfg.LogLevel, cfg.DevMode)
			defer logger.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sess, err := newSession(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			switch {
			case enable != "":
				return sess.store.SetSelected(enable, true)
			case disable != "":
				return sess.store.SetSelected(disable, false)
			case list:
				return printCalendars(sess.store)
			}
			return toggleCalendars(sess.store)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Print the calendars without prompting")
	cmd.Flags().StringVar(&enable, "enable", "", "Include the given calendar ID in reads")
	cmd.Flags().StringVar(&disable, "disable", "", "Exclude the given calendar ID from reads")
	return cmd
}

func printCalendars(store *prefs.Store) error {
	calendars, err := store.AllCalendars()
	if err != nil {
		return err
	}
	for _, c := range calendars {
		fmt.Printf("%s %s (%s)\n", checkbox(c.Selected), c.Name, c.ID)
	}
	return nil
}

// toggleCalendars loops a picker until the user is done, flipping one
// calendar per round so the checkboxes stay current.
func toggleCalendars(store *prefs.Store) error {
	for {
		calendars, err := store.AllCalendars()
		if err != nil {
			return err
		}
		if len(calendars) == 0 {
			fmt.Println("No calendars yet. Run 'donna login' first.")
			return nil
		}

		items := make([]string, 0, len(calendars)+1)
		for _, c := range calendars {
			items = append(items, fmt.Sprintf("%s %s", checkbox(c.Selected), c.Name))
		}
		items = append(items, "Done")

		sel := promptui.Select{
			Label: "Toggle a calendar",
			Items: items,
			Size:  len(items),
		}
		idx, _, err := sel.Run()
		if err != nil || idx == len(items)-1 {
			return nil
		}

		chosen := calendars[idx]
		if err := store.SetSelected(chosen.ID, !chosen.Selected); err != nil {
			return err
		}
	}
}

func checkbox(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}
