package main

import (
	"fmt"
	"os"

	"github.com/Desarso/fitcoach"
	"github.com/spf13/cobra"
)

func newTipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tip",
		Short: "Print a quick coaching tip for your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, coach, err := a.openCoach(fitcoach.WithKeyPrompt(promptKey(os.Stdin, cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			defer coach.Close()

			p, err := coach.Profile(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w (run `fitcoach profile set` first)", err)
			}
			tip, err := coach.Gateway.QuickTip(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tip)
			return nil
		},
	}
}
