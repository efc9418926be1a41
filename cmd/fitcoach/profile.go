package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Desarso/fitcoach/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show, set or clear your stored profile",
	}
	cmd.AddCommand(newProfileShowCmd(a))
	cmd.AddCommand(newProfileSetCmd(a))
	cmd.AddCommand(newProfileClearCmd(a))
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, coach, err := a.openCoach()
			if err != nil {
				return err
			}
			defer coach.Close()

			p, err := coach.Profile(cmd.Context())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newProfileSetCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a profile read from a YAML or JSON file",
		Long:  "Reads the profile from --file, or from stdin when --file is \"-\". YAML uses snake_case keys (activity_level, target_weight, ...); JSON uses the stored camelCase keys (activityLevel, targetWeight, ...).",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}

			p, err := parseProfile(data)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}

			_, coach, err := a.openCoach()
			if err != nil {
				return err
			}
			defer coach.Close()
			if err := coach.SaveProfile(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile saved for %s\n", p.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "profile file, or - for stdin")
	return cmd
}

// parseProfile decodes a JSON record with its json tags and anything else as YAML.
func parseProfile(data []byte) (*models.Profile, error) {
	var p models.Profile
	if json.Valid(data) {
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse profile: %w", err)
		}
		return &p, nil
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

func newProfileClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, coach, err := a.openCoach()
			if err != nil {
				return err
			}
			defer coach.Close()
			if err := coach.ResetProfile(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile cleared")
			return nil
		},
	}
}
