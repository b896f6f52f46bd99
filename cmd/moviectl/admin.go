package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-review/internal/service"
)

// NewCreateAdminCommand creates the create-admin command.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	var in service.SignupInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctx, cancel, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer cancel()
			defer s.Close()

			user, err := s.svc.Accounts.CreateAdmin(ctx, in)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s <%s> id=%s\n", user.Name, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "admin email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password (at least 8 characters)")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
