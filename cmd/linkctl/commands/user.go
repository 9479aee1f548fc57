package commands

import (
	"fmt"

	"linkshelf/internal/repository"
	"linkshelf/internal/service"
	"linkshelf/internal/storage"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create --email <email> --password <password>",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			store, err := storage.New(cfg)
			if err != nil {
				return err
			}

			users := service.NewUserService(repository.NewUserRepository(db),
				repository.NewLinkRepository(db), store, nil, cfg)
			user, err := users.Register(cmd.Context(), service.RegisterInput{Email: email, Password: password})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
