package cmd

import (
	"context"
	"errors"
	"fmt"

	"audiochan/db"
	"audiochan/model"
	"audiochan/repository"

	"github.com/spf13/cobra"
)

var userName string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user for local testing",
	Long:  `Create a user row. Pair it with "audiochan token --user-id" to call the API as that user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		u, err := createUser(cmd.Context(), repository.NewGormStore(gdb).Users(), userName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s with id %d\n", u.Username, u.ID)
		return nil
	},
}

func createUser(ctx context.Context, users repository.UserRepository, username string) (*model.User, error) {
	u := &model.User{Username: username}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username %q is already taken", u.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringVar(&userName, "username", "", "name of the new user")
	_ = userCreateCmd.MarkFlagRequired("username")
}
