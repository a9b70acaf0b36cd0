package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/gardenweeks/internal/cli"
	"github.com/terraincognita07/gardenweeks/internal/config"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

func newResetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Replace a member's password with a temporary one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(func(accounts *services.AuthService) error {
				return cli.RunResetPasswordCommand(accounts, args[0], cmd.OutOrStdout())
			})
		},
	}
}

func newCreateAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin <username>",
		Short: "Create an admin account or promote an existing member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := cli.TerminalPrompt(os.Stdin, cmd.OutOrStdout())
			return withAccounts(func(accounts *services.AuthService) error {
				return cli.RunCreateAdminCommand(accounts, args[0], prompt, cmd.OutOrStdout())
			})
		},
	}
}

func withAccounts(run func(*services.AuthService) error) error {
	cfg, err := config.LoadStorage(configFile)
	if err != nil {
		return err
	}

	bookingStore, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	return run(services.NewAuthService(bookingStore))
}
