package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gardenweeks",
		Short:         "Garden week booking board for a housing cooperative",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "optional YAML config file")

	root.AddCommand(
		newServeCommand(),
		newResetPasswordCommand(),
		newCreateAdminCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
