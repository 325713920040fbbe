package main

import (
	"github.com/spf13/cobra"

	"github.com/pixgonz/pixgonz/pkg/daemon"
)

func NewServeCommand() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the PixGonz backend",
		GroupID: gServer,
		RunE: func(_ *cobra.Command, _ []string) error {
			return daemon.Run(configPath, listenAddr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", configPath,
		"Path to the config file (created with defaults if missing)")
	cmd.Flags().StringVar(&listenAddr, "listen", "",
		"Listen address, overrides the config file")

	return cmd
}
