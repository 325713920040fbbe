package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pixgonz/pixgonz/pkg/client"
	"github.com/pixgonz/pixgonz/pkg/version"
)

var (
	logLevel   = "info"
	configPath = "pixgonz.json"
	serverAddr = "127.0.0.1:5000"
)

var (
	gProcessing = "Processing:"
	gServer     = "Server:"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: the PixGonz backend is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'pixgonz serve' or point --addr at a running backend")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pixgonz",
		Short: "pixgonz is the PixGonz image processing backend and CLI",
		Long: `pixgonz is the PixGonz image processing backend and CLI.

It serves the HTTP API used by the PixGonz frontend and doubles as a
command line tool for processing image files directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevel,
		"Log level (trace, debug, info, warn, error)")

	cmd.AddGroup(
		&cobra.Group{ID: gProcessing, Title: gProcessing},
		&cobra.Group{ID: gServer, Title: gServer},
	)

	cmd.AddCommand(
		NewVersionCommand(),
		NewServeCommand(),
		NewCalibrateCommand(),
		NewEnhanceCommand(),
		NewAdjustCommand(),
		NewRotateCommand(),
		NewGrayscaleCommand(),
		NewBlurCommand(),
		NewSharpenCommand(),
		NewSegmentCommand(),
		NewRemoteCommand(),
	)

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}
