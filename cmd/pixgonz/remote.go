package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pixgonz/pixgonz/pkg/client"
	"github.com/pixgonz/pixgonz/pkg/history"
)

// sessionID identifies the remote edit history for undo and redo. A fresh
// one is generated per invocation unless --session is given.
var sessionID string

func NewRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remote",
		Short:   "Run operations against a running backend",
		GroupID: gServer,
		Long: `Run operations against a running backend.

Pass --session to keep operations in one undo history; otherwise a new
session ID is generated and printed for each command.`,
	}

	cmd.PersistentFlags().StringVar(&serverAddr, "addr", serverAddr,
		"Backend address")
	cmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "",
		"Session ID for the remote edit history")

	cmd.AddCommand(
		newRemoteCalibrateCommand(),
		newRemoteProcessCommand(),
		newRemoteUndoCommand(),
		newRemoteRedoCommand(),
		newRemoteVersionCommand(),
	)

	return cmd
}

func ensureSessionID() {
	if sessionID != "" {
		return
	}
	sessionID = history.NewSessionID()
	fmt.Fprintf(os.Stderr, "Session: %s\n", bold.Sprint(sessionID))
}

func writeResult(out string, data []byte) error {
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %v", out, err)
	}
	logrus.Debugf("wrote %s (%d bytes)", out, len(data))

	return nil
}

func newRemoteCalibrateCommand() *cobra.Command {
	var displayType string

	cmd := &cobra.Command{
		Use:   "calibrate <input> <output>",
		Short: "Calibrate an image on the backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ensureSessionID()
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %v", args[0], err)
			}
			defer f.Close()

			data, err := client.New(serverAddr).Calibrate(f, displayType, sessionID)
			if err != nil {
				return err
			}

			return writeResult(args[1], data)
		},
	}

	cmd.Flags().StringVarP(&displayType, "display", "d", "",
		"Display type (lcd, led backlit, oled, qled, e-paper)")

	return cmd
}

func newRemoteProcessCommand() *cobra.Command {
	var (
		phase     string
		operation string
	)

	cmd := &cobra.Command{
		Use:   "process <input> <output>",
		Short: "Run a keyword operation on the backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %v", args[0], err)
			}
			defer f.Close()

			data, err := client.New(serverAddr).Process(f, phase, operation)
			if err != nil {
				return err
			}

			return writeResult(args[1], data)
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "phase1", "Processing phase")
	cmd.Flags().StringVar(&operation, "operation", "", "Operation keyword")

	return cmd
}

func newRemoteUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <output>",
		Short: "Undo the last operation of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required for undo")
			}
			data, err := client.New(serverAddr).Undo(sessionID)
			if err != nil {
				return err
			}

			return writeResult(args[0], data)
		},
	}
}

func newRemoteRedoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redo <output>",
		Short: "Redo the last undone operation of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required for redo")
			}
			data, err := client.New(serverAddr).Redo(sessionID)
			if err != nil {
				return err
			}

			return writeResult(args[0], data)
		},
	}
}

func newRemoteVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the backend version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := client.New(serverAddr).Version()
			if err != nil {
				return err
			}
			cmd.Println(v)

			return nil
		},
	}
}
