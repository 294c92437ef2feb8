package main

import (
	"fmt"
	"os"

	"fjacquet/logmongo/cmd/check"
	"fjacquet/logmongo/cmd/preview"
	"fjacquet/logmongo/cmd/replay"
	"fjacquet/logmongo/cmd/root"
	"fjacquet/logmongo/cmd/send"
	"fjacquet/logmongo/internal/config"
	"fjacquet/logmongo/internal/logging"

	"github.com/sirupsen/logrus"
)

func init() {
	// Respect LOGMONGO_LOG_LEVEL before the configuration is loaded so that
	// early messages are filtered the same way.
	configureLogLevelDirectly()

	root.Init()

	root.Cmd.AddCommand(send.Cmd)
	root.Cmd.AddCommand(replay.Cmd)
	root.Cmd.AddCommand(check.Cmd)
	root.Cmd.AddCommand(preview.Cmd)
}

// configureLogLevelDirectly sets the level of the command logger from the
// environment
func configureLogLevelDirectly() {
	logLevel, _ := logging.ParseLevel(config.GetEnv("LOGMONGO_LOG_LEVEL", "info"))

	logrus.SetLevel(logLevel)
	root.Log.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
