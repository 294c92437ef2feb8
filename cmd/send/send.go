// Package send provides the send command, which logs messages through a
// logrus logger that has the MongoDB appender attached.
package send

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/logmongo/cmd/root"
	"fjacquet/logmongo/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	level      string
	loggerName string
	threadName string
	fields     []string
)

// Cmd represents the send command
var Cmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send log messages to MongoDB",
	Long: `Send one log event per argument, or one per line of standard input when
no arguments are given. Events go through the configured appender, so the
document shape and target are the ones a service would use.`,
	RunE: sendFunc,
}

func init() {
	Cmd.Flags().StringVarP(&level, "level", "l", "info", "Level of the events (trace, debug, info, warn, error, fatal)")
	Cmd.Flags().StringVar(&loggerName, "logger", "logmongo", "Logger name stored with the events")
	Cmd.Flags().StringVar(&threadName, "thread", "", "Thread name stored with the events")
	Cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Extra property as key=value (repeatable)")
}

func sendFunc(cmd *cobra.Command, args []string) error {
	lvl, ok := models.ParseLevel(level)
	if !ok {
		return fmt.Errorf("invalid level: %s", level)
	}
	if lvl == logrus.PanicLevel {
		return fmt.Errorf("panic level events cannot be sent")
	}

	data, err := ParseFields(fields)
	if err != nil {
		return err
	}
	data[models.LoggerKey] = loggerName
	if threadName != "" {
		data[models.ThreadKey] = threadName
	}

	messages := args
	if len(messages) == 0 {
		messages, err = ReadMessages(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	c, memory, err := root.NewContainer()
	if err != nil {
		return err
	}
	// Hooks swallow their errors, so resolve up front to fail loudly.
	target, err := c.GetResolver().Resolve()
	if err != nil {
		_ = c.Close(context.Background())
		return err
	}

	sent := Send(c.GetAppender(), messages, lvl, data)

	ctx, cancel := context.WithTimeout(context.Background(), root.AppConfig.Appender.WriteTimeout()*2)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		return fmt.Errorf("failed to flush log events: %w", err)
	}

	root.Log.WithFields(logrus.Fields{
		"count":      sent,
		"collection": target.Namespace(),
	}).Info("Log events sent")

	if memory != nil {
		return root.PrintDocuments(cmd.OutOrStdout(), memory.Documents(target.Namespace()))
	}
	return nil
}

// Send logs each non-blank message at level through a dedicated logger
// whose only output is hook. It returns the number of events logged.
func Send(hook logrus.Hook, messages []string, level logrus.Level, data logrus.Fields) int {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.TraceLevel)
	logger.AddHook(hook)

	entry := logger.WithFields(data)
	sent := 0
	for _, msg := range messages {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		entry.Log(level, msg)
		sent++
	}
	return sent
}

// ParseFields turns key=value pairs into logrus fields.
func ParseFields(pairs []string) (logrus.Fields, error) {
	data := logrus.Fields{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		data[key] = value
	}
	return data, nil
}

// ReadMessages reads one message per line.
func ReadMessages(r io.Reader) ([]string, error) {
	var messages []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		messages = append(messages, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return messages, nil
}
