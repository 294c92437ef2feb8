// Package check provides the check command, which resolves the appender
// target and optionally pings the server.
package check

import (
	"context"
	"fmt"

	"fjacquet/logmongo/cmd/root"
	"fjacquet/logmongo/internal/document"

	"github.com/spf13/cobra"
)

var ping bool

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve and verify the log target",
	Long: `Resolve the connection string, database and collection the appender
would write to and print them with credentials redacted, along with the
document shape (the default shape carries its version). With --ping the
server is contacted as well.`,
	RunE: checkFunc,
}

func init() {
	Cmd.Flags().BoolVar(&ping, "ping", false, "Ping the server after resolving the target")
}

func checkFunc(cmd *cobra.Command, args []string) error {
	c, _, err := root.NewContainer()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close(context.Background()) }()

	target, err := c.GetResolver().Resolve()
	if err != nil {
		return err
	}

	shape := fmt.Sprintf("default (v%d)", document.ShapeVersion)
	if !c.GetBuilder().UsesDefaultShape() {
		shape = fmt.Sprintf("%d configured field(s)", len(c.GetBuilder().Fields()))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "connection: %s\n", target.Redacted())
	fmt.Fprintf(out, "database:   %s\n", target.Database)
	fmt.Fprintf(out, "collection: %s\n", target.Collection)
	fmt.Fprintf(out, "shape:      %s\n", shape)

	if !ping {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), root.AppConfig.Appender.WriteTimeout())
	defer cancel()
	if err := c.GetProvider().Ping(ctx, target); err != nil {
		return fmt.Errorf("ping %s failed: %w", target.Redacted(), err)
	}
	_, err = fmt.Fprintln(out, "ping:       ok")
	return err
}
