package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xget-hq/edge/pkg/cli"
)

const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xget",
		Short: "xget edge - HTTP front end of the xget proxy",
		Long: `xget edge is the HTTP front end of the xget proxy.

It normalizes every inbound request, dispatches /api/health to the health
report and every other path to the routing handler, and answers failures
with a uniform JSON error body. With TLS enabled it serves HTTPS and
redirects plaintext requests to it.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return cli.ExitOK
	}

	if fieldErrs := cli.ConfigErrors(err); len(fieldErrs) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration invalid:")
		for _, fe := range fieldErrs {
			fmt.Fprintf(os.Stderr, "  - %s: %s\n", fe.Field, fe.Message)
		}
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}
