/*
Package cli provides helpers shared by the xget commands.

Output Formatting:

Commands that print results accept --format text|json:

	format, err := cli.ParseOutputFormat(flagValue)
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Errors:

ConfigError and CommandError wrap failures for display; ExitCode maps them
to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
