/*
Package cli provides command-line interface utilities for the vadapro command.

Output Formatting:

Command results can be rendered as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Values implementing Table render as aligned columns in text output and as
one record per row in CSV output.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

The context is cancelled on SIGINT or SIGTERM.

Errors:

ConfigError and CommandError give commands a uniform error shape.
*/
package cli
