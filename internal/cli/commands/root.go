package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand builds the tsbridge CLI. Unlike the teacher's
// multi-subcommand tree, tsbridge has exactly one job — bridge LSP to a
// tsserver subprocess over whichever transport flag is set — so the
// root command itself runs the bridge; there is no subcommand tree.
func NewRootCommand() *cobra.Command {
	var (
		stdio       bool
		nodeIPC     bool
		socketPort  int
		logFile     string
		tsserverBin string
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:   "tsbridge",
		Short: "Bridge an LSP editor client to a tsserver subprocess",
		Long: color.CyanString(`tsbridge - LSP <-> tsserver protocol bridge

tsbridge sits between a Language Server Protocol client (an editor) and a
TypeScript language service subprocess ("tsserver"). It translates LSP
requests into tsserver's own JSON-over-stdio dialect, forwards them to a
spawned tsserver child process, and translates its responses and
asynchronous events back into LSP responses and notifications.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(cmd)
				return nil
			}
			return runBridge(cmd, bridgeFlags{
				stdio:       stdio,
				nodeIPC:     nodeIPC,
				socketPort:  socketPort,
				logFile:     logFile,
				tsserverBin: tsserverBin,
			})
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve over stdin/stdout")
	cmd.Flags().BoolVar(&nodeIPC, "node-ipc", false, "serve over the Node.js IPC channel (fd 3)")
	cmd.Flags().IntVar(&socketPort, "socket", 0, "serve over a TCP socket on the given port")
	cmd.Flags().StringVar(&logFile, "tsserver-logFile", "", "tsserver log file path")
	cmd.Flags().StringVar(&tsserverBin, "tsserver-path", "", "path to the tsserver executable or entry script")
	cmd.Flags().BoolVar(&showVersion, "version", false, "print version information and exit")

	return cmd
}

func printVersion(cmd *cobra.Command) {
	titleColor := color.New(color.FgCyan, color.Bold)
	valueColor := color.New(color.FgWhite)

	out := cmd.OutOrStdout()
	titleColor.Fprint(out, "tsbridge version: ")
	valueColor.Fprintln(out, Version)
	titleColor.Fprint(out, "Git commit: ")
	valueColor.Fprintln(out, GitCommit)
	titleColor.Fprint(out, "Build date: ")
	valueColor.Fprintln(out, BuildDate)
	titleColor.Fprint(out, "Go version: ")
	valueColor.Fprintln(out, GoVersion)
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
