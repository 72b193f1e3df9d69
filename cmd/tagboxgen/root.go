package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	// Global flags
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "tagboxgen",
	Short: "Generate single-word tagged containers for Go unions",
	Long: `tagboxgen generates union types whose values are stored behind a
tagged pointer: one machine word holding both the payload address and the
variant's ordinal.

Unions are declared either in a tagbox.toml manifest (tagboxgen gen) or as a
shape struct in Go source (tagboxgen shape).`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commonlog.Configure(verbose, nil)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logger() commonlog.Logger {
	return commonlog.GetLogger("tagboxgen")
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// writeSource writes generated code, creating the directory if needed.
func writeSource(path string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, src, 0o644)
}
