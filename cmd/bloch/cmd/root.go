package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build flags).
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bloch",
	Short: "Bloch quantum-classical hybrid language runner",
	Long: `bloch runs pre-built Bloch programs through the semantic analyser and
runtime evaluator described in this module's core.

Bloch is a small statically typed, class-aware, quantum-classical hybrid
language: classical control flow is interpreted directly while quantum
gates are dispatched to an ideal statevector simulator that produces an
OpenQASM 2.0 transcript alongside the program's classical output.

Since the textual lexer/parser is out of scope for this module, this CLI
demonstrates the host facade (pkg/bloch) against a small set of
Go-constructed example programs rather than parsing Bloch source files.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
