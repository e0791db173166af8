package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"glslcheck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "glslcheck",
	Short: "GLSL shader compile and link checker",
	Long:  `glslcheck compiles and links GLSL shader pairs against the installed driver and reports structured diagnostics`,
}

// exitError carries a specific process exit code out of a subcommand.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// exitWithCode turns a non-zero code into a silent error that main maps onto
// the process exit status. Diagnostics are already printed by then.
func exitWithCode(cmd *cobra.Command, code int) error {
	if code == 0 {
		return nil
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &exitError{code: code}
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(suiteCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
