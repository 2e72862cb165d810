package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarrot/xcodeframeworks/internal/reconcile"
	"github.com/gocarrot/xcodeframeworks/pbxproj"
	"github.com/spf13/cobra"
)

// Config holds the parsed command line.
type Config struct {
	Input   string // project.pbxproj to read
	Output  string // Optional destination; empty means back up and overwrite Input
	Verbose bool
}

// ExitError carries the process exit code of a failed run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewRootCommand builds the xcodeframeworks command.
func NewRootCommand() *cobra.Command {
	config := &Config{}
	rootCmd := &cobra.Command{
		Use:   "xcodeframeworks -i <inputfile> [-o <outputfile>]",
		Short: "Add the frameworks and libraries the Carrot SDK needs to an Xcode project",
		Long: `xcodeframeworks makes sure an Xcode project links SystemConfiguration,
Accounts, Social and AdSupport frameworks and the libsqlite3 library.

Each missing dependency is added and reported as "Added '<path>'". When
something was added the project is written to --output, or, without
--output, the input is backed up to <input>_<ddmmyy-HHMMSS>.backup and
overwritten. A project that already has everything is left untouched.

Examples:
  # Update in place, keeping a backup
  xcodeframeworks -i Unity-iPhone.xcodeproj/project.pbxproj

  # Write the result somewhere else
  xcodeframeworks -i project.pbxproj -o project.new.pbxproj`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd, config)
		},
	}

	rootCmd.Flags().StringVarP(&config.Input, "input", "i", "", "Path of the project.pbxproj to update")
	rootCmd.Flags().StringVarP(&config.Output, "output", "o", "", "Write the updated project here instead of overwriting the input")
	rootCmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "Log debug details to stderr")
	_ = rootCmd.MarkFlagRequired("input")
	return rootCmd
}

// Run executes the command with args and returns the process exit code:
// 0 on success or help, 2 on bad arguments, 1 when the project cannot be
// loaded or saved.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 2
	}
	return 0
}

// Execute runs the command against the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runReconcile(cmd *cobra.Command, config *Config) error {
	// Past flag validation, failures are about the project, not usage.
	cmd.SilenceUsage = true
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), config.Verbose))

	project := pbxproj.NewPbxProject(config.Input)
	if err := project.Parse(); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	inserted, err := reconcile.Reconcile(&project, reconcile.Required)
	for _, insertion := range inserted {
		fmt.Fprintf(cmd.OutOrStdout(), "Added '%s'\n", insertion.Path)
	}
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if len(inserted) == 0 {
		slog.Debug("Project already has every dependency.", "path", config.Input)
		return nil
	}

	if config.Output == "" {
		backupPath, err := project.Backup()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		slog.Debug("Original project backed up.", "backup", backupPath)
	}
	if err := project.Save(config.Output); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("failed to write project: %w", err)}
	}
	return nil
}
