package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glslcheck/internal/backend"
	"glslcheck/internal/backend/opengl"
	"glslcheck/internal/backend/replay"
	"glslcheck/internal/checkpipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [vertex] [fragment]",
	Short: "Compile and link a shader pair",
	Long: `Compile the vertex and fragment shaders, link them into a program, and
report driver diagnostics. Without arguments the fixed pair Shader.vert and
Shader.frag in the current directory is checked.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().String("replay", "", "replay a recorded backend session instead of the live driver")
	checkCmd.Flags().String("record", "", "record the backend session to a file")
}

// runCheck executes the "check" command: it drives the pipeline against the
// selected backend, prints driver logs and formatted diagnostics, and exits
// with the status code the failure kind maps onto.
func runCheck(cmd *cobra.Command, args []string) error {
	vertexPath := checkpipeline.DefaultVertexPath
	fragmentPath := checkpipeline.DefaultFragmentPath
	if len(args) > 0 {
		vertexPath = args[0]
	}
	if len(args) > 1 {
		fragmentPath = args[1]
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	replayPath, err := cmd.Flags().GetString("replay")
	if err != nil {
		return fmt.Errorf("failed to get replay flag: %w", err)
	}
	recordPath, err := cmd.Flags().GetString("record")
	if err != nil {
		return fmt.Errorf("failed to get record flag: %w", err)
	}
	opts, err := readRootOptions(cmd)
	if err != nil {
		return err
	}

	var be backend.Backend
	if replayPath != "" {
		session, err := replay.LoadSession(replayPath)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		be = replay.New(session)
	} else {
		be = opengl.New()
	}
	var recorder *replay.Recorder
	if recordPath != "" {
		recorder = replay.NewRecorder(be)
		be = recorder
	}

	res, runErr := checkpipeline.Run(cmd.Context(), &checkpipeline.Request{
		VertexPath:     vertexPath,
		FragmentPath:   fragmentPath,
		Backend:        be,
		MaxDiagnostics: opts.maxDiagnostics,
		EnableTimings:  opts.timings,
	})

	if recorder != nil {
		if err := replay.SaveSession(recordPath, recorder.Session()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save session: %v\n", err)
		}
	}

	if !opts.quiet {
		printLimits(os.Stdout, &res)
		printDriverLogs(os.Stdout, &res)
	}
	if err := renderDiagnostics(os.Stdout, res.Bag, res.FileSet, format, opts, withNotes, fullPath); err != nil {
		return err
	}
	if res.Fault != nil {
		fmt.Fprintln(os.Stderr, res.Fault.Error())
	}
	if notice := capNotice(res.Bag); notice != "" {
		fmt.Fprintln(os.Stderr, notice)
	}
	if opts.timings {
		fmt.Fprint(os.Stderr, res.Report.Summary())
	}

	if code := res.Failure.ExitCode(); code != 0 {
		return exitWithCode(cmd, code)
	}
	// Run can fail without a pipeline failure kind (bad request, cancelled
	// context); surface that as an ordinary error.
	if runErr != nil && res.Failure == checkpipeline.FailNone {
		return runErr
	}
	return nil
}
