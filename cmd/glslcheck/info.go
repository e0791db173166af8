package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glslcheck/internal/backend"
	"glslcheck/internal/backend/opengl"
	"glslcheck/internal/backend/replay"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report graphics context limits",
	Long:  `Bootstrap a hidden context, query the driver limits, and tear it down again`,
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	infoCmd.Flags().String("replay", "", "replay a recorded backend session instead of the live driver")
}

type limitsPayload struct {
	Renderer                  string `json:"renderer"`
	Version                   string `json:"version"`
	MaxVertexUniformVectors   int32  `json:"max_vertex_uniform_vectors"`
	MaxFragmentUniformVectors int32  `json:"max_fragment_uniform_vectors"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	replayPath, err := cmd.Flags().GetString("replay")
	if err != nil {
		return fmt.Errorf("failed to get replay flag: %w", err)
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

	if err := be.Bootstrap(backend.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 3
		switch {
		case errors.Is(err, backend.ErrWindow):
			code = 1
		case errors.Is(err, backend.ErrExtensions):
			code = 2
		}
		return exitWithCode(cmd, code)
	}
	defer be.Teardown()

	limits, err := be.Limits()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitWithCode(cmd, 2)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(limitsPayload{
			Renderer:                  limits.Renderer,
			Version:                   limits.Version,
			MaxVertexUniformVectors:   limits.MaxVertexUniformVectors,
			MaxFragmentUniformVectors: limits.MaxFragmentUniformVectors,
		})
	case "pretty":
		fmt.Fprintf(os.Stdout, "renderer: %s\n", limits.Renderer)
		fmt.Fprintf(os.Stdout, "version:  %s\n", limits.Version)
		fmt.Fprintf(os.Stdout, "max vertex uniform vectors:   %d\n", limits.MaxVertexUniformVectors)
		fmt.Fprintf(os.Stdout, "max fragment uniform vectors: %d\n", limits.MaxFragmentUniformVectors)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
