package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/lottie"
)

func newRootCommand() *cobra.Command {
	var verbose bool
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "lottie",
		Short:         "Render and inspect Lottie animations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				lottie.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Render configuration file (YAML)")

	rootCmd.AddCommand(newRenderCommand(&configFlag))
	rootCmd.AddCommand(newSVGCommand(&configFlag))
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newOptimizeCommand())

	return rootCmd
}

// loadDocument reads and parses an animation file, honoring the
// format implied by its content.
func loadDocument(path string) (*lottie.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lottie.Parse(data, lottie.FormatAuto)
}
