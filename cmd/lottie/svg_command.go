package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/lottie"
)

func newSVGCommand(configPath *string) *cobra.Command {
	var frame float64
	var out string

	cmd := &cobra.Command{
		Use:   "svg <animation>",
		Short: "Write one frame as an SVG document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRenderConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Out = out
			}

			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			r := lottie.NewSVGRenderer(doc)
			defer r.Destroy()
			if err := r.Render(frame); err != nil {
				return err
			}

			w := os.Stdout
			if cfg.Out != "" && cfg.Out != "." && cfg.Out != "-" {
				f, err := os.Create(cfg.Out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			_, err = r.WriteTo(w)
			return err
		},
	}

	cmd.Flags().Float64Var(&frame, "frame", 0, "Frame to render")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")

	return cmd
}
