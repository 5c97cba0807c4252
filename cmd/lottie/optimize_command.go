package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/lottie"
)

func newOptimizeCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "optimize <animation>",
		Short: "Write a size-reduced copy of a document",
		Long: `Optimize drops assets no layer references, collapses near-collinear
path vertices, and rounds numeric values. The output is behaviorally
equivalent for rendering but smaller to store and ship.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			reduced := lottie.Optimize(doc)
			data, err := json.Marshal(reduced)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")

	return cmd
}
