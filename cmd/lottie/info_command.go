package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <animation>",
		Short: "Print document facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("version:      %s\n", doc.Version)
			if doc.Name != "" {
				fmt.Printf("name:         %s\n", doc.Name)
			}
			fmt.Printf("size:         %gx%g\n", doc.Width, doc.Height)
			fmt.Printf("frame rate:   %g fps\n", doc.FrameRate)
			fmt.Printf("range:        [%g, %g)\n", doc.InPoint, doc.OutPoint)
			fmt.Printf("total frames: %g\n", doc.TotalFrames())
			fmt.Printf("duration:     %s\n", doc.Duration())
			fmt.Printf("layers:       %d\n", len(doc.Layers))
			for i := range doc.Layers {
				l := &doc.Layers[i]
				fmt.Printf("  [%d] %s %q frames [%g, %g)\n", l.Index, l.Type, l.Name, l.InPoint, l.OutPoint)
			}
			if len(doc.Assets) > 0 {
				fmt.Printf("assets:       %d\n", len(doc.Assets))
				for i := range doc.Assets {
					a := &doc.Assets[i]
					fmt.Printf("  %s (%d layers)\n", a.ID, len(a.Layers))
				}
			}
			if len(doc.Markers) > 0 {
				fmt.Printf("markers:      %d\n", len(doc.Markers))
				for _, m := range doc.Markers {
					fmt.Printf("  %q at frame %g\n", m.Name, m.Time)
				}
			}
			return nil
		},
	}
}
