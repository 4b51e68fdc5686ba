package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/scry"
	"github.com/jward/scry/internal/script"
)

var (
	flagGroupByModule bool
	flagRankSep       float64
	flagColorScript   string
	flagRender        string
)

var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Render the class hierarchy as Graphviz DOT",
	Long:  "Prints the inheritance graph in DOT form, one node per class. With --render, also runs Graphviz to produce a PNG next to the DOT file.",
	Args:  cobra.NoArgs,
	RunE:  runDot,
}

func init() {
	dotCmd.Flags().BoolVar(&flagGroupByModule, "group-by-module", false, "cluster classes by their defining module")
	dotCmd.Flags().Float64Var(&flagRankSep, "ranksep", 0, "vertical distance between ranks (default 3.0)")
	dotCmd.Flags().StringVar(&flagColorScript, "color-script", "", "Risor script computing a font color per class (globals: name, module)")
	dotCmd.Flags().StringVar(&flagRender, "render", "", "write <path>.dot and <path>.png instead of printing")
}

func runDot(cmd *cobra.Command, args []string) error {
	set, r, closeStore, err := loadIndex()
	if err != nil {
		return err
	}
	defer closeStore()

	classes, err := scry.Classes(r, set)
	if err != nil {
		return err
	}

	opts := scry.DotOptions{
		GroupByModule: flagGroupByModule,
		RankSep:       flagRankSep,
	}
	if flagColorScript != "" {
		source, err := os.ReadFile(flagColorScript)
		if err != nil {
			return fmt.Errorf("reading color script: %w", err)
		}
		color, err := script.ColorFunc(cmd.Context(), string(source))
		if err != nil {
			return err
		}
		opts.Color = color
	}

	dot, err := scry.HierarchyDot(r, classes, opts)
	if err != nil {
		return err
	}

	if flagRender == "" {
		fmt.Print(dot)
		return nil
	}
	if err := scry.RenderImage(dot, flagRender); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s.dot and %s.png\n", flagRender, flagRender)
	return nil
}
