package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ironsheep/flashcards-mcp/internal/catalog"
	"github.com/ironsheep/flashcards-mcp/internal/grouping"
	pageimaging "github.com/ironsheep/flashcards-mcp/internal/imaging"
)

type groupFlags struct {
	format   string
	strategy string
	render   string
	caption  string
	save     bool
	converge bool
}

// groupOutput is what `group --format json` prints.
type groupOutput struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption,omitempty"`
	*grouping.Result
}

func newGroupCmd(flags *globalFlags) *cobra.Command {
	gf := &groupFlags{}

	cmd := &cobra.Command{
		Use:   "group <image>",
		Short: "Recognize one page and print its flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroup(cmd, flags, gf, args[0])
		},
	}

	cmd.Flags().StringVarP(&gf.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&gf.strategy, "strategy", "s", "", "Grouping strategy: greedy or hierarchical (default from config)")
	cmd.Flags().StringVarP(&gf.render, "render", "r", "", "Write the page with flashcard boxes drawn to this file")
	cmd.Flags().StringVar(&gf.caption, "caption", "", "Caption stored with the catalog record")
	cmd.Flags().BoolVar(&gf.save, "save", false, "Record the result in the catalog")
	cmd.Flags().BoolVar(&gf.converge, "converge", false, "Repeat grouping until nothing more merges")
	return cmd
}

func runGroup(cmd *cobra.Command, flags *globalFlags, gf *groupFlags, path string) error {
	if gf.format != "text" && gf.format != "json" {
		return fmt.Errorf("unknown format %q: want text or json", gf.format)
	}

	ctx := cmd.Context()
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	engine, err := a.engine.WithStrategy(gf.strategy)
	if err != nil {
		return err
	}
	if gf.converge {
		if engine, err = engine.With(grouping.Overrides{Converge: &gf.converge}); err != nil {
			return err
		}
	}
	recognizer, err := a.Recognizer(ctx)
	if err != nil {
		return err
	}

	annotations, err := recognizer.Recognize(ctx, path)
	if err != nil {
		return err
	}
	out := groupOutput{Filename: filepath.Base(path), Caption: gf.caption, Result: engine.Group(annotations)}

	if gf.save {
		cat, err := a.Catalog(ctx)
		if err != nil {
			return err
		}
		rec := catalog.Record{
			Filename:     out.Filename,
			Caption:      out.Caption,
			GroupedBoxes: out.Boxes,
			Labels:       out.Labels,
			Strategy:     out.Strategy,
		}
		err = cat.Add(ctx, rec)
		if errors.Is(err, catalog.ErrDuplicate) {
			err = cat.Update(ctx, rec)
		}
		if err != nil {
			return err
		}
	}

	if gf.render != "" {
		img, err := a.cache.Load(path)
		if err != nil {
			return err
		}
		drawn, err := pageimaging.DrawBoxes(img, out.Boxes, out.Labels, pageimaging.RenderOptions{ShowLabels: true})
		if err != nil {
			return err
		}
		if err := imaging.Save(drawn, gf.render); err != nil {
			return fmt.Errorf("failed to write %s: %w", gf.render, err)
		}
	}

	w := cmd.OutOrStdout()
	if gf.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printText(w, out)
	return nil
}

// printText writes a short colored summary: one line per flashcard with its
// box and label, then any dropped tokens.
func printText(w io.Writer, out groupOutput) {
	title := color.New(color.FgHiMagenta, color.Bold)
	dim := color.New(color.FgHiBlack)
	index := color.New(color.FgYellow)
	warn := color.New(color.FgRed)

	title.Fprintf(w, "%s", out.Filename)
	dim.Fprintf(w, "  strategy=%s flashcards=%d tokens=%d\n", out.Strategy, len(out.Boxes), len(out.Tokens))

	for i, b := range out.Boxes {
		label := ""
		if i < len(out.Labels) {
			label = out.Labels[i]
		}
		index.Fprintf(w, "%3d ", i+1)
		dim.Fprintf(w, "(%g,%g)-(%g,%g) ", b.Left, b.Top, b.Right, b.Bottom)
		fmt.Fprintln(w, label)
	}

	if len(out.Filtered) > 0 {
		dim.Fprintf(w, "filtered: %q\n", out.Filtered)
	}
	for _, rej := range out.Rejected {
		warn.Fprintf(w, "rejected #%d %q: %s\n", rej.Index, rej.Text, rej.Reason)
	}
}
