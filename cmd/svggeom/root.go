package main

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/benoitkugler/svggeom/svgdom"
	"github.com/benoitkugler/svggeom/svgparse"
	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/benoitkugler/svggeom/svgpdf"
	"github.com/benoitkugler/svggeom/svgraster"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is set at build time using ldflags.
var Version = "dev"

// app holds the state shared by the subcommands,
// initialized before any of them runs.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:           "svggeom",
		Short:         "svggeom resolves and inspects the geometry of SVG files.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./svggeom.yaml)")
	flags.Float64("width", 0, "width of the outermost viewport, in px")
	flags.Float64("height", 0, "height of the outermost viewport, in px")
	flags.String("error-mode", "", "handling of unsupported content: ignore, warn or strict")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	for key, flag := range map[string]string{
		"viewport.width":  "width",
		"viewport.height": "height",
		"error_mode":      "error-mode",
		"logger.level":    "log-level",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(a.boundsCmd(), a.regionCmd(), a.rasterCmd(), a.pdfCmd())
	return rootCmd
}

func (a *app) init() error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logger)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	logger.Debug("configuration loaded", zap.Any("config", cfg))
	return nil
}

func (a *app) readIcon(file string) (*svgparse.Icon, error) {
	opts, err := a.cfg.parseOptions(a.logger)
	if err != nil {
		return nil, err
	}
	return svgparse.ReadIcon(file, opts)
}

func formatRect(r svgpath.Rect) string {
	if r.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%g %g %g %g", r.X, r.Y, r.W, r.H)
}

// walk calls f on e and its descendants, in document order.
func walk(e *svgdom.Element, f func(*svgdom.Element)) {
	f(e)
	for _, c := range e.Children() {
		walk(c, f)
	}
}

func (a *app) boundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds FILE [ID...]",
		Short: "Print the bounding boxes of the elements with an id, or of the given ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			icon, err := a.readIcon(args[0])
			if err != nil {
				return err
			}
			var elements []*svgdom.Element
			if ids := args[1:]; len(ids) > 0 {
				for _, id := range ids {
					e := icon.Doc.ElementByID(id)
					if e == nil {
						return fmt.Errorf("no element with id %q", id)
					}
					elements = append(elements, e)
				}
			} else {
				walk(icon.Doc.Root(), func(e *svgdom.Element) {
					if e.ID() != "" {
						elements = append(elements, e)
					}
				})
			}
			out := cmd.OutOrStdout()
			for _, e := range elements {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.ID(), e.Kind(), formatRect(e.Bounds()))
			}
			return nil
		},
	}
}

func (a *app) regionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "region FILE ID",
		Short: "Print the region visible through the mask and clip path of an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			icon, err := a.readIcon(args[0])
			if err != nil {
				return err
			}
			e := icon.Doc.ElementByID(args[1])
			if e == nil {
				return fmt.Errorf("no element with id %q", args[1])
			}
			region, ok, err := e.VisibleRegion()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "unconstrained")
				return nil
			}
			if region.IsEmpty() {
				fmt.Fprintln(out, "empty")
				return nil
			}
			printRegion(out, region, "")
			return nil
		},
	}
}

// printRegion prints the bounds of the region, of its paths and
// of its parts, prefixed by their position in the region tree.
func printRegion(out io.Writer, region svgdom.Region, prefix string) {
	fmt.Fprintf(out, "%sbounds\t%s\n", prefix, formatRect(region.Bounds))
	for i, p := range region.Paths {
		fmt.Fprintf(out, "%spath %d\t%s\n", prefix, i, formatRect(p.Bounds()))
	}
	for i, part := range region.Parts {
		printRegion(out, part, fmt.Sprintf("%spart %d ", prefix, i))
	}
}

// writeFile creates `file` and fills it with `write`.
// The file is removed on failure.
func writeFile(file string, write func(io.Writer) error) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(file)
	}
	return err
}

func (a *app) rasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raster FILE OUT.png",
		Short: "Render the coverage of the document geometry into a PNG mask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.cfg.parseOptions(a.logger)
			if err != nil {
				return err
			}
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			img, err := svgraster.RasterSVGIconToImage(in, opts)
			if err != nil {
				return err
			}
			return writeFile(args[1], func(w io.Writer) error { return png.Encode(w, img) })
		},
	}
}

func (a *app) pdfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pdf FILE OUT.pdf",
		Short: "Draw the outlines, bounding boxes and regions of the document into a PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.cfg.parseOptions(a.logger)
			if err != nil {
				return err
			}
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			// the output is only created for a valid document
			var buf bytes.Buffer
			if err = svgpdf.RenderSVGIconToPDF(in, &buf, opts); err != nil {
				return err
			}
			return writeFile(args[1], func(w io.Writer) error {
				_, err := buf.WriteTo(w)
				return err
			})
		},
	}
}
