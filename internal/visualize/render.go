package visualize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"volscope/internal/config"
	apperrors "volscope/internal/errors"
)

// titleHeight is the strip reserved above the panel grid for the figure title
const titleHeight = 32

// Figure is a titled grid of panels. Panels are listed row by row.
type Figure struct {
	Name   string
	Title  string
	Rows   int
	Cols   int
	Panels []*plot.Plot
}

// Renderer writes figures as image files into one directory
type Renderer struct {
	dir    string
	format string
	width  vg.Length
	height vg.Length
}

// NewRenderer creates a renderer from the plot configuration
func NewRenderer(cfg config.PlotConfig) *Renderer {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "png"
	}
	return &Renderer{
		dir:    cfg.OutputDir,
		format: format,
		width:  vg.Length(cfg.Width) * vg.Inch,
		height: vg.Length(cfg.Height) * vg.Inch,
	}
}

// Dir returns the output directory
func (r *Renderer) Dir() string { return r.dir }

var unsafeName = regexp.MustCompile(`[^a-z0-9_-]+`)

// Path returns where a figure with the given name is written
func (r *Renderer) Path(name string) string {
	clean := unsafeName.ReplaceAllString(strings.ToLower(name), "_")
	return filepath.Join(r.dir, clean+"."+r.format)
}

// Save lays out the figure panels and writes the image, returning its path
func (r *Renderer) Save(fig *Figure) (string, error) {
	if fig.Rows*fig.Cols != len(fig.Panels) {
		return "", apperrors.NewRenderError(
			fmt.Sprintf("figure %s has %d panels for a %dx%d grid", fig.Name, len(fig.Panels), fig.Rows, fig.Cols), nil)
	}

	c, err := draw.NewFormattedCanvas(r.width, r.height, r.format)
	if err != nil {
		return "", apperrors.NewRenderError("unsupported image format", err).WithContext("format", r.format)
	}
	if err := r.draw(c, fig); err != nil {
		return "", err
	}

	if err := config.EnsureDir(r.dir); err != nil {
		return "", apperrors.NewStorageError("failed to create charts directory", err).WithContext("dir", r.dir)
	}
	path := r.Path(fig.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewStorageError("failed to create figure file", err).WithContext("path", path)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return "", apperrors.NewRenderError("failed to encode figure", err).WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return "", apperrors.NewStorageError("failed to close figure file", err).WithContext("path", path)
	}
	return path, nil
}

// draw lays the panels out on c. gonum/plot panics on ranges it cannot
// scale; that becomes a render error for this figure alone.
func (r *Renderer) draw(c vg.CanvasWriterTo, fig *Figure) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = apperrors.NewRenderError(fmt.Sprintf("failed to draw figure %s: %v", fig.Name, v), nil).
				WithContext("figure", fig.Name)
		}
	}()

	dc := draw.New(c)

	sty := plot.New().Title.TextStyle
	sty.Font.Size = vg.Points(16)
	sty.XAlign = text.XCenter
	sty.YAlign = text.YTop
	mid := (dc.Rectangle.Min.X + dc.Rectangle.Max.X) / 2
	dc.FillText(sty, vg.Point{X: mid, Y: dc.Rectangle.Max.Y - vg.Points(6)}, fig.Title)

	grid := draw.Crop(dc, 0, 0, 0, -vg.Points(titleHeight))
	tiles := draw.Tiles{
		Rows:      fig.Rows,
		Cols:      fig.Cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}

	plots := make([][]*plot.Plot, fig.Rows)
	for j := range plots {
		plots[j] = fig.Panels[j*fig.Cols : (j+1)*fig.Cols]
	}
	canvases := plot.Align(plots, tiles, grid)
	for j := range plots {
		for i, p := range plots[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
	return nil
}
