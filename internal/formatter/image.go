package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/models"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	padding     = 10
	lineMargin  = 5
	trackGap    = 16
	titleMargin = 12
	lineHeight  = 1.5

	placeholderColor = "#cccccc"
	textColor        = "#000000"
)

var parseFonts = sync.OnceValues(func() ([2]*opentype.Font, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return [2]*opentype.Font{}, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return [2]*opentype.Font{}, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return [2]*opentype.Font{regular, bold}, nil
})

// ExportImage renders tracks as a PNG using style and the covers on board.
//
// A blank title fails with a validation error before any cover or drawing work. Covers still
// loading are registered on an [artwork.Barrier] and the export waits for all of them, bounded
// by ctx; when every cover is already complete it does not wait at all. Failed covers, and
// tracks the board has no cover for, are drawn as a neutral placeholder tile.
func ExportImage(ctx context.Context, tracks models.TrackList, style models.ExportStyle, board *artwork.Board) ([]byte, error) {
	if !style.HasTitle() {
		return nil, shared.NewValidationError("", "Title cannot be blank or just whitespace")
	}

	barrier := artwork.NewBarrier()
	for _, c := range board.Covers() {
		barrier.Add(c)
	}
	if err := barrier.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waiting for covers: %w", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("waiting for covers: %w", err)
	}

	img, err := rasterize(tracks, style.Clamp(), board)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteImageExport renders the image export and writes it to path.
//
// Defaults to setlist.png as the filename.
func WriteImageExport(ctx context.Context, tracks models.TrackList, style models.ExportStyle, board *artwork.Board, path string) (string, error) {
	data, err := ExportImage(ctx, tracks, style, board)
	if err != nil {
		return "", err
	}

	path = resolvePath(path, ImageFilename)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// layout holds the pixel geometry of an export.
type layout struct {
	width       int
	height      int
	titleHeight int
	coverSize   int
	lineHeight  int
	rowHeight   int
}

func newLayout(tracks models.TrackList, style models.ExportStyle, title, body font.Face) layout {
	l := layout{
		coverSize:   style.CoverSize,
		lineHeight:  int(float64(style.TextSize) * lineHeight),
		titleHeight: int(float64(style.TextSize*2)*lineHeight) + titleMargin,
	}
	l.rowHeight = l.coverSize + lineMargin + l.lineHeight + lineMargin + trackGap

	content := max(l.coverSize, font.MeasureString(title, style.Title).Ceil())
	for i, t := range tracks {
		content = max(content, font.MeasureString(body, t.Line(i+1)).Ceil())
	}

	l.width = content + 2*padding
	l.height = padding + l.titleHeight + len(tracks)*l.rowHeight + padding
	return l
}

// coverRect is where the cover tile of the i-th track (0-based) is drawn.
func (l layout) coverRect(i int) image.Rectangle {
	top := padding + l.titleHeight + i*l.rowHeight
	return image.Rect(padding, top, padding+l.coverSize, top+l.coverSize)
}

// textBaseline is the baseline of the text line under the i-th cover.
func (l layout) textBaseline(i int, face font.Face) int {
	top := l.coverRect(i).Max.Y + lineMargin
	return top + centeredBaseline(l.lineHeight, face)
}

func centeredBaseline(boxHeight int, face font.Face) int {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	return (boxHeight-(ascent+descent))/2 + ascent
}

func newFace(f *opentype.Font, size int) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

func parseColor(field, hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, shared.NewValidationError(field, fmt.Sprintf("%q is not a #rrggbb colour", hex))
	}
	return c, nil
}

func rasterize(tracks models.TrackList, style models.ExportStyle, board *artwork.Board) (*image.RGBA, error) {
	bg, err := parseColor("background_color", style.BackgroundColor)
	if err != nil {
		return nil, err
	}
	titleFg, err := parseColor("title_color", style.TitleColor)
	if err != nil {
		return nil, err
	}
	fg, _ := parseColor("text_color", textColor)
	placeholder, _ := parseColor("placeholder", placeholderColor)

	fonts, err := parseFonts()
	if err != nil {
		return nil, err
	}
	bodyFont := fonts[0]
	if style.Bold {
		bodyFont = fonts[1]
	}

	body, err := newFace(bodyFont, style.TextSize)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	title, err := newFace(fonts[1], style.TextSize*2)
	if err != nil {
		return nil, err
	}
	defer title.Close()

	l := newLayout(tracks, style, title, body)
	dst := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	titleWidth := font.MeasureString(title, style.Title).Ceil()
	drawText(dst, title, titleFg, style.Title, (l.width-titleWidth)/2, padding+centeredBaseline(l.titleHeight-titleMargin, title))

	for i, t := range tracks {
		rect := l.coverRect(i)
		if c := board.Cover(t.AlbumCoverURL); c != nil && c.State() == artwork.Loaded {
			tile := resize.Resize(uint(l.coverSize), uint(l.coverSize), c.Image(), resize.Lanczos3)
			draw.Draw(dst, rect, tile, tile.Bounds().Min, draw.Over)
		} else {
			draw.Draw(dst, rect, image.NewUniform(placeholder), image.Point{}, draw.Src)
		}

		drawText(dst, body, fg, t.Line(i+1), padding, l.textBaseline(i, body))
	}

	return dst, nil
}

func drawText(dst draw.Image, face font.Face, c color.Color, s string, x, baseline int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
