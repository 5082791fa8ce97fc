package sink

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/render"
)

func testDoc() *cmap.Document {
	doc := cmap.New(fonts.Fixed{CharWidth: 7, Height: 14})
	a := doc.AddNodeWithText(cmap.KindConcept, 20, 20, "Plants & <soil>")
	m := doc.AddNodeWithText(cmap.KindText, 200, 20, "need")
	b := doc.AddNodeWithText(cmap.KindConcept, 320, 20, "Water")
	doc.AddArrow(a, m)
	doc.AddArrow(m, b)
	return doc
}

func TestRenderSVGMetadata(t *testing.T) {
	svg := string(RenderSVG(testDoc()))

	for _, want := range []string{
		`width="2000" height="2000"`,
		`viewBox="0 0 2000 2000"`,
		"<title>Diagram SVG Export</title>",
		"<desc>Exported diagram as SVG</desc>",
		"Plants &amp; &lt;soil&gt;",
		`rx="15.00"`,
		`fill="#c0c0c0"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if got := strings.Count(svg, "<polygon"); got != 2 {
		t.Errorf("arrowheads = %d, want 2", got)
	}
	if got := strings.Count(svg, "<text"); got != 3 {
		t.Errorf("labels = %d, want 3", got)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("svg not closed")
	}
}

func TestRenderSVGGrowsToFit(t *testing.T) {
	doc := cmap.New(fonts.Fixed{CharWidth: 7, Height: 14})
	doc.AddNodeWithText(cmap.KindConcept, 2500, 100, "far")

	svg := string(RenderSVG(doc, WithSize(800, 600)))
	if !strings.Contains(svg, `width="2539" height="600"`) {
		t.Errorf("canvas not grown to fit node:\n%s", svg[:120])
	}

	near := cmap.New(fonts.Fixed{CharWidth: 7, Height: 14})
	near.AddNodeWithText(cmap.KindConcept, 100, 100, "near")
	svg = string(RenderSVG(near, WithSize(800, 600)))
	if !strings.Contains(svg, `width="800" height="600"`) {
		t.Errorf("canvas resized for a document that fits:\n%s", svg[:120])
	}
}

func TestRenderSVGSelection(t *testing.T) {
	doc := testDoc()
	doc.SelectArrow(doc.Arrows()[0].ID)

	svg := string(RenderSVG(doc))
	if !strings.Contains(svg, `stroke="#0078d7" stroke-width="3.00"`) {
		t.Error("selected arrow not highlighted")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(RenderSVG(cmap.New(fonts.Fixed{CharWidth: 7, Height: 14})))
	if strings.Contains(svg, "<line") || strings.Contains(svg, "<text") {
		t.Error("empty document should render only the background")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testDoc(), WithPNGSize(400, 100), WithScale(2))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 200 {
		t.Errorf("image = %dx%d, want 800x200", b.Dx(), b.Dy())
	}

	r, g, bl, _ := img.At(1, 1).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Errorf("background pixel = %d,%d,%d, want white", r>>8, g>>8, bl>>8)
	}
	r, g, bl, _ = img.At(60, 50).RGBA()
	if r>>8 != 192 || g>>8 != 192 || bl>>8 != 192 {
		t.Errorf("concept pixel = %d,%d,%d, want light gray", r>>8, g>>8, bl>>8)
	}
}

func TestRenderPNGBadScale(t *testing.T) {
	_, err := RenderPNG(testDoc(), WithScale(0))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestRenderPDF(t *testing.T) {
	if !render.HasConverter() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPDF(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
