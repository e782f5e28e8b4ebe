package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/threadart/pkg/core/geometry"
	"github.com/matzehuels/threadart/pkg/render"
)

var triangle = []geometry.Point{{X: 0, Y: 0}, {X: 100.26, Y: 0}, {X: 50, Y: 80.04}}

func TestDocumentStructure(t *testing.T) {
	r := New(render.Advanced)
	r.Initialize(render.Info{Background: "white"})
	r.DrawPoints(triangle, "red", 4)
	r.DrawConnectedPoints(triangle, render.Monochrome, 0.0625, render.Darken, 2.5)
	r.Finalize()

	doc := r.String()
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`+"\n"+`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 1000 1000">`) {
		t.Errorf("unexpected header:\n%s", doc)
	}
	if !strings.HasSuffix(doc, "\n</svg>") {
		t.Errorf("document not closed:\n%s", doc)
	}

	for _, want := range []string{
		"\t" + `<rect fill="white" stroke="none" x="-10" y="-10" width="1020" height="1020"/>`,
		"\t" + `<g fill="red" stroke="none">`,
		"\t\t" + `<circle cx="100.3" cy="0.0" r="2"/>`,
		"\t\t\t" + `line { mix-blend-mode: difference; }`,
		"\t" + `<g stroke="rgb(16, 16, 16)" stroke-width="2.5" stroke-linecap="round" fill="none">`,
		"\t\t" + `<line x1="0.0" y1="0.0" x2="100.3" y2="0.0"/>`,
		"\t\t" + `<line x1="100.3" y1="0.0" x2="50.0" y2="80.0"/>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "invert(1)") {
		t.Error("darken render should not invert")
	}
	if strings.Contains(doc, blurFilterID) {
		t.Error("blur filter without blur")
	}

	wellFormed(t, r.Bytes())
}

func TestLightenInverts(t *testing.T) {
	r := New(render.Advanced)
	r.Initialize(render.Info{Background: "black"})
	r.DrawConnectedPoints(triangle, render.Green, 1, render.Lighten, 1)
	r.Finalize()

	doc := r.String()
	if !strings.Contains(doc, `svg { filter: invert(1); background: black; }`) {
		t.Error("lighten render should invert")
	}
	if !strings.Contains(doc, `stroke="rgb(0, 255, 0)"`) {
		t.Errorf("unexpected stroke:\n%s", doc)
	}
}

func TestBlurWrapsContent(t *testing.T) {
	r := New(render.Advanced)
	r.Initialize(render.Info{Background: "white", Blur: 1.5})
	r.DrawConnectedPoints(triangle, render.Red, 0.5, render.Darken, 1)
	r.Finalize()

	doc := r.String()
	for _, want := range []string{
		`<filter id="gaussianBlur" x="0" y="0">`,
		`<feGaussianBlur in="SourceGraphic" stdDeviation="1.5"/>`,
		`<g filter="url(#gaussianBlur)">`,
		"\t</g>\n</svg>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	wellFormed(t, r.Bytes())
}

func TestBasicCapability(t *testing.T) {
	r := New(render.Basic)
	r.Initialize(render.Info{})
	r.DrawConnectedPoints(triangle, render.Monochrome, 0.25, render.Darken, 1)
	r.Finalize()

	doc := r.String()
	if strings.Contains(doc, "mix-blend-mode") {
		t.Error("basic capability should not use blend modes")
	}
	if !strings.Contains(doc, `stroke="rgba(0, 0, 0, 0.25)"`) {
		t.Errorf("unexpected stroke:\n%s", doc)
	}
}

func TestEmptyDrawsAreSkipped(t *testing.T) {
	r := New(render.Advanced)
	r.Initialize(render.Info{})
	r.DrawConnectedPoints(triangle[:1], render.Red, 1, render.Darken, 1)
	r.DrawPoints(nil, "red", 1)
	r.Finalize()

	if strings.Contains(r.String(), "<g") {
		t.Errorf("no group expected:\n%s", r.String())
	}
	if got := r.Size(); got != (geometry.Size{Width: 1000, Height: 1000}) {
		t.Errorf("Size() = %v", got)
	}
}

func wellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("document is not well-formed XML: %v", err)
		}
	}
}
