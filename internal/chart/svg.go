package chart

import (
	"fmt"
	"html/template"
	"strings"
)

// Style controls the colours of a rendered chart.
type Style struct {
	Stroke      string
	StrokeWidth float64
	FillOpacity float64
	Grid        string
	Label       string
}

// DefaultStyle returns the page palette.
func DefaultStyle() Style {
	return Style{
		Stroke:      "#198754",
		StrokeWidth: 2,
		FillOpacity: 0.12,
		Grid:        "#e9ecef",
		Label:       "#6c757d",
	}
}

// RenderSVG draws g with axes, gridlines, the filled area and the line.
// An empty geometry renders a placeholder carrying message.
func RenderSVG(g *Geometry, title, message string, style Style) template.HTML {
	if g.Empty() {
		if message == "" {
			message = "Need more observations to draw a line."
		}
		return Placeholder(g.Size.Width, g.Size.Height, message, false)
	}
	w, h := g.Size.Width, g.Size.Height
	left, right := MarginLeft, w-MarginRight

	var b strings.Builder
	b.Grow(1024 + len(g.LinePath) + len(g.AreaPath))
	fmt.Fprintf(&b, `<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg" role="img" aria-label="%s">`,
		w, h, w, h, template.HTMLEscapeString(title))

	// Gridlines and value labels
	fmt.Fprintf(&b, `<g stroke="%s" stroke-width="1">`, style.Grid)
	for _, t := range g.ValueTicks {
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`, left, t.Y, right, t.Y)
	}
	b.WriteString(`</g>`)
	fmt.Fprintf(&b, `<g font-size="11" fill="%s">`, style.Label)
	for _, t := range g.ValueTicks {
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" text-anchor="end" dominant-baseline="middle">%s</text>`,
			left-8, t.Y, FormatValue(t.Value))
	}
	span := g.Points[len(g.Points)-1].Date.Sub(g.Points[0].Date)
	for i, t := range g.DateTicks {
		anchor := "middle"
		switch {
		case i == 0:
			anchor = "start"
		case i == len(g.DateTicks)-1:
			anchor = "end"
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" text-anchor="%s">%s</text>`,
			t.X, g.Baseline+20, anchor, FormatDate(t.Date, span))
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`,
			t.X, g.Baseline, t.X, g.Baseline+5, style.Grid)
	}
	b.WriteString(`</g>`)

	fmt.Fprintf(&b, `<path class="chart-area" d="%s" fill="%s" fill-opacity="%.2f"/>`, g.AreaPath, style.Stroke, style.FillOpacity)
	fmt.Fprintf(&b, `<path class="chart-line" d="%s" fill="none" stroke="%s" stroke-width="%.1f" stroke-linejoin="round"/>`,
		g.LinePath, style.Stroke, style.StrokeWidth)

	// Crosshair, positioned by the hover endpoint
	fmt.Fprintf(&b, `<line class="chart-crosshair" x1="0" y1="%.2f" x2="0" y2="%.2f" stroke="%s" visibility="hidden"/>`,
		MarginTop, g.Baseline, style.Label)
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// Placeholder renders a status message in place of a chart.
func Placeholder(width, height float64, message string, isError bool) template.HTML {
	fill := "#6c757d"
	if isError {
		fill = "#b02a37"
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg">`,
		width, height, width, height)
	if isError {
		// broken-line glyph
		cx, cy := width/2, height/2-28
		fmt.Fprintf(&b, `<path d="M%.0f,%.0f l18,-14 l12,10 l8,-6 m6,-4 l16,-12" fill="none" stroke="%s" stroke-width="2" stroke-dasharray="4,3"/>`,
			cx-30, cy+8, fill)
	}
	fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" text-anchor="middle" dominant-baseline="middle" font-size="13" fill="%s">%s</text>`,
		width/2, height/2, fill, template.HTMLEscapeString(message))
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
