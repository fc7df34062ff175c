// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package chart

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// Fixed canvas for every chart. The client scales the SVG to its container
// via viewBox, so the numbers here only set the aspect ratio.
const (
	svgWidth  = 720
	svgHeight = 420
	svgMargin = 48
)

var palette = [...]string{
	"#4c78a8", "#f58518", "#e45756", "#72b7b2", "#54a24b",
	"#eeca3b", "#b279a2", "#ff9da6", "#9d755d", "#bab0ac",
}

func renderSVG(series *Series, spec Spec) string {
	switch spec.Kind {
	case KindPie:
		return renderPieSVG(series, spec)
	case KindLine:
		return renderLineSVG(series, spec)
	default:
		return renderBarSVG(series, spec)
	}
}

func svgOpen(b *strings.Builder, spec Spec) {
	fmt.Fprintf(b, `<svg class="chart" viewBox="0 0 %d %d" role="img" aria-label="%s">`,
		svgWidth, svgHeight, html.EscapeString(spec.Title))
	fmt.Fprintf(b, `<text x="%d" y="24" class="chart-title">%s</text>`,
		svgWidth/2, html.EscapeString(spec.Title))
}

func renderBarSVG(series *Series, spec Spec) string {
	var b strings.Builder
	svgOpen(&b, spec)

	maxVal := maxValue(series.Values)
	n := len(series.Values)
	if spec.Horizontal {
		step := float64(svgHeight-2*svgMargin) / float64(n)
		for i, v := range series.Values {
			w := scale(v, maxVal, svgWidth-2*svgMargin)
			y := float64(svgMargin) + float64(i)*step
			fmt.Fprintf(&b, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
				svgMargin, y, w, step*0.8, palette[0])
			fmt.Fprintf(&b, `<text x="%d" y="%.1f" class="tick" text-anchor="end">%s</text>`,
				svgMargin-4, y+step*0.55, html.EscapeString(series.Labels[i]))
		}
	} else {
		step := float64(svgWidth-2*svgMargin) / float64(n)
		for i, v := range series.Values {
			h := scale(v, maxVal, svgHeight-2*svgMargin)
			x := float64(svgMargin) + float64(i)*step
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
				x, float64(svgHeight-svgMargin)-h, step*0.8, h, palette[0])
			fmt.Fprintf(&b, `<text x="%.1f" y="%d" class="tick" text-anchor="middle">%s</text>`,
				x+step*0.4, svgHeight-svgMargin+16, html.EscapeString(series.Labels[i]))
		}
	}
	axisLabels(&b, spec)
	b.WriteString("</svg>")
	return b.String()
}

func renderLineSVG(series *Series, spec Spec) string {
	var b strings.Builder
	svgOpen(&b, spec)

	maxVal := maxValue(series.Values)
	n := len(series.Values)
	step := float64(svgWidth-2*svgMargin) / float64(max(n-1, 1))

	points := make([]string, 0, n)
	for i, v := range series.Values {
		x := float64(svgMargin) + float64(i)*step
		y := float64(svgHeight-svgMargin) - scale(v, maxVal, svgHeight-2*svgMargin)
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`,
		strings.Join(points, " "), palette[0])

	// Label at most 12 ticks so hourly axes stay readable.
	every := max(n/12, 1)
	for i := 0; i < n; i += every {
		x := float64(svgMargin) + float64(i)*step
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" class="tick" text-anchor="middle">%s</text>`,
			x, svgHeight-svgMargin+16, html.EscapeString(series.Labels[i]))
	}
	axisLabels(&b, spec)
	b.WriteString("</svg>")
	return b.String()
}

func renderPieSVG(series *Series, spec Spec) string {
	var b strings.Builder
	svgOpen(&b, spec)

	var total float64
	for _, v := range series.Values {
		total += v
	}
	if total <= 0 {
		b.WriteString("</svg>")
		return b.String()
	}

	cx, cy := float64(svgWidth)/2, float64(svgHeight)/2+12
	r := float64(svgHeight)/2 - float64(svgMargin)
	angle := -math.Pi / 2
	for i, v := range series.Values {
		sweep := v / total * 2 * math.Pi
		x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
		angle += sweep
		x2, y2 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		fmt.Fprintf(&b, `<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z" fill="%s"><title>%s: %.0f</title></path>`,
			cx, cy, x1, y1, r, r, large, x2, y2,
			palette[i%len(palette)], html.EscapeString(series.Labels[i]), v)
	}
	b.WriteString("</svg>")
	return b.String()
}

func renderHeatmapSVG(series *Series, spec Spec) string {
	var b strings.Builder
	svgOpen(&b, spec)

	var maxVal float64
	for _, row := range series.Matrix {
		maxVal = math.Max(maxVal, maxValue(row))
	}

	cellW := float64(svgWidth-2*svgMargin) / float64(len(series.Labels))
	cellH := float64(svgHeight-2*svgMargin) / float64(len(series.Rows))
	for ri, row := range series.Matrix {
		y := float64(svgMargin) + float64(ri)*cellH
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" class="tick" text-anchor="end">%s</text>`,
			svgMargin-4, y+cellH*0.6, html.EscapeString(series.Rows[ri]))
		for ci, v := range row {
			opacity := 0.05
			if maxVal > 0 {
				opacity = 0.05 + 0.95*v/maxVal
			}
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.3f"><title>%s %s:00 = %.0f</title></rect>`,
				float64(svgMargin)+float64(ci)*cellW, y, cellW, cellH,
				palette[0], opacity,
				html.EscapeString(series.Rows[ri]), series.Labels[ci], v)
		}
	}
	for ci, label := range series.Labels {
		if ci%3 != 0 {
			continue
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" class="tick" text-anchor="middle">%s</text>`,
			float64(svgMargin)+(float64(ci)+0.5)*cellW, svgHeight-svgMargin+16,
			html.EscapeString(label))
	}
	b.WriteString("</svg>")
	return b.String()
}

func axisLabels(b *strings.Builder, spec Spec) {
	if spec.XLabel != "" {
		fmt.Fprintf(b, `<text x="%d" y="%d" class="axis-label" text-anchor="middle">%s</text>`,
			svgWidth/2, svgHeight-8, html.EscapeString(spec.XLabel))
	}
	if spec.YLabel != "" {
		fmt.Fprintf(b, `<text x="14" y="%d" class="axis-label" transform="rotate(-90 14 %d)" text-anchor="middle">%s</text>`,
			svgHeight/2, svgHeight/2, html.EscapeString(spec.YLabel))
	}
}

func maxValue(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func scale(v, maxVal float64, span int) float64 {
	if maxVal <= 0 || v < 0 {
		return 0
	}
	return v / maxVal * float64(span)
}
