// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package chart

import (
	"fmt"
	"html"
	"strings"
)

// Artifact is a fully materialized dashboard output: self-contained HTML
// markup plus the shaped series data the client can re-plot from. An
// artifact is immutable once produced.
type Artifact struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`

	// HTML is an embeddable fragment. Error and no-data artifacts carry a
	// message container; chart artifacts carry an inline SVG.
	HTML string `json:"html"`

	// Series holds the shaped data for chart kinds, nil otherwise.
	Series *Series `json:"series,omitempty"`

	// Value holds the rendered text for text artifacts, items for lists.
	Value string   `json:"value,omitempty"`
	Items []string `json:"items,omitempty"`

	NoData  bool   `json:"no_data,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Series is the shaped data behind a chart: parallel label/value slices for
// categorical kinds, a row-major matrix for heatmaps.
type Series struct {
	Labels []string    `json:"labels"`
	Values []float64   `json:"values"`
	Rows   []string    `json:"rows,omitempty"`
	Matrix [][]float64 `json:"matrix,omitempty"`
}

// Text builds a scalar text artifact, e.g. a formatted order count.
func Text(title, value string) *Artifact {
	return &Artifact{
		Kind:  "text",
		Title: title,
		Value: value,
		HTML: fmt.Sprintf(`<div class="stat"><span class="stat-title">%s</span><span class="stat-value">%s</span></div>`,
			html.EscapeString(title), html.EscapeString(value)),
	}
}

// List builds a list artifact, e.g. a user's purchased products.
func List(title string, items []string) *Artifact {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="listing"><h3>%s</h3><ul>`, html.EscapeString(title))
	for _, item := range items {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(item))
	}
	b.WriteString("</ul></div>")
	return &Artifact{Kind: "list", Title: title, Items: items, HTML: b.String()}
}

// Placeholder builds an informational artifact shown before an output has
// anything to display, such as the recommendation panel with no user chosen.
func Placeholder(title, message string) *Artifact {
	return &Artifact{
		Kind:    "text",
		Title:   title,
		Message: message,
		NoData:  true,
		HTML: fmt.Sprintf(`<div class="placeholder">%s</div>`,
			html.EscapeString(message)),
	}
}

// Error builds an error artifact for a single failed output. The error text
// is escaped, never interpolated as markup.
func Error(title string, err error) *Artifact {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Artifact{
		Kind:    "error",
		Title:   title,
		IsError: true,
		Message: msg,
		HTML: fmt.Sprintf(`<div class="output-error"><strong>%s</strong><pre>%s</pre></div>`,
			html.EscapeString(title), html.EscapeString(msg)),
	}
}

func noData(spec Spec) *Artifact {
	return &Artifact{
		Kind:    spec.Kind,
		Title:   spec.Title,
		NoData:  true,
		Message: "no data available",
		HTML: fmt.Sprintf(`<div class="placeholder">%s: no data available</div>`,
			html.EscapeString(spec.Title)),
	}
}
