// Package export writes run artifacts to disk: CSV tables, JSON metadata and
// rendered figures (PNG via gonum/plot, plain SVG).
package export
