// Package viz draws simulation output in the terminal.
//
// A [Figure] describes what to draw: titled axes, each linear or
// logarithmic, and any number of line or scatter [Series]. Renderers turn
// it into output:
//
//   - [Terminal]: Braille canvas with labelled axes, or an asciigraph chart
//     for linear line plots
//   - [Table]: bordered lipgloss table for per-run summaries
//
// File renderers (PNG, SVG) live in the export package and consume the same
// Figure.
package viz
