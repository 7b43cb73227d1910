// Package icons renders the embedded Octicons used on keys as
// data:image/svg+xml URIs.
//
// Each icon is an SVG template whose fill and viewBox are rewritten per call.
// Padding and nudging are expressed against the icon's default viewBox: a
// border grows the box on every side and the x/y offsets shift its origin, which
// is how item glyphs end up above the two-line key title.
//
// Icons adapted from https://github.com/primer/octicons (MIT).
package icons
