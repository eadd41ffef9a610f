// Package pipeline implements the template merge and pagination stages of
// admission document generation.
//
// Stages, in the order the generator runs them:
//   - Substitute: patient values into {{PLACEHOLDER}} tokens
//   - ApplyBold: wrap configured phrases in **bold** markup
//   - Split: split markup into normal/bold runs
//   - Layout: wrap runs into lines and place them on fixed-size pages
//
// PDF drawing is handled by the root admitdoc package using gofpdf. Layout
// only needs a TextMeasurer, so this package has no drawing dependency and
// every stage is a pure function safe for concurrent use.
package pipeline
