//go:build invertedz

package math

// DefaultDepthConvention is selected at build time; build without the
// invertedz tag to switch to DepthStandard.
const DefaultDepthConvention = DepthInverted
