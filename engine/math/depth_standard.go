//go:build !invertedz

package math

// DefaultDepthConvention is selected at build time; build with the
// invertedz tag to switch to DepthInverted.
const DefaultDepthConvention = DepthStandard
