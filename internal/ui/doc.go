// Package ui holds the small amount of line-oriented output beamtop prints
// outside the dashboard: status symbols, colors and the spinner shown while
// 'beamtop init' checks that a node is reachable.
package ui
