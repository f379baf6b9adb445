// Package nbtools holds build metadata shared by the nbtools commands.
package nbtools

// Version is the nbtools release version.
const Version = "0.3.0"
