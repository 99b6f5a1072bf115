// Package constants defines application-wide constants and version information.
package constants

const (
	// ToolName identifies the validator in result documents
	ToolName = "diveops-deco-validate"

	// Version is reported by -version and in result documents
	Version = "0.1.0"

	// ModelName names the decompression model in result documents
	ModelName = "Bühlmann ZHL-16C"
)
