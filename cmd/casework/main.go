// Casework is the case workflow service for automated-compliance-style
// decisions: submission intake, case assignment and status tracking,
// evidence attachment, decision intelligence recomputation, and signed
// audit export.
//
// Usage:
//
//	# Start the server with default configuration
//	casework run
//
//	# Start with a custom configuration file
//	casework run --config /path/to/config.yaml
//
//	# Show version information
//	casework version
package main

func main() {
	Execute()
}
