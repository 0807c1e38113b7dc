// Vadapro is the AI analysis gateway of the VADAPRO data-visualization
// platform.
//
// It accepts natural-language questions about a user's dataset, admits them
// through per-user and global usage limits, queues requests that hit the
// per-minute limit, and answers them with Gemini.
//
// Usage:
//
//	# Start the gateway with config.yaml, if present
//	vadapro run
//
//	# Start with a custom configuration file
//	vadapro run --config /etc/vadapro/config.yaml
//
//	# Check a configuration file
//	vadapro validate --config config.yaml
//
//	# Report recorded usage
//	vadapro usage --user alice --since 2030-05-01T00:00:00Z
//
//	# Show version information
//	vadapro version
package main

func main() {
	Execute()
}
