package switchyard

// Version is the library version, also reported by the CLI and the HTTP
// health endpoint. Overridden at release time via -ldflags.
var Version = "0.3.0-dev"
