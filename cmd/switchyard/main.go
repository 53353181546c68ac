// Command switchyard runs the insurance support desk: an HTTP API, an MCP
// server, an interactive chat, and session management tooling, all over the
// same engine.
package main

func main() {
	Execute()
}
