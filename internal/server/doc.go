// Package server exposes the document scanner as an MCP (Model Context Protocol) server.
//
// The server speaks JSON-RPC 2.0 over stdio so that MCP clients can scan
// photographed pages, check corner assignments and drive the capture trigger
// one frame at a time.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never interleave with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_load: Load an image and report its size and format
//
// Documents:
//   - document_scan: Locate, order and rectify the page in a stored photo
//   - document_order_corners: Assign four points to TL, BL, BR, TR roles
//   - document_destination: Size the rectified output from a ratio or corners
//
// Capture trigger:
//   - stability_observe: Feed one frame and get idle, accumulating or trigger
//   - stability_reset: Clear the previous frame and counters
//
// The trigger keeps one monitor per server process, so successive
// stability_observe calls behave like consecutive camera frames.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string, or {"kind", "error"} for scan failures
//
// Scan kinds are not_found (no four-cornered outline), invalid_input (bad
// path or unreadable image) and processing.
//
// # Usage
//
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
