// Package stability decides when a live video stream has settled enough to capture.
//
// A Monitor compares each frame with the one before it. While the summed
// frame-to-frame difference stays at or below a threshold the stable count grows;
// once it reaches the configured number of frames the monitor returns a single
// Trigger. It will not trigger again until a frame exceeds the threshold and a new
// stable period begins.
//
// The state machine itself is the pure function Step, so it can be exercised with
// plain difference values. Monitor adds the previous-frame slot and the Differ used
// to measure differences.
//
// A Monitor is owned by one tick loop and is not safe for concurrent use.
package stability
