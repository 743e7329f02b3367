// Package capture reads frames from a device and decides when to scan them.
//
// # Session loop
//
// Session.Run ticks every 30 ms by default. Each tick reads one frame and hands
// it to a stability.Monitor. When the monitor returns Trigger the session sets
// the device focus, waits for the lens to settle (about one second), reads a
// fresh frame and passes it to the scanner. ForceCapture runs the same sequence
// on the next turn of the loop without consulting the monitor.
//
// Everything runs on the loop goroutine, so the monitor needs no locking and a
// capture always finishes before the next frame is compared. A manual trigger
// that arrives while a capture is running is dropped, not queued.
//
// # Failures
//
// A failed read (ErrDeviceRead) aborts the tick and ends the current stable
// period. A failed scan is reported to the Handler and leaves the monitor alone.
// Neither stops the loop; only context cancellation or ErrEndOfStream does.
//
// # Devices
//
// DirDevice replays a directory of images. OpenCamera opens a webcam through
// OpenCV when built with the gocv tag.
package capture
