// Package server implements a development backend for stylegen.
//
// The server speaks the same WebSocket protocol as a real image backend:
// it reads one JSON request per text frame on /ws and answers each with a
// status message. Instead of running a diffusion model it renders a small
// placeholder PNG derived from the request and returns it as a data URL, so
// the form, the one-shot CLI and the image saver can be exercised without a
// GPU.
//
// # Endpoints
//
//	GET  /ws        WebSocket, one response per text frame
//	POST /generate  same request and response bodies over plain HTTP
//
// # Request Checks
//
// The backend applies its own bounds, which are wider than the form's:
//   - prompt: 1 to 1000 characters
//   - num_inference_steps: 1 to 100
//   - guidance_scale: 1.0 to 20.0
//
// Frames that are not a JSON object are answered with an
// "Invalid request format" error instead of being dropped.
//
// # Discovery
//
// With Advertise set, the server registers itself as a _stylegen._tcp
// service so that 'stylegen discover' and 'stylegen --discover' can find it.
//
// # Capture
//
// With CaptureDir set, every received frame is appended to a JSON Lines file
// in that directory for later inspection.
package server
