// Package transform defines the messages exchanged with an image
// transformation backend.
//
// A transformation is requested by sending a Request as a single JSON text
// frame and answered, asynchronously, by a Response frame:
//
//	-> {"prompt":"Artistic style transformation: a cat","num_inference_steps":20,"guidance_scale":3}
//	<- {"status":"success","image_url":"data:image/png;base64,iVBORw0..."}
//	<- {"status":"error","error":"Invalid request format: prompt must be 1-1000 characters, got 0"}
//
// Responses carry no correlation id. Callers must keep at most one request
// in flight if they want to attribute a response to a request.
//
// # Themes
//
// A Theme is a named preset whose Description is prepended to the user's free
// text (see ComposePrompt). The set of themes is fixed at three and returned
// by DefaultThemes.
package transform
