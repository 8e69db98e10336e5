// Package artifact saves generated images to disk.
//
// The backend answers with an image location that is either an inline data
// URL (data:image/png;base64,...) or an http(s) URL. Save handles both and
// writes the image atomically, choosing a file extension from the MIME type.
package artifact
