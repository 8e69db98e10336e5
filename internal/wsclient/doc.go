// Package wsclient implements a reconnecting WebSocket client for an image
// transformation backend.
//
// A Client owns exactly one connection at a time. It is opened as soon as the
// client is constructed, and reopened after a fixed delay whenever it closes
// or a dial fails. There is no limit on attempts and the delay never grows,
// so a backend that stays down is retried periodically until Disconnect.
//
// # Messages
//
// Send serializes a transform.Request to one JSON text frame. It never blocks
// waiting for a connection: when the connection is not open it logs the
// condition and returns an error for which IsNotReadyError reports true.
//
// Every inbound text frame is decoded into a transform.Response and handed to
// the single MessageHandler given to New. Frames that do not decode are
// logged and dropped without invoking the handler.
//
// # Lifecycle
//
//	client := wsclient.New(wsclient.Options{URL: "ws://localhost:8000/ws"},
//	    func(resp transform.Response) { ... })
//	defer client.Disconnect()
//
// Disconnect closes the connection and cancels any pending reconnect. After
// Disconnect returns, no handler is invoked again.
//
// # Concurrency
//
// Handlers run on the client's connection goroutine, one at a time, in frame
// order. Send is safe to call from any goroutine.
package wsclient
