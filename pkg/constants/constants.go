package constants

import "time"

const (
	DefaultWSTimeout = 30 * time.Second

	// RequestIDLength is the length of generated RPC request ids.
	RequestIDLength = 16
)

var (
	WebsocketScheme       = "ws"
	WebsocketSecureScheme = "wss"
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
)
