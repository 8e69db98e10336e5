package discovery

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Backend represents a discovered transformation backend
type Backend struct {
	// Instance is the advertised service instance name
	Instance string

	// Host is the mDNS hostname (e.g., "gpu-box.local.")
	Host string

	// IP is the advertised address, IPv4 preferred
	IP string

	// Port is the WebSocket port
	Port int

	// Path is the WebSocket path (e.g., "/ws")
	Path string

	// Metadata contains all TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the backend was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the backend
func (b *Backend) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Instance, b.Host, b.URL())
}

// URL returns the WebSocket URL for the backend
func (b *Backend) URL() string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(b.IP, strconv.Itoa(b.Port)),
		Path:   b.Path,
	}
	return u.String()
}

// MetadataVersion is the TXT key carrying the backend build
const MetadataVersion = "version"

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Backend) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
