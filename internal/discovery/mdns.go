package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/logging"
)

const (
	// ServiceType is the mDNS service type advertised by backends
	ServiceType = "_stylegen._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for backend discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPath is used when a backend advertises no path TXT record
	DefaultPath = "/ws"

	// DefaultPort is used when a backend advertises port 0
	DefaultPort = 8000
)

// Scanner handles mDNS backend discovery
type Scanner struct {
	// Timeout is the maximum time to wait for backend discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all backends on the local network until the timeout
// expires or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context) ([]*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan []*Backend, 1)

	go func() {
		backends := make([]*Backend, 0)
		seen := make(map[string]bool)
		for entry := range entries {
			backend := parseServiceEntry(entry)
			if backend == nil || seen[backend.URL()] {
				continue
			}
			seen[backend.URL()] = true
			logging.Debug("Discovered backend",
				zap.String("instance", backend.Instance),
				zap.String("url", backend.URL()),
			)
			backends = append(backends, backend)
		}
		collected <- backends
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	// The resolver closes entries once the browse context is done
	return <-collected, nil
}

// First returns the first backend that answers, or an error if none does
// within the timeout.
func (s *Scanner) First(ctx context.Context) (*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Backend, 1)

	go func() {
		for entry := range entries {
			if backend := parseServiceEntry(entry); backend != nil {
				select {
				case found <- backend:
					cancel()
				default:
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case backend := <-found:
		return backend, nil
	case <-ctx.Done():
		select {
		case backend := <-found:
			return backend, nil
		default:
		}
		return nil, fmt.Errorf("no %s backend found within %s", ServiceType, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Backend.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Backend {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	path := metadata["path"]
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Backend{
		Instance:     entry.Instance,
		Host:         entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         path,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// FindBackend returns the first backend found within timeout
func FindBackend(ctx context.Context, timeout time.Duration) (*Backend, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.First(ctx)
}
