// Package discovery finds image transformation backends on the local network.
//
// Backends advertise themselves over multicast DNS (mDNS) with the
// "_stylegen._tcp" service type. The WebSocket path is carried in a
// "path=" TXT record and defaults to "/ws" when absent. A "version=" TXT
// record, when present, names the backend build.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Collects service advertisements until the timeout
//  3. Converts each entry into a Backend with a ready-to-dial URL
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//	backends, err := scanner.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range backends {
//	    fmt.Println(b.Instance, b.URL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Backends must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
