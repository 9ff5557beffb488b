// Package discovery provides mDNS-based discovery of Bedrock Server
// Manager instances.
//
// This package implements multicast DNS (mDNS) service discovery to
// automatically locate managers on the local network. Managers advertise
// themselves using the "_bedrock-manager._tcp" service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements from managers
//  3. Collects instance information (name, IP, port, TXT metadata)
//  4. Returns a list of discovered managers after the timeout period
//
// # Usage Example
//
//	// Discover managers with 10-second timeout
//	managers, err := discovery.ScanForManagers(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, manager := range managers {
//	    fmt.Printf("Found: %s at %s:%d (version %s)\n",
//	        manager.Name, manager.IP, manager.Port, manager.Version())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Managers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
