package net

import (
	"fmt"
	"strings"
	"time"
)

// URLScheme prefixes the share links a host hands out.
const URLScheme = "localboard://"

// Config holds the sharing settings. The CLI fills it from flags.
type Config struct {
	Port          int
	Path          string        // websocket endpoint on the host
	Advertise     bool          // announce the host over mDNS
	BrowseTimeout time.Duration // how long join waits for mDNS answers
}

func DefaultConfig() Config {
	return Config{
		Port:          8888,
		Path:          "/board",
		Advertise:     true,
		BrowseTimeout: 3 * time.Second,
	}
}

// ShareLink builds the link a client passes to join.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("%s%s:%d", URLScheme, ip, port)
}

// ParseLink accepts a share link or a bare host:port.
func ParseLink(link string) string {
	addr := strings.TrimPrefix(strings.TrimSpace(link), URLScheme)
	return strings.TrimSuffix(addr, "/")
}
