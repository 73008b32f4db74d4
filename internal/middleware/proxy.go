package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustedProxies configures how c.RealIP() resolves the client address.
// Forwarding headers (X-Real-IP, X-Forwarded-For) are honored only when
// the direct connection comes from one of the trusted CIDRs. Self-hosted
// installs almost always sit behind a local reverse proxy or a Docker
// bridge; without this the rate limiter would key every request on the
// proxy's address.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) {
	var trusted []*net.IPNet
	for _, cidr := range trustedCIDRs {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			trusted = append(trusted, network)
		}
	}

	e.IPExtractor = func(req *http.Request) string {
		directIP := directIP(req.RemoteAddr)
		if !isTrustedProxy(directIP, trusted) {
			return directIP
		}

		if realIP := req.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
		if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
			// Leftmost entry is the original client.
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		return directIP
	}
}

// directIP strips the port from a "host:port" RemoteAddr.
func directIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// isTrustedProxy reports whether ip falls inside any trusted CIDR.
func isTrustedProxy(ipStr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
