package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// the service and its reverse proxy share a compose network in deployment,
// so requests arriving from a bridge gateway (172.16.0.0/12, .1 host) are
// machine-local
var composeBridgeGatewayRegex = regexp.MustCompile(`^172\.(1[6-9]|2\d|3[01])\.\d{1,3}\.1:\d{1,5}`)

// IPIsLocal reports whether the address is loopback (development) or the
// compose bridge gateway (deployment).
func IPIsLocal(ipAddr string) bool {
	if strings.HasPrefix(ipAddr, "127.0.0.1:") || strings.HasPrefix(ipAddr, "[::1]:") {
		return true
	}
	return composeBridgeGatewayRegex.MatchString(ipAddr)
}

// ReadUserIP resolves the client address of a request, preferring the
// proxy-set headers over the socket address.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		ipAddr = r.Header.Get("X-Forwarded-For")
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	if IPIsLocal(ipAddr) {
		log.Tracef("read user IP: local request from %s", ipAddr)
		return "localhost", nil
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}
	if net.ParseIP(ipAddr) == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}
