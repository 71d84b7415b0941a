// Package ipchecker restricts internal endpoints to callers from a trusted
// subnet given in CIDR notation.
package ipchecker

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/patric-chuzhbe/contactsapi/internal/logger"
)

var errNoClientAddr = errors.New("no usable client address in the request")

// IPChecker answers whether a request comes from the trusted subnet.
// The zero prefix means nobody is trusted.
type IPChecker struct {
	trusted netip.Prefix
}

// New parses trustedSubnet, e.g. "192.168.1.0/24". An empty string gives
// a checker that rejects every caller.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	prefix, err := netip.ParsePrefix(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/New(): error while `netip.ParsePrefix()` calling: %w", err)
	}

	return &IPChecker{trusted: prefix.Masked()}, nil
}

// Enabled reports whether a trusted subnet was configured.
func (checker *IPChecker) Enabled() bool {
	return checker.trusted.IsValid()
}

// Contains reports whether addr lies in the trusted subnet. IPv4-mapped
// IPv6 addresses are compared as IPv4.
func (checker *IPChecker) Contains(addr netip.Addr) bool {
	return checker.Enabled() && addr.IsValid() && checker.trusted.Contains(addr.Unmap())
}

// ClientAddr resolves the caller address from X-Real-IP, then the first
// X-Forwarded-For hop, then the connection's remote address.
func (checker *IPChecker) ClientAddr(request *http.Request) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get("X-Real-IP"))); err == nil {
		return addr, nil
	}

	if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr, nil
		}
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("in internal/ipchecker/ipchecker.go/ClientAddr(): error while `net.SplitHostPort()` calling: %w", err)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, errNoClientAddr
	}

	return addr, nil
}

// TrustedSubnetOnly answers 403 to callers outside the trusted subnet and
// to everybody when no subnet is configured.
func (checker *IPChecker) TrustedSubnetOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		addr, err := checker.ClientAddr(request)
		if err != nil || !checker.Contains(addr) {
			logger.Log.Debugw("internal endpoint refused",
				"uri", request.RequestURI,
				"client", addr.String(),
				"trusted_subnet", checker.trusted.String(),
				"error", err,
			)
			response.WriteHeader(http.StatusForbidden)
			return
		}

		h.ServeHTTP(response, request)
	})
}
