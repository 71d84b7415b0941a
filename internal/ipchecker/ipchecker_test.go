package ipchecker

import (
	"net/http"
	"net/netip"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)
	assert.False(t, checker.Enabled())
	assert.False(t, checker.Contains(netip.MustParseAddr("127.0.0.1")))

	_, err = New("not a cidr")
	assert.Error(t, err)

	checker, err = New("10.1.2.3/8")
	require.NoError(t, err)
	assert.True(t, checker.Enabled())
	assert.True(t, checker.Contains(netip.MustParseAddr("10.200.0.1")))
	assert.True(t, checker.Contains(netip.MustParseAddr("::ffff:10.0.0.1")))
	assert.False(t, checker.Contains(netip.MustParseAddr("11.0.0.1")))
	assert.False(t, checker.Contains(netip.Addr{}))
}

func TestClientAddr(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		expected   string
	}{
		{name: "X-Real-IP wins", realIP: "10.1.1.1", forwarded: "192.168.0.1", remoteAddr: "127.0.0.1:1234", expected: "10.1.1.1"},
		{name: "first X-Forwarded-For", forwarded: "10.2.2.2, 192.168.0.1", remoteAddr: "127.0.0.1:1234", expected: "10.2.2.2"},
		{name: "garbage X-Real-IP is skipped", realIP: "nope", forwarded: "10.4.4.4", remoteAddr: "127.0.0.1:1234", expected: "10.4.4.4"},
		{name: "remote address", remoteAddr: "192.168.0.7:1234", expected: "192.168.0.7"},
		{name: "ipv6 remote address", remoteAddr: "[::1]:1234", expected: "::1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = test.remoteAddr
			if test.realIP != "" {
				request.Header.Set("X-Real-IP", test.realIP)
			}
			if test.forwarded != "" {
				request.Header.Set("X-Forwarded-For", test.forwarded)
			}

			addr, err := checker.ClientAddr(request)
			require.NoError(t, err)
			assert.Equal(t, test.expected, addr.String())
		})
	}
}

func TestTrustedSubnetOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name         string
		subnet       string
		realIP       string
		expectedCode int
	}{
		{name: "inside", subnet: "10.0.0.0/8", realIP: "10.3.4.5", expectedCode: http.StatusOK},
		{name: "outside", subnet: "10.0.0.0/8", realIP: "192.168.1.1", expectedCode: http.StatusForbidden},
		{name: "no subnet configured", subnet: "", realIP: "10.3.4.5", expectedCode: http.StatusForbidden},
		{name: "no usable address", subnet: "10.0.0.0/8", realIP: "", expectedCode: http.StatusForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			checker, err := New(test.subnet)
			require.NoError(t, err)

			request := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			request.RemoteAddr = "not-an-address"
			if test.realIP != "" {
				request.Header.Set("X-Real-IP", test.realIP)
			}
			recorder := httptest.NewRecorder()

			checker.TrustedSubnetOnly(ok).ServeHTTP(recorder, request)

			assert.Equal(t, test.expectedCode, recorder.Code)
		})
	}
}
