package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ipTestContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestClientIPPrefersFirstForwardedHop(t *testing.T) {
	c := ipTestContext("10.0.0.1:443", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3",
	})
	assert.Equal(t, "203.0.113.7", getClientIP(c))
}

func TestClientIPFallsBackToRealIP(t *testing.T) {
	c := ipTestContext("10.0.0.1:443", map[string]string{
		"X-Real-IP": "198.51.100.4",
	})
	assert.Equal(t, "198.51.100.4", getClientIP(c))
}

func TestClientIPIgnoresUnparseableHeader(t *testing.T) {
	c := ipTestContext("192.0.2.9:52100", map[string]string{
		"X-Forwarded-For": "not-an-ip",
	})
	assert.Equal(t, "192.0.2.9", getClientIP(c))
}

func TestClientIPStripsPortFromRemoteAddr(t *testing.T) {
	c := ipTestContext("192.0.2.9:52100", nil)
	assert.Equal(t, "192.0.2.9", getClientIP(c))
}
