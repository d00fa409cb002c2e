package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstThenDeny(t *testing.T) {
	l := New(1, 2)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "other clients keep their own bucket")

	fixed = fixed.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestLimiterDisabled(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("1.1.1.1"))
	}
}

func TestLimiterEvictsIdleClients(t *testing.T) {
	l := New(1, 1)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.Allow("1.1.1.1")
	fixed = fixed.Add(10 * time.Minute)
	l.Allow("2.2.2.2")

	assert.Len(t, l.clients, 1)
}

func TestMiddlewareInvokesOnLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(0.001, 1)

	r := gin.New()
	r.POST("/", l.Middleware(func(c *gin.Context) { c.Status(http.StatusTooManyRequests) }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
