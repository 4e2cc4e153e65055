package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesTimeouts(t *testing.T) {
	handler := http.NewServeMux()

	srv := New(":8080", handler)
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, readTimeout, srv.ReadTimeout)
	assert.Zero(t, srv.WriteTimeout)

	srv = New(":8080", handler, WithWriteTimeout(5*time.Minute))
	assert.Equal(t, 5*time.Minute, srv.WriteTimeout)
}
