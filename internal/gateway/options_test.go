package gateway

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_TimeoutOption(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{name: "default", want: 30 * time.Second},
		{name: "timeout only", opts: []Option{WithTimeout(5 * time.Second)}, want: 5 * time.Second},
		{name: "timeout before client", opts: []Option{WithTimeout(5 * time.Second), WithHTTPClient(&http.Client{})}, want: 5 * time.Second},
		{name: "timeout after client", opts: []Option{WithHTTPClient(&http.Client{}), WithTimeout(5 * time.Second)}, want: 5 * time.Second},
		{name: "client timeout kept", opts: []Option{WithHTTPClient(&http.Client{Timeout: time.Second})}, want: time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("http://localhost/api", tt.opts...)
			assert.Equal(t, tt.want, c.http.Timeout)
		})
	}
}

func TestNew_HTTPClientNotMutated(t *testing.T) {
	h := &http.Client{}
	New("http://localhost/api", WithHTTPClient(h), WithTimeout(time.Second))
	assert.Zero(t, h.Timeout)
	assert.Nil(t, h.Transport)
}
