package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericziethen/ez-scrape/models"
)

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string { return "i/o timeout" }
func (fakeTimeoutError) Timeout() bool { return true }

func TestClassifyFetchError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		proxyAddr string
		want      models.ScrapeStatus
	}{
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("get: %w", context.DeadlineExceeded),
			want: models.StatusTimeout,
		},
		{
			name: "net timeout",
			err:  &url.Error{Op: "Get", URL: "http://x", Err: fakeTimeoutError{}},
			want: models.StatusTimeout,
		},
		{
			name: "proxyconnect marker",
			err:  errors.New(`proxyconnect tcp: dial tcp 10.0.0.1:3128: connection refused`),
			want: models.StatusProxyError,
		},
		{
			name:      "dial error naming the proxy host",
			err:       errors.New("dial tcp 10.0.0.1:3128: connection refused"),
			proxyAddr: "http://10.0.0.1:3128",
			want:      models.StatusProxyError,
		},
		{
			name:      "unrelated dial error with a proxy configured",
			err:       errors.New("dial tcp 203.0.113.9:80: connection refused"),
			proxyAddr: "http://10.0.0.1:3128",
			want:      models.StatusError,
		},
		{
			name: "plain transport failure",
			err:  errors.New("connection reset by peer"),
			want: models.StatusError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyFetchError(tt.err, tt.proxyAddr))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	t.Run("transport failures carry the error type", func(t *testing.T) {
		t.Parallel()

		err := &url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")}
		msg := transportErrorMsg(err)
		assert.Contains(t, msg, "EXCEPTION: ")
		assert.Contains(t, msg, "*url.Error")
		assert.Contains(t, msg, " - ")
	})

	t.Run("http failures carry code and reason", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "HTTP Error: 404 - Not Found", httpErrorMsg(404))
		assert.Equal(t, "HTTP Error: 503 - Service Unavailable", httpErrorMsg(503))
	})
}

func TestProxyForScheme(t *testing.T) {
	t.Parallel()

	cfg, err := models.NewScrapeConfig("http://example.com")
	require.NoError(t, err)
	cfg.ProxyHTTP = "http://plain:3128"
	cfg.ProxyHTTPS = "http://secure:3128"

	assert.Equal(t, "http://plain:3128", proxyForScheme(cfg, "http://example.com/a"))
	assert.Equal(t, "http://secure:3128", proxyForScheme(cfg, "https://example.com/a"))
}

func TestProxyFunc(t *testing.T) {
	t.Parallel()

	t.Run("nil without proxies", func(t *testing.T) {
		t.Parallel()

		cfg, err := models.NewScrapeConfig("http://example.com")
		require.NoError(t, err)
		assert.Nil(t, proxyFunc(cfg))
	})

	t.Run("selects by request scheme", func(t *testing.T) {
		t.Parallel()

		cfg, err := models.NewScrapeConfig("http://example.com")
		require.NoError(t, err)
		cfg.ProxyHTTP = "http://plain:3128"

		fn := proxyFunc(cfg)
		require.NotNil(t, fn)

		httpReq, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		u, err := fn(httpReq)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "plain:3128", u.Host)

		// No HTTPS proxy configured: HTTPS requests go direct.
		httpsReq, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
		u, err = fn(httpsReq)
		require.NoError(t, err)
		assert.Nil(t, u)
	})
}
