package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/ericziethen/ez-scrape/models"
)

// httpCaps: the plain engine fetches exactly one page and runs no scripts.
var httpCaps = capabilities{
	name:            "http",
	javascript:      false,
	multiPage:       false,
	waitForSelector: false,
}

// ValidateHTTPConfig checks a config against the plain HTTP engine's
// capability set without constructing the engine.
func ValidateHTTPConfig(cfg *models.ScrapeConfig) error {
	return httpCaps.validate(cfg)
}

// HTTPEngine fetches a single page over plain HTTP. It is the fastest
// engine and the right choice for static pages.
type HTTPEngine struct {
	cfg    *models.ScrapeConfig
	client *http.Client
}

// NewHTTPEngine validates cfg and builds the engine. Configs requesting
// javascript, pagination or element waits are rejected with a
// ConfigError.
func NewHTTPEngine(cfg *models.ScrapeConfig) (*HTTPEngine, error) {
	if err := ValidateHTTPConfig(cfg); err != nil {
		return nil, err
	}
	return &HTTPEngine{cfg: cfg, client: newHTTPClient(cfg)}, nil
}

func (e *HTTPEngine) Name() string { return "http" }

// Scrape performs the single GET. On HTTP 200 exactly one page is
// appended; any failure leaves the result empty with the cause in
// ErrorMsg.
func (e *HTTPEngine) Scrape(ctx context.Context) (*models.ScrapeResult, error) {
	defer e.client.CloseIdleConnections()

	result := models.NewScrapeResult(e.cfg.URL())
	result.Backend = e.Name()

	page, err := doFetch(ctx, e.client, e.cfg, e.cfg.URL())
	if err != nil {
		result.ErrorMsg = transportErrorMsg(err)
		result.Status = classifyFetchError(err, proxyForScheme(e.cfg, e.cfg.URL()))
		return result, nil
	}

	if page.statusCode != http.StatusOK {
		result.ErrorMsg = httpErrorMsg(page.statusCode)
		result.Status = models.StatusError
		return result, nil
	}

	result.Status = models.StatusSuccess
	result.AddPage(models.ScrapePage{
		HTML:          page.body,
		Title:         extractTitle(page.body),
		RequestTimeMs: page.elapsedMs,
		Status:        models.StatusSuccess,
	})
	return result, nil
}

// newHTTPClient builds the engine's client: per-scheme proxy selection
// plus, when impersonating, a Chrome TLS ClientHello on HTTPS
// connections.
func newHTTPClient(cfg *models.ScrapeConfig) *http.Client {
	transport := &http.Transport{Proxy: proxyFunc(cfg)}
	if cfg.Impersonate {
		transport.DialTLSContext = dialTLSChrome
	}
	return &http.Client{Transport: transport}
}

// dialTLSChrome establishes a TLS connection presenting the Chrome
// ClientHello via utls. The hello spec is rebuilt for every connection:
// its extensions carry handshake state and must not be shared.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	spec, err := chromeHelloSpec()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("build tls spec: %w", err)
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// chromeHelloSpec builds a Chrome ClientHello with ALPN pinned to
// http/1.1: the transport cannot speak HTTP/2 over a custom-dialed
// connection, so h2 must never be negotiated.
func chromeHelloSpec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			break
		}
	}
	return &spec, nil
}
