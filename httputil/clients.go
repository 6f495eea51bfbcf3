package httputil

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"subito_scrooper/config"
)

type Clients struct {
	Scraping *http.Client // optionally proxied, for the marketplace
	API      *http.Client // direct, for generator backends
}

func NewClients(proxyCfg *config.ProxyConfig, scrapeTimeout, apiTimeout time.Duration) (*Clients, error) {
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
		TLSNextProto:      make(map[string]func(string, *tls.Conn) http.RoundTripper),
	}

	if proxyCfg != nil && proxyCfg.URL != "" {
		proxyURL, err := url.Parse(proxyCfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Clients{
		Scraping: &http.Client{
			Timeout:   scrapeTimeout,
			Transport: transport,
		},
		API: &http.Client{Timeout: apiTimeout},
	}, nil
}
