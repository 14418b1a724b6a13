package customHttpClient

import (
	"net/http"

	"github.com/akolanti/intelliagent/internal/config"
)

// New returns the client shared by the embedding and language model SDKs so they reuse
// connections to the same hosts. Timeouts come from the request contexts.
func New() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = config.MaxIdleConns
	transport.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
	transport.IdleConnTimeout = config.IdleConnTimeout
	return &http.Client{Transport: transport}
}
