package customHttpClient

import (
	"net/http"

	"github.com/akishore/ComplyAPI/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

// GetPooledClient returns the shared pooled HTTP client. The evaluator and
// grader both talk to the same provider host, so sharing the connection
// pool keeps per-chunk call latency down.
func GetPooledClient() *http.Client {
	return pooledClient
}
