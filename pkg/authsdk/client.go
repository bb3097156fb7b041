package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the CRM auth service, or for any service behind
// the gateway when BaseURL points at the gateway.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// AuthPrefix is prepended to the /auth/* paths. It is empty when talking
	// to the auth service directly and "/api" through the gateway.
	AuthPrefix string
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
