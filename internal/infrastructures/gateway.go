package infrastructures

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type GatewayClient struct {
	HTTPClient *http.Client
	Config     *GatewayConfig
	BaseURL    string
	enabled    bool
}

// NewGatewayClient creates the payment gateway HTTP client. Missing
// credentials do not prevent startup: the client reports itself disabled
// and the payment subsystem refuses requests with a configuration error
// while the rest of the API keeps serving.
func NewGatewayClient() *GatewayClient {
	config := &Config.GatewayConfig

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api-preprod.gateway.example.com"
		if config.Environment == "production" {
			baseURL = "https://api.gateway.example.com"
		}
	}

	enabled := config.MerchantID != "" && config.SaltKey != ""
	if !enabled {
		logrus.Warn("payment gateway credentials missing, payment features disabled")
	}

	return &GatewayClient{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Config:  config,
		BaseURL: baseURL,
		enabled: enabled,
	}
}

// Enabled reports whether the gateway credentials were configured at startup.
func (c *GatewayClient) Enabled() bool {
	return c.enabled
}

// GetFullURL constructs the full URL for an endpoint path.
func (c *GatewayClient) GetFullURL(endpoint string) string {
	return fmt.Sprintf("%s%s", c.BaseURL, endpoint)
}
