package ebay

// Environment selects the eBay API environment.
type Environment string

const (
	// EnvironmentSandbox targets the eBay sandbox.
	EnvironmentSandbox Environment = "sandbox"
	// EnvironmentProduction targets the live eBay API.
	EnvironmentProduction Environment = "production"
)

// DefaultMarketplaceID is the marketplace searches run against.
const DefaultMarketplaceID = "EBAY_US"

// DefaultLimit is the page size when the query does not set one.
const DefaultLimit = 50

// Config holds eBay connector configuration.
type Config struct {
	// ClientID and ClientSecret are the application keys for the
	// client-credentials grant.
	ClientID     string
	ClientSecret string
	// Environment is sandbox or production. Defaults to sandbox.
	Environment Environment
	// MarketplaceID sets the X-EBAY-C-MARKETPLACE-ID header.
	MarketplaceID string
}

// normalise fills in defaults for zero-valued fields.
func (c Config) normalise() Config {
	if c.Environment == "" {
		c.Environment = EnvironmentSandbox
	}
	if c.MarketplaceID == "" {
		c.MarketplaceID = DefaultMarketplaceID
	}
	return c
}

// Configured reports whether application keys are present.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// apiBase returns the Browse API base URL for the environment.
func (c Config) apiBase() string {
	if c.Environment == EnvironmentProduction {
		return "https://api.ebay.com/buy/browse/v1"
	}
	return "https://api.sandbox.ebay.com/buy/browse/v1"
}

// tokenURL returns the OAuth token endpoint for the environment.
func (c Config) tokenURL() string {
	if c.Environment == EnvironmentProduction {
		return "https://api.ebay.com/identity/v1/oauth2/token"
	}
	return "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
}
