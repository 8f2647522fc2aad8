package config

type ServiceConfig struct {
	Name        string           `yaml:"name"`
	Environment string           `yaml:"environment"`
	Version     string           `yaml:"version"`
	ClientURL   string           `yaml:"client_url"`
	QuickBooks  QuickBooksConfig `yaml:"quickbooks"`
	Xero        XeroConfig       `yaml:"xero"`
}

// QuickBooksConfig holds the OAuth app credentials for QuickBooks Online.
type QuickBooksConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	// Environment selects the API host: "sandbox" or "production"
	Environment string `yaml:"environment"`
}

// XeroConfig holds the OAuth app credentials for Xero.
type XeroConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	Scopes       string `yaml:"scopes"`
}
