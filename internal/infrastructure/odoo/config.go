package odoo

import (
	"errors"
	"strings"
)

// Config holds configuration for the Odoo XML-RPC connection
type Config struct {
	// Endpoint is the base URL of the Odoo instance (e.g. https://erp.example.com)
	Endpoint string
	// Database is the Odoo database (tenant) name
	Database string
	// Username is the login of the integration user
	Username string
	// Password is the integration user's password or API key
	Password string
	// TimeoutSeconds bounds each remote call
	TimeoutSeconds int
	// SessionTTLSeconds is how long an authenticated uid is reused before
	// re-authenticating; 0 disables caching
	SessionTTLSeconds int
}

// Errors for Odoo configuration
var (
	ErrConfigMissingEndpoint = errors.New("odoo: endpoint is required")
	ErrConfigMissingDatabase = errors.New("odoo: database is required")
	ErrConfigMissingUsername = errors.New("odoo: username is required")
	ErrConfigMissingPassword = errors.New("odoo: password is required")
)

// NewConfig creates a new Odoo configuration with defaults
func NewConfig(endpoint, database, username, password string) *Config {
	return &Config{
		Endpoint:          endpoint,
		Database:          database,
		Username:          username,
		Password:          password,
		TimeoutSeconds:    15,
		SessionTTLSeconds: 300,
	}
}

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrConfigMissingEndpoint
	}
	if c.Database == "" {
		return ErrConfigMissingDatabase
	}
	if c.Username == "" {
		return ErrConfigMissingUsername
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	if c.SessionTTLSeconds < 0 {
		c.SessionTTLSeconds = 0
	}
	return nil
}

// CommonURL returns the authentication endpoint URL
func (c *Config) CommonURL() string {
	return c.Endpoint + "/xmlrpc/2/common"
}

// ObjectURL returns the object-model endpoint URL
func (c *Config) ObjectURL() string {
	return c.Endpoint + "/xmlrpc/2/object"
}
