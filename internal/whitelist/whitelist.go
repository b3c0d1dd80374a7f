// Package whitelist decides which sender domains may submit sentences by mail.
package whitelist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker provides functionality to check if sender domains are allowed
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new checker. An empty domain list admits every sender.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	normalized := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized[domain] = struct{}{}
		}
	}

	if len(normalized) > 0 {
		logger.Info("Initialized sender allowlist", zap.Int("domains", len(normalized)))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Allows reports whether mail from the given address may be processed
func (c *Checker) Allows(from string) bool {
	if len(c.domains) == 0 {
		return true
	}
	return c.IsWhitelisted(from)
}

// IsWhitelisted checks if the sender's domain is on the list
func (c *Checker) IsWhitelisted(from string) bool {
	domain := Domain(from)
	if domain == "" {
		return false
	}

	if _, ok := c.domains[domain]; ok {
		c.logger.Debug("Domain is whitelisted",
			zap.String("domain", domain),
			zap.String("email", from))
		return true
	}
	return false
}

// Domain extracts the lower-cased domain of an address, "" when there is none
func Domain(from string) string {
	from = strings.TrimSpace(from)
	if addr, err := mail.ParseAddress(from); err == nil {
		from = addr.Address
	}

	at := strings.LastIndexByte(from, '@')
	if at < 0 || at == len(from)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(from[at+1:], "> "))
}
