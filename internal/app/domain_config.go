package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charlesng35/resourcedesk/internal/database"
	"github.com/charlesng35/resourcedesk/internal/models"
	"github.com/charlesng35/resourcedesk/internal/visibility"
)

// Validate reports configuration values that would make the service misbehave.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	if _, err := c.Visibility.Policy(); err != nil {
		return fmt.Errorf("config: visibility.unassigned: %w", err)
	}
	if _, err := c.RoutingTable(); err != nil {
		return fmt.Errorf("config: routing: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("config: rate_limit requires positive requests and window")
	}
	return nil
}

// Policy parses the unassigned-visibility policy.
func (v VisibilityConfig) Policy() (visibility.UnassignedPolicy, error) {
	return visibility.ParseUnassignedPolicy(v.Unassigned)
}

// DefaultRouting sends IT requests to the IT approver and building requests to
// the facility approver of the seeded directory.
func DefaultRouting() map[string]string {
	return map[string]string{
		"system_access":   "u-2",
		"equipment":       "u-2",
		"facility":        "u-3",
		"general_service": "u-3",
	}
}

// RoutingTable maps request types to the approver new requests are routed to.
// Keys accept any case and snake_case spellings such as "system_access". An
// absent routing section falls back to DefaultRouting.
func (c *Config) RoutingTable() (map[models.RequestType]string, error) {
	routing := c.Routing
	if routing == nil {
		routing = DefaultRouting()
	}
	table := make(map[models.RequestType]string, len(routing))
	keys := make([]string, 0, len(routing))
	for key := range routing {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		requestType, ok := models.ParseRequestType(key)
		if !ok {
			return nil, fmt.Errorf("unknown request type %q", key)
		}
		if approver := strings.TrimSpace(routing[key]); approver != "" {
			table[requestType] = approver
		}
	}
	return table, nil
}

// ConnectionConfig converts the database section into the database package representation.
func (d DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(d.Driver)),
		Path:            strings.TrimSpace(d.Path),
		DSN:             strings.TrimSpace(d.DSN),
		BusyTimeout:     d.BusyTimeout,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}

	var auth DBAuthConfig
	switch cfg.Driver {
	case "postgres", "postgresql":
		auth = d.Postgres
	case "mysql":
		auth = d.MySQL
	default:
		return cfg
	}

	cfg.Host = strings.TrimSpace(auth.Host)
	cfg.Port = auth.Port
	cfg.Name = strings.TrimSpace(auth.Database)
	cfg.User = strings.TrimSpace(auth.Username)
	cfg.Password = auth.Password
	cfg.Options = auth.Options
	return cfg
}
