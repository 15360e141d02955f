package database

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

const applicationName = "resourcedesk"

// BuildDSN renders the connection string for cfg's driver. An explicit DSN
// always wins. Host based drivers require a user and a database name, and
// sessions are pinned to UTC so stored request timestamps round-trip unchanged.
func BuildDSN(cfg Config) (string, error) {
	driver, err := cfg.normalisedDriver()
	if err != nil {
		return "", err
	}
	if driver == "sqlite" {
		return sqliteDSN(cfg)
	}

	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	if strings.TrimSpace(cfg.User) == "" || strings.TrimSpace(cfg.Name) == "" {
		return "", fmt.Errorf("%s configuration requires user and database name", driver)
	}

	switch driver {
	case "postgres":
		return postgresDSN(cfg), nil
	case "mysql":
		return mysqlDSN(cfg), nil
	}
	return "", errors.New("unreachable driver")
}

func hostPort(cfg Config, defaultHost string, defaultPort int) (string, int) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	return host, port
}

func postgresDSN(cfg Config) string {
	host, port := hostPort(cfg, "localhost", 5432)

	options := map[string]string{
		"sslmode":          "disable",
		"TimeZone":         "UTC",
		"application_name": applicationName,
	}
	for key, value := range cfg.Options {
		options[key] = value
	}

	params := []string{
		"host=" + quotePostgresValue(host),
		"port=" + strconv.Itoa(port),
		"user=" + quotePostgresValue(cfg.User),
		"dbname=" + quotePostgresValue(cfg.Name),
	}
	if cfg.Password != "" {
		params = append(params, "password="+quotePostgresValue(cfg.Password))
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		params = append(params, key+"="+quotePostgresValue(options[key]))
	}
	return strings.Join(params, " ")
}

// quotePostgresValue quotes keyword/value pairs that contain spaces, quotes
// or backslashes, or are empty.
func quotePostgresValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

func mysqlDSN(cfg Config) string {
	host, port := hostPort(cfg, "127.0.0.1", 3306)

	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		mc.Params[key] = value
	}
	return mc.FormatDSN()
}
