// Package config loads connection and tuning settings from a Java-style
// .properties file, with environment overrides.
//
// Recognised keys (all under the automatedDOIs prefix):
//
//	automatedDOIs.driver      mysql (default) or sqlite3
//	automatedDOIs.user        mysql only
//	automatedDOIs.password    mysql only
//	automatedDOIs.host        mysql only
//	automatedDOIs.port        mysql only
//	automatedDOIs.dbName      current release (database name or SQLite path)
//	automatedDOIs.prevDbName  previous release (database name or SQLite path)
//	automatedDOIs.workers     worker pool size (default 8)
//	automatedDOIs.maxDepth    ancestor walk bound (default 64)
//	automatedDOIs.outputFile  CSV path (default doi-suggestions.csv)
//
// Every key can be overridden by AUTOMATEDDOIS_<KEY>, for example
// AUTOMATEDDOIS_PASSWORD.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/store"
)

const prefix = "automatedDOIs."

// Property keys.
const (
	KeyDriver     = prefix + "driver"
	KeyUser       = prefix + "user"
	KeyPassword   = prefix + "password"
	KeyHost       = prefix + "host"
	KeyPort       = prefix + "port"
	KeyDBName     = prefix + "dbName"
	KeyPrevDBName = prefix + "prevDbName"
	KeyWorkers    = prefix + "workers"
	KeyMaxDepth   = prefix + "maxDepth"
	KeyOutputFile = prefix + "outputFile"
)

// DefaultOutputFile is the CSV path used when none is configured.
const DefaultOutputFile = "doi-suggestions.csv"

var (
	// ErrPropertyNotPresent means a mandatory key is missing.
	ErrPropertyNotPresent = errors.New("property not present")

	// ErrPropertyHasNoValue means a mandatory key is present but blank.
	ErrPropertyHasNoValue = errors.New("property has no value")
)

// Config is the resolved configuration.
type Config struct {
	Driver     string
	User       string
	Password   string
	Host       string
	Port       int
	DBName     string
	PrevDBName string
	Workers    int
	MaxDepth   int
	OutputFile string
}

// Load reads path (if it exists) and the environment, applies defaults, and
// validates mandatory properties.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		KeyDriver, KeyUser, KeyPassword, KeyHost, KeyPort,
		KeyDBName, KeyPrevDBName, KeyWorkers, KeyMaxDepth, KeyOutputFile,
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault(KeyDriver, store.DriverMySQL)
	v.SetDefault(KeyWorkers, engine.DefaultWorkers)
	v.SetDefault(KeyMaxDepth, engine.DefaultMaxDepth)
	v.SetDefault(KeyOutputFile, DefaultOutputFile)

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			v.SetConfigType("properties")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Driver:     strings.TrimSpace(v.GetString(KeyDriver)),
		OutputFile: v.GetString(KeyOutputFile),
	}

	var err error
	if cfg.Workers, err = intProperty(v, KeyWorkers); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = intProperty(v, KeyMaxDepth); err != nil {
		return nil, err
	}
	if cfg.DBName, err = mandatory(v, KeyDBName); err != nil {
		return nil, err
	}
	if cfg.PrevDBName, err = mandatory(v, KeyPrevDBName); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case store.DriverSQLite:
	case store.DriverMySQL:
		if cfg.User, err = mandatory(v, KeyUser); err != nil {
			return nil, err
		}
		if cfg.Password, err = mandatory(v, KeyPassword); err != nil {
			return nil, err
		}
		if cfg.Host, err = mandatory(v, KeyHost); err != nil {
			return nil, err
		}
		if _, err = mandatory(v, KeyPort); err != nil {
			return nil, err
		}
		if cfg.Port, err = intProperty(v, KeyPort); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", KeyDriver, cfg.Driver)
	}

	return cfg, nil
}

// CurrentStore returns the store configuration of the current release.
func (c *Config) CurrentStore() store.Config {
	return store.Config{Driver: c.Driver, DSN: c.dsn(c.DBName), MaxOpenConns: c.conns()}
}

// PreviousStore returns the store configuration of the previous release.
func (c *Config) PreviousStore() store.Config {
	return store.Config{Driver: c.Driver, DSN: c.dsn(c.PrevDBName), MaxOpenConns: c.conns()}
}

func (c *Config) dsn(dbName string) string {
	if c.Driver == store.DriverSQLite {
		return dbName
	}
	m := mysql.NewConfig()
	m.User = c.User
	m.Passwd = c.Password
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	m.DBName = dbName
	return m.FormatDSN()
}

// conns sizes the MySQL pool to the worker count. SQLite keeps its default.
func (c *Config) conns() int {
	if c.Driver == store.DriverSQLite {
		return 0
	}
	return c.Workers
}

func mandatory(v *viper.Viper, key string) (string, error) {
	if !v.IsSet(key) {
		return "", fmt.Errorf("%s: %w", key, ErrPropertyNotPresent)
	}
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return "", fmt.Errorf("%s: %w", key, ErrPropertyHasNoValue)
	}
	return value, nil
}

func intProperty(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %q", key, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
