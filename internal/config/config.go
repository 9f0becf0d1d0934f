package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"newsLedger/internal/model"
)

const envPrefix = "NEWSLEDGER"

// Config holds configuration values for the API server loaded from flags, env, or config file.
type Config struct {
	Listen      string
	LogLevel    string
	CORSOrigins []string

	DB    DBConfig
	Chain ChainConfig
	Fetch FetchConfig

	RedisAddr string
}

// DBConfig selects and configures the article store.
type DBConfig struct {
	Store    string
	DSN      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	MaxConns int32
}

// ChainConfig holds the chain registry settings. Mode is derived from it once at startup.
type ChainConfig struct {
	RPCURL         string
	Contract       string
	UserContract   string
	PrivateKey     string
	TestingMode    bool
	ReceiptTimeout time.Duration
}

// FetchConfig controls outbound article fetches.
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"listen":          ":3001",
		"log-level":       "info",
		"store":           "postgres",
		"db-host":         "localhost",
		"db-port":         5432,
		"db-name":         "palestine_news",
		"db-user":         "postgres",
		"db-max-conns":    5,
		"receipt-timeout": 2 * time.Minute,
		"fetch-timeout":   20 * time.Second,
		"user-agent":      "newsLedger/1.0",
		"cors-origins":    "*",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Listen:      v.GetString("listen"),
		LogLevel:    v.GetString("log-level"),
		CORSOrigins: getStringSlice(v, "cors-origins"),
		DB:          loadDB(v),
		Chain: ChainConfig{
			RPCURL:         v.GetString("rpc"),
			Contract:       v.GetString("contract"),
			UserContract:   v.GetString("user-contract"),
			PrivateKey:     v.GetString("private-key"),
			TestingMode:    v.GetBool("testing-mode"),
			ReceiptTimeout: v.GetDuration("receipt-timeout"),
		},
		Fetch: FetchConfig{
			Timeout:   v.GetDuration("fetch-timeout"),
			UserAgent: v.GetString("user-agent"),
		},
		RedisAddr: v.GetString("redis-addr"),
	}

	if err := cfg.Chain.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Mode resolves the chain registry mode: live only when the endpoint and both
// contract addresses are present and testing mode is not forced.
func (c ChainConfig) Mode() model.ChainMode {
	if c.TestingMode || c.RPCURL == "" || c.Contract == "" || c.UserContract == "" {
		return model.ChainModeTesting
	}
	return model.ChainModeLive
}

func (c ChainConfig) validate() error {
	for name, addr := range map[string]string{"contract": c.Contract, "user-contract": c.UserContract} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address: %s", name, addr)
		}
	}
	return nil
}

// PostgresDSN returns the explicit DSN or one assembled from the discrete db-* keys.
func (c DBConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	return u.String()
}

func loadDB(v *viper.Viper) DBConfig {
	return DBConfig{
		Store:    v.GetString("store"),
		DSN:      v.GetString("pg-dsn"),
		Host:     v.GetString("db-host"),
		Port:     v.GetInt("db-port"),
		Name:     v.GetString("db-name"),
		User:     v.GetString("db-user"),
		Password: v.GetString("db-password"),
		MaxConns: v.GetInt32("db-max-conns"),
	}
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
