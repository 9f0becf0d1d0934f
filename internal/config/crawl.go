package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// SourceConfig describes one trusted news listing page.
type SourceConfig struct {
	Name         string `mapstructure:"name"`
	URL          string `mapstructure:"url"`
	LinkSelector string `mapstructure:"link-selector"`
}

// CrawlConfig holds configuration for the crawl command.
type CrawlConfig struct {
	Server       Config
	Sources      []SourceConfig
	Schedule     string
	Delay        time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultSources are crawled when the config file lists none.
var DefaultSources = []SourceConfig{
	{
		Name:         "Al Jazeera",
		URL:          "https://www.aljazeera.com/tag/palestine/",
		LinkSelector: "article.gc a",
	},
	{
		Name:         "Middle East Eye",
		URL:          "https://www.middleeasteye.net/topics/palestine",
		LinkSelector: "article.teaser h3 a",
	},
}

// LoadCrawl merges config file, environment variables, and flags into CrawlConfig.
func LoadCrawl(cfgFile string, flags *pflag.FlagSet) (CrawlConfig, error) {
	server, err := Load(cfgFile, flags)
	if err != nil {
		return CrawlConfig{}, err
	}

	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"delay":         2 * time.Second,
		"max-retries":   3,
		"retry-backoff": time.Second,
	})
	if err != nil {
		return CrawlConfig{}, err
	}

	var sources []SourceConfig
	if err := v.UnmarshalKey("sources", &sources); err != nil {
		return CrawlConfig{}, fmt.Errorf("parse sources: %w", err)
	}
	if len(sources) == 0 {
		sources = DefaultSources
	}
	for i, src := range sources {
		if src.URL == "" || src.LinkSelector == "" {
			return CrawlConfig{}, fmt.Errorf("source %d (%s): url and link-selector are required", i, src.Name)
		}
	}

	return CrawlConfig{
		Server:       server,
		Sources:      sources,
		Schedule:     v.GetString("schedule"),
		Delay:        v.GetDuration("delay"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}, nil
}
