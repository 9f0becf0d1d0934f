package config

import "github.com/spf13/pflag"

// ExportConfig holds configuration for the export command.
type ExportConfig struct {
	Server    Config
	Out       string
	BatchSize int
}

// LoadExport merges config file, environment variables, and flags into ExportConfig.
func LoadExport(cfgFile string, flags *pflag.FlagSet) (ExportConfig, error) {
	server, err := Load(cfgFile, flags)
	if err != nil {
		return ExportConfig{}, err
	}

	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":        "./data/articles.jsonl",
		"batch-size": 100,
	})
	if err != nil {
		return ExportConfig{}, err
	}

	return ExportConfig{
		Server:    server,
		Out:       v.GetString("out"),
		BatchSize: v.GetInt("batch-size"),
	}, nil
}
