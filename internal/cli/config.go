package cli

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/lineage/internal/paths"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "LINEAGE"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeySnapshot = "snapshot"
	cfgKeyCapacity = "capacity"
)

// loadConfig reads config.yaml from configDir using Viper. Values come from,
// highest first: the --backend and --snapshot flags, LINEAGE_* environment
// variables, config.yaml, then the built-in defaults. A missing config.yaml
// is not an error.
func loadConfig(configDir string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.DefaultBackend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeySnapshot, types.DefaultSnapshot)
	v.SetDefault(cfgKeyCapacity, types.DefaultCapacity)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for key, flag := range map[string]string{cfgKeyBackend: "backend", cfgKeySnapshot: "snapshot"} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig turns the merged settings into a validated Config. The data
// directory flag wins over every configured value.
func decodeConfig(v *viper.Viper, dataDirFlag string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(dataDirFlag, cfg.DataDir)
	if err != nil {
		return types.Config{}, systemError{fmt.Errorf("resolve data dir: %w", err)}
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w (backend %q, capacity %d)", err, cfg.Backend, cfg.Capacity)
	}
	return cfg, nil
}
