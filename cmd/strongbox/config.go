package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/strongbox/internal/paths"
	"github.com/mesh-intelligence/strongbox/internal/persist"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDataDir      = "data_dir"
	cfgKeyLogLevel     = "log_level"
	cfgKeyLogFile      = "log_file"
	cfgKeyCostTime     = "password_cost.time"
	cfgKeyCostMemory   = "password_cost.memory_kib"
	cfgKeyCostThreads  = "password_cost.threads"
	cfgKeyTOTPIssuer   = "totp_issuer"
	cfgKeyExportFormat = "export_format"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# strongbox configuration

# Directory holding one encrypted <account_id>.json per account.
# Overridden by --data-dir; falls back to STRONGBOX_DATA_DIR, then ./databases.
# data_dir:

# debug, info, warn or error
log_level: info

# Defaults to strongbox.log next to this file.
# log_file:

# argon2id cost of new password hashes. Existing hashes keep their own cost.
password_cost:
  time: 8
  memory_kib: 65536
  threads: 1

# Issuer shown in authenticator apps.
totp_issuer: Strongbox

# json, yaml, toml or sqlite
export_format: json
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// commented default file on first run. A missing file is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyCostTime, def.PasswordCost.Time)
	v.SetDefault(cfgKeyCostMemory, def.PasswordCost.MemoryKiB)
	v.SetDefault(cfgKeyCostThreads, def.PasswordCost.Threads)
	v.SetDefault(cfgKeyTOTPIssuer, def.TOTPIssuer)
	v.SetDefault(cfgKeyExportFormat, def.ExportFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolveConfig turns the viper values and flags into a validated Config.
func resolveConfig(v *viper.Viper) (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(flagDataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	threads := v.GetUint(cfgKeyCostThreads)
	if threads > math.MaxUint8 {
		return types.Config{}, fmt.Errorf("%w: threads %d", types.ErrCostInvalid, threads)
	}
	c := types.Config{
		DataDir:  dataDir,
		LogLevel: v.GetString(cfgKeyLogLevel),
		LogFile:  v.GetString(cfgKeyLogFile),
		PasswordCost: types.PasswordCost{
			Time:      v.GetUint32(cfgKeyCostTime),
			MemoryKiB: v.GetUint32(cfgKeyCostMemory),
			Threads:   uint8(threads),
		},
		TOTPIssuer:   v.GetString(cfgKeyTOTPIssuer),
		ExportFormat: v.GetString(cfgKeyExportFormat),
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", paths.ConfigFile(configDir), err)
	}
	return c, nil
}

func ensureConfigDir(configDir string) error {
	return persist.EnsureDirectory(configDir)
}

// ensureDefaultConfigFile writes the default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	ok, err := persist.Exists(path)
	if err != nil || ok {
		return err
	}
	return persist.Write(path, []byte(defaultConfigYAML))
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		}
		fmt.Fprintf(out, "# %s\n", paths.ConfigFile(configDir))
		return yaml.NewEncoder(out).Encode(cfg)
	},
}
