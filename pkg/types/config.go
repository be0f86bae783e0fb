package types

import "fmt"

// Config holds the resolved runtime settings. The CLI fills it from flags,
// config.yaml and the environment; the core packages only read it.
type Config struct {
	DataDir      string       `json:"data_dir" yaml:"data_dir"`
	LogLevel     string       `json:"log_level" yaml:"log_level"`
	LogFile      string       `json:"log_file" yaml:"log_file"`
	PasswordCost PasswordCost `json:"password_cost" yaml:"password_cost"`
	TOTPIssuer   string       `json:"totp_issuer" yaml:"totp_issuer"`
	ExportFormat string       `json:"export_format" yaml:"export_format"`
}

// PasswordCost holds the argon2id cost factors for the stored password hash.
type PasswordCost struct {
	Time      uint32 `json:"time" yaml:"time"`
	MemoryKiB uint32 `json:"memory_kib" yaml:"memory_kib"`
	Threads   uint8  `json:"threads" yaml:"threads"`
}

// Export formats. Sealed exports are always ExportJSON envelopes.
const (
	ExportJSON   = "json"
	ExportYAML   = "yaml"
	ExportTOML   = "toml"
	ExportSQLite = "sqlite"
)

// ExportFormats lists the accepted export formats.
var ExportFormats = []string{ExportJSON, ExportYAML, ExportTOML, ExportSQLite}

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns the settings used when config.yaml is silent.
func DefaultConfig() Config {
	return Config{
		DataDir:      "databases",
		LogLevel:     "info",
		PasswordCost: PasswordCost{Time: 8, MemoryKiB: 64 * 1024, Threads: 1},
		TOTPIssuer:   "Strongbox",
		ExportFormat: ExportJSON,
	}
}

// ValidExportFormat reports whether format is one of ExportFormats.
func ValidExportFormat(format string) bool {
	for _, f := range ExportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Validate checks that the Config is well-formed and returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: %q", ErrLogLevelUnknown, c.LogLevel)
	}
	if c.ExportFormat != "" && !ValidExportFormat(c.ExportFormat) {
		return fmt.Errorf("%w: %q", ErrExportFormatUnknown, c.ExportFormat)
	}
	pc := c.PasswordCost
	if pc.Time == 0 || pc.MemoryKiB < 8*uint32(pc.Threads) || pc.Threads == 0 {
		return ErrCostInvalid
	}
	return nil
}
