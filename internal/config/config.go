// =============================================================================
// SWIFT MT Engine - Configuration Module
// =============================================================================
//
// This module loads the main application configuration and the processing
// profiles used by the batch converter and the HTTP server.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, outputs, server
//   2. Profiles (configs/*.yaml, *.yml, *.toml): per-feed rules such as
//      which files a profile owns, the message types it accepts and the
//      validation rules it disables
//
// PRECEDENCE (lowest to highest):
//   built-in defaults -> config file -> .env file -> process environment
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for message files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives XML exports, reports, normalized FIN files and the
	// error and summary logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every output file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ConfigsDir holds the processing profiles.
	// Default: "./configs"
	ConfigsDir string `yaml:"configs_dir"`

	// ArchiveByDate files archives under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// FIELD CATALOGUE
	// =========================================================================

	// CatalogueFile is an optional XLSX workbook declaring extra field tags
	// and their component formats. Declared tags are registered before any
	// message is parsed.
	CatalogueFile string `yaml:"catalogue_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file receiving a copy of the log.
	LogFile string `yaml:"log_file"`

	// LogLevel: "trace", "debug", "info", "warn", "error", "off".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat: "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// MetricsFile, when set, receives the metrics in the node_exporter
	// textfile format after each batch run.
	MetricsFile string `yaml:"metrics_file"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// UUIDFormat defines the base name of output files. The extension is
	// added per output kind.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {profile}   - Profile code
	//   {original}  - Input file name without extension
	// Default: "{original}_{uuid}"
	UUIDFormat string `yaml:"uuid_format"`

	// Outputs selects the artefacts written per input file.
	Outputs OutputSettings `yaml:"outputs"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing the remaining messages of a file
	// after one fails to parse.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// StopOnFirstError reports only the first violated rule per message.
	StopOnFirstError bool `yaml:"stop_on_first_error"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	Server ServerConfig `yaml:"server"`
}

// OutputSettings selects the artefacts written per input file.
type OutputSettings struct {
	// XML writes the parsed messages as an XML document.
	XML bool `yaml:"xml"`

	// XLSX writes the validation report workbook.
	XLSX bool `yaml:"xlsx"`

	// FIN writes the re-serialized messages, one RJE file per input.
	FIN bool `yaml:"fin"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// CORSOrigins lists the allowed browser origins. Empty allows none.
	CORSOrigins []string `yaml:"cors_origins"`

	// MaxBodyBytes caps request bodies.
	// Default: 1 MiB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// =============================================================================
// PROFILE STRUCTURE
// =============================================================================

// Profile holds the processing rules of one message feed. The first profile
// whose FileMatchingPatterns match an input file name handles that file.
type Profile struct {
	// Name is the human-readable name used in logs.
	Name string `yaml:"name" toml:"name"`

	// Code is a short identifier used in output file names.
	Code string `yaml:"code" toml:"code"`

	// FileMatchingPatterns are glob patterns over input file names.
	// Examples: "payments_*.fin", "*.rje"
	FileMatchingPatterns []string `yaml:"file_matching_patterns" toml:"file_matching_patterns"`

	// MessageTypes restricts the accepted message types, e.g. ["103", "202"].
	// Empty accepts every supported type.
	MessageTypes []string `yaml:"message_types" toml:"message_types"`

	// DisabledRules lists rule IDs ("MT103-C5") or network codes ("D75")
	// skipped for this feed.
	DisabledRules []string `yaml:"disabled_rules" toml:"disabled_rules"`

	// StopOnFirstError overrides the main setting when present.
	StopOnFirstError *bool `yaml:"stop_on_first_error" toml:"stop_on_first_error"`

	// Input describes how message files of this feed are laid out.
	Input InputSettings `yaml:"input" toml:"input"`

	// ExportRules rewrite field values in the XML export.
	ExportRules []TransformationRule `yaml:"export_rules" toml:"export_rules"`

	// StaticFields are constant attributes added to every exported message.
	StaticFields []StaticField `yaml:"static_fields" toml:"static_fields"`
}

// InputSettings describes the layout of a message file.
type InputSettings struct {
	// Separator splits messages in a file. RJE files use "$".
	// Default: "$"
	Separator string `yaml:"separator" toml:"separator"`

	// Encoding of the file: "UTF-8", "ISO-8859-1" or "Windows-1252".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" toml:"encoding"`
}

// TransformationRule rewrites the exported value of one field tag.
type TransformationRule struct {
	// Field is a normalized tag, e.g. "32A", or a header key such as
	// "sender".
	Field string `yaml:"field" toml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions" toml:"actions"`
}

// TransformationAction is a single rewrite step.
type TransformationAction struct {
	// Type is one of: "prepend_string", "append_string", "trim",
	// "uppercase", "lowercase", "replace", "regex_replace",
	// "pad_zeros_to_length", "ensure_length", "lookup",
	// "lookup_with_default", "if_empty_use_default",
	// "normalize_whitespace", "decimal_point", "format_date", "mask".
	Type string `yaml:"type" toml:"type"`

	// Value is the parameter of the action.
	Value string `yaml:"value" toml:"value"`

	// Find is the substring or pattern for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty" toml:"find"`

	// LookupTable maps input values for "lookup" actions.
	LookupTable map[string]string `yaml:"lookup_table,omitempty" toml:"lookup_table"`
}

// StaticField is a constant exported with every message.
type StaticField struct {
	Name  string `yaml:"name" toml:"name"`
	Value string `yaml:"value" toml:"value"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Environment variables overriding the main configuration.
const (
	EnvInputDir         = "SWIFTMT_INPUT_DIR"
	EnvOutputDir        = "SWIFTMT_OUTPUT_DIR"
	EnvConfigsDir       = "SWIFTMT_CONFIGS_DIR"
	EnvCatalogueFile    = "SWIFTMT_CATALOGUE_FILE"
	EnvMaxConcurrency   = "SWIFTMT_MAX_CONCURRENCY"
	EnvStopOnFirstError = "SWIFTMT_STOP_ON_FIRST_ERROR"
	EnvServerAddr       = "SWIFTMT_SERVER_ADDR"
	EnvLogLevel         = "SWIFTMT_LOG_LEVEL"
	EnvLogFormat        = "SWIFTMT_LOG_FORMAT"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *MainConfig {
	config := &MainConfig{ContinueOnError: true}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file, applies
// defaults and environment overrides, and creates the working directories.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Booleans defaulting to true are preset before decoding.
	config := MainConfig{ContinueOnError: true}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&config)
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads configPath, or returns the defaults with environment
// overrides when the file does not exist. Directories are not created for
// the defaults.
func LoadOrDefault(configPath string) (*MainConfig, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		config := &MainConfig{ContinueOnError: true}
		applyEnvOverrides(config)
		applyMainConfigDefaults(config)
		return config, nil
	}
	return LoadMainConfig(configPath)
}

// applyMainConfigDefaults sets default values for any unset option.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ConfigsDir == "" {
		config.ConfigsDir = "./configs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.UUIDFormat == "" {
		config.UUIDFormat = "{original}_{uuid}"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if !config.Outputs.XML && !config.Outputs.XLSX && !config.Outputs.FIN {
		config.Outputs.XML = true
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.MaxBodyBytes <= 0 {
		config.Server.MaxBodyBytes = 1 << 20
	}
}

// applyEnvOverrides replaces options set in the environment.
func applyEnvOverrides(config *MainConfig) {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(EnvInputDir, &config.InputDir)
	setString(EnvOutputDir, &config.OutputDir)
	setString(EnvConfigsDir, &config.ConfigsDir)
	setString(EnvCatalogueFile, &config.CatalogueFile)
	setString(EnvServerAddr, &config.Server.Addr)
	setString(EnvLogLevel, &config.LogLevel)
	setString(EnvLogFormat, &config.LogFormat)

	if n, err := strconv.Atoi(os.Getenv(EnvMaxConcurrency)); err == nil && n > 0 {
		config.MaxConcurrency = n
	}
	if b, err := strconv.ParseBool(os.Getenv(EnvStopOnFirstError)); err == nil {
		config.StopOnFirstError = b
	}
}

// validateMainConfig checks option values and creates missing directories.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", config.LogFormat)
	}
	if config.CatalogueFile != "" {
		if _, err := os.Stat(config.CatalogueFile); err != nil {
			return fmt.Errorf("catalogue file: %w", err)
		}
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.ConfigsDir,
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// =============================================================================
// PROFILE LOADING
// =============================================================================

// DefaultProfile accepts every file and every message type.
func DefaultProfile() *Profile {
	p := &Profile{Name: "default", Code: "default", FileMatchingPatterns: []string{"*"}}
	applyProfileDefaults(p)
	return p
}

// LoadProfiles loads every profile in a directory, keyed by profile code.
// YAML (.yaml, .yml) and TOML (.toml) files are accepted.
func LoadProfiles(configsDir string) (map[string]*Profile, error) {
	profiles := make(map[string]*Profile)

	var files []string
	for _, ext := range []string{"*.yaml", "*.yml", "*.toml"} {
		matches, err := filepath.Glob(filepath.Join(configsDir, ext))
		if err != nil {
			return nil, fmt.Errorf("failed to list profile files: %w", err)
		}
		files = append(files, matches...)
	}

	for _, file := range files {
		profile, err := loadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		key := profile.Code
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			profile.Code = key
		}
		if _, dup := profiles[key]; dup {
			return nil, fmt.Errorf("duplicate profile code %q in %s", key, file)
		}
		profiles[key] = profile
	}

	return profiles, nil
}

// loadProfile loads a single profile file.
func loadProfile(filePath string) (*Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile Profile
	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		if _, err := toml.Decode(string(data), &profile); err != nil {
			return nil, fmt.Errorf("failed to parse file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applyProfileDefaults(&profile)
	if err := validateProfile(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// applyProfileDefaults sets default values for a profile.
func applyProfileDefaults(profile *Profile) {
	if profile.Input.Separator == "" {
		profile.Input.Separator = "$"
	}
	if profile.Input.Encoding == "" {
		profile.Input.Encoding = "UTF-8"
	}
	if profile.Name == "" {
		profile.Name = profile.Code
	}
}

func validateProfile(profile *Profile) error {
	for _, pattern := range profile.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
	}
	for _, mt := range profile.MessageTypes {
		if len(mt) != 3 {
			return fmt.Errorf("invalid message type %q", mt)
		}
	}
	return nil
}

// MatchProfile returns the profile owning a file. Profiles are tried in code
// order so the choice is stable. With no profiles loaded every file falls
// to DefaultProfile; otherwise an unmatched file returns nil.
func MatchProfile(filePath string, profiles map[string]*Profile) *Profile {
	if len(profiles) == 0 {
		return DefaultProfile()
	}
	fileName := filepath.Base(filePath)

	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		profile := profiles[code]
		for _, pattern := range profile.FileMatchingPatterns {
			if matched, err := filepath.Match(pattern, fileName); err == nil && matched {
				return profile
			}
		}
	}
	return nil
}

// Accepts reports whether the profile accepts a message type.
func (p *Profile) Accepts(messageType string) bool {
	if len(p.MessageTypes) == 0 {
		return true
	}
	for _, mt := range p.MessageTypes {
		if mt == messageType {
			return true
		}
	}
	return false
}

// StopOnFirst resolves the stop-on-first-error setting for this profile.
func (p *Profile) StopOnFirst(main *MainConfig) bool {
	if p.StopOnFirstError != nil {
		return *p.StopOnFirstError
	}
	return main.StopOnFirstError
}
