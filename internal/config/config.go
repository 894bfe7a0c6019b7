// Package config provides configuration management for the resolution pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Discovery strategies.
const (
	DiscoveryStatic   = "static"
	DiscoveryRendered = "rendered"
)

// Document formats.
const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"
)

// Defaults taken from the published CREG and UPME listings.
const (
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	DefaultLinkMarker = "ControlAdmin/BajarArchivo"
	DefaultSelector   = "a.ms-srch-item-link"
	CREGListingURL    = "https://creg.gov.co/loader.php?lServicio=Documentos&lFuncion=infoCategoriaConsumo&tipo=RE"
	UPMEListingURL    = "https://www1.upme.gov.co/Entornoinstitucional/Biblioteca-juridica/Paginas/Resoluciones-UPME-Energia-electrica.aspx"

	// DefaultConfigPath is read when no config is given and it exists.
	DefaultConfigPath = "configs/pipeline.yaml"
	// ConfigEnv names the environment variable holding the config path.
	ConfigEnv = "REGDOCS_CONFIG"

	quarantineSubdir = "to_check"
	batchFileName    = "resolutions_processed.json"
)

// Configuration validation errors.
var (
	ErrNoSources           = errors.New("at least one source is required")
	ErrSourceMissingID     = errors.New("id is required")
	ErrDuplicateSourceID   = errors.New("duplicate source id")
	ErrSourceMissingURL    = errors.New("url is required")
	ErrInvalidDiscovery    = errors.New("discovery must be 'static' or 'rendered'")
	ErrInvalidFormat       = errors.New("format must be 'docx' or 'pdf'")
	ErrMissingLinkMarker   = errors.New("link_marker is required for static discovery")
	ErrMissingSelector     = errors.New("selector is required for rendered discovery")
	ErrInvalidMaxDocuments = errors.New("max_documents must be non-negative")
	ErrMissingStagingDir   = errors.New("staging_dir is required")
	ErrMissingBatchPath    = errors.New("batch_path is required")
	ErrQuarantineIsStaging = errors.New("quarantine_dir must differ from staging_dir")
	ErrNoEnabledSources    = errors.New("at least one source must be enabled")
	ErrInvalidTimeout      = errors.New("http.timeout_sec must be at least 1")
	ErrInvalidRate         = errors.New("http.requests_per_second must be non-negative")
	ErrInvalidBurst        = errors.New("http.burst must be at least 1")
	ErrInvalidMaxBody      = errors.New("http.max_body_mb must be at least 1")
	ErrInvalidWorkers      = errors.New("workers.downloads and workers.extraction must be at least 1")
	ErrInvalidWaitTimeout  = errors.New("browser.wait_timeout_sec and browser.page_load_timeout_sec must be at least 1")
	ErrInvalidMaxScan      = errors.New("extraction.max_scan_paragraphs must be non-negative")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'text' or 'json'")
	ErrSourceNotFound      = errors.New("source not found")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Browser  BrowserConfig  `yaml:"browser"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// PipelineConfig contains the per-run pipeline settings.
type PipelineConfig struct {
	Sources    []SourceConfig   `yaml:"sources"`
	HTTP       HTTPConfig       `yaml:"http"`
	Workers    WorkersConfig    `yaml:"workers"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Ledger     LedgerConfig     `yaml:"ledger"`
}

// SourceConfig describes one publishing authority.
type SourceConfig struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	Discovery     string `yaml:"discovery"`
	Format        string `yaml:"format"`
	LinkMarker    string `yaml:"link_marker"`
	Selector      string `yaml:"selector"`
	StagingDir    string `yaml:"staging_dir"`
	QuarantineDir string `yaml:"quarantine_dir"`
	BatchPath     string `yaml:"batch_path"`
	MaxDocuments  int    `yaml:"max_documents"`
	Enabled       bool   `yaml:"enabled"`
}

// IsRendered returns true if the listing needs a headless browser.
func (s *SourceConfig) IsRendered() bool {
	return s.Discovery == DiscoveryRendered
}

// Extension returns the staged file extension for the source format.
func (s *SourceConfig) Extension() string {
	return "." + s.Format
}

// HTTPConfig defines how documents and listings are fetched.
type HTTPConfig struct {
	UserAgent         string  `yaml:"user_agent"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxBodyMb         int     `yaml:"max_body_mb"`
}

// GetTimeout returns the per-request timeout.
func (h *HTTPConfig) GetTimeout() time.Duration {
	return time.Duration(h.TimeoutSec) * time.Second
}

// MaxBodyBytes returns the download size cap in bytes.
func (h *HTTPConfig) MaxBodyBytes() int64 {
	return int64(h.MaxBodyMb) * 1024 * 1024
}

// WorkersConfig bounds stage parallelism.
type WorkersConfig struct {
	Downloads  int `yaml:"downloads"`
	Extraction int `yaml:"extraction"`
}

// ExtractionConfig tunes the document extractors.
type ExtractionConfig struct {
	// MaxScanParagraphs caps the docx marker scans; 0 scans the whole document.
	MaxScanParagraphs int `yaml:"max_scan_paragraphs"`
}

// OutputConfig defines batch persistence behavior.
type OutputConfig struct {
	CreateBackup bool `yaml:"create_backup"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LedgerConfig enables the SQLite run ledger when Path is set.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// BrowserConfig controls the headless browser used by rendered discovery.
type BrowserConfig struct {
	ExecPath           string `yaml:"exec_path"`
	WaitTimeoutSec     int    `yaml:"wait_timeout_sec"`
	PageLoadTimeoutSec int    `yaml:"page_load_timeout_sec"`
	WindowWidth        int    `yaml:"window_width"`
	WindowHeight       int    `yaml:"window_height"`
	NoSandbox          bool   `yaml:"no_sandbox"`
}

// GetWaitTimeout returns the bounded DOM-ready wait.
func (b *BrowserConfig) GetWaitTimeout() time.Duration {
	return time.Duration(b.WaitTimeoutSec) * time.Second
}

// GetPageLoadTimeout returns the navigation timeout.
func (b *BrowserConfig) GetPageLoadTimeout() time.Duration {
	return time.Duration(b.PageLoadTimeoutSec) * time.Second
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	DataDir string `yaml:"data_dir"`
}

// DefaultConfig returns the CREG and UPME pipeline definitions.
func DefaultConfig() *Config {
	cfg := defaultConfig()
	cfg.applyDefaults()

	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Sources: []SourceConfig{
				{
					ID:           "creg",
					Name:         "CREG resoluciones",
					URL:          CREGListingURL,
					Discovery:    DiscoveryStatic,
					Format:       FormatDocx,
					LinkMarker:   DefaultLinkMarker,
					MaxDocuments: 10,
					Enabled:      true,
				},
				{
					ID:           "upme",
					Name:         "UPME resoluciones energía eléctrica",
					URL:          UPMEListingURL,
					Discovery:    DiscoveryRendered,
					Format:       FormatPDF,
					Selector:     DefaultSelector,
					MaxDocuments: 10,
					Enabled:      true,
				},
			},
			HTTP: HTTPConfig{
				UserAgent:         DefaultUserAgent,
				TimeoutSec:        10,
				RequestsPerSecond: 2,
				Burst:             4,
				MaxBodyMb:         50,
			},
			Workers: WorkersConfig{
				Downloads:  4,
				Extraction: 4,
			},
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
		Browser: BrowserConfig{
			WaitTimeoutSec:     10,
			PageLoadTimeoutSec: 60,
			WindowWidth:        1920,
			WindowHeight:       1080,
		},
		Advanced: AdvancedConfig{
			DataDir: "data",
		},
	}
}

// LoadConfig loads configuration from YAML file. Values missing from the
// file keep their DefaultConfig value; sources are replaced as a whole.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Resolve picks the configuration for a CLI run: the explicit path, then
// $REGDOCS_CONFIG, then DefaultConfigPath if present, else DefaultConfig.
// Environment overrides are applied and the result validated. The second
// return value names where the configuration came from.
func Resolve(path string, lookup func(string) (string, bool)) (*Config, string, error) {
	if path == "" {
		if v, ok := lookup(ConfigEnv); ok {
			path = v
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	var (
		cfg *Config
		err error
	)

	origin := "built-in defaults"

	if path != "" {
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, "", err
		}

		origin = path
	} else {
		cfg = DefaultConfig()
	}

	cfg.ApplyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, origin, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides selected settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("REGDOCS_LOG_LEVEL"); ok && v != "" {
		c.Pipeline.Logging.Level = strings.ToLower(v)
	}

	if v, ok := lookup("REGDOCS_LEDGER_PATH"); ok {
		c.Pipeline.Ledger.Path = v
	}

	if v, ok := lookup("REGDOCS_CHROME_PATH"); ok && v != "" {
		c.Browser.ExecPath = v
	}
}

// applyDefaults derives per-source paths and strategy settings left empty.
func (c *Config) applyDefaults() {
	dataDir := c.Advanced.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	for i := range c.Pipeline.Sources {
		src := &c.Pipeline.Sources[i]

		if src.StagingDir == "" && src.ID != "" {
			src.StagingDir = filepath.Join(dataDir, src.ID)
		}

		if src.QuarantineDir == "" && src.StagingDir != "" {
			src.QuarantineDir = filepath.Join(src.StagingDir, quarantineSubdir)
		}

		if src.BatchPath == "" && src.StagingDir != "" {
			src.BatchPath = filepath.Join(src.StagingDir, "processed", batchFileName)
		}

		if src.Discovery == DiscoveryStatic && src.LinkMarker == "" {
			src.LinkMarker = DefaultLinkMarker
		}

		if src.Discovery == DiscoveryRendered && src.Selector == "" {
			src.Selector = DefaultSelector
		}
	}

	if c.Pipeline.HTTP.UserAgent == "" {
		c.Pipeline.HTTP.UserAgent = DefaultUserAgent
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Pipeline.Sources) == 0 {
		return ErrNoSources
	}

	enabledCount := 0
	seen := make(map[string]bool)

	for i, src := range c.Pipeline.Sources {
		if err := src.validate(); err != nil {
			return fmt.Errorf("%w: source[%d]", err, i)
		}

		if seen[src.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateSourceID, src.ID)
		}

		seen[src.ID] = true

		if src.Enabled {
			enabledCount++
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	// Validate HTTP settings
	if c.Pipeline.HTTP.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Pipeline.HTTP.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}

	if c.Pipeline.HTTP.Burst < 1 {
		return ErrInvalidBurst
	}

	if c.Pipeline.HTTP.MaxBodyMb < 1 {
		return ErrInvalidMaxBody
	}

	if c.Pipeline.Workers.Downloads < 1 || c.Pipeline.Workers.Extraction < 1 {
		return ErrInvalidWorkers
	}

	if c.Pipeline.Extraction.MaxScanParagraphs < 0 {
		return ErrInvalidMaxScan
	}

	if c.Browser.WaitTimeoutSec < 1 || c.Browser.PageLoadTimeoutSec < 1 {
		return ErrInvalidWaitTimeout
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Pipeline.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Pipeline.Logging.Format != "text" && c.Pipeline.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

func (s *SourceConfig) validate() error {
	if s.ID == "" {
		return ErrSourceMissingID
	}

	if s.URL == "" {
		return ErrSourceMissingURL
	}

	switch s.Discovery {
	case DiscoveryStatic:
		if s.LinkMarker == "" {
			return ErrMissingLinkMarker
		}
	case DiscoveryRendered:
		if s.Selector == "" {
			return ErrMissingSelector
		}
	default:
		return ErrInvalidDiscovery
	}

	if s.Format != FormatDocx && s.Format != FormatPDF {
		return ErrInvalidFormat
	}

	if s.MaxDocuments < 0 {
		return ErrInvalidMaxDocuments
	}

	if s.StagingDir == "" {
		return ErrMissingStagingDir
	}

	if s.BatchPath == "" {
		return ErrMissingBatchPath
	}

	if filepath.Clean(s.QuarantineDir) == filepath.Clean(s.StagingDir) {
		return ErrQuarantineIsStaging
	}

	return nil
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Pipeline.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// SourceByID returns the source with the given id, enabled or not.
func (c *Config) SourceByID(id string) (SourceConfig, error) {
	for _, src := range c.Pipeline.Sources {
		if strings.EqualFold(src.ID, id) {
			return src, nil
		}
	}

	return SourceConfig{}, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, Enabled: %d, Timeout: %ds, Workers: %d/%d}",
		len(c.Pipeline.Sources),
		len(c.GetEnabledSources()),
		c.Pipeline.HTTP.TimeoutSec,
		c.Pipeline.Workers.Downloads,
		c.Pipeline.Workers.Extraction,
	)
}
