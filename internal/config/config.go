package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort        = 8000
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOutputDir   = "output"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDF to XML conversion service
type Config struct {
	// Server configuration
	Host string
	Port int

	// Conversion configuration
	OutputDir     string
	MaxFileSize   int64 // Maximum PDF upload size in bytes
	PrimaryTables bool  // Enable the layout-aware primary table detector

	// OCR configuration
	OCRLanguages   []string
	TessdataPrefix string

	// Application configuration
	Version     string
	ServiceName string
	LogLevel    string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		OutputDir:     DefaultOutputDir,
		MaxFileSize:   DefaultMaxFileSize,
		PrimaryTables: true,
		OCRLanguages:  []string{"eng"},
		Version:       "1.0.0",
		ServiceName:   "pdf-to-xml-converter",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand the output directory to an absolute path
	if cfg.OutputDir != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDir); err == nil {
			cfg.OutputDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDF2XML")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("outputdir", cfg.OutputDir)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("primarytables", cfg.PrimaryTables)
	viper.SetDefault("ocrlanguages", cfg.OCRLanguages)
	viper.SetDefault("tessdataprefix", cfg.TessdataPrefix)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("outputdir", cfg.OutputDir, "Directory for generated XML files")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF upload size in bytes")
	pflag.Bool("primarytables", cfg.PrimaryTables, "Enable the layout-aware primary table detector")
	pflag.StringSlice("ocrlanguages", cfg.OCRLanguages, "OCR languages passed to Tesseract")
	pflag.String("tessdataprefix", cfg.TessdataPrefix, "Tesseract data directory (empty for system default)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("outputdir", pflag.Lookup("outputdir"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("primarytables", pflag.Lookup("primarytables"))
	_ = viper.BindPFlag("ocrlanguages", pflag.Lookup("ocrlanguages"))
	_ = viper.BindPFlag("tessdataprefix", pflag.Lookup("tessdataprefix"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF to XML Converter - upload a PDF, receive structured XML\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # defaults, output/ directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --outputdir=/var/lib/pdf2xml      # custom output directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8080        # listen on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_OUTPUTDIR       XML output directory\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_MAXFILESIZE     Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_PRIMARYTABLES   Enable primary table detector\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_OCRLANGUAGES    OCR languages\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_TESSDATAPREFIX  Tesseract data directory\n")
		fmt.Fprintf(os.Stderr, "  PDF2XML_LOGLEVEL        Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.OutputDir = viper.GetString("outputdir")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.PrimaryTables = viper.GetBool("primarytables")
	cfg.OCRLanguages = viper.GetStringSlice("ocrlanguages")
	cfg.TessdataPrefix = viper.GetString("tessdataprefix")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate output directory
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	// Check if output directory exists, create if it doesn't
	if _, err := os.Stat(c.OutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDir, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate OCR languages
	if len(c.OCRLanguages) == 0 {
		return errors.New("at least one OCR language is required")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, OutputDir: %s, LogLevel: %s, MaxFileSize: %d, PrimaryTables: %t}",
		c.Host, c.Port, c.OutputDir, c.LogLevel, c.MaxFileSize, c.PrimaryTables)
}
