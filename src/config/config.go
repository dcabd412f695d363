// Package config loads, validates and compiles bandbox configuration.
package config

import (
	_ "embed"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultsTOML returns the embedded default configuration document.
func DefaultsTOML() []byte {
	return append([]byte(nil), defaultConfig...)
}

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the top-level bandbox configuration.
type Config struct {
	// Requires is an optional semver constraint the running binary must
	// satisfy, e.g. ">= 0.3.0".
	Requires string       `koanf:"requires" yaml:"requires" toml:"requires"`
	Rules    RulesConfig  `koanf:"rules" yaml:"rules" toml:"rules"`
	Report   ReportConfig `koanf:"report" yaml:"report" toml:"report"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-" yaml:"-" toml:"-"`
}

// RulesConfig holds the rule thresholds and vocabularies.
type RulesConfig struct {
	MaxFiles      int  `koanf:"max_files" yaml:"max_files" toml:"max_files"`
	MaxNameLength int  `koanf:"max_name_length" yaml:"max_name_length" toml:"max_name_length"`
	MaxPeriods    int  `koanf:"max_periods" yaml:"max_periods" toml:"max_periods"`
	IncludeRoot   bool `koanf:"include_root" yaml:"include_root" toml:"include_root"`

	ObviousNames []string `koanf:"obvious_names" yaml:"obvious_names" toml:"obvious_names"`

	// DatePatterns are regular expressions with {sep} {month} {day} {mm}
	// {year} and {yy} placeholders.
	DatePatterns []string `koanf:"date_patterns" yaml:"date_patterns" toml:"date_patterns"`
	DateInfixes  string   `koanf:"date_infixes" yaml:"date_infixes" toml:"date_infixes"`
	MonthNames   []string `koanf:"month_names" yaml:"month_names" toml:"month_names"`

	AccessionTokens   []string `koanf:"accession_tokens" yaml:"accession_tokens" toml:"accession_tokens"`
	OddChars          string   `koanf:"odd_chars" yaml:"odd_chars" toml:"odd_chars"`
	ExternalRefTokens []string `koanf:"external_ref_tokens" yaml:"external_ref_tokens" toml:"external_ref_tokens"`

	KnownExtensions []string `koanf:"known_extensions" yaml:"known_extensions" toml:"known_extensions"`
	// KnownExtensionsURL points at a JSON document whose file_formats field
	// extends KnownExtensions.
	KnownExtensionsURL string `koanf:"known_extensions_url" yaml:"known_extensions_url" toml:"known_extensions_url"`

	// Disabled lists rule IDs to skip.
	Disabled []string `koanf:"disabled" yaml:"disabled" toml:"disabled"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	Format         string `koanf:"format" yaml:"format" toml:"format"`
	Summarise      bool   `koanf:"summarise" yaml:"summarise" toml:"summarise"`
	SummariseSize  int    `koanf:"summarise_size" yaml:"summarise_size" toml:"summarise_size"`
	ShowFileCounts bool   `koanf:"show_file_counts" yaml:"show_file_counts" toml:"show_file_counts"`
	JUnit          string `koanf:"junit" yaml:"junit" toml:"junit"`
}
