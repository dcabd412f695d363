package config

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/sofmeright/bandbox/src/errors"
)

func loadIn(t *testing.T, dir string, flags *pflag.FlagSet) (*Config, error) {
	t.Helper()
	t.Setenv(EnvConfigFile, "")
	return Load(LoadOptions{Dir: dir, Flags: flags, SkipUserConfig: true})
}

func TestDefaults(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Rules.MaxFiles)
	assert.Equal(t, 50, cfg.Rules.MaxNameLength)
	assert.Equal(t, 2, cfg.Rules.MaxPeriods)
	assert.False(t, cfg.Rules.IncludeRoot)
	assert.Equal(t, FormatText, cfg.Report.Format)
	assert.Equal(t, 5, cfg.Report.SummariseSize)
	assert.True(t, cfg.Report.ShowFileCounts)
	assert.Contains(t, cfg.Rules.KnownExtensions, "mrc")
	assert.Empty(t, cfg.Rules.Disabled)

	_, err = Compile(cfg)
	require.NoError(t, err)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bandbox.yml"), []byte(`
rules:
  max_files: 10
  max_periods: 4
report:
  summarise: true
`), 0o644))

	t.Setenv("BANDBOX_RULES__MAX_PERIODS", "7")
	t.Setenv("BANDBOX_RULES__DISABLED", "non-ascii, mixed-case")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("summarise-size", 5, "")
	flags.Bool("hide-file-counts", false, "")
	flags.Bool("unbound", false, "")
	BindFlag(flags, "summarise-size", "report.summarise_size")
	BindInverseFlag(flags, "hide-file-counts", "report.show_file_counts")
	require.NoError(t, flags.Parse([]string{"--summarise-size=3", "--hide-file-counts", "--unbound"}))

	cfg, err := loadIn(t, dir, flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".bandbox.yml"), cfg.File)
	assert.Equal(t, 10, cfg.Rules.MaxFiles, "file overrides defaults")
	assert.Equal(t, 7, cfg.Rules.MaxPeriods, "env overrides file")
	assert.Equal(t, []string{"non-ascii", "mixed-case"}, cfg.Rules.Disabled)
	assert.True(t, cfg.Report.Summarise)
	assert.Equal(t, 3, cfg.Report.SummariseSize, "flag overrides defaults")
	assert.False(t, cfg.Report.ShowFileCounts, "inverse flag")
	assert.Equal(t, 50, cfg.Rules.MaxNameLength, "untouched default")
}

func TestUnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bandbox.yml"), []byte("report:\n  summarise_size: 9\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("summarise-size", 5, "")
	BindFlag(flags, "summarise-size", "report.summarise_size")
	require.NoError(t, flags.Parse(nil))

	cfg, err := loadIn(t, dir, flags)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Report.SummariseSize)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rules]\nmax_name_length = 12\nknown_extensions = [\"dat\"]\n"), 0o644))

	cfg, err := Load(LoadOptions{File: path, Dir: dir, SkipUserConfig: true})
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Rules.MaxNameLength)
	assert.Equal(t, []string{"dat"}, cfg.Rules.KnownExtensions, "lists replace, not merge")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yml"), SkipUserConfig: true})
		assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrConfigLoad))
	})

	t.Run("missing env file", func(t *testing.T) {
		t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nope.yml"))
		_, err := Load(LoadOptions{Dir: t.TempDir(), SkipUserConfig: true})
		assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrConfigLoad))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".bandbox.yml"), []byte("rules: [\n"), 0o644))
		_, err := loadIn(t, dir, nil)
		assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrConfigLoad))
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"bad format", "report:\n  format: xml\n"},
		{"bad summarise size", "report:\n  summarise_size: 0\n"},
		{"bad constraint", "requires: \"not a constraint\"\n"},
		{"bad type", "rules:\n  max_files: lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ".bandbox.yml"), []byte(tt.yaml), 0o644))
			_, err := loadIn(t, dir, nil)
			assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrConfigInvalid), "got %v", err)
		})
	}
}

func TestCompileValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"negative max files", func(c *Config) { c.Rules.MaxFiles = -1 }, "rules.max_files"},
		{"zero name length", func(c *Config) { c.Rules.MaxNameLength = 0 }, "rules.max_name_length"},
		{"negative periods", func(c *Config) { c.Rules.MaxPeriods = -1 }, "rules.max_periods"},
		{"empty extension", func(c *Config) { c.Rules.KnownExtensions = []string{"tif", " "} }, "rules.known_extensions"},
		{"unknown placeholder", func(c *Config) { c.Rules.DatePatterns = []string{"{week}"} }, "rules.date_patterns"},
		{"bad regex", func(c *Config) { c.Rules.DatePatterns = []string{"{year}("} }, "rules.date_patterns"},
		{"month without names", func(c *Config) {
			c.Rules.DatePatterns = []string{"{month}{year}"}
			c.Rules.MonthNames = nil
		}, "rules.date_patterns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)
			_, err = Compile(cfg)
			require.Error(t, err)
			var e *bberrors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, bberrors.ErrConfigInvalid, e.Code)
			assert.Equal(t, tt.key, e.Details["key"])
		})
	}
}

func compiled(t *testing.T) *Rules {
	t.Helper()
	cfg, err := Default()
	require.NoError(t, err)
	r, err := Compile(cfg)
	require.NoError(t, err)
	return r
}

func TestDatePatterns(t *testing.T) {
	r := compiled(t)
	matches := []string{
		"report-2000-12-31-final.txt",
		"report-31-Dec-2000.txt",
		"31.12.2000.tif",
		"scan_20001231.mrc",
		"DECEMBER 31 1999 notes.txt",
		"31-12-99.txt",
	}
	for _, name := range matches {
		assert.True(t, r.HasDate(name), name)
	}
	misses := []string{"report.txt", "run-123456789.tif", "grid-42.mrc", "v2.3.1.txt"}
	for _, name := range misses {
		assert.False(t, r.HasDate(name), name)
	}
}

func TestRuleQueries(t *testing.T) {
	r := compiled(t)

	assert.True(t, r.IsObviousName("Folder"))
	assert.True(t, r.IsObviousName("DATASETS"))
	assert.False(t, r.IsObviousName("grids"))

	assert.True(t, r.HasAccession("file-EMPIAR-10001.tif"))
	assert.False(t, r.HasAccession("file-empiar-10001.tif"), "accessions are case-sensitive")

	assert.True(t, r.HasOddChar("a b"))
	assert.True(t, r.HasOddChar("what?"))
	assert.False(t, r.HasOddChar("plain_name-1.tif"))

	assert.True(t, r.HasExternalRef("Figure5.jpg"))
	assert.True(t, r.HasExternalRef("supplementary-figure3a.jpg"))
	assert.False(t, r.HasExternalRef("grid1.mrc"))

	assert.True(t, r.IsKnownExtension("TIF"))
	assert.True(t, r.IsKnownExtension("tar.gz"))
	assert.False(t, r.IsKnownExtension("dog"))
}

func TestCheckConstraint(t *testing.T) {
	v := semver.MustParse("1.2.0")
	assert.NoError(t, checkConstraint(">= 1.0.0", v))
	err := checkConstraint(">= 2.0.0", v)
	assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrConfigInvalid))

	cfg := &Config{}
	assert.NoError(t, cfg.CheckRequires())
	cfg.Requires = ">= 99.0.0"
	assert.NoError(t, cfg.CheckRequires(), "dev builds satisfy every constraint")
}

func TestFetchKnownExtensions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"pipe separated", `{"file_formats": "jpg|jpeg|mrc|mrcs"}`, []string{"jpg", "jpeg", "mrc", "mrcs"}},
		{"list", `{"file_formats": ["star", " eer "]}`, []string{"star", "eer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			got, err := FetchKnownExtensions(context.Background(), srv.Client(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()
		_, err := FetchKnownExtensions(context.Background(), nil, srv.URL)
		assert.ErrorContains(t, err, "404")
	})

	t.Run("missing field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()
		_, err := FetchKnownExtensions(context.Background(), nil, srv.URL)
		assert.ErrorContains(t, err, "file_formats")
	})
}

func TestMergeKnownExtensions(t *testing.T) {
	cfg := &Config{Rules: RulesConfig{KnownExtensions: []string{"tif", "MRC"}}}
	cfg.MergeKnownExtensions([]string{"mrc", "star", "star"})
	assert.Equal(t, []string{"tif", "MRC", "star"}, cfg.Rules.KnownExtensions)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	for _, syntax := range []string{"yaml", "toml"} {
		t.Run(syntax, func(t *testing.T) {
			data, err := Marshal(cfg, syntax)
			require.NoError(t, err)

			dir := t.TempDir()
			path := filepath.Join(dir, "config."+syntax)
			require.NoError(t, os.WriteFile(path, data, 0o644))

			got, err := Load(LoadOptions{File: path, Dir: dir, SkipUserConfig: true})
			require.NoError(t, err)
			got.File = ""
			assert.Equal(t, cfg, got)
		})
	}

	_, err = Marshal(cfg, "ini")
	assert.Error(t, err)
}
