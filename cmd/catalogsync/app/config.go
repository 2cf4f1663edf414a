package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Sync configuration
	Project     string
	SheetID     string
	Credentials string
	Datasets    metadata.Datasets
	Layout      sheets.Layout

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or .catalogsync.yaml in $HOME or .)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.NewConfigError("env", "failed to bind environment variables", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".catalogsync")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit config file must exist; a searched one is optional.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("file", "failed to read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Project:     v.GetString("project"),
		SheetID:     v.GetString("sheet_id"),
		Credentials: v.GetString("credentials"),
		Datasets:    parseDatasets(v.GetStringSlice("datasets")),
		Layout: sheets.Layout{
			TableWorksheetID:        v.GetInt64("table_worksheet_id"),
			ColumnSheetPrefix:       v.GetString("column_sheet_prefix"),
			TableKeyHeader:          v.GetString("headers.table_key"),
			TableDescriptionHeader:  v.GetString("headers.table_description"),
			TableStatusHeader:       v.GetString("headers.table_status"),
			ColumnNameHeader:        v.GetString("headers.column_name"),
			ColumnDescriptionHeader: v.GetString("headers.column_description"),
		}.WithDefaults(),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	layout := sheets.DefaultLayout()
	v.SetDefault("table_worksheet_id", layout.TableWorksheetID)
	v.SetDefault("column_sheet_prefix", layout.ColumnSheetPrefix)
	v.SetDefault("headers.table_key", layout.TableKeyHeader)
	v.SetDefault("headers.table_description", layout.TableDescriptionHeader)
	v.SetDefault("headers.table_status", layout.TableStatusHeader)
	v.SetDefault("headers.column_name", layout.ColumnNameHeader)
	v.SetDefault("headers.column_description", layout.ColumnDescriptionHeader)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// bindEnv binds the keys whose environment names do not follow the
// automatic key mapping.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"project":     constants.EnvProject,
		"sheet_id":    constants.EnvSheetID,
		"credentials": constants.EnvCredentials,
		"datasets":    constants.EnvDatasets,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env, "CATALOGSYNC_"+strings.ToUpper(key)); err != nil {
			return err
		}
	}
	return nil
}

// parseDatasets accepts both a YAML list and comma-separated strings.
func parseDatasets(values []string) metadata.Datasets {
	var names []string
	for _, value := range values {
		names = append(names, strings.Split(value, ",")...)
	}
	return metadata.NewDatasets(names...)
}

// UpdateFromFlags overrides config values with the flags that were set on
// the command line, so they take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case "verbose":
			c.Verbose = value == "true"
		case "quiet":
			c.Quiet = value == "true"
		case "no-color":
			c.NoColor = value == "true"
		case "format":
			c.Format = value
		case "log-level":
			c.LogLevel = value
		case "project":
			c.Project = value
		case "sheet-id":
			c.SheetID = value
		case "credentials":
			c.Credentials = value
		case "datasets":
			c.Datasets = metadata.ParseDatasets(value)
		}
	})
}

// Validate checks that everything a sync needs is configured.
func (c *Config) Validate() error {
	switch {
	case c.Project == "":
		return errors.NewValidationError("project", c.Project,
			"is required (set --project or "+constants.EnvProject+")")
	case c.SheetID == "":
		return errors.NewValidationError("sheet_id", c.SheetID,
			"is required (set --sheet-id or "+constants.EnvSheetID+")")
	case len(c.Datasets) == 0:
		return errors.NewValidationError("datasets", "",
			"at least one dataset is required (set --datasets or "+constants.EnvDatasets+")")
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first because godotenv never overrides a variable
// that is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
