package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"polship/internal/dirs"
)

// Init wires Viper with config paths, env, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		_ = dirs.Ensure(cfgDir)
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: POLSHIP_*
	viper.SetEnvPrefix("POLSHIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Bind root persistent flags to Viper keys
	_ = viper.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("entity", root.PersistentFlags().Lookup("entity"))
	_ = viper.BindPFlag("verbosity", root.PersistentFlags().Lookup("verbosity"))
	_ = viper.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))

	// Read config file if present (ignore not found)
	_ = viper.ReadInConfig()

	return nil
}
