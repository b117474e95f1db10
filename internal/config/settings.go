package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys. Flags bind to these and TRACEHTTP_* variables override them,
// with '.' and '-' spelled as '_'.
const (
	KeyConnectTimeout = "timeout.connect"
	KeyOutput         = "output"
	KeyNoColor        = "no-color"
	KeyLogLevel       = "log-level"
	KeyInsecure       = "insecure"
	KeyServeAddr      = "serve.addr"
	KeyServeUser      = "serve.user"
	KeyServePassword  = "serve.password"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "tracehttp"

// Settings are the process-wide defaults read from flags, environment and
// the optional tracehttp.yaml.
type Settings struct {
	ConnectTimeout uint64
	Output         string
	NoColor        bool
	LogLevel       string
	Insecure       bool
	Serve          ServeSettings
}

// ServeSettings configure the HTTP front end.
type ServeSettings struct {
	Addr     string
	User     string
	Password string
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyConnectTimeout, 0)
	v.SetDefault(KeyOutput, "text")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyInsecure, false)
	v.SetDefault(KeyServeAddr, "127.0.0.1:7878")
	v.SetDefault(KeyServeUser, "")
	v.SetDefault(KeyServePassword, "")
}

// Init wires environment overrides and reads the config file. An explicit
// cfgFile must exist; otherwise a missing tracehttp.yaml is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tracehttp")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tracehttp"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Load reads the current settings out of v.
func Load(v *viper.Viper) Settings {
	return Settings{
		ConnectTimeout: v.GetUint64(KeyConnectTimeout),
		Output:         v.GetString(KeyOutput),
		NoColor:        v.GetBool(KeyNoColor),
		LogLevel:       v.GetString(KeyLogLevel),
		Insecure:       v.GetBool(KeyInsecure),
		Serve: ServeSettings{
			Addr:     v.GetString(KeyServeAddr),
			User:     v.GetString(KeyServeUser),
			Password: v.GetString(KeyServePassword),
		},
	}
}
