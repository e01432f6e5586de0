package common

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	commonconfig "github.com/G-Research/qfactor/internal/common/config"
	"github.com/G-Research/qfactor/internal/common/serve"
)

const EnvPrefix = "QFACTOR"

// LoadConfig reads config.yaml from defaultPath and merges each of overrideConfigs over it, in order.
// Environment variables prefixed with QFACTOR_ (nested keys joined with _) override the files, and any
// flag in flags that was set on the command line overrides everything. flags maps config keys to flags
// and may be nil.
func LoadConfig(config interface{}, defaultPath string, overrideConfigs []string, flags map[string]*pflag.Flag) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultPath)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "reading default config from %s", defaultPath)
	}
	log.Debugf("Read default config from %s", v.ConfigFileUsed())

	for _, overrideConfig := range overrideConfigs {
		v.SetConfigFile(overrideConfig)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "merging config from %s", overrideConfig)
		}
		log.Infof("Merged config from %s", overrideConfig)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for key, flag := range flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "binding flag %s to %s", flag.Name, key)
		}
	}

	if err := v.Unmarshal(config, commonconfig.CustomHooks...); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// UserConfigFile returns the path of name inside the user's home directory and whether that file exists.
func UserConfigFile(name string) (string, bool, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", false, errors.Wrap(err, "finding home directory")
	}
	path := filepath.Join(home, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return path, false, nil
		}
		return path, false, errors.WithStack(err)
	}
	return path, true, nil
}

// ServeMetrics exposes the default prometheus registry on /metrics until ctx is done. A port of zero
// disables the server and returns immediately.
func ServeMetrics(ctx context.Context, port uint16) error {
	if port == 0 {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Infof("Serving metrics on :%d/metrics", port)
	return serve.ListenAndServe(ctx, server)
}
