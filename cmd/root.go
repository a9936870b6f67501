// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
	"github.com/xkilldash9x/honeybadger-loader/internal/observability"
)

const (
	envPrefix      = "HBLOADER"
	configName     = "config"
	userConfigDir  = ".honeybadger"
	appServiceName = "honeybadger-loader"
)

// app carries state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func (a *app) logger() *zap.Logger {
	return observability.GetLogger()
}

// NewRootCommand builds a fresh command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:           "honeybadger-loader",
		Short:         "Loads reported errors back from Honeybadger.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initializeConfig(); err != nil {
				return err
			}
			observability.Initialize(a.cfg.Logger(), zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
			a.logger().Debug("Starting honeybadger-loader", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.honeybadger/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newFetchCmd(a),
		newLocateCmd(a),
		newServerDetailsCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command with ctx and logs any failure.
func Execute(ctx context.Context) error {
	defer observability.Sync()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
		}
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// initializeConfig reads the config file and environment into a.v and
// builds the validated configuration.
func (a *app) initializeConfig() error {
	v := a.v
	if a.cfgFile != "" {
		path, err := homedir.Expand(a.cfgFile)
		if err != nil {
			return fmt.Errorf("could not expand config path %q: %w", a.cfgFile, err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, userConfigDir))
		}
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	if cfg.LoggerCfg.ServiceName == "" {
		cfg.LoggerCfg.ServiceName = appServiceName
	}
	a.cfg = cfg
	return nil
}

// provider answers environment and property lookups from this command's viper.
func (a *app) provider() config.Provider {
	return config.NewProvider(a.v)
}

// ExitCode maps an Execute error to a process exit status. Interrupts exit cleanly.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}
