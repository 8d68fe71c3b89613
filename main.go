// Command gabornoise presents a dynamic Gabor noise stimulus: a Gabor
// target embedded in sparse Gabor noise that evolves over time.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"gabornoise/internal/config"
	"gabornoise/internal/gpu"
	"gabornoise/internal/observability"
	"gabornoise/internal/params"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

func init() {
	runtime.LockOSThread() // GL calls must stay on the main thread
}

// host carries what every subcommand needs after config is loaded.
type host struct {
	configFile string
	sets       map[string]string
	v          *viper.Viper
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd(h *host) *cobra.Command {
	root := &cobra.Command{
		Use:           "gabornoise",
		Short:         params.Description,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return h.initialize()
		},
	}
	root.PersistentFlags().StringVarP(&h.configFile, "config", "c", "", "config file (default ./gabornoise.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	h.v = config.New()
	root.AddCommand(newRunCmd(h), newParamsCmd(h), newVersionCmd())
	return root
}

// initialize reads the config file, applies flag overrides and sets up
// logging.
func (h *host) initialize() error {
	if h.configFile != "" {
		h.v.SetConfigFile(h.configFile)
	} else {
		h.v.AddConfigPath(".")
		h.v.SetConfigName("gabornoise")
		h.v.SetConfigType("yaml")
	}
	if err := h.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := applySets(h.v, h.sets); err != nil {
		return err
	}
	cfg, err := config.NewConfigFromViper(h.v)
	if err != nil {
		return err
	}
	h.cfg = cfg
	observability.InitializeLogger(cfg.Logger)
	h.logger = observability.GetLogger()
	h.logger.Debug("Configuration loaded",
		zap.String("config_file", h.v.ConfigFileUsed()),
		zap.String("version", Version))
	return nil
}

// applySets writes name=value pairs into the stimulus section.
func applySets(v *viper.Viper, sets map[string]string) error {
	for name, raw := range sets {
		if _, ok := params.Lookup(name); !ok {
			return fmt.Errorf("--set %s: %w", name, params.ErrInvalid)
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("--set %s=%s: %w", name, raw, err)
		}
		v.Set("stimulus."+name, f)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", params.DisplayName, Version, params.Signature)
		},
	}
}

func main() {
	h := &host{}
	err := newRootCmd(h).Execute()
	observability.Sync()
	if err == nil {
		return
	}
	logger := h.logger
	if logger == nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if errors.Is(err, gpu.ErrShaderBuild) {
		logger.Fatal("Shader program could not be built", zap.Error(err))
	}
	logger.Error("Command failed", zap.Error(err))
	observability.Sync()
	os.Exit(1)
}
