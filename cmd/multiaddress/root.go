package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mowind/multiaddress-go/internal/address"
	"github.com/mowind/multiaddress-go/internal/config"
	apperrors "github.com/mowind/multiaddress-go/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app 保存一次命令执行的配置来源
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  apperrors.Logger
}

// Execute 执行根命令
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd 创建根命令及全部子命令
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "multiaddress",
		Short: "Convert EVM addresses between 0x and XKO forms",
		Long: `multiaddress converts 20-byte EVM account addresses between the
0x-prefixed EIP-55 form and the XKO-prefixed exchange form.

Both forms carry the same EIP-55 checksummed body. Conversion accepts any
input casing. The serve command exposes the same conversions over JSON-RPC.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// 全局标志
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.multiaddress.yaml)")
	mustRegister(rootCmd, rootCmd.PersistentFlags(), globalFlags)

	serveCmd := newServeCmd(a)
	mustRegister(serveCmd, serveCmd.Flags(), serveFlags)

	batchCmd := newBatchCmd(a)
	mustRegister(batchCmd, batchCmd.Flags(), batchFlags)

	validateCmd := newValidateCmd(a)
	mustRegister(validateCmd, validateCmd.Flags(), validateFlags)

	rootCmd.AddCommand(
		newConvertCmd(a, "to-evm", "Convert addresses to the 0x EIP-55 form", address.DirectionToEvm),
		newConvertCmd(a, "from-evm", "Convert 0x or bare addresses to the XKO form", address.DirectionFromEvm),
		newConvertCmd(a, "convert", "Convert each address to the other form", address.DirectionConvert),
		validateCmd,
		batchCmd,
		serveCmd,
		newVersionCmd(),
	)

	return rootCmd
}

// mustRegister 注册标志，失败属于程序错误
func mustRegister(cmd *cobra.Command, fs *pflag.FlagSet, table []Flag) {
	if err := registerFlags(cmd, fs, table); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register flags: %v\n", err)
		os.Exit(1)
	}
}

// setup 读取配置文件与环境变量，绑定标志，加载并验证配置，创建日志器
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.initConfig(cmd); err != nil {
		return err
	}
	if err := bindFlags(cmd, a.v); err != nil {
		return err
	}

	var cfg config.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "configuration error")
	}
	a.cfg = &cfg

	logger, err := apperrors.NewLogger(&apperrors.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stderr",
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "failed to create logger")
	}
	logger.GetUnderlying().SetOutput(cmd.ErrOrStderr())
	a.logger = logger.WithOperation(cmd.Name())
	return nil
}

// initConfig 初始化配置来源
func (a *app) initConfig(cmd *cobra.Command) error {
	v := a.v
	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".multiaddress")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("MULTIADDRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		// 显式指定的配置文件必须可读
		if a.cfgFile != "" {
			return apperrors.Wrapf(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "failed to read config file %s", a.cfgFile)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return apperrors.Wrap(err, apperrors.ErrorTypeConfig, apperrors.ErrConfig.Code, "failed to read config file")
		}
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", v.ConfigFileUsed())
	return nil
}
