package main

import (
	"fmt"

	"github.com/mowind/multiaddress-go/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag 定义命令行标志
type Flag struct {
	Name         string
	DefaultValue interface{}
	Description  string
	BindTo       string // viper 键名
	Required     bool
}

// globalFlags 所有子命令共享的标志
var globalFlags = []Flag{
	{
		Name:         "log-level",
		DefaultValue: config.DefaultLogLevel,
		Description:  "Log level (debug, info, warn, error, fatal)",
		BindTo:       "log.level",
	},
	{
		Name:         "log-format",
		DefaultValue: config.DefaultLogFormat,
		Description:  "Log format (text, json)",
		BindTo:       "log.format",
	},
}

// serveFlags serve 命令的标志
var serveFlags = []Flag{
	// HTTP 服务器配置
	{
		Name:         "http-host",
		DefaultValue: config.DefaultHTTPHost,
		Description:  "HTTP server host",
		BindTo:       "http.host",
	},
	{
		Name:         "http-port",
		DefaultValue: config.DefaultHTTPPort,
		Description:  "HTTP server port",
		BindTo:       "http.port",
	},
	{
		Name:         "http-max-request-size-mb",
		DefaultValue: config.DefaultMaxRequestSizeMB,
		Description:  "Maximum JSON-RPC request body size in MB",
		BindTo:       "http.max-request-size-mb",
	},

	// 认证配置
	{
		Name:         "auth-enabled",
		DefaultValue: false,
		Description:  "Require a shared secret (Bearer token or X-API-Key)",
		BindTo:       "auth.enabled",
	},
	{
		Name:         "auth-secret",
		DefaultValue: "",
		Description:  "Shared secret used when auth is enabled",
		BindTo:       "auth.secret",
	},
	{
		Name:         "auth-whitelist",
		DefaultValue: config.DefaultAuthWhitelist,
		Description:  "Paths served without authentication",
		BindTo:       "auth.whitelist",
	},

	// 批量配置
	{
		Name:         "batch-workers",
		DefaultValue: config.DefaultBatchWorkers,
		Description:  "Concurrent conversions per batch",
		BindTo:       "batch.workers",
	},
	{
		Name:         "batch-max-size",
		DefaultValue: config.DefaultBatchMaxSize,
		Description:  "Maximum requests or addresses in one JSON-RPC batch",
		BindTo:       "batch.max-size",
	},
}

// batchFlags batch 命令的标志
var batchFlags = []Flag{
	{
		Name:         "direction",
		DefaultValue: "",
		Description:  "Conversion direction (to-evm, from-evm, convert)",
		Required:     true,
	},
	{
		Name:         "input",
		DefaultValue: "",
		Description:  "Input file with one address per line (default stdin)",
	},
	{
		Name:         "output",
		DefaultValue: "",
		Description:  "Output file (default stdout)",
	},
	{
		Name:         "batch-workers",
		DefaultValue: config.DefaultBatchWorkers,
		Description:  "Concurrent conversions",
		BindTo:       "batch.workers",
	},
}

// validateFlags validate 命令的标志
var validateFlags = []Flag{
	{
		Name:         "strict",
		DefaultValue: false,
		Description:  "Treat mixed-case addresses with a wrong EIP-55 checksum as invalid",
	},
}

// registerFlags 在 fs 上注册标志
func registerFlags(cmd *cobra.Command, fs *pflag.FlagSet, table []Flag) error {
	for _, flag := range table {
		// 根据类型添加标志
		switch v := flag.DefaultValue.(type) {
		case string:
			fs.String(flag.Name, v, flag.Description)
		case int:
			fs.Int(flag.Name, v, flag.Description)
		case bool:
			fs.Bool(flag.Name, v, flag.Description)
		case []string:
			fs.StringSlice(flag.Name, v, flag.Description)
		default:
			return fmt.Errorf("unsupported flag type: %T for flag %s", v, flag.Name)
		}

		// 标记必需标志
		if flag.Required {
			if err := cmd.MarkFlagRequired(flag.Name); err != nil {
				return fmt.Errorf("failed to mark flag %s required: %w", flag.Name, err)
			}
		}
	}

	return nil
}

// bindFlags 把当前命令可见的标志绑定到 viper。
//
// 绑定在命令执行前进行，不同子命令的同名键互不覆盖。
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for _, table := range [][]Flag{globalFlags, serveFlags, batchFlags} {
		for _, flag := range table {
			if flag.BindTo == "" {
				continue
			}
			f := cmd.Flags().Lookup(flag.Name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(flag.BindTo, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
			}
		}
	}
	return nil
}
