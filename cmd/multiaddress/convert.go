package main

import (
	"fmt"

	"github.com/mowind/multiaddress-go/internal/address"
	"github.com/spf13/cobra"
)

// newConvertCmd 创建 to-evm、from-evm、convert 这类逐个转换参数的命令
func newConvertCmd(a *app, use, short string, direction address.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ADDRESS...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convert, err := direction.Func()
			if err != nil {
				return err
			}

			failed := 0
			for _, arg := range args {
				out, err := convert(arg)
				a.logger.LogConversion(string(direction), arg, out, err)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", arg, err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}

			return failures(failed, len(args))
		},
	}
}

// newValidateCmd 创建 validate 命令：输出格式与校验和结论，存在无效地址时返回错误
func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate ADDRESS...",
		Short: "Report format and checksum status of addresses",
		Long: `validate prints one line per address:

  INPUT<TAB>FORMAT<TAB>valid<TAB>CHECKSUM
  INPUT<TAB>FORMAT<TAB>invalid<TAB>ERROR

FORMAT is evm, exchange or bare. CHECKSUM is eip55 when the body carries a
correct EIP-55 casing, none when the body is single-case, and mismatch when
mixed case does not match EIP-55. With --strict a mismatch counts as invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, err := cmd.Flags().GetBool("strict")
			if err != nil {
				return err
			}

			failed := 0
			for _, arg := range args {
				line, ok := validateLine(arg, strict)
				if !ok {
					failed++
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if failed > 0 {
				a.logger.Warnw("Validation failed", "invalid", failed, "total", len(args))
			}
			return failures(failed, len(args))
		},
	}
}

// validateLine 生成单个地址的校验结果行
func validateLine(input string, strict bool) (string, bool) {
	format := address.Detect(input)

	if _, err := address.Normalize(input); err != nil {
		return fmt.Sprintf("%s\t%s\tinvalid\t%v", input, format, err), false
	}

	verdict := "none"
	switch err := address.VerifyChecksum(input); {
	case err != nil:
		if strict {
			return fmt.Sprintf("%s\t%s\tinvalid\t%v", input, format, err), false
		}
		verdict = "mismatch"
	case address.IsChecksummed(input):
		verdict = "eip55"
	}

	return fmt.Sprintf("%s\t%s\tvalid\t%s", input, format, verdict), true
}

// failures 在存在失败项时返回汇总错误
func failures(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d addresses failed", failed, total)
}
