package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mowind/multiaddress-go/internal/address"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Convert one address per line from a file or stdin",
		Long: `batch reads one address per line, skipping blank lines, and writes

  INPUT<TAB>OUTPUT
  INPUT<TAB>ERROR: MESSAGE

in input order. Conversions run on --batch-workers goroutines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd)
		},
	}
}

func (a *app) runBatch(cmd *cobra.Command) (err error) {
	start := time.Now()
	defer func() { a.logger.LogOperation("batch", start, err) }()

	dirFlag, _ := cmd.Flags().GetString("direction")
	direction, err := address.ParseDirection(dirFlag)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		in = f
	}

	inputs, err := readLines(in)
	if err != nil {
		return err
	}

	results, err := address.ConvertBatch(cmd.Context(), direction, inputs, a.cfg.Batch.Workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output: %w", cerr)
			}
		}()
		out = f
	}

	w := bufio.NewWriter(out)
	failed := 0
	for _, res := range results {
		a.logger.LogConversion(string(direction), res.Input, res.Output, res.Err)
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\tERROR: %v\n", res.Input, res.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", res.Input, res.Output)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	a.logger.Infow("Batch conversion finished", "direction", string(direction), "total", len(results), "failed", failed)
	return failures(failed, len(results))
}

// readLines 读取非空行，去除首尾空白
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
