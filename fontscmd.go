package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newFontsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List the font families available for measurement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			prog := newProgress(logger)
			families, err := newBackend(configFromContext(ctx), logger).Families()
			if err != nil {
				// 部分目录不可读时仍列出已找到的字体
				logger.Warn("font scan incomplete", "err", err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			prog.done("Scanned fonts", "families", len(families))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(families)
			}
			for _, f := range families {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the families as a JSON array")
	return cmd
}
