package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	canvasbackend "github.com/ByLCY/twips/backend/canvas"
	"github.com/ByLCY/twips/binding"
	"github.com/ByLCY/twips/config"
	"github.com/ByLCY/twips/docx"
	"github.com/ByLCY/twips/dsl"
	"github.com/ByLCY/twips/metrics"
	"github.com/ByLCY/twips/report"
)

type measureOptions struct {
	json     bool
	out      string
	dataPath string
	unit     string
}

func newMeasureCmd() *cobra.Command {
	opts := &measureOptions{}
	cmd := &cobra.Command{
		Use:   "measure <file.docx|file.runs>",
		Short: "Estimate the width of every run in a document or run script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			switch opts.unit {
			case "", report.UnitPoints, report.UnitPixels:
			default:
				return fmt.Errorf("不支持的单位 %q (可选 pt 或 px)", opts.unit)
			}

			prog := newProgress(logger)
			entries, err := loadEntries(args[0], logger)
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if opts.dataPath != "" {
				if entries, err = bindEntries(entries, opts.dataPath, logger); err != nil {
					return err
				}
			}

			est := metrics.NewEstimator(newBackend(cfg, logger), metrics.WithLogger(logger))
			rep, err := report.Build(ctx, args[0], est, entries, report.Options{Unit: opts.unit})
			if err != nil {
				return fmt.Errorf("估算失败: %w", err)
			}
			prog.done("Measured runs", "runs", len(rep.Rows), "twips", rep.TotalTwips)
			if len(rep.UnknownFonts) > 0 {
				logger.Warn("fonts not available", "families", strings.Join(rep.UnknownFonts, ","))
			}

			if opts.out != "" {
				if err := report.WriteJSON(rep, opts.out); err != nil {
					return fmt.Errorf("写入报告失败: %w", err)
				}
				logger.Info("Wrote report", "path", opts.out)
				return nil
			}
			if opts.json || cfg.Output == config.OutputJSON {
				return rep.Encode(cmd.OutOrStdout())
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the JSON report to a file")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "JSON file bound to ${...} placeholders in run text")
	cmd.Flags().StringVar(&opts.unit, "unit", "", "also measure each run's bare text once, in pt or px")
	return cmd
}

func newBackend(cfg config.Config, logger *log.Logger) *canvasbackend.Backend {
	return canvasbackend.NewWithOptions(canvasbackend.Options{
		Dirs:   cfg.FontDirs,
		Logger: logger,
	})
}

// loadEntries reads runs from a DOCX package or, for any other extension, a
// run script.
func loadEntries(path string, logger *log.Logger) ([]report.Entry, error) {
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		r, err := docx.Open(path)
		if err != nil {
			return nil, fmt.Errorf("无法打开文档 %s: %w", path, err)
		}
		defer r.Close()

		infos := r.Runs()
		entries := make([]report.Entry, len(infos))
		for i, info := range infos {
			entries[i] = report.Entry{
				Location: fmt.Sprintf("p%d/r%d", info.Paragraph, info.Index),
				Run:      info.Run,
			}
		}
		logger.Debug("document loaded", "paragraphs", r.ParagraphCount(), "runs", len(entries))
		return entries, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开脚本 %s: %w", path, err)
	}
	defer file.Close()

	script, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析脚本失败: %w", err)
	}
	entries := make([]report.Entry, len(script.Decls))
	for i, d := range script.Decls {
		entries[i] = report.Entry{
			Location: fmt.Sprintf("line %d", d.Pos.Line),
			Run:      d.Run(),
		}
	}
	logger.Debug("script loaded", "runs", len(entries))
	return entries, nil
}

func bindEntries(entries []report.Entry, dataPath string, logger *log.Logger) ([]report.Entry, error) {
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("读取绑定数据失败: %w", err)
	}
	b, err := binding.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	runs := make([]metrics.Run, len(entries))
	for i, e := range entries {
		runs[i] = e.Run
	}
	for i, r := range b.Runs(runs) {
		entries[i].Run = r
	}
	if missing := b.Missing(); len(missing) > 0 {
		logger.Warn("unresolved placeholders", "paths", strings.Join(missing, ","))
	}
	return entries, nil
}
