package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agrodesk/adapters/excel"
	"agrodesk/domain/core"
	"agrodesk/internal/report"
	"agrodesk/internal/statistics"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	anovaFile  string
	anovaAlpha float64
)

var anovaCmd = &cobra.Command{
	Use:   "anova",
	Short: "Run descriptive statistics, ANOVA and Tukey HSD on a data file",
	Long: `Run descriptive statistics, one-way ANOVA and Tukey HSD on a data file.

YAML and JSON files hold a groups map, an optional order and an optional alpha:

  groups:
    Control: [4, 5, 6]
    Fungicide: [10, 11, 12]
  order: [Control, Fungicide]

CSV and XLSX files hold one column per group with the label in the header row.`,
	RunE: runANOVA,
}

func init() {
	anovaCmd.Flags().StringVarP(&anovaFile, "file", "f", "", "groups file (.yaml, .yml, .json, .csv or .xlsx)")
	anovaCmd.Flags().Float64Var(&anovaAlpha, "alpha", 0, "significance level (default 0.05 or the file's alpha)")
	_ = anovaCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(anovaCmd)
}

// groupsFile is the YAML/JSON layout read by the anova command
type groupsFile struct {
	Groups map[string][]float64 `yaml:"groups"`
	Order  []string             `yaml:"order"`
	Alpha  float64              `yaml:"alpha"`
}

// loadGroups reads groups from path and returns them with the file's
// alpha (0 when absent) and the number of cells skipped
func loadGroups(path string) (statistics.Groups, float64, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		table, err := excel.NewDataReader(path).ReadData()
		if err != nil {
			return nil, 0, 0, err
		}
		groups, skipped := table.Groups()
		return groups, 0, skipped, nil
	case ".yaml", ".yml", ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var f groupsFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, 0, 0, fmt.Errorf("%w: %s: %v", core.ErrInvalidInput, path, err)
		}
		if len(f.Groups) == 0 {
			return nil, 0, 0, fmt.Errorf("%w: %s has no groups", core.ErrInvalidInput, path)
		}
		return statistics.GroupsFromMap(f.Groups, f.Order), f.Alpha, 0, nil
	}
	return nil, 0, 0, fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidInput, filepath.Ext(path))
}

func runANOVA(cmd *cobra.Command, args []string) error {
	groups, alpha, skipped, err := loadGroups(anovaFile)
	if err != nil {
		return err
	}
	if anovaAlpha > 0 {
		alpha = anovaAlpha
	}
	result, err := statistics.Analyze(groups, alpha)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(report.StatisticsMarkdown(filepath.Base(anovaFile), skipped, result))
	return err
}
