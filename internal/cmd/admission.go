package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stellium/stellium/internal/config"
	"github.com/stellium/stellium/internal/output"
)

var admissionCmd = &cobra.Command{
	Use:   "admission",
	Short: "Inspect request admission budgets",
}

var (
	admissionClassesOutput string
	admissionClassesOut    string
	admissionClassesOutDir string
)

var admissionClassesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the effective admission classes",
	Long: `List the effective admission classes after merging built-in defaults
with the config file and environment overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(admissionClassesOutput)
		if err != nil {
			return err
		}

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		rows := make([]output.AdmissionClassRow, 0, len(cfg.Admission.Classes))
		for name, class := range cfg.Admission.Classes {
			rows = append(rows, output.AdmissionClassRow{
				Name:   name,
				Limit:  class.Limit,
				Window: class.Window,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

		outPath := strings.TrimSpace(admissionClassesOut)
		outDir := strings.TrimSpace(admissionClassesOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}

		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("admission.classes.%s", outputExtension(format)))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(sink.writer, string(payload))
			return err
		}

		_, err = fmt.Fprintln(sink.writer, output.RenderAdmissionClasses(rows))
		return err
	},
}

func init() {
	admissionClassesCmd.Flags().StringVar(&admissionClassesOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	admissionClassesCmd.Flags().StringVar(&admissionClassesOut, "out", "", "Write output to a file (default stdout)")
	admissionClassesCmd.Flags().StringVar(&admissionClassesOutDir, "out-dir", "", "Write output to a directory")

	admissionCmd.AddCommand(admissionClassesCmd)
	rootCmd.AddCommand(admissionCmd)
}
