package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/stellium/stellium/internal/core"
	"github.com/stellium/stellium/internal/observability"
)

var seedFile string

type seedProfile struct {
	DisplayName string         `yaml:"display_name"`
	BirthDate   string         `yaml:"birth_date"`
	SunSign     string         `yaml:"sun_sign"`
	Bio         string         `yaml:"bio"`
	IsPersona   bool           `yaml:"is_persona"`
	ExtraData   map[string]any `yaml:"extra_data"`
}

type seedDocument struct {
	Profiles []seedProfile `yaml:"profiles"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed profiles from a YAML file",
	Long: `Seed profiles from a YAML file. Intended for loading the persona
roster a fresh deployment starts with.

File format:

  profiles:
    - display_name: Luna
      birth_date: "1994-06-21"
      sun_sign: cancer
      bio: Moonchild with strong opinions about rising signs.
      is_persona: true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		var doc seedDocument
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}
		if len(doc.Profiles) == 0 {
			return fmt.Errorf("seed file contains no profiles")
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		created := 0
		for _, entry := range doc.Profiles {
			if strings.TrimSpace(entry.DisplayName) == "" {
				return fmt.Errorf("seed profile %d: display_name is required", created+1)
			}

			profile, err := db.CreateProfile(cmd.Context(), core.Profile{
				DisplayName: entry.DisplayName,
				BirthDate:   entry.BirthDate,
				SunSign:     entry.SunSign,
				Bio:         entry.Bio,
				IsPersona:   entry.IsPersona,
				ExtraData:   entry.ExtraData,
			})
			if err != nil {
				return fmt.Errorf("create profile %q: %w", entry.DisplayName, err)
			}

			observability.CLILogger.Info("Seeded profile",
				zap.String("id", profile.ID),
				zap.String("display_name", profile.DisplayName),
				zap.Bool("is_persona", profile.IsPersona))
			created++
		}

		personas, err := db.ListPersonas(cmd.Context())
		if err != nil {
			return fmt.Errorf("list personas: %w", err)
		}

		observability.CLILogger.Info("Seed complete",
			zap.Int("profiles", created),
			zap.Int("persona_roster", len(personas)),
			zap.String("file", seedFile))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file with profiles to seed")
	_ = seedCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(seedCmd)
}
