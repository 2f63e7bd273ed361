package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"attimuite/internal/domain"
	"attimuite/internal/i18n"
	"attimuite/internal/ports"
	"attimuite/internal/score"
)

func newScoreCmd(v *viper.Viper) *cobra.Command {
	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Show or reset the saved score",
	}

	scoreCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			sc, err := scoreStore(s).Load(cmd.Context())
			if err != nil && !errors.Is(err, score.ErrNotFound) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatScore(i18n.Default(), s.Language, sc))
			return nil
		},
	})

	scoreCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Zero the saved score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			if err := scoreStore(s).Save(cmd.Context(), domain.Score{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatScore(i18n.Default(), s.Language, domain.Score{}))
			return nil
		},
	})

	return scoreCmd
}

// scoreStore returns the file store, mirrored to a second file when configured.
func scoreStore(s Settings) ports.ScoreStore {
	local := score.NewFileStore(s.ScoreFile)
	if s.ScoreMirror == "" {
		return local
	}
	return score.Mirror{Local: local, Remote: score.NewFileStore(s.ScoreMirror)}
}

func formatScore(catalog *i18n.Catalog, lang string, sc domain.Score) string {
	return fmt.Sprintf("%s  %s %d - %d %s",
		catalog.Lookup("ui.score", lang),
		catalog.Lookup("ui.you", lang), sc.Player,
		sc.CPU, catalog.Lookup("ui.cpu", lang))
}
