package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPlayCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start a game against the computer",
		Long: `Opens the game screen. Press g, c or p (or 1, 2, 3) for rock, scissors
or paper, then an arrow key to point or to turn your face. r resets the score, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			g, err := newGame(s, nil)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), g)
		},
	}
}
