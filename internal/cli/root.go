// Package cli is the terminal client: cobra commands, viper settings and the TUI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Settings are the resolved client options from flags, env and the config file.
type Settings struct {
	GameConfig  string  `mapstructure:"game_config"`
	Language    string  `mapstructure:"language"`
	Voice       string  `mapstructure:"voice"`
	SpeechRate  float64 `mapstructure:"speech_rate"`
	ScoreFile   string  `mapstructure:"score_file"`
	ScoreMirror string  `mapstructure:"score_mirror"`
	LogFile     string  `mapstructure:"log_file"`
	LogLevel    string  `mapstructure:"log_level"`
}

// NewRootCmd builds the attimuite command tree.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "attimuite",
		Short: "Play janken and acchi muite hoi against the computer",
		Long: `attimuite is a terminal client for the janken + acchi muite hoi game.
Win the janken to point, lose it and dodge. The score is kept in a local file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(v, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.attimuite.yaml)")
	flags.String("game_config", "", "game timing config (JSON); built-in defaults when empty")
	flags.String("language", "", "narration and message language (e.g. ja, en)")
	flags.String("voice", "", "narration voice: girl, boy or robot")
	flags.Float64("speech_rate", 0, "narration speed, 0.1 to 2.0")
	flags.String("score_file", defaultScoreFile(), "where the score is kept")
	flags.String("score_mirror", "", "optional second score file, e.g. in a synced folder")
	flags.String("log_file", "", "write JSON logs to this file")
	flags.String("log_level", "info", "log level: debug, info, warn, error")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix("attimuite")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newPlayCmd(v), newScoreCmd(v), newVersionCmd())
	return rootCmd
}

func readConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(".attimuite")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func loadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.ScoreFile == "" {
		s.ScoreFile = defaultScoreFile()
	}
	return s, nil
}

func defaultScoreFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".attimuite-score.yaml"
	}
	return filepath.Join(dir, "attimuite", "score.yaml")
}
