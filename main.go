// Package main provides the entry point for the Whisperwood audio adventure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fernweh-games/whisperwood/audio"
	"github.com/fernweh-games/whisperwood/audio/playback"
	"github.com/fernweh-games/whisperwood/game"
	"github.com/fernweh-games/whisperwood/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	silent     bool
	noCaptions bool
	debugBar   bool

	rootCmd = &cobra.Command{
		Use:   "whisperwood",
		Short: "An audio adventure you play by ear",
		Long: paragraph(fmt.Sprintf(
			"\nExplore the world of %s through sound: every step, wall, and wonder has a voice.",
			keyword("Whisperwood"),
		)),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          execute,
	}
)

func execute(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("whisperwood needs an interactive terminal")
	}

	// Environment-driven UI options.
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	if noCaptions || viper.GetBool("no_captions") {
		cfg.ShowCaptions = false
	}
	if debugBar {
		cfg.ShowDebugBar = true
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		cfg.MaxWidth = uint(min(w, 120))
	}

	settings := settingsFromConfig()

	contextType := playback.ContextAuto
	if silent || viper.GetBool("silent") {
		contextType = playback.ContextMock
	}

	engine, err := audio.New(audio.Config{
		SampleRate: viper.GetInt("audio.sample_rate"),
		Settings:   &settings,
		Context:    contextType,
	})
	if err != nil {
		return fmt.Errorf("starting audio engine: %w", err)
	}
	defer engine.Close() //nolint:errcheck

	// Live-reload settings edited while the game runs.
	if path := viper.ConfigFileUsed(); path != "" {
		cfg.SettingsPath = path
		if watcher, err := game.WatchSettings(path, engine); err == nil {
			defer watcher.Close() //nolint:errcheck
		} else {
			log.Debug("settings watcher unavailable", "error", err)
		}
	}

	p, err := ui.NewProgram(cfg, engine)
	if err != nil {
		return fmt.Errorf("starting game: %w", err)
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// settingsFromConfig assembles audio settings from viper-bound config.
func settingsFromConfig() audio.Settings {
	s := audio.DefaultSettings()
	if viper.IsSet("audio.master_volume") {
		s.MasterVolume = viper.GetFloat64("audio.master_volume")
	}
	if viper.IsSet("audio.spatial") {
		s.SpatialAudio = viper.GetBool("audio.spatial")
	}
	if viper.IsSet("audio.environmental") {
		s.EnvironmentalSounds = viper.GetBool("audio.environmental")
	}
	if viper.IsSet("audio.narration") {
		s.VoiceNarration = viper.GetBool("audio.narration")
	}
	if viper.IsSet("audio.auto_narration") {
		s.AutoNarration = viper.GetBool("audio.auto_narration")
	}
	return s
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().BoolVar(&silent, "silent", false, "run without an audio device (captions only)")
	rootCmd.Flags().BoolVar(&noCaptions, "no-captions", false, "hide the caption transcript")
	rootCmd.Flags().BoolVar(&debugBar, "debug-bar", false, "show engine internals in the status line")

	_ = viper.BindPFlag("silent", rootCmd.Flags().Lookup("silent"))
	_ = viper.BindPFlag("no_captions", rootCmd.Flags().Lookup("no-captions"))

	viper.SetDefault("audio.sample_rate", 44100)

	rootCmd.AddCommand(configCmd, manCmd, soundsCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "whisperwood")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "whisperwood")}, dirs...)
	}

	if c := os.Getenv("WHISPERWOOD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("whisperwood")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("whisperwood")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("could not read config", "error", err)
		}
	}
}
