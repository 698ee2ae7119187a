package game

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/fernweh-games/whisperwood/audio"
)

// SettingsWatcher live-reloads audio settings from the config file, so
// preferences edited in another terminal (or by a screen reader user's
// helper script) apply without restarting the game.
type SettingsWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	engine  *audio.Engine
	done    chan struct{}
}

// WatchSettings watches path for changes and pushes parsed settings into
// the engine. The parent directory is watched rather than the file itself
// so editors that replace-on-save keep working.
func WatchSettings(path string, engine *audio.Engine) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	sw := &SettingsWatcher{
		watcher: w,
		path:    path,
		engine:  engine,
		done:    make(chan struct{}),
	}
	go sw.loop()
	return sw, nil
}

func (sw *SettingsWatcher) loop() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != sw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := sw.reload(); err != nil {
				log.Warn("settings reload failed", "path", sw.path, "error", err)
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("settings watcher error", "error", err)
		}
	}
}

func (sw *SettingsWatcher) reload() error {
	s, err := LoadSettings(sw.path)
	if err != nil {
		return err
	}
	sw.engine.UpdateSettings(s)
	log.Info("settings reloaded", "path", sw.path, "volume", s.MasterVolume)
	return nil
}

// Close stops watching.
func (sw *SettingsWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}

// LoadSettings reads audio settings from a YAML config file. Missing keys
// take their defaults, so a partial file works.
func LoadSettings(path string) (audio.Settings, error) {
	defaults := audio.DefaultSettings()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("audio.master_volume", defaults.MasterVolume)
	v.SetDefault("audio.spatial", defaults.SpatialAudio)
	v.SetDefault("audio.environmental", defaults.EnvironmentalSounds)
	v.SetDefault("audio.narration", defaults.VoiceNarration)
	v.SetDefault("audio.auto_narration", defaults.AutoNarration)

	if err := v.ReadInConfig(); err != nil {
		return defaults, fmt.Errorf("reading config: %w", err)
	}

	return audio.Settings{
		MasterVolume:        v.GetFloat64("audio.master_volume"),
		SpatialAudio:        v.GetBool("audio.spatial"),
		EnvironmentalSounds: v.GetBool("audio.environmental"),
		VoiceNarration:      v.GetBool("audio.narration"),
		AutoNarration:       v.GetBool("audio.auto_narration"),
	}, nil
}
