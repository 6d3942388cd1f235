package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DiscordToken != "token" {
		t.Errorf("expected token, got %q", cfg.DiscordToken)
	}
	if !cfg.InitSlashCommands {
		t.Error("slash commands should be registered by default")
	}
	if !cfg.GlobalCommands() {
		t.Error("no guild ids should mean global commands")
	}
	if cfg.LookupTimeout != 15*time.Second {
		t.Errorf("expected 15s lookup timeout, got %v", cfg.LookupTimeout)
	}
	if cfg.AudioBitrate != 96 {
		t.Errorf("expected bitrate 96, got %d", cfg.AudioBitrate)
	}
}

func TestFromEnvGuildList(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_IDS", "1,2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.DiscordGuildIDs) != 2 || cfg.DiscordGuildIDs[1] != "2" {
		t.Errorf("unexpected guild ids: %v", cfg.DiscordGuildIDs)
	}
	if cfg.GlobalCommands() {
		t.Error("guild ids set, commands should not be global")
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"DISCORD_TOKEN": ""}},
		{"bitrate too high", map[string]string{"DISCORD_TOKEN": "t", "AUDIO_BITRATE": "1000"}},
		{"bad log level", map[string]string{"DISCORD_TOKEN": "t", "LOG_LEVEL": "loud"}},
		{"bad proxy", map[string]string{"DISCORD_TOKEN": "t", "YOUTUBE_PROXY": "not a url"}},
		{"zero attempts", map[string]string{"DISCORD_TOKEN": "t", "LOOKUP_ATTEMPTS": "0"}},
		{"bad duration", map[string]string{"DISCORD_TOKEN": "t", "COMMAND_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
