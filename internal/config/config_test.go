package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")

	cfg, err := Load("testdata/does-not-exist.env")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Load() error = %v, want ErrMissingToken", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config alongside ErrMissingToken")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_ID", "")
	t.Setenv("SUPPORT_ROLE_ID", "")
	t.Setenv("TICKET_CATEGORY_ID", "")
	t.Setenv("TICKET_LOG_ID", "")
	t.Setenv("CHANGELOG_CHANNEL_ID", "")
	t.Setenv("ATTACHMENT_FETCH_TIMEOUT_SECONDS", "")

	cfg, err := Load("testdata/does-not-exist.env")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discord.GuildID != defaultGuildID {
		t.Errorf("GuildID = %q, want %q", cfg.Discord.GuildID, defaultGuildID)
	}
	if cfg.Discord.StaffRoleID != defaultStaffRoleID {
		t.Errorf("StaffRoleID = %q, want %q", cfg.Discord.StaffRoleID, defaultStaffRoleID)
	}
	if cfg.Discord.TicketCategoryID != "" || cfg.Discord.TicketLogChannelID != "" || cfg.Discord.ChangelogChannelID != "" {
		t.Errorf("optional channel ids should be empty, got %+v", cfg.Discord)
	}
	if cfg.Discord.AttachmentFetchTimeout != 0 {
		t.Errorf("AttachmentFetchTimeout = %v, want 0", cfg.Discord.AttachmentFetchTimeout)
	}
}

func TestLoadZeroIDsAreUnset(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("TICKET_CATEGORY_ID", "0")
	t.Setenv("TICKET_LOG_ID", "0")
	t.Setenv("CHANGELOG_CHANNEL_ID", " 42 ")
	t.Setenv("ATTACHMENT_FETCH_TIMEOUT_SECONDS", "15")

	cfg, err := Load("testdata/does-not-exist.env")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discord.TicketCategoryID != "" {
		t.Errorf("TicketCategoryID = %q, want empty", cfg.Discord.TicketCategoryID)
	}
	if cfg.Discord.TicketLogChannelID != "" {
		t.Errorf("TicketLogChannelID = %q, want empty", cfg.Discord.TicketLogChannelID)
	}
	if cfg.Discord.ChangelogChannelID != "42" {
		t.Errorf("ChangelogChannelID = %q, want 42", cfg.Discord.ChangelogChannelID)
	}
	if cfg.Discord.AttachmentFetchTimeout != 15*time.Second {
		t.Errorf("AttachmentFetchTimeout = %v, want 15s", cfg.Discord.AttachmentFetchTimeout)
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("REDIS_DB", "nope")

	if _, err := Load("testdata/does-not-exist.env"); err == nil {
		t.Fatal("Load() with invalid REDIS_DB should fail")
	}
}
