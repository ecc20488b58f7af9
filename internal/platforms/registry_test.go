package platforms

import "testing"

func TestNewRegistryLoadsCatalogs(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if got := len(r.SocialPlatforms()); got != 12 {
		t.Errorf("social platform count = %d, want 12", got)
	}
	if got := len(r.SupportPlatforms()); got != 8 {
		t.Errorf("support platform count = %d, want 8", got)
	}
	if got := len(r.Tiers()); got != 3 {
		t.Errorf("tier count = %d, want 3", got)
	}
}

func TestSocialPlatformLookup(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	p, err := r.SocialPlatform("artstation")
	if err != nil {
		t.Fatalf("SocialPlatform(artstation): %v", err)
	}
	if p.URLPrefix != "https://artstation.com/" {
		t.Errorf("url_prefix = %q", p.URLPrefix)
	}

	if _, err := r.SocialPlatform("myspace"); err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestProfileURL(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		platform string
		username string
		want     string
	}{
		{"github", "blenderforge", "https://github.com/blenderforge"},
		{"youtube", "forgecasts", "https://youtube.com/@forgecasts"},
		// Discord has no prefix; the field holds the full invite URL.
		{"discord", "https://discord.gg/abc123", "https://discord.gg/abc123"},
	}
	for _, tt := range tests {
		got, err := r.ProfileURL(tt.platform, tt.username)
		if err != nil {
			t.Errorf("ProfileURL(%s): %v", tt.platform, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ProfileURL(%s, %s) = %q, want %q", tt.platform, tt.username, got, tt.want)
		}
	}
}

func TestTierFor(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		amount int
		want   string
	}{
		{5, "bronze"},
		{14, "bronze"},
		{15, "silver"},
		{49, "silver"},
		{50, "gold"},
		{500, "gold"},
		{1, "bronze"}, // below every tier falls to the lowest
	}
	for _, tt := range tests {
		if got := r.TierFor(tt.amount); got.ID != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.amount, got.ID, tt.want)
		}
	}
}
