package platforms

// SocialPlatform describes one supported social network for social blocks
// and profile links.
type SocialPlatform struct {
	ID string `yaml:"id"`
	// Label is the display name shown in pickers and rendered blocks.
	Label string `yaml:"label"`
	// URLPrefix builds a profile URL from a bare username; empty means the
	// platform takes a full URL instead (e.g. Discord invites).
	URLPrefix string `yaml:"url_prefix,omitempty"`
	// Placeholder is the input hint for the username/URL field.
	Placeholder string `yaml:"placeholder,omitempty"`
}

// SupportPlatform describes one supported donation destination for support
// blocks. The "custom" platform accepts any URL.
type SupportPlatform struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	// URLHint is the expected domain, used to sanity-check submitted links;
	// empty disables the check.
	URLHint string `yaml:"url_hint,omitempty"`
}

// SupporterTier maps a one-time donation amount to a named tier.
type SupporterTier struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	// MinAmount is the inclusive lower bound in whole currency units.
	MinAmount int `yaml:"min_amount"`
	// Perks are the benefit lines shown on the supporters page.
	Perks []string `yaml:"perks,omitempty"`
}

type socialFile struct {
	Platforms []SocialPlatform `yaml:"platforms"`
}

type supportFile struct {
	Platforms []SupportPlatform `yaml:"platforms"`
}

type tiersFile struct {
	Tiers []SupporterTier `yaml:"tiers"`
}
