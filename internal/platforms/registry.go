// Package platforms is the embedded catalog of social networks, donation
// platforms and supporter tiers. The lists ship inside the binary as YAML so
// adding a platform is a config edit, not a code change.
package platforms

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

var defaultRegistry = sync.OnceValues(NewRegistry)

// Default returns the shared registry loaded from the embedded catalogs.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// Registry holds the loaded platform catalogs.
type Registry struct {
	mu      sync.RWMutex
	social  []SocialPlatform
	support []SupportPlatform
	tiers   []SupporterTier
}

// NewRegistry loads the embedded YAML catalogs.
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	var social socialFile
	if err := r.loadFile("social", &social); err != nil {
		return nil, err
	}
	r.social = social.Platforms

	var support supportFile
	if err := r.loadFile("support", &support); err != nil {
		return nil, err
	}
	r.support = support.Platforms

	var tiers tiersFile
	if err := r.loadFile("tiers", &tiers); err != nil {
		return nil, err
	}
	r.tiers = tiers.Tiers
	// Tier resolution walks highest bound first.
	sort.Slice(r.tiers, func(i, j int) bool {
		return r.tiers[i].MinAmount > r.tiers[j].MinAmount
	})

	return r, nil
}

func (r *Registry) loadFile(name string, out interface{}) error {
	filename := fmt.Sprintf("config/%s.yaml", name)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

// SocialPlatforms returns the social catalog in definition order.
func (r *Registry) SocialPlatforms() []SocialPlatform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.social
}

// SupportPlatforms returns the donation-platform catalog in definition order.
func (r *Registry) SupportPlatforms() []SupportPlatform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.support
}

// Tiers returns the supporter tiers, highest minimum first.
func (r *Registry) Tiers() []SupporterTier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tiers
}

// SocialPlatform looks up one social platform by ID.
func (r *Registry) SocialPlatform(id string) (*SocialPlatform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.social {
		if r.social[i].ID == id {
			return &r.social[i], nil
		}
	}
	return nil, fmt.Errorf("unknown social platform: %s", id)
}

// SupportPlatform looks up one donation platform by ID.
func (r *Registry) SupportPlatform(id string) (*SupportPlatform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.support {
		if r.support[i].ID == id {
			return &r.support[i], nil
		}
	}
	return nil, fmt.Errorf("unknown support platform: %s", id)
}

// TierFor resolves the supporter tier for a donation amount in whole
// currency units. Amounts below every tier resolve to the lowest tier.
func (r *Registry) TierFor(amount int) SupporterTier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tiers {
		if amount >= t.MinAmount {
			return t
		}
	}
	return r.tiers[len(r.tiers)-1]
}

// ProfileURL builds the public profile URL for a social link. Platforms
// without a URL prefix expect the username field to already be a full URL.
func (r *Registry) ProfileURL(platformID, username string) (string, error) {
	p, err := r.SocialPlatform(platformID)
	if err != nil {
		return "", err
	}
	if p.URLPrefix == "" {
		return username, nil
	}
	return p.URLPrefix + username, nil
}
