package moderation

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nbd-wtf/go-nostr"
	"github.com/rs/zerolog/log"
)

// Service answers role questions about viewer identities: who is a site
// admin, and whose lists form the admin mute bundle.
type Service struct {
	mu         sync.RWMutex
	config     *Config
	configPath string

	// Quick lookup built from config
	admins map[string]struct{} // pubkey -> present
}

// Config is the moderator configuration loaded from JSON.
type Config struct {
	// Admins are the site moderator pubkeys. The first entry also acts as
	// the publisher of the admin mute lists.
	Admins []string `json:"admins"`

	// Curator is the pubkey publishing the curated nsfw/repost registries.
	// Falls back to the first admin when empty.
	Curator string `json:"curator,omitempty"`
}

// Validate drops malformed pubkeys from the config. Invalid identities are
// filtered silently rather than rejected, matching the boundary rule used
// everywhere else.
func (c *Config) Validate() {
	valid := c.Admins[:0]
	for _, pk := range c.Admins {
		if nostr.IsValidPublicKey(pk) {
			valid = append(valid, pk)
		} else {
			log.Warn().Str("pubkey", pk).Msg("moderation: dropping invalid admin pubkey")
		}
	}
	c.Admins = valid
	if c.Curator != "" && !nostr.IsValidPublicKey(c.Curator) {
		log.Warn().Str("pubkey", c.Curator).Msg("moderation: dropping invalid curator pubkey")
		c.Curator = ""
	}
}

// NewService creates a new moderation role service.
// If configPath is empty, the service is in "disabled" mode where all
// role checks return false.
func NewService(configPath string) (*Service, error) {
	s := &Service{
		configPath: configPath,
		admins:     make(map[string]struct{}),
	}

	if configPath == "" {
		log.Info().Msg("moderation: no config path provided, service disabled")
		return s, nil
	}

	if err := s.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load moderation config: %w", err)
	}

	return s, nil
}

// loadConfig reads and parses the config file
func (s *Service) loadConfig() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", s.configPath).Msg("moderation: config file not found, service disabled")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Validate()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = &config
	s.admins = make(map[string]struct{}, len(config.Admins))
	for _, pk := range config.Admins {
		s.admins[pk] = struct{}{}
	}

	log.Info().
		Int("admins", len(config.Admins)).
		Str("path", s.configPath).
		Msg("moderation: config loaded")

	return nil
}

// Reload reloads the configuration from disk
func (s *Service) Reload() error {
	if s.configPath == "" {
		return nil
	}
	return s.loadConfig()
}

// IsEnabled returns true if the moderation service is configured and enabled
func (s *Service) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config != nil && len(s.admins) > 0
}

// IsAdmin returns true if the given pubkey is a configured site admin
func (s *Service) IsAdmin(pubkey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.admins[pubkey]
	return ok
}

// Admins returns a copy of the configured site admin pubkeys.
func (s *Service) Admins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil
	}
	admins := make([]string, len(s.config.Admins))
	copy(admins, s.config.Admins)
	return admins
}

// AdminPubkey returns the pubkey whose lists form the admin mute bundle,
// or empty when the service is disabled.
func (s *Service) AdminPubkey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil || len(s.config.Admins) == 0 {
		return ""
	}
	return s.config.Admins[0]
}

// CuratorPubkey returns the pubkey publishing the curated registries.
func (s *Service) CuratorPubkey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return ""
	}
	if s.config.Curator != "" {
		return s.config.Curator
	}
	if len(s.config.Admins) > 0 {
		return s.config.Admins[0]
	}
	return ""
}
