// Package registry manages the tracked-player list: a JSON file holding
// the players to extract plus runtime settings shared by the batch and
// monitoring collaborators.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Player is one tracked market page.
type Player struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
	Notes   string `json:"notes,omitempty"`
}

// Settings are the per-registry runtime knobs. They mirror the settings
// block of the JSON file and override environment defaults when present.
type Settings struct {
	DelayBetweenRequests int     `json:"delay_between_requests,omitempty"` // seconds
	MonitoringInterval   int     `json:"monitoring_interval_seconds,omitempty"`
	PriceDropThreshold   float64 `json:"price_drop_threshold,omitempty"`
	TargetProfitMargin   float64 `json:"target_profit_margin,omitempty"`
	HeadlessMode         bool    `json:"headless_mode,omitempty"`
	CSVFilename          string  `json:"csv_filename,omitempty"`
}

type fileFormat struct {
	Settings Settings `json:"settings"`
	Players  []Player `json:"players"`
}

// Registry is a file-backed player list. Safe for concurrent use; every
// mutation is persisted immediately.
type Registry struct {
	path string

	mu       sync.RWMutex
	settings Settings
	players  []Player
}

// ErrNotFound is returned when a named player does not exist.
var ErrNotFound = errors.New("player not found")

// ErrDuplicate is returned when an added player's URL is already tracked.
var ErrDuplicate = errors.New("player already tracked")

// Load opens the registry at path, creating an empty one (with default
// settings) if the file does not exist yet.
func Load(path string) (*Registry, error) {
	r := &Registry{
		path: path,
		settings: Settings{
			DelayBetweenRequests: 3,
			MonitoringInterval:   300,
			PriceDropThreshold:   0.10,
			TargetProfitMargin:   0.08,
			CSVFilename:          "futbin_prices.csv",
		},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, r.save()
	}
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}

	if f.Settings != (Settings{}) {
		r.settings = f.Settings
	}
	r.players = f.Players
	return r, nil
}

// Settings returns a copy of the registry settings.
func (r *Registry) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Players returns a copy of all tracked players.
func (r *Registry) Players() []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Enabled returns only the players marked enabled.
func (r *Registry) Enabled() []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Player
	for _, p := range r.players {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Add tracks a new player. The URL is normalized to the market tab first;
// a URL already tracked is rejected.
func (r *Registry) Add(name, rawURL, notes string) (Player, error) {
	url, err := NormalizeURL(rawURL)
	if err != nil {
		return Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.players {
		if existing.URL == url {
			return Player{}, fmt.Errorf("%w: %s (%s)", ErrDuplicate, existing.Name, url)
		}
	}

	p := Player{Name: name, URL: url, Enabled: true, Notes: notes}
	r.players = append(r.players, p)
	return p, r.save()
}

// Remove forgets a player by name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.players[:0]
	removed := false
	for _, p := range r.players {
		if p.Name == name {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	r.players = kept
	return r.save()
}

// SetEnabled switches a player's participation in batch runs and monitoring.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.players {
		if r.players[i].Name == name {
			r.players[i].Enabled = enabled
			return r.save()
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// save persists the registry. Callers must hold the write lock.
func (r *Registry) save() error {
	data, err := json.MarshalIndent(fileFormat{Settings: r.settings, Players: r.players}, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal: %w", err)
	}
	if err := os.WriteFile(r.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", r.path, err)
	}
	return nil
}

// NormalizeURL completes partial futbin player URLs and points them at the
// market tab: "/26/player/257/name" becomes
// "https://www.futbin.com/26/player/257/name/market".
func NormalizeURL(rawURL string) (string, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return "", errors.New("registry: empty url")
	}

	if !strings.HasPrefix(url, "http") {
		if strings.HasPrefix(url, "/") {
			url = "https://www.futbin.com" + url
		} else {
			url = "https://www.futbin.com/" + url
		}
	}

	if !strings.Contains(url, "futbin.com") {
		return "", fmt.Errorf("registry: not a futbin URL: %s", rawURL)
	}

	if !strings.HasSuffix(url, "/market") {
		url = strings.TrimRight(url, "/") + "/market"
	}
	return url, nil
}
