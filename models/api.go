package models

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	URL string `json:"url" binding:"required"`
}

// AddPlayerRequest is the body of POST /api/v1/players.
type AddPlayerRequest struct {
	Name  string `json:"name" binding:"required"`
	URL   string `json:"url" binding:"required"`
	Notes string `json:"notes"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	TrackedPlayers int    `json:"tracked_players"`
	EnabledPlayers int    `json:"enabled_players"`
	Version        string `json:"version"`
}
