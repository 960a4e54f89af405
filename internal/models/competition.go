package models

import "encoding/json"

// Competition represents a tracked football competition.
// Competitions are a protected collection: ingest creates and updates them,
// the retention sweeper never touches them. IngestedAt is the date the
// competition list was last refreshed; LastIngestedDate is the date this
// competition's fixtures were last ingested, empty until the first ingest.
type Competition struct {
	ID               int             `db:"id" json:"id"`
	Code             string          `db:"code" json:"code" validate:"required"`
	Name             string          `db:"name" json:"name" validate:"required"`
	Type             string          `db:"type" json:"type"`
	Emblem           string          `db:"emblem" json:"emblem,omitempty"`
	Area             json.RawMessage `db:"area" json:"area,omitempty"`
	CurrentSeason    json.RawMessage `db:"current_season" json:"currentSeason,omitempty"`
	AvailableSeasons int             `db:"available_seasons" json:"numberOfAvailableSeasons"`
	IngestedAt       string          `db:"ingested_at" json:"ingested_at"`
	LastIngestedDate string          `db:"last_ingested_date" json:"last_ingested_date"`
}
