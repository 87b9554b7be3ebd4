package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultProfileID is the single-user profile every deployment starts with.
const DefaultProfileID = "default"

// IntegrationSettings carries per-integration configuration that is opaque to
// the engine (target list ids, calendar names and the like).
type IntegrationSettings map[string]string

type ProfileIntegration struct {
	ProfileID   string
	Integration string
	Enabled     bool
	Settings    IntegrationSettings
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) EnsureProfile(id, name string) error {
	query := `INSERT OR IGNORE INTO profiles (id, name) VALUES (?, ?)`
	if _, err := r.db.Exec(query, id, name); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) UpsertIntegration(profileID, integration string, enabled bool, settings IntegrationSettings) error {
	var settingsJSON *string
	if settings != nil {
		b, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("marshal integration settings: %w", err)
		}
		s := string(b)
		settingsJSON = &s
	}

	query := `
		INSERT OR REPLACE INTO profile_integrations (profile_id, integration, enabled, settings)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, profileID, integration, enabled, settingsJSON); err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	return nil
}

func (r *ProfileRepository) ListIntegrations(profileID string) ([]ProfileIntegration, error) {
	query := `SELECT profile_id, integration, enabled, settings FROM profile_integrations WHERE profile_id = ? ORDER BY integration`

	rows, err := r.db.Query(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	var integrations []ProfileIntegration
	for rows.Next() {
		var pi ProfileIntegration
		var settingsJSON *string
		if err := rows.Scan(&pi.ProfileID, &pi.Integration, &pi.Enabled, &settingsJSON); err != nil {
			return nil, err
		}
		if settingsJSON != nil {
			if err := json.Unmarshal([]byte(*settingsJSON), &pi.Settings); err != nil {
				return nil, fmt.Errorf("parse integration settings: %w", err)
			}
		}
		integrations = append(integrations, pi)
	}

	return integrations, rows.Err()
}

// IsEnabled reports whether an integration is switched on for the profile.
// An integration that was never configured is simply disabled.
func (r *ProfileRepository) IsEnabled(profileID, integration string) (bool, error) {
	var enabled bool
	err := r.db.QueryRow(
		`SELECT enabled FROM profile_integrations WHERE profile_id = ? AND integration = ?`,
		profileID, integration,
	).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check integration: %w", err)
	}
	return enabled, nil
}
