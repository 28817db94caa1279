package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicle_specifications (
		id BIGSERIAL PRIMARY KEY,
		model TEXT NOT NULL,
		height_cm INT,
		total_weight_kg INT,
		axle_count INT NOT NULL DEFAULT 0,
		max_axle_load_kg INT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createInfrastructureQuery := `
	CREATE TABLE IF NOT EXISTS infrastructure_records (
		id BIGSERIAL PRIMARY KEY,
		external_id TEXT UNIQUE,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		max_height_cm INT,
		max_weight_kg INT,
		max_axle_weight_kg INT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createMissionsQuery := `
	CREATE TABLE IF NOT EXISTS missions (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		start_lat DOUBLE PRECISION NOT NULL,
		start_lon DOUBLE PRECISION NOT NULL,
		end_lat DOUBLE PRECISION NOT NULL,
		end_lon DOUBLE PRECISION NOT NULL
	);
	`

	createTransportsQuery := `
	CREATE TABLE IF NOT EXISTS transports (
		id BIGSERIAL PRIMARY KEY,
		mission_id BIGINT NOT NULL REFERENCES missions(id),
		approved_proposal_id TEXT
	);
	`

	createTransportVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS transport_vehicles (
		transport_id BIGINT NOT NULL REFERENCES transports(id) ON DELETE CASCADE,
		vehicle_id BIGINT NOT NULL REFERENCES vehicle_specifications(id),
		PRIMARY KEY (transport_id, vehicle_id)
	);
	`

	createProposalsQuery := `
	CREATE TABLE IF NOT EXISTS route_proposals (
		id TEXT PRIMARY KEY,
		mission_id BIGINT NOT NULL REFERENCES missions(id),
		route_type TEXT NOT NULL,
		total_distance_km DOUBLE PRECISION NOT NULL,
		estimated_time_minutes DOUBLE PRECISION NOT NULL,
		fuel_consumption_liters DOUBLE PRECISION NOT NULL,
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		generated_at TIMESTAMPTZ NOT NULL
	);
	`

	// Segments and obstacles are owned by their proposal: cascade delete at
	// the store boundary replaces object-graph cascade.
	createSegmentsQuery := `
	CREATE TABLE IF NOT EXISTS route_segments (
		proposal_id TEXT NOT NULL REFERENCES route_proposals(id) ON DELETE CASCADE,
		sequence_order INT NOT NULL,
		from_lat DOUBLE PRECISION NOT NULL,
		from_lon DOUBLE PRECISION NOT NULL,
		to_lat DOUBLE PRECISION NOT NULL,
		to_lon DOUBLE PRECISION NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		estimated_time_min DOUBLE PRECISION NOT NULL,
		road_condition TEXT NOT NULL DEFAULT 'NORMAL',
		road_name TEXT NOT NULL DEFAULT '',
		geometry TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (proposal_id, sequence_order)
	);
	`

	createObstaclesQuery := `
	CREATE TABLE IF NOT EXISTS route_obstacles (
		id BIGSERIAL PRIMARY KEY,
		proposal_id TEXT NOT NULL REFERENCES route_proposals(id) ON DELETE CASCADE,
		infrastructure_id BIGINT NOT NULL,
		infrastructure_name TEXT NOT NULL DEFAULT '',
		restriction_type TEXT NOT NULL,
		can_pass BOOLEAN NOT NULL,
		alternative_route_needed BOOLEAN NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_infrastructure_active_position
	ON infrastructure_records(is_active, latitude, longitude);
	`

	statements := []string{
		createVehiclesQuery,
		createInfrastructureQuery,
		createMissionsQuery,
		createTransportsQuery,
		createTransportVehiclesQuery,
		createProposalsQuery,
		createSegmentsQuery,
		createObstaclesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VehicleSeed struct {
	Model         string `json:"model"`
	HeightCm      *int   `json:"height_cm"`
	TotalWeightKg *int   `json:"total_weight_kg"`
	AxleCount     int    `json:"axle_count"`
	MaxAxleLoadKg *int   `json:"max_axle_load_kg"`
	Active        bool   `json:"active"`
}

type InfrastructureSeed struct {
	ExternalID      *string `json:"external_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	MaxHeightCm     *int    `json:"max_height_cm"`
	MaxWeightKg     *int    `json:"max_weight_kg"`
	MaxAxleWeightKg *int    `json:"max_axle_weight_kg"`
	IsActive        bool    `json:"is_active"`
}

type MissionSeed struct {
	Name     string  `json:"name"`
	StartLat float64 `json:"start_lat"`
	StartLon float64 `json:"start_lon"`
	EndLat   float64 `json:"end_lat"`
	EndLon   float64 `json:"end_lon"`
}

type SeedFile struct {
	Vehicles       []VehicleSeed        `json:"vehicles"`
	Infrastructure []InfrastructureSeed `json:"infrastructure"`
	Missions       []MissionSeed        `json:"missions"`
}

// Populate the database with demo data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed data: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed data: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	vehicleStmt, err := tx.Prepare(`
	INSERT INTO vehicle_specifications (model, height_cm, total_weight_kg, axle_count, max_axle_load_kg, active)
	VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("seed data: prepare vehicle insert: %w", err)
	}
	defer vehicleStmt.Close()

	for i, v := range data.Vehicles {
		if strings.TrimSpace(v.Model) == "" {
			return fmt.Errorf("seed data: vehicle at index %d: model cannot be empty", i+1)
		}
		if _, err := vehicleStmt.Exec(v.Model, v.HeightCm, v.TotalWeightKg, v.AxleCount, v.MaxAxleLoadKg, v.Active); err != nil {
			return fmt.Errorf("seed data: insert vehicle %q: %w", v.Model, err)
		}
	}

	infraStmt, err := tx.Prepare(`
	INSERT INTO infrastructure_records
		(external_id, name, type, latitude, longitude, max_height_cm, max_weight_kg, max_axle_weight_kg, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (external_id) DO UPDATE
	SET name = EXCLUDED.name,
		type = EXCLUDED.type,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		max_height_cm = EXCLUDED.max_height_cm,
		max_weight_kg = EXCLUDED.max_weight_kg,
		max_axle_weight_kg = EXCLUDED.max_axle_weight_kg,
		is_active = EXCLUDED.is_active;
	`)
	if err != nil {
		return fmt.Errorf("seed data: prepare infrastructure insert: %w", err)
	}
	defer infraStmt.Close()

	for i, r := range data.Infrastructure {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("seed data: infrastructure at index %d: name cannot be empty", i+1)
		}
		if _, err := infraStmt.Exec(
			r.ExternalID, r.Name, r.Type, r.Latitude, r.Longitude,
			r.MaxHeightCm, r.MaxWeightKg, r.MaxAxleWeightKg, r.IsActive,
		); err != nil {
			return fmt.Errorf("seed data: insert infrastructure %q: %w", r.Name, err)
		}
	}

	missionStmt, err := tx.Prepare(`
	INSERT INTO missions (name, start_lat, start_lon, end_lat, end_lon)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return fmt.Errorf("seed data: prepare mission insert: %w", err)
	}
	defer missionStmt.Close()

	for i, m := range data.Missions {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("seed data: mission at index %d: name cannot be empty", i+1)
		}
		if _, err := missionStmt.Exec(m.Name, m.StartLat, m.StartLon, m.EndLat, m.EndLon); err != nil {
			return fmt.Errorf("seed data: insert mission %q: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed data: commit tx: %w", err)
	}

	return nil
}
