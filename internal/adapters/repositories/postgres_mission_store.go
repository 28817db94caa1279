package repositories

import (
	"context"
	"convoy-route-service/internal/domain"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the MissionStore port.
type PostgresMissionStore struct{ DB *sql.DB }

func NewPostgresMissionStore(db *sql.DB) *PostgresMissionStore {
	return &PostgresMissionStore{DB: db}
}

func (s *PostgresMissionStore) GetMission(ctx context.Context, id int64) (domain.Mission, error) {
	if s.DB == nil {
		return domain.Mission{}, errors.New("mission store: DB is nil")
	}

	query := `
	SELECT id, name, start_lat, start_lon, end_lat, end_lon
	FROM missions
	WHERE id = $1;
	`

	var m domain.Mission
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Start.Lat, &m.Start.Lon, &m.End.Lat, &m.End.Lon,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mission{}, fmt.Errorf("get mission %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Mission{}, fmt.Errorf("get mission %d: scan row: %w", id, err)
	}

	return m, nil
}

// ListTransports returns all transports with their vehicle sets loaded.
func (s *PostgresMissionStore) ListTransports(ctx context.Context) ([]domain.Transport, error) {
	if s.DB == nil {
		return nil, errors.New("mission store: DB is nil")
	}

	query := `
	SELECT id, mission_id, approved_proposal_id
	FROM transports
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transports: query transports table: %w", err)
	}
	defer rows.Close()

	transports := make([]domain.Transport, 0, 16)
	byID := make(map[int64]int)
	for rows.Next() {
		var t domain.Transport
		var approved sql.NullString

		if err := rows.Scan(&t.ID, &t.MissionID, &approved); err != nil {
			return nil, fmt.Errorf("list transports: scan row: %w", err)
		}
		if approved.Valid {
			t.ApprovedProposalID = &approved.String
		}

		byID[t.ID] = len(transports)
		transports = append(transports, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transports: row iteration: %w", err)
	}

	vehicleQuery := `
	SELECT transport_id, vehicle_id
	FROM transport_vehicles
	ORDER BY transport_id, vehicle_id;
	`

	vehicleRows, err := s.DB.QueryContext(ctx, vehicleQuery)
	if err != nil {
		return nil, fmt.Errorf("list transports: query transport_vehicles table: %w", err)
	}
	defer vehicleRows.Close()

	for vehicleRows.Next() {
		var transportID, vehicleID int64
		if err := vehicleRows.Scan(&transportID, &vehicleID); err != nil {
			return nil, fmt.Errorf("list transports: scan vehicle row: %w", err)
		}

		if idx, ok := byID[transportID]; ok {
			transports[idx].VehicleIDs = append(transports[idx].VehicleIDs, vehicleID)
		}
	}
	if err := vehicleRows.Err(); err != nil {
		return nil, fmt.Errorf("list transports: vehicle row iteration: %w", err)
	}

	return transports, nil
}

// SetApprovedProposal points the transport's approved-route reference at a
// proposal.
func (s *PostgresMissionStore) SetApprovedProposal(ctx context.Context, transportID int64, proposalID string) error {
	if s.DB == nil {
		return errors.New("mission store: DB is nil")
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE transports SET approved_proposal_id = $2 WHERE id = $1;`,
		transportID, proposalID,
	)
	if err != nil {
		return fmt.Errorf("set approved proposal: transport %d: %w", transportID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set approved proposal: transport %d: rows affected: %w", transportID, err)
	}
	if affected == 0 {
		return fmt.Errorf("set approved proposal: transport %d: %w", transportID, domain.ErrNotFound)
	}

	return nil
}
