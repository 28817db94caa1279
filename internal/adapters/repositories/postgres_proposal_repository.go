package repositories

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the ProposalRepository port.
//
// A proposal and its owned segments and obstacles are written in one
// transaction; a partially written proposal is never visible.
type PostgresProposalRepository struct{ DB *sql.DB }

func NewPostgresProposalRepository(db *sql.DB) *PostgresProposalRepository {
	return &PostgresProposalRepository{DB: db}
}

func (s *PostgresProposalRepository) SaveProposal(ctx context.Context, p *domain.RouteProposal) (err error) {
	defer obs.Time(ctx, "proposals.SaveProposal")(&err)

	if s.DB == nil {
		return errors.New("proposal repository: DB is nil")
	}
	if p == nil {
		return errors.New("save proposal: proposal is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save proposal: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO route_proposals
		(id, mission_id, route_type, total_distance_km, estimated_time_minutes, fuel_consumption_liters, approved, generated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`,
		p.ID, p.MissionID, string(p.Variant),
		p.TotalDistanceKm, p.EstimatedTimeMinutes, p.FuelConsumptionLiters,
		p.Approved, p.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("save proposal %s: insert proposal: %w", p.ID, err)
	}

	segmentStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_segments
		(proposal_id, sequence_order, from_lat, from_lon, to_lat, to_lon, distance_km, estimated_time_min, road_condition, road_name, geometry)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`)
	if err != nil {
		return fmt.Errorf("save proposal %s: prepare segment insert: %w", p.ID, err)
	}
	defer segmentStmt.Close()

	for _, seg := range p.Segments {
		if _, err := segmentStmt.ExecContext(ctx,
			p.ID, seg.SequenceOrder,
			seg.From.Lat, seg.From.Lon, seg.To.Lat, seg.To.Lon,
			seg.DistanceKm, seg.EstimatedTimeMin, seg.RoadCondition, seg.RoadName, seg.Geometry,
		); err != nil {
			return fmt.Errorf("save proposal %s: insert segment %d: %w", p.ID, seg.SequenceOrder, err)
		}
	}

	obstacleStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_obstacles
		(proposal_id, infrastructure_id, infrastructure_name, restriction_type, can_pass, alternative_route_needed, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`)
	if err != nil {
		return fmt.Errorf("save proposal %s: prepare obstacle insert: %w", p.ID, err)
	}
	defer obstacleStmt.Close()

	for _, o := range p.Obstacles {
		if _, err := obstacleStmt.ExecContext(ctx,
			p.ID, o.InfrastructureID, o.InfrastructureName,
			string(o.RestrictionType), o.CanPass, o.AlternativeRouteNeeded, o.Notes,
		); err != nil {
			return fmt.Errorf("save proposal %s: insert obstacle infrastructure=%d: %w", p.ID, o.InfrastructureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save proposal %s: commit: %w", p.ID, err)
	}

	return nil
}

func (s *PostgresProposalRepository) GetProposal(ctx context.Context, id string) (domain.RouteProposal, error) {
	if s.DB == nil {
		return domain.RouteProposal{}, errors.New("proposal repository: DB is nil")
	}

	query := `
	SELECT id, mission_id, route_type, total_distance_km, estimated_time_minutes, fuel_consumption_liters, approved, generated_at
	FROM route_proposals
	WHERE id = $1;
	`

	var p domain.RouteProposal
	var variant string
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.MissionID, &variant,
		&p.TotalDistanceKm, &p.EstimatedTimeMinutes, &p.FuelConsumptionLiters,
		&p.Approved, &p.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteProposal{}, fmt.Errorf("get proposal %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.RouteProposal{}, fmt.Errorf("get proposal %s: scan row: %w", id, err)
	}
	p.Variant = domain.RouteVariant(variant)

	if p.Segments, err = s.loadSegments(ctx, id); err != nil {
		return domain.RouteProposal{}, fmt.Errorf("get proposal %s: %w", id, err)
	}
	if p.Obstacles, err = s.loadObstacles(ctx, id); err != nil {
		return domain.RouteProposal{}, fmt.Errorf("get proposal %s: %w", id, err)
	}

	return p, nil
}

func (s *PostgresProposalRepository) ListByMission(ctx context.Context, missionID int64) ([]domain.RouteProposal, error) {
	if s.DB == nil {
		return nil, errors.New("proposal repository: DB is nil")
	}

	query := `
	SELECT id
	FROM route_proposals
	WHERE mission_id = $1
	ORDER BY generated_at, id;
	`

	rows, err := s.DB.QueryContext(ctx, query, missionID)
	if err != nil {
		return nil, fmt.Errorf("list proposals mission=%d: query: %w", missionID, err)
	}
	defer rows.Close()

	ids := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list proposals mission=%d: scan row: %w", missionID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list proposals mission=%d: row iteration: %w", missionID, err)
	}

	out := make([]domain.RouteProposal, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetProposal(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list proposals mission=%d: %w", missionID, err)
		}
		out = append(out, p)
	}

	return out, nil
}

func (s *PostgresProposalRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	if s.DB == nil {
		return errors.New("proposal repository: DB is nil")
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE route_proposals SET approved = $2 WHERE id = $1;`,
		id, approved,
	)
	if err != nil {
		return fmt.Errorf("set approved %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set approved %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("set approved %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteProposal removes the proposal; owned segments and obstacles go with
// it via cascade.
func (s *PostgresProposalRepository) DeleteProposal(ctx context.Context, id string) error {
	if s.DB == nil {
		return errors.New("proposal repository: DB is nil")
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM route_proposals WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete proposal %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete proposal %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete proposal %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (s *PostgresProposalRepository) loadSegments(ctx context.Context, proposalID string) ([]domain.RouteSegment, error) {
	query := `
	SELECT sequence_order, from_lat, from_lon, to_lat, to_lon, distance_km, estimated_time_min, road_condition, road_name, geometry
	FROM route_segments
	WHERE proposal_id = $1
	ORDER BY sequence_order;
	`

	rows, err := s.DB.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query route_segments table: %w", err)
	}
	defer rows.Close()

	segments := make([]domain.RouteSegment, 0, 8)
	for rows.Next() {
		var seg domain.RouteSegment
		if err := rows.Scan(
			&seg.SequenceOrder,
			&seg.From.Lat, &seg.From.Lon, &seg.To.Lat, &seg.To.Lon,
			&seg.DistanceKm, &seg.EstimatedTimeMin, &seg.RoadCondition, &seg.RoadName, &seg.Geometry,
		); err != nil {
			return nil, fmt.Errorf("scan segment row: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("segment row iteration: %w", err)
	}

	return segments, nil
}

func (s *PostgresProposalRepository) loadObstacles(ctx context.Context, proposalID string) ([]domain.RouteObstacle, error) {
	query := `
	SELECT infrastructure_id, infrastructure_name, restriction_type, can_pass, alternative_route_needed, notes
	FROM route_obstacles
	WHERE proposal_id = $1
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query route_obstacles table: %w", err)
	}
	defer rows.Close()

	obstacles := make([]domain.RouteObstacle, 0, 4)
	for rows.Next() {
		var o domain.RouteObstacle
		var restriction string
		if err := rows.Scan(
			&o.InfrastructureID, &o.InfrastructureName, &restriction,
			&o.CanPass, &o.AlternativeRouteNeeded, &o.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan obstacle row: %w", err)
		}
		o.RestrictionType = domain.RestrictionType(restriction)
		obstacles = append(obstacles, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("obstacle row iteration: %w", err)
	}

	return obstacles, nil
}
