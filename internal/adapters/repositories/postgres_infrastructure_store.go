package repositories

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// Kilometers per degree, matching the approximation used by the spatial index.
const kmPerDegree = 111.32

// Postgres-backed implementation of the InfrastructureStore port.
type PostgresInfrastructureStore struct{ DB *sql.DB }

func NewPostgresInfrastructureStore(db *sql.DB) *PostgresInfrastructureStore {
	return &PostgresInfrastructureStore{DB: db}
}

const infrastructureColumns = `
	id, external_id, name, type, latitude, longitude,
	max_height_cm, max_weight_kg, max_axle_weight_kg, is_active
`

// FindNear returns active records within radiusKm of the given point.
//
// Two-phase lookup: a coarse bounding-box predicate over-selects candidates
// cheaply in SQL, then the degree-distance check filters them precisely.
func (s *PostgresInfrastructureStore) FindNear(
	ctx context.Context,
	lat, lon, radiusKm float64,
) (_ []domain.InfrastructureRecord, err error) {
	defer obs.Time(ctx, "infrastructure.FindNear")(&err)

	if s.DB == nil {
		return nil, errors.New("infrastructure store: DB is nil")
	}
	if radiusKm <= 0 {
		return []domain.InfrastructureRecord{}, nil
	}

	deltaDeg := radiusKm / kmPerDegree

	query := `
	SELECT ` + infrastructureColumns + `
	FROM infrastructure_records
	WHERE is_active
		AND latitude BETWEEN $1 AND $2
		AND longitude BETWEEN $3 AND $4
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, query, lat-deltaDeg, lat+deltaDeg, lon-deltaDeg, lon+deltaDeg)
	if err != nil {
		return nil, fmt.Errorf("find near: query infrastructure_records table: %w", err)
	}
	defer rows.Close()

	point := domain.Coordinates{Lat: lat, Lon: lon}

	out := make([]domain.InfrastructureRecord, 0, 8)
	for rows.Next() {
		record, err := scanInfrastructure(rows)
		if err != nil {
			return nil, fmt.Errorf("find near: %w", err)
		}

		if domain.DegreeDistanceKm(point, record.Location()) <= radiusKm {
			out = append(out, record)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find near: row iteration: %w", err)
	}

	return out, nil
}

// FindByExternalID looks up a record by its sync identifier.
func (s *PostgresInfrastructureStore) FindByExternalID(ctx context.Context, externalID string) (domain.InfrastructureRecord, error) {
	if s.DB == nil {
		return domain.InfrastructureRecord{}, errors.New("infrastructure store: DB is nil")
	}

	query := `
	SELECT ` + infrastructureColumns + `
	FROM infrastructure_records
	WHERE external_id = $1;
	`

	row := s.DB.QueryRowContext(ctx, query, externalID)
	record, err := scanInfrastructure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InfrastructureRecord{}, fmt.Errorf("find infrastructure external_id=%q: %w", externalID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.InfrastructureRecord{}, fmt.Errorf("find infrastructure external_id=%q: %w", externalID, err)
	}

	return record, nil
}

// Save upserts a record. Records with an external id are keyed on it
// (last-writer-wins); records without one insert or update by primary key.
func (s *PostgresInfrastructureStore) Save(ctx context.Context, record domain.InfrastructureRecord) (domain.InfrastructureRecord, error) {
	if s.DB == nil {
		return domain.InfrastructureRecord{}, errors.New("infrastructure store: DB is nil")
	}

	var row *sql.Row

	switch {
	case record.ExternalID != nil:
		query := `
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
			is_active = EXCLUDED.is_active
		RETURNING id;
		`
		row = s.DB.QueryRowContext(ctx, query,
			record.ExternalID, record.Name, record.Type, record.Latitude, record.Longitude,
			record.MaxHeightCm, record.MaxWeightKg, record.MaxAxleWeightKg, record.IsActive,
		)

	case record.ID > 0:
		query := `
		UPDATE infrastructure_records
		SET name = $2, type = $3, latitude = $4, longitude = $5,
			max_height_cm = $6, max_weight_kg = $7, max_axle_weight_kg = $8, is_active = $9
		WHERE id = $1
		RETURNING id;
		`
		row = s.DB.QueryRowContext(ctx, query,
			record.ID, record.Name, record.Type, record.Latitude, record.Longitude,
			record.MaxHeightCm, record.MaxWeightKg, record.MaxAxleWeightKg, record.IsActive,
		)

	default:
		query := `
		INSERT INTO infrastructure_records
			(name, type, latitude, longitude, max_height_cm, max_weight_kg, max_axle_weight_kg, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
		`
		row = s.DB.QueryRowContext(ctx, query,
			record.Name, record.Type, record.Latitude, record.Longitude,
			record.MaxHeightCm, record.MaxWeightKg, record.MaxAxleWeightKg, record.IsActive,
		)
	}

	if err := row.Scan(&record.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InfrastructureRecord{}, fmt.Errorf("save infrastructure %d: %w", record.ID, domain.ErrNotFound)
		}
		return domain.InfrastructureRecord{}, fmt.Errorf("save infrastructure: %w", err)
	}

	return record, nil
}

// ListActive returns all active records, for spatial index snapshot loading.
func (s *PostgresInfrastructureStore) ListActive(ctx context.Context) ([]domain.InfrastructureRecord, error) {
	if s.DB == nil {
		return nil, errors.New("infrastructure store: DB is nil")
	}

	query := `
	SELECT ` + infrastructureColumns + `
	FROM infrastructure_records
	WHERE is_active
	ORDER BY id;
	`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active infrastructure: query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.InfrastructureRecord, 0, 64)
	for rows.Next() {
		record, err := scanInfrastructure(rows)
		if err != nil {
			return nil, fmt.Errorf("list active infrastructure: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active infrastructure: row iteration: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfrastructure(row rowScanner) (domain.InfrastructureRecord, error) {
	var record domain.InfrastructureRecord
	var externalID sql.NullString
	var maxHeightCm, maxWeightKg, maxAxleWeightKg sql.NullInt64
	var infraType string

	err := row.Scan(
		&record.ID, &externalID, &record.Name, &infraType,
		&record.Latitude, &record.Longitude,
		&maxHeightCm, &maxWeightKg, &maxAxleWeightKg, &record.IsActive,
	)
	if err != nil {
		return domain.InfrastructureRecord{}, err
	}

	record.Type = domain.InfraType(infraType)
	if externalID.Valid {
		record.ExternalID = &externalID.String
	}
	record.MaxHeightCm = nullableInt(maxHeightCm)
	record.MaxWeightKg = nullableInt(maxWeightKg)
	record.MaxAxleWeightKg = nullableInt(maxAxleWeightKg)

	return record, nil
}
