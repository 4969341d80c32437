package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"alertaUtec/internal/modules/incidents/application/port"
	"alertaUtec/internal/modules/incidents/domain"
)

const incidentColumns = `incidente_id, tipo, descripcion, ubicacion, urgencia, estado, email_reportante, fecha_creacion, historial`

// PostgresStore keeps one row per incident with historial as a JSONB array. Status
// changes are a single UPDATE ... RETURNING, so the row lock is the only locking.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Incident, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidentes WHERE incidente_id = $1`, id)
	inc, err := scanIncident(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIncidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return inc, nil
}

func (s *PostgresStore) Put(ctx context.Context, incident *domain.Incident) error {
	historial := incident.Historial
	if historial == nil {
		historial = []domain.HistoryEntry{}
	}
	raw, err := json.Marshal(historial)
	if err != nil {
		return fmt.Errorf("failed to encode historial: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO incidentes (`+incidentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
		ON CONFLICT (incidente_id) DO UPDATE SET
			tipo = EXCLUDED.tipo,
			descripcion = EXCLUDED.descripcion,
			ubicacion = EXCLUDED.ubicacion,
			urgencia = EXCLUDED.urgencia,
			estado = EXCLUDED.estado,
			email_reportante = EXCLUDED.email_reportante,
			fecha_creacion = EXCLUDED.fecha_creacion,
			historial = EXCLUDED.historial`,
		incident.IncidenteID,
		string(incident.Tipo),
		incident.Descripcion,
		incident.Ubicacion,
		string(incident.Urgencia),
		string(incident.Estado),
		incident.EmailReportante,
		incident.FechaCreacion,
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to put incident: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, update domain.IncidentUpdate) (*domain.Incident, error) {
	entry, err := json.Marshal([]domain.HistoryEntry{update.Append})
	if err != nil {
		return nil, fmt.Errorf("failed to encode history entry: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE incidentes
		SET estado = $2, historial = historial || $3::jsonb
		WHERE incidente_id = $1
		RETURNING `+incidentColumns,
		id, string(update.Estado), string(entry),
	)
	inc, err := scanIncident(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIncidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}
	return inc, nil
}

func (s *PostgresStore) Scan(ctx context.Context) ([]domain.Incident, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+incidentColumns+` FROM incidentes ORDER BY fecha_creacion DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan incidents: %w", err)
	}
	defer rows.Close()

	var out []domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read incident row: %w", err)
		}
		out = append(out, *inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan incidents: %w", err)
	}
	return out, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var (
		inc                    domain.Incident
		tipo, urgencia, estado string
		historial              []byte
	)
	err := row.Scan(&inc.IncidenteID, &tipo, &inc.Descripcion, &inc.Ubicacion, &urgencia, &estado,
		&inc.EmailReportante, &inc.FechaCreacion, &historial)
	if err != nil {
		return nil, err
	}
	inc.Tipo = domain.Tipo(tipo)
	inc.Urgencia = domain.Urgencia(urgencia)
	inc.Estado = domain.Estado(estado)
	inc.FechaCreacion = inc.FechaCreacion.UTC()
	inc.Historial = []domain.HistoryEntry{}
	if len(historial) > 0 {
		if err := json.Unmarshal(historial, &inc.Historial); err != nil {
			return nil, fmt.Errorf("failed to decode historial: %w", err)
		}
	}
	return &inc, nil
}

var _ port.IncidentStore = (*PostgresStore)(nil)
