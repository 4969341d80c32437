package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/platform/postgres"
)

func setupPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() || testDatabaseURL == "" {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, testDatabaseURL)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE incidentes`)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresStore(pool)
}

func sampleIncident(at time.Time) *domain.Incident {
	return &domain.Incident{
		IncidenteID:   uuid.NewString(),
		Tipo:          domain.TipoSeguridad,
		Descripcion:   "Puerta forzada",
		Ubicacion:     "Pabellón A",
		Urgencia:      domain.UrgenciaAlta,
		Estado:        domain.EstadoPendiente,
		FechaCreacion: at,
		Historial:     []domain.HistoryEntry{},
	}
}

func TestPostgresStore_PutGetUpdate(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	inc := sampleIncident(at)

	require.NoError(t, store.Put(ctx, inc))

	got, err := store.Get(ctx, inc.IncidenteID)
	require.NoError(t, err)
	assert.Equal(t, inc.Descripcion, got.Descripcion)
	assert.True(t, got.FechaCreacion.Equal(at))
	assert.Empty(t, got.Historial)

	entry := domain.NewHistoryEntry(domain.EstadoEnAtencion, at.Add(time.Minute))
	updated, err := store.Update(ctx, inc.IncidenteID, domain.IncidentUpdate{Estado: domain.EstadoEnAtencion, Append: entry})
	require.NoError(t, err)
	assert.Equal(t, domain.EstadoEnAtencion, updated.Estado)
	require.Len(t, updated.Historial, 1)
	assert.Equal(t, "estado cambiado a en_atencion", updated.Historial[0].Accion)
	assert.True(t, updated.Historial[0].Fecha.Equal(entry.Fecha))
}

func TestPostgresStore_NotFound(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrIncidentNotFound)

	_, err = store.Update(ctx, "missing", domain.IncidentUpdate{Estado: domain.EstadoResuelto})
	assert.ErrorIs(t, err, domain.ErrIncidentNotFound)
}

func TestPostgresStore_ConcurrentUpdatesAppendAll(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	inc := sampleIncident(time.Now().UTC())
	require.NoError(t, store.Put(ctx, inc))

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, inc.IncidenteID, domain.IncidentUpdate{
				Estado: domain.EstadoEnAtencion,
				Append: domain.NewHistoryEntry(domain.EstadoEnAtencion, time.Now()),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, inc.IncidenteID)
	require.NoError(t, err)
	assert.Len(t, got.Historial, writers)
}

func TestPostgresStore_ScanNewestFirst(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	older, newer := sampleIncident(base), sampleIncident(base.Add(time.Hour))
	require.NoError(t, store.Put(ctx, older))
	require.NoError(t, store.Put(ctx, newer))

	all, err := store.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.IncidenteID, all[0].IncidenteID)
}
