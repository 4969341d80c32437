package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alertaUtec/internal/modules/incidents/application/usecase"
	"alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/modules/incidents/infrastructure"
	rtusecase "alertaUtec/internal/modules/realtime/application/usecase"
	rtdomain "alertaUtec/internal/modules/realtime/domain"
	rtinfra "alertaUtec/internal/modules/realtime/infrastructure"
	rttransport "alertaUtec/internal/modules/realtime/interface"
	"alertaUtec/internal/shared/auth"
	"alertaUtec/internal/shared/httputil"
)

const jwtSecret = "incident-secret"

type memRegistry struct {
	mu    sync.Mutex
	conns map[string]rtdomain.Connection
}

func (r *memRegistry) Register(_ context.Context, c rtdomain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ConnectionID] = c
	return nil
}

func (r *memRegistry) Unregister(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	return nil
}

func (r *memRegistry) ListAll(context.Context) ([]rtdomain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rtdomain.Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out, nil
}

type app struct {
	srv   *httptest.Server
	store *infrastructure.MemoryStore
}

func newApp(t *testing.T, validator auth.TokenValidator) *app {
	t.Helper()
	hub := rtinfra.NewHub(nil)
	reg := &memRegistry{conns: map[string]rtdomain.Connection{}}
	broadcaster := rtusecase.NewBroadcastUseCase(reg, rtinfra.NewLocalChannel(hub), nil, rtusecase.BroadcastOptions{})
	store := infrastructure.NewMemoryStore()
	mapper := httputil.NewErrorMapper()

	h := NewHandlers(
		usecase.NewCreateIncidentUseCase(store, broadcaster, nil, nil),
		usecase.NewGetIncidentUseCase(store),
		usecase.NewListIncidentsUseCase(store),
		usecase.NewUpdateStatusUseCase(store, broadcaster, nil, false),
		mapper,
	)
	e := echo.New()
	e.GET("/ws", rttransport.NewWebsocketHandler(hub, rtusecase.NewConnectionUseCase(reg, nil, "", "")))
	h.Register(e, nil, auth.RequireRoles(validator, []string{"admin"}))

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		hub.CloseAll()
		srv.Close()
	})
	return &app{srv: srv, store: store}
}

func (a *app) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *app) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	var greeting map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&greeting))
	require.Equal(t, "connected", greeting["kind"])
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var ev map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestEndToEnd_StatusChangeReachesEveryClient(t *testing.T) {
	a := newApp(t, nil)
	require.NoError(t, a.store.Put(context.Background(), &domain.Incident{
		IncidenteID: "I1", Tipo: domain.TipoOtro, Estado: domain.EstadoPendiente, FechaCreacion: time.Now().UTC(),
	}))
	x, y := a.dial(t), a.dial(t)

	status, body := a.do(t, http.MethodPatch, "/incidentes/I1/estado", `{"nuevoEstado":"en_atencion"}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "I1", body["incidenteId"])
	assert.Equal(t, "en_atencion", body["estado"])

	for _, conn := range []*websocket.Conn{x, y} {
		ev := readEvent(t, conn)
		assert.Equal(t, "status_changed", ev["kind"])
		assert.Equal(t, "I1", ev["incidenteId"])
		assert.Equal(t, "en_atencion", ev["nuevoEstado"])

		// exactly one event: nothing else arrives
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
		_, _, err := conn.ReadMessage()
		assert.Error(t, err)
	}

	status, body = a.do(t, http.MethodGet, "/incidentes/I1", "", "")
	require.Equal(t, http.StatusOK, status)
	incidente := body["incidente"].(map[string]any)
	assert.Len(t, incidente["historial"], 1)
}

func TestCreateBroadcastsAndLists(t *testing.T) {
	a := newApp(t, nil)
	x := a.dial(t)

	status, body := a.do(t, http.MethodPost, "/incidentes",
		`{"tipo":"seguridad","descripcion":"Robo","ubicacion":"Patio","urgencia":"alta"}`, "")
	require.Equal(t, http.StatusCreated, status)
	created := body["incidente"].(map[string]any)
	assert.Equal(t, "pendiente", created["estado"])

	ev := readEvent(t, x)
	assert.Equal(t, "incident_created", ev["kind"])
	assert.Equal(t, created["incidenteId"], ev["incidenteId"])

	status, body = a.do(t, http.MethodGet, "/incidentes", "", "")
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Robo", items[0].(map[string]any)["descripcion"])
}

func TestErrorEnvelopes(t *testing.T) {
	a := newApp(t, nil)

	status, body := a.do(t, http.MethodPatch, "/incidentes/nope/estado", `{"nuevoEstado":"resuelto"}`, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Incidente no encontrado", body["message"])
	assert.Equal(t, "not_found", body["kind"])

	status, body = a.do(t, http.MethodPatch, "/incidentes/nope/estado", `{"nuevoEstado":"cerrado"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Estado inválido. Valores permitidos: pendiente, en_atencion, resuelto, cancelado", body["message"])

	status, body = a.do(t, http.MethodPatch, "/incidentes/I1/estado", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ID de incidente y nuevo estado son requeridos", body["message"])

	status, body = a.do(t, http.MethodPost, "/incidentes", `{"tipo":"seguridad"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_input", body["kind"])
}

func TestStatusChangeRequiresStaffToken(t *testing.T) {
	validator, err := auth.NewJWTValidator(jwtSecret, "")
	require.NoError(t, err)
	a := newApp(t, validator)
	require.NoError(t, a.store.Put(context.Background(), &domain.Incident{IncidenteID: "I1", Estado: domain.EstadoPendiente}))

	sign := func(rol string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
			Email: rol + "@utec.edu.pe",
			Rol:   rol,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		s, err := tok.SignedString([]byte(jwtSecret))
		require.NoError(t, err)
		return s
	}

	status, _ := a.do(t, http.MethodPatch, "/incidentes/I1/estado", `{"nuevoEstado":"resuelto"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = a.do(t, http.MethodPatch, "/incidentes/I1/estado", `{"nuevoEstado":"resuelto"}`, sign("estudiante"))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(t, http.MethodPatch, "/incidentes/I1/estado", `{"nuevoEstado":"resuelto"}`, sign("admin"))
	assert.Equal(t, http.StatusOK, status)

	// reads stay public
	status, _ = a.do(t, http.MethodGet, "/incidentes/I1", "", "")
	assert.Equal(t, http.StatusOK, status)
}
