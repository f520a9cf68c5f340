package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"carrete-admin/internal/admins"
	"carrete-admin/internal/auth"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/models"
	"carrete-admin/internal/orders"
	"carrete-admin/internal/reservations"
	"carrete-admin/internal/store"
)

type outbox struct {
	mu   sync.Mutex
	sent []identity.ResetMessage
}

func (o *outbox) SendReset(_ context.Context, msg identity.ResetMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

type testServer struct {
	router   *gin.Engine
	store    *store.Memory
	provider *identity.Service
	admins   *admins.Service
	outbox   *outbox
}

func newTestServer(t *testing.T, registration bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	mem := store.NewMemory()
	mail := &outbox{}
	provider := identity.NewService(mem, identity.Options{
		Secret:     "router-secret",
		SessionTTL: time.Hour,
		ResetTTL:   time.Hour,
		Mailer:     mail,
		Logger:     log,
	})
	directory := admins.NewService(mem, log)
	sessions := auth.NewManager(provider, directory, log)
	sessions.Start()
	t.Cleanup(sessions.Close)

	router := NewRouter(Deps{
		Store:               mem,
		Identity:            provider,
		Sessions:            sessions,
		Admins:              directory,
		Orders:              orders.NewService(mem, time.UTC, log),
		Reservations:        reservations.NewService(mem, time.UTC, log),
		Logger:              log,
		RequestTimeout:      time.Second,
		RegistrationEnabled: registration,
	})
	return &testServer{router: router, store: mem, provider: provider, admins: directory, outbox: mail}
}

func (s *testServer) account(t *testing.T, email, password string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	uid, err := s.provider.CreateAccount(ctx, email, password)
	require.NoError(t, err)
	if admin {
		_, err = s.admins.Create(ctx, models.Admin{ID: uid, Email: email, Username: "Admin " + email})
		require.NoError(t, err)
	}
	return uid
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	w, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "admin@carrete.cl", "secret1", true)
	s.account(t, "cliente@carrete.cl", "secret1", false)

	token := s.login(t, "admin@carrete.cl", "secret1")
	w, body := s.do(t, http.MethodGet, "/admin/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@carrete.cl", body["email"])
	profile, _ := body["profile"].(map[string]any)
	assert.Equal(t, "Admin admin@carrete.cl", profile["username"])

	w, body = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "cliente@carrete.cl", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "No tienes permisos de administrador", body["error"])

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@carrete.cl", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@carrete.cl"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", body["error"])
}

func TestAdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "admin@carrete.cl", "secret1", true)

	w, _ := s.do(t, http.MethodGet, "/admin/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.login(t, "admin@carrete.cl", "secret1")
	w, _ = s.do(t, http.MethodPost, "/admin/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/admin/api/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func seedOrders(t *testing.T, mem *store.Memory) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, store.CollOrders, "jan", map[string]any{
		"date": "2024-01-01", "time": "10:00", "total": 50, "city": "Lima", "userId": "u1",
		"items": []any{map[string]any{"name": "IPA", "quantity": 2, "price": 25}},
	}))
	require.NoError(t, mem.Set(ctx, store.CollOrders, "feb", map[string]any{
		"date": "2024-02-01", "time": "09:00", "total": 80, "city": "Cusco", "userId": "u1",
	}))
	require.NoError(t, mem.Set(ctx, store.CollOrders, "mar", map[string]any{
		"date": "2024-03-01", "time": "12:30", "total": 20, "city": "lima ", "userId": "u2",
	}))
	require.NoError(t, mem.Set(ctx, store.CollUsers, "d1", map[string]any{"userId": "u1", "email": "u1@x.cl", "username": "Uno"}))
	require.NoError(t, mem.Set(ctx, store.CollUsers, "d2", map[string]any{"userId": "u2", "email": "u2@x.cl"}))
	require.NoError(t, mem.Set(ctx, store.CollUsers, "d3", map[string]any{"userId": "u3", "email": "u3@x.cl"}))
}

func orderIDs(body map[string]any) []string {
	raw, _ := body["orders"].([]any)
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		if o, ok := entry.(map[string]any); ok {
			ids = append(ids, o["id"].(string))
		}
	}
	return ids
}

func TestOrders(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "admin@carrete.cl", "secret1", true)
	seedOrders(t, s.store)
	token := s.login(t, "admin@carrete.cl", "secret1")

	w, body := s.do(t, http.MethodGet, "/admin/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mar", "feb", "jan"}, orderIDs(body))
	assert.EqualValues(t, 3, body["total"])
	assert.NotContains(t, body, "page")

	w, body = s.do(t, http.MethodGet, "/admin/api/orders?city=LIMA", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mar", "jan"}, orderIDs(body))
	assert.EqualValues(t, 2, body["matched"])

	w, body = s.do(t, http.MethodGet, "/admin/api/orders?totalFrom=60", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"feb"}, orderIDs(body))

	w, body = s.do(t, http.MethodGet, "/admin/api/orders?dateFrom=2024-01-15&dateTo=2024-03-01&totalTo=abc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mar", "feb"}, orderIDs(body))

	w, body = s.do(t, http.MethodGet, "/admin/api/orders?page=2&limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"jan"}, orderIDs(body))
	assert.EqualValues(t, 2, body["page"])

	w, _ = s.do(t, http.MethodGet, "/admin/api/orders?page=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodGet, "/admin/api/orders?page=9223372036854775807&limit=200", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, orderIDs(body))

	w, body = s.do(t, http.MethodGet, "/admin/api/orders/jan", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, _ := body["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 50, items[0].(map[string]any)["subtotal"])

	w, body = s.do(t, http.MethodGet, "/admin/api/orders/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Pedido no encontrado", body["error"])
}

func TestReservations(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "admin@carrete.cl", "secret1", true)
	seedOrders(t, s.store)
	token := s.login(t, "admin@carrete.cl", "secret1")

	w, body := s.do(t, http.MethodGet, "/admin/api/reservations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	customers, _ := body["customers"].([]any)
	require.Len(t, customers, 2)
	first := customers[0].(map[string]any)
	assert.Equal(t, "u1", first["id"])
	assert.Equal(t, "Uno", first["name"])
	assert.EqualValues(t, 2, first["reservationCount"])
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "admin@carrete.cl", "secret1", true)
	token := s.login(t, "admin@carrete.cl", "secret1")

	w, _ := s.do(t, http.MethodPut, "/admin/api/profile", token, map[string]any{"username": "Nuevo", "newPassword": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := s.do(t, http.MethodGet, "/admin/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Admin admin@carrete.cl", body["username"], "rejected update must not write")

	w, body = s.do(t, http.MethodPut, "/admin/api/profile", token, map[string]any{
		"username":    "Nuevo",
		"telefono":    "987654321",
		"newPassword": "clave-nueva",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Nuevo", body["username"])
	assert.Equal(t, "987654321", body["telefono"])

	s.login(t, "admin@carrete.cl", "clave-nueva")
}

func TestAdminManagement(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "uno@carrete.cl", "secret1", true)
	other := s.account(t, "dos@carrete.cl", "secret1", true)

	token := s.login(t, "uno@carrete.cl", "secret1")
	otherToken := s.login(t, "dos@carrete.cl", "secret1")

	w, body := s.do(t, http.MethodGet, "/admin/api/admins", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, _ := body["admins"].([]any)
	assert.Len(t, list, 2)

	w, _ = s.do(t, http.MethodDelete, "/admin/api/admins/"+other, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/admin/api/me", otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/admin/api/admins/"+other, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister(t *testing.T) {
	closed := newTestServer(t, false)
	w, _ := closed.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "nueva@carrete.cl", "password": "secret1", "confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	open := newTestServer(t, true)
	w, body := open.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "nueva@carrete.cl", "password": "secret1", "confirmPassword": "otra",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Las contraseñas no coinciden", body["error"])

	w, body = open.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "nueva@carrete.cl", "password": "secret1", "confirmPassword": "secret1", "username": "Nueva",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := body["token"].(string)

	w, body = open.do(t, http.MethodGet, "/admin/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, admins.DefaultProfileURL, body["profileUrl"])

	w, _ = open.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "nueva@carrete.cl", "password": "secret1", "confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPasswordReset(t *testing.T) {
	s := newTestServer(t, false)
	s.account(t, "admin@carrete.cl", "secret1", true)

	w, _ := s.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{"email": "nadie@carrete.cl"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.outbox.sent)

	w, _ = s.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{"email": "admin@carrete.cl"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.outbox.sent, 1)

	w, _ = s.do(t, http.MethodPost, "/auth/reset-password/confirm", "", map[string]string{"token": s.outbox.sent[0].Token, "newPassword": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/auth/reset-password/confirm", "", map[string]string{"token": s.outbox.sent[0].Token, "newPassword": "restablecida"})
	require.Equal(t, http.StatusOK, w.Code)

	s.login(t, "admin@carrete.cl", "restablecida")
}
