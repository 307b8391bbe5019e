package debugapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arcade/models"
	"arcade/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Active(ctx context.Context) ([]*models.ChannelSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChannelSession), args.Error(1)
}

func (m *mockSessions) ForceStop(ctx context.Context, channelID int64) (bool, error) {
	args := m.Called(ctx, channelID)
	return args.Bool(0), args.Error(1)
}

func newTestServer() (*Server, *mockSessions, *service.MockLedgerService, *service.MockModifierRegistry) {
	sessions := &mockSessions{}
	ledger := &service.MockLedgerService{}
	registry := &service.MockModifierRegistry{}
	return New(sessions, ledger, registry), sessions, ledger, registry
}

func serve(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var body Response
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealth(t *testing.T) {
	s, _, _, _ := newTestServer()
	w, _ := serve(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestListSessions(t *testing.T) {
	s, sessions, _, _ := newTestServer()
	sessions.On("Active", mock.Anything).Return([]*models.ChannelSession{
		{ID: "abc", ChannelID: 42, GuildID: 1, Kind: "quiz", StartedAt: time.Now()},
	}, nil)

	w, body := serve(t, s, http.MethodGet, "/debug/sessions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	list, ok := body.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "quiz", list[0].(map[string]interface{})["kind"])
}

func TestListSessions_Empty(t *testing.T) {
	s, sessions, _, _ := newTestServer()
	sessions.On("Active", mock.Anything).Return(nil, nil)

	w, body := serve(t, s, http.MethodGet, "/debug/sessions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, body.Data)
}

func TestStopSession(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(m *mockSessions)
		wantStatus int
	}{
		{
			name:       "stops running session",
			path:       "/debug/sessions/42",
			setup:      func(m *mockSessions) { m.On("ForceStop", mock.Anything, int64(42)).Return(true, nil) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "free channel",
			path:       "/debug/sessions/42",
			setup:      func(m *mockSessions) { m.On("ForceStop", mock.Anything, int64(42)).Return(false, nil) },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store failure",
			path:       "/debug/sessions/42",
			setup:      func(m *mockSessions) { m.On("ForceStop", mock.Anything, int64(42)).Return(false, errors.New("redis down")) },
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "invalid channel id",
			path:       "/debug/sessions/general",
			setup:      func(m *mockSessions) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sessions, _, _ := newTestServer()
			tt.setup(sessions)

			w, body := serve(t, s, http.MethodDelete, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, body.Success)
			sessions.AssertExpectations(t)
		})
	}
}

func TestGetPlayer(t *testing.T) {
	s, _, ledger, registry := newTestServer()
	player := models.NewPlayer(1, 7)
	player.Balance = 250
	player.Level = 2
	ledger.On("GetAccount", mock.Anything, int64(1), int64(7)).Return(player, nil)
	registry.On("ActiveModifiers", mock.Anything, int64(1), int64(7)).Return([]*models.Modifier{
		{Scope: models.ModifierScopePersonal, GuildID: 1, PlayerID: 7, Kind: models.ModifierKindExperienceBoost, Multiplier: decimal.NewFromInt(2)},
	}, nil)

	w, body := serve(t, s, http.MethodGet, "/debug/guilds/1/players/7")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(250), data["balance"])
	assert.Equal(t, float64(2), data["level"])
	assert.Len(t, data["modifiers"], 1)
}

func TestGetPlayer_BadIDs(t *testing.T) {
	s, _, _, _ := newTestServer()

	w, _ := serve(t, s, http.MethodGet, "/debug/guilds/x/players/7")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serve(t, s, http.MethodGet, "/debug/guilds/1/players/y")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
