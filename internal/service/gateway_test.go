package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/repo"
)

func TestAuthGateway_Authenticate(t *testing.T) {
	_, tokens := newTestAuth(t)
	now := time.Now()

	valid, err := tokens.Issue(3, now)
	require.NoError(t, err)
	expired, err := tokens.Issue(3, now.Add(-31*time.Minute))
	require.NoError(t, err)
	vanished, err := tokens.Issue(4, now)
	require.NoError(t, err)
	broken, err := tokens.Issue(5, now)
	require.NoError(t, err)

	stored := model.User{ID: 3, Name: "Ana", Email: "ana@x.com", HashedPassword: "hash"}
	storeDown := errors.New("connection refused")

	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, int64(3)).Return(stored, nil)
	users.On("GetByID", mock.Anything, int64(4)).Return(model.User{}, repo.ErrorNotFound)
	users.On("GetByID", mock.Anything, int64(5)).Return(model.User{}, storeDown)

	gw := NewAuthGateway(tokens, users, zap.NewNop())
	gw.now = func() time.Time { return now }

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: valid},
		{name: "expired token", token: expired, wantErr: ErrUnauthorized},
		{name: "garbage token", token: "abc.def.ghi", wantErr: ErrUnauthorized},
		{name: "empty token", token: "", wantErr: ErrUnauthorized},
		{name: "user vanished", token: vanished, wantErr: ErrUnauthorized},
		{name: "store failure", token: broken, wantErr: storeDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := gw.Authenticate(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored.Public(), u)
		})
	}
}
