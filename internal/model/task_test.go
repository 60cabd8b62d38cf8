package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatch_Unmarshal(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantEmpty   bool
		wantDescSet bool
		wantDesc    *string
	}{
		{name: "empty object", body: `{}`, wantEmpty: true},
		{name: "only status", body: `{"status":"completed"}`},
		{name: "explicit null description", body: `{"description":null}`, wantDescSet: true},
		{name: "description value", body: `{"description":"milk"}`, wantDescSet: true, wantDesc: strPtr("milk")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p TaskPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))

			assert.Equal(t, tt.wantEmpty, p.Empty())
			assert.Equal(t, tt.wantDescSet, p.Description.Set)
			assert.Equal(t, tt.wantDesc, p.Description.Value)
		})
	}
}

func TestTaskFilter_Offset(t *testing.T) {
	f := DefaultTaskFilter()
	assert.Equal(t, 0, f.Offset())

	f.Page, f.Limit = 3, 10
	assert.Equal(t, 20, f.Offset())
}

func TestUser_PublicDropsHash(t *testing.T) {
	u := User{ID: 1, Name: "Ana", Email: "ana@x.com", HashedPassword: "$2a$10$secret"}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Contains(t, string(b), `"email":"ana@x.com"`)
}

func strPtr(s string) *string { return &s }
