package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"templates": []map[string]any{
				{"id": 1, "title": "Greeting", "content": "Hello! How can we help?", "is_shared": true},
				{"id": "2", "title": "Follow up", "content": "Just checking in.", "is_own": true},
			},
		})
	}))

	templates, err := client.Templates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "1", templates[0].ID)
	assert.True(t, templates[0].IsShared)
	assert.False(t, templates[0].IsOwn)
	assert.True(t, templates[1].IsOwn)
}

func TestCreateTemplate(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       true,
			"template": map[string]any{"id": 9, "title": "Closing", "content": "Thanks!", "is_own": true, "is_shared": true},
		})
	}))

	tmpl, err := client.CreateTemplate(context.Background(), "Closing", "Thanks!", true)
	require.NoError(t, err)
	assert.Equal(t, "Closing", body["title"])
	assert.Equal(t, true, body["is_shared"])
	assert.Equal(t, "9", tmpl.ID)
}

func TestDeleteTemplate(t *testing.T) {
	var gotMethod string
	var body map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))

	require.NoError(t, client.DeleteTemplate(context.Background(), "9"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "9", body["template_id"])
}

func TestAgentsUnderDataKey(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": []map[string]any{
				{"agent_id": 4, "full_name": "Priya"},
				{"email": "dev@example.com"},
				{},
			},
		})
	}))

	agents, err := client.Agents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "4", agents[0].ID)
	assert.Equal(t, "Priya", agents[0].Name)
	assert.Equal(t, "dev@example.com", agents[1].ID)
	assert.Equal(t, "dev@example.com", agents[1].Name)
	assert.Equal(t, "agent-2", agents[2].ID)
	assert.Equal(t, "Unnamed agent", agents[2].Name)
}
