package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediremind-backend/internal/model"
)

// readStreamEvents reads SSE data lines from the feed until ctx expires or
// maxEvents have arrived.
func readStreamEvents(ctx context.Context, t *testing.T, url string, maxEvents int) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			events = append(events, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			if len(events) >= maxEvents {
				break
			}
		}
	}
	return events
}

func TestStream_InvalidTokenClosesWithErrorEvent(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/notifications/stream?token=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event:error")
	assert.Contains(t, string(body), "Unauthorized")
}

func TestStream_DeliversDueReminderOnce(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	user, token := env.createUser(t, "pat@example.com")
	med := model.Medication{
		UserID:       user.ID,
		Name:         "Warfarin",
		Dosage:       "5mg",
		Instructions: "Take with water",
		Priority:     model.PriorityHigh,
	}
	require.NoError(t, env.store.DB().Create(&med).Error)
	scheduled := time.Now().UTC().Add(-5 * time.Second)
	reminder := model.Reminder{MedicationID: med.ID, ScheduledTime: scheduled, Status: model.ReminderDue}
	require.NoError(t, env.store.DB().Create(&reminder).Error)

	url := server.URL + "/api/notifications/stream?token=" + token

	// First client receives exactly one event for the DUE reminder.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	events := readStreamEvents(ctx, t, url, 1)
	cancel()
	require.Len(t, events, 1)

	var event StreamEvent
	require.NoError(t, json.Unmarshal([]byte(events[0]), &event))
	assert.Equal(t, reminder.ID, event.ID)
	assert.Equal(t, "Warfarin", event.MedicationName)
	assert.Equal(t, "5mg", event.Dosage)
	assert.Equal(t, "Take with water", event.Instructions)
	assert.Equal(t, scheduled.Format(time.RFC3339), event.ScheduledTime)
	assert.Contains(t, event.Message, "It's time for your Warfarin (5mg)")
	assert.True(t, event.IsHighRisk)
	assert.NotEmpty(t, event.Disclaimer, "high-risk medication must carry a disclaimer")
	assert.Equal(t, "Mark as Taken", event.ActionLabel)

	// The claim moved the reminder to SENT.
	var updated model.Reminder
	require.NoError(t, env.store.DB().First(&updated, reminder.ID).Error)
	assert.Equal(t, model.ReminderSent, updated.Status)

	// A second client connecting afterwards receives nothing for it.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 300*time.Millisecond)
	events2 := readStreamEvents(ctx2, t, url, 1)
	cancel2()
	assert.Empty(t, events2)
}

func TestStream_NormalPriorityHasNoDisclaimer(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	user, token := env.createUser(t, "sam@example.com")
	med := model.Medication{UserID: user.ID, Name: "Vitamin D", Dosage: "1000IU"}
	require.NoError(t, env.store.DB().Create(&med).Error)
	reminder := model.Reminder{MedicationID: med.ID, ScheduledTime: time.Now().UTC().Add(-time.Second), Status: model.ReminderDue}
	require.NoError(t, env.store.DB().Create(&reminder).Error)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	events := readStreamEvents(ctx, t, server.URL+"/api/notifications/stream?token="+token, 1)
	cancel()
	require.Len(t, events, 1)

	var event StreamEvent
	require.NoError(t, json.Unmarshal([]byte(events[0]), &event))
	assert.False(t, event.IsHighRisk)
	assert.Empty(t, event.Disclaimer)
}
