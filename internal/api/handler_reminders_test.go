package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediremind-backend/internal/model"
)

func seedSentReminder(t *testing.T, env *testEnv, userID int64) model.Reminder {
	med := model.Medication{UserID: userID, Name: "Metformin", Dosage: "500mg"}
	require.NoError(t, env.store.DB().Create(&med).Error)
	reminder := model.Reminder{
		MedicationID:  med.ID,
		ScheduledTime: time.Now().UTC().Add(-time.Minute),
		Status:        model.ReminderSent,
	}
	require.NoError(t, env.store.DB().Create(&reminder).Error)
	return reminder
}

func TestAckReminder(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "pat@example.com")
	reminder := seedSentReminder(t, env, user.ID)
	path := "/api/reminders/" + strconv.FormatInt(reminder.ID, 10) + "/ack"

	w := doJSON(t, env, http.MethodPost, path, token, map[string]string{"action": "taken"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"TAKEN"}`, w.Body.String())

	// The acknowledgment is a claim: acking twice resolves to one winner.
	w = doJSON(t, env, http.MethodPost, path, token, map[string]string{"action": "taken"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAckReminder_Skipped(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "pat@example.com")
	reminder := seedSentReminder(t, env, user.ID)
	path := "/api/reminders/" + strconv.FormatInt(reminder.ID, 10) + "/ack"

	w := doJSON(t, env, http.MethodPost, path, token, map[string]string{"action": "skipped"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"SKIPPED"}`, w.Body.String())
}

func TestAckReminder_Validation(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "pat@example.com")
	reminder := seedSentReminder(t, env, user.ID)
	path := "/api/reminders/" + strconv.FormatInt(reminder.ID, 10) + "/ack"

	t.Run("unknown action", func(t *testing.T) {
		w := doJSON(t, env, http.MethodPost, path, token, map[string]string{"action": "snoozed"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("someone else's reminder", func(t *testing.T) {
		_, otherToken := env.createUser(t, "other@example.com")
		w := doJSON(t, env, http.MethodPost, path, otherToken, map[string]string{"action": "taken"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(t, env, http.MethodPost, "/api/reminders/abc/ack", token, map[string]string{"action": "taken"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetReminderHistory(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "pat@example.com")
	reminder := seedSentReminder(t, env, user.ID)

	// Nothing in history until the user acknowledges.
	w := doJSON(t, env, http.MethodGet, "/api/reminders/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		History []struct {
			ID             int64  `json:"id"`
			MedicationName string `json:"medicationName"`
			Status         string `json:"status"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.History)

	path := "/api/reminders/" + strconv.FormatInt(reminder.ID, 10) + "/ack"
	w = doJSON(t, env, http.MethodPost, path, token, map[string]string{"action": "taken"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodGet, "/api/reminders/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, reminder.ID, resp.History[0].ID)
	assert.Equal(t, "Metformin", resp.History[0].MedicationName)
	assert.Equal(t, "TAKEN", resp.History[0].Status)
}
