package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollwise/api/internal/core/domain"
)

func tokenCookies(resp *http.Response) (access, refresh string) {
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "access_token":
			access = c.Value
		case "refresh_token":
			refresh = c.Value
		}
	}
	return access, refresh
}

func TestRegisterLoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// 1. Register
	body, _ := json.Marshal(map[string]string{
		"email":    "kim@example.com",
		"password": "hunter2hunter2",
		"name":     "Kim",
	})
	resp, err := app.Client.Post(app.Server.URL+"/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	access, refresh := tokenCookies(resp)
	resp.Body.Close()
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// 2. The access token works against a protected endpoint.
	req, err := http.NewRequest("GET", app.Server.URL+"/api/users/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: access})
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me domain.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(t, "kim@example.com", me.Email)
	assert.Equal(t, domain.RoleUser, me.Role)

	// 3. Registering the same email again conflicts.
	resp, err = app.Client.Post(app.Server.URL+"/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 4. Login with the wrong password fails, with the right one succeeds.
	wrong, _ := json.Marshal(map[string]string{"email": "kim@example.com", "password": "nope-nope"})
	resp, err = app.Client.Post(app.Server.URL+"/auth/login", "application/json", bytes.NewReader(wrong))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	right, _ := json.Marshal(map[string]string{"email": "kim@example.com", "password": "hunter2hunter2"})
	resp, err = app.Client.Post(app.Server.URL+"/auth/login", "application/json", bytes.NewReader(right))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 5. Refresh issues a new access token from the refresh cookie.
	req, err = http.NewRequest("POST", app.Server.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newAccess, _ := tokenCookies(resp)
	resp.Body.Close()
	assert.NotEmpty(t, newAccess)

	// 6. Logout revokes the refresh token.
	req, err = http.NewRequest("POST", app.Server.URL+"/auth/logout", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req, err = http.NewRequest("POST", app.Server.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAccountManagement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	body, _ := json.Marshal(map[string]string{
		"email":    "lee@example.com",
		"password": "hunter2hunter2",
		"name":     "Lee",
	})
	resp, err := app.Client.Post(app.Server.URL+"/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	access, _ := tokenCookies(resp)
	resp.Body.Close()

	do := func(method, path string, payload map[string]string) *http.Response {
		b, _ := json.Marshal(payload)
		req, err := http.NewRequest(method, app.Server.URL+path, bytes.NewReader(b))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "access_token", Value: access})
		resp, err := app.Client.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Changing the email requires the current password.
	resp = do("PUT", "/api/users/me/email", map[string]string{
		"current_password": "wrong",
		"new_email":        "lee2@example.com",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = do("PUT", "/api/users/me/email", map[string]string{
		"current_password": "hunter2hunter2",
		"new_email":        "lee2@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var email string
	require.NoError(t, app.DB.QueryRow("SELECT email FROM users WHERE email = 'lee2@example.com'").Scan(&email))

	// Change the password and log in with it.
	resp = do("PUT", "/api/users/me/password", map[string]string{
		"current_password": "hunter2hunter2",
		"new_password":     "a-new-long-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	login, _ := json.Marshal(map[string]string{"email": "lee2@example.com", "password": "a-new-long-password"})
	resp, err = app.Client.Post(app.Server.URL+"/auth/login", "application/json", bytes.NewReader(login))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Delete the account; the row is soft-deleted and sign-in stops working.
	resp = do("DELETE", "/api/users/me", map[string]string{
		"current_password": "a-new-long-password",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var deleted bool
	require.NoError(t, app.DB.QueryRow("SELECT deleted_at IS NOT NULL FROM users WHERE email = 'lee2@example.com'").Scan(&deleted))
	assert.True(t, deleted)

	resp, err = app.Client.Post(app.Server.URL+"/auth/login", "application/json", bytes.NewReader(login))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, userToken := app.createUserAndToken(t, domain.RoleUser)
	_, adminToken := app.createUserAndToken(t, domain.RoleAdmin)

	get := func(token, path string) *http.Response {
		req, err := http.NewRequest("GET", app.Server.URL+path, nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		resp, err := app.Client.Do(req)
		require.NoError(t, err)
		return resp
	}

	// A regular user is rejected at the gate.
	resp := get(userToken, "/api/admin/users")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The admin sees every account.
	resp = get(adminToken, "/api/admin/users")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []*domain.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()
	assert.Len(t, users, 2)

	// The admin deletes any poll.
	published := app.publishPoll(t, userToken, map[string]interface{}{
		"title": "Flagged",
		"questions": []map[string]interface{}{
			{"text": "Pick", "type": "single", "options": []string{"A", "B"}},
		},
	})

	req, err := http.NewRequest("DELETE", fmt.Sprintf("%s/api/admin/polls/%s", app.Server.URL, published.Poll.ID), nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: adminToken})
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var count int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM polls WHERE id = $1", published.Poll.ID).Scan(&count))
	assert.Equal(t, 0, count)
}
