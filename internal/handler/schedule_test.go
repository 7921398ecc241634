package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sakif/schedule-arranger/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestHandleCreate(t *testing.T) {
	app := newTestApp(t)
	user, cookie := app.login(t, 1, "alice")

	t.Run("creates and redirects to detail", func(t *testing.T) {
		form := url.Values{
			"scheduleName": {"Team lunch"},
			"memo":         {"pick one"},
			"candidates":   {"Mon\nTue"},
		}
		rr := app.do(postForm("/schedules/", form, cookie))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		location := rr.Header().Get("Location")
		assert.True(t, strings.HasPrefix(location, "/schedules/"), "Location = %q", location)

		scheduleID := strings.TrimPrefix(location, "/schedules/")
		schedule, err := app.db.Schedules().GetByID(context.Background(), scheduleID)
		assert.NoError(t, err)
		assert.Equal(t, "Team lunch", schedule.Name)
		assert.Equal(t, user.ID, schedule.CreatedBy)

		candidates, err := app.db.Candidates().ListBySchedule(context.Background(), scheduleID)
		assert.NoError(t, err)
		assert.Len(t, candidates, 2)
	})

	t.Run("blank name becomes placeholder", func(t *testing.T) {
		rr := app.do(postForm("/schedules/", url.Values{"scheduleName": {"  "}}, cookie))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		scheduleID := strings.TrimPrefix(rr.Header().Get("Location"), "/schedules/")
		schedule, err := app.db.Schedules().GetByID(context.Background(), scheduleID)
		assert.NoError(t, err)
		assert.Equal(t, "(undefined)", schedule.Name)
	})
}

func TestHandleMutate(t *testing.T) {
	app := newTestApp(t)
	owner, ownerCookie := app.login(t, 1, "alice")
	_, strangerCookie := app.login(t, 2, "mallory")

	newSchedule := func(t *testing.T) *model.Schedule {
		t.Helper()
		schedule := &model.Schedule{Name: "Lunch", CreatedBy: owner.ID}
		assert.NoError(t, app.db.Schedules().Create(context.Background(), schedule))
		return schedule
	}

	t.Run("edit updates and appends candidates", func(t *testing.T) {
		schedule := newSchedule(t)
		form := url.Values{
			"scheduleName": {"Lunch v2"},
			"memo":         {"updated"},
			"candidates":   {"Thu"},
		}
		rr := app.do(postForm("/schedules/"+schedule.ID+"?edit=1", form, ownerCookie))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/schedules/"+schedule.ID, rr.Header().Get("Location"))

		updated, _ := app.db.Schedules().GetByID(context.Background(), schedule.ID)
		assert.Equal(t, "Lunch v2", updated.Name)
	})

	t.Run("delete removes the schedule", func(t *testing.T) {
		schedule := newSchedule(t)
		rr := app.do(postForm("/schedules/"+schedule.ID+"?delete=1", url.Values{}, ownerCookie))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))

		_, err := app.db.Schedules().GetByID(context.Background(), schedule.ID)
		assert.Error(t, err)
	})

	t.Run("no mode flag", func(t *testing.T) {
		schedule := newSchedule(t)
		rr := app.do(postForm("/schedules/"+schedule.ID, url.Values{}, ownerCookie))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("both mode flags", func(t *testing.T) {
		schedule := newSchedule(t)
		rr := app.do(postForm("/schedules/"+schedule.ID+"?edit=1&delete=1", url.Values{}, ownerCookie))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-owner edit is masked as not found", func(t *testing.T) {
		schedule := newSchedule(t)
		form := url.Values{"scheduleName": {"hijacked"}}
		rr := app.do(postForm("/schedules/"+schedule.ID+"?edit=1", form, strangerCookie))

		// 404, not 403 — a guessed ID must look identical to a missing one.
		assert.Equal(t, http.StatusNotFound, rr.Code)

		unchanged, _ := app.db.Schedules().GetByID(context.Background(), schedule.ID)
		assert.Equal(t, "Lunch", unchanged.Name)
	})

	t.Run("non-owner delete is masked as not found", func(t *testing.T) {
		schedule := newSchedule(t)
		rr := app.do(postForm("/schedules/"+schedule.ID+"?delete=1", url.Values{}, strangerCookie))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		_, err := app.db.Schedules().GetByID(context.Background(), schedule.ID)
		assert.NoError(t, err, "schedule must survive a non-owner delete")
	})
}

func TestHandleDetail(t *testing.T) {
	app := newTestApp(t)
	owner, ownerCookie := app.login(t, 1, "alice")
	_, visitorCookie := app.login(t, 2, "bob")
	schedule, candidate := seedScheduleWithCandidate(t, app, owner.ID)

	t.Run("renders the grid page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schedules/"+schedule.ID, nil)
		req.AddCookie(ownerCookie)
		rr := app.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, schedule.Name)
		assert.Contains(t, body, candidate.Name)
		assert.Contains(t, body, "alice (you)")
	})

	t.Run("any authenticated user may view", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schedules/"+schedule.ID, nil)
		req.AddCookie(visitorCookie)
		rr := app.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "bob (you)")
	})

	t.Run("missing schedule", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schedules/no-such-id", nil)
		req.AddCookie(ownerCookie)
		rr := app.do(req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("anonymous GET redirects to login with loginFrom", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schedules/"+schedule.ID, nil)
		rr := app.do(req)

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))

		// The destination rides along so the callback can return the user here.
		cookies := rr.Result().Cookies()
		var loginFrom string
		for _, c := range cookies {
			if c.Name == "loginFrom" {
				loginFrom = c.Value
			}
		}
		assert.Equal(t, "/schedules/"+schedule.ID, loginFrom)
	})
}

func TestHandleEditForm(t *testing.T) {
	app := newTestApp(t)
	owner, ownerCookie := app.login(t, 1, "alice")
	_, strangerCookie := app.login(t, 2, "mallory")
	schedule, candidate := seedScheduleWithCandidate(t, app, owner.ID)

	t.Run("owner sees the form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schedules/"+schedule.ID+"/edit", nil)
		req.AddCookie(ownerCookie)
		rr := app.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), schedule.Name)
		assert.Contains(t, rr.Body.String(), candidate.Name)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/schedules/"+schedule.ID+"/edit", nil)
		req.AddCookie(strangerCookie)
		rr := app.do(req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleMe(t *testing.T) {
	app := newTestApp(t)
	user, cookie := app.login(t, 42, "alice")

	t.Run("returns the session user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(cookie)
		rr := app.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got model.User
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, int64(42), got.GitHubID)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("anonymous gets 401 not redirect", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rr := app.do(req)
		// /api/ GETs are exempt from the login-redirect treatment.
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandleHome(t *testing.T) {
	app := newTestApp(t)

	t.Run("anonymous renders without schedules", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := app.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Log in")
	})

	t.Run("authenticated sees own schedules only", func(t *testing.T) {
		user, cookie := app.login(t, 1, "alice")
		other, _ := app.login(t, 2, "bob")
		seedScheduleWithCandidate(t, app, user.ID)
		otherSchedule := &model.Schedule{Name: "Bob's plan", CreatedBy: other.ID}
		assert.NoError(t, app.db.Schedules().Create(context.Background(), otherSchedule))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		rr := app.do(req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Lunch")
		assert.NotContains(t, body, "Bob&#39;s plan")
	})
}
