package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/repository"
	"github.com/studyhub/notifier/internal/service"
	"github.com/studyhub/notifier/internal/transport"
	"go.uber.org/zap"
)

type fakeCheckService struct {
	checkFn func(ctx context.Context, userID string) (service.CheckResult, error)
}

func (f *fakeCheckService) CheckUser(ctx context.Context, userID string) (service.CheckResult, error) {
	if f.checkFn != nil {
		return f.checkFn(ctx, userID)
	}
	return service.CheckResult{}, nil
}

type fakeInboxService struct {
	listFn        func(ctx context.Context, userID string, params repository.ListParams) ([]domain.Notification, int64, error)
	getByIDFn     func(ctx context.Context, userID, id string) (*domain.Notification, error)
	markReadFn    func(ctx context.Context, userID, id string) error
	markAllReadFn func(ctx context.Context, userID string) (int64, error)
}

func (f *fakeInboxService) List(ctx context.Context, userID string, params repository.ListParams) ([]domain.Notification, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, params)
	}
	return nil, 0, nil
}

func (f *fakeInboxService) GetByID(ctx context.Context, userID, id string) (*domain.Notification, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInboxService) MarkRead(ctx context.Context, userID, id string) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, id)
	}
	return nil
}

func (f *fakeInboxService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func newTestApp(t *testing.T, check CheckService, inbox InboxService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	if err := RegisterNotificationRoutes(app, check, inbox); err != nil {
		t.Fatalf("RegisterNotificationRoutes() error = %v", err)
	}
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, userID string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	resp.Body.Close() //nolint:errcheck
	return resp, body
}

func TestCheckNotificationsResponse(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 6, 9, 8, 0, 0, 0, time.UTC)
	taskID := "task-essay"
	check := &fakeCheckService{
		checkFn: func(ctx context.Context, userID string) (service.CheckResult, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return service.CheckResult{
				NewReminders: 1,
				UnreadCount:  3,
				Latest: &domain.Notification{
					ID:        "n-1",
					UserID:    "user-1",
					TaskID:    &taskID,
					Title:     "Task due tomorrow",
					Message:   "something is due",
					Category:  domain.CategoryTaskDue,
					CreatedAt: createdAt,
				},
			}, nil
		},
	}

	app := newTestApp(t, check, &fakeInboxService{})
	resp, body := doRequest(t, app, http.MethodGet, "/v1/notifications/check", "user-1")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", resp.StatusCode, body)
	}

	var decoded struct {
		UnreadCount  int64 `json:"unread_count"`
		NewReminders int   `json:"new_reminders"`
		Latest       *struct {
			ID       string  `json:"id"`
			TaskID   *string `json:"task_id"`
			Category string  `json:"category"`
			IsRead   bool    `json:"is_read"`
		} `json:"latest_notification"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decoding response: %v; body = %s", err, body)
	}
	if decoded.UnreadCount != 3 || decoded.NewReminders != 1 {
		t.Errorf("unread_count = %d, new_reminders = %d", decoded.UnreadCount, decoded.NewReminders)
	}
	if decoded.Latest == nil {
		t.Fatal("latest_notification missing")
	}
	if decoded.Latest.ID != "n-1" || decoded.Latest.Category != "task_due" {
		t.Errorf("latest_notification = %+v", decoded.Latest)
	}
	if decoded.Latest.TaskID == nil || *decoded.Latest.TaskID != taskID {
		t.Error("latest_notification missing task_id")
	}
}

func TestMissingUserIdentity(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeCheckService{}, &fakeInboxService{})

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/notifications/check"},
		{http.MethodGet, "/v1/notifications"},
		{http.MethodGet, "/v1/notifications/n-1"},
		{http.MethodPost, "/v1/notifications/n-1/read"},
		{http.MethodPost, "/v1/notifications/read-all"},
	} {
		resp, _ := doRequest(t, app, target.method, target.path, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", target.method, target.path, resp.StatusCode)
		}
	}
}

func TestCheckNotificationsUnknownUser(t *testing.T) {
	t.Parallel()

	check := &fakeCheckService{
		checkFn: func(ctx context.Context, userID string) (service.CheckResult, error) {
			return service.CheckResult{}, fmt.Errorf("%w: unknown user %q", domain.ErrNotFound, userID)
		},
	}
	app := newTestApp(t, check, &fakeInboxService{})

	resp, _ := doRequest(t, app, http.MethodGet, "/v1/notifications/check", "nobody")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCheckNotificationsStoreUnavailable(t *testing.T) {
	t.Parallel()

	check := &fakeCheckService{
		checkFn: func(ctx context.Context, userID string) (service.CheckResult, error) {
			return service.CheckResult{}, fmt.Errorf("%w: failed to scan due tasks: dial tcp refused", domain.ErrUnavailable)
		},
	}
	app := newTestApp(t, check, &fakeInboxService{})

	resp, body := doRequest(t, app, http.MethodGet, "/v1/notifications/check", "user-1")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	var decoded struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if decoded.Error != "temporarily unavailable, try again later" {
		t.Errorf("error message = %q, raw store errors must not leak", decoded.Error)
	}
}

func TestListNotificationsParams(t *testing.T) {
	t.Parallel()

	var gotParams repository.ListParams
	inbox := &fakeInboxService{
		listFn: func(ctx context.Context, userID string, params repository.ListParams) ([]domain.Notification, int64, error) {
			gotParams = params
			return []domain.Notification{}, 0, nil
		},
	}
	app := newTestApp(t, &fakeCheckService{}, inbox)

	resp, _ := doRequest(t, app, http.MethodGet, "/v1/notifications?page=2&page_size=10&unread_only=true&category=system", "user-1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if gotParams.Page != 2 || gotParams.PageSize != 10 || !gotParams.UnreadOnly {
		t.Errorf("params = %+v", gotParams)
	}
	if gotParams.Category == nil || *gotParams.Category != domain.CategorySystem {
		t.Error("category filter not passed through")
	}
}

func TestListNotificationsInvalidParams(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeCheckService{}, &fakeInboxService{})

	for _, target := range []string{
		"/v1/notifications?page=0",
		"/v1/notifications?page_size=500",
		"/v1/notifications?category=broadcast",
	} {
		resp, _ := doRequest(t, app, http.MethodGet, target, "user-1")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, resp.StatusCode)
		}
	}
}

func TestMarkNotificationRead(t *testing.T) {
	t.Parallel()

	var gotID string
	inbox := &fakeInboxService{
		markReadFn: func(ctx context.Context, userID, id string) error {
			gotID = id
			return nil
		},
	}
	app := newTestApp(t, &fakeCheckService{}, inbox)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/notifications/n-42/read", "user-1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotID != "n-42" {
		t.Errorf("marked id = %q, want n-42", gotID)
	}

	var decoded struct {
		NotificationID string `json:"notification_id"`
		IsRead         bool   `json:"is_read"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if decoded.NotificationID != "n-42" || !decoded.IsRead {
		t.Errorf("response = %+v", decoded)
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	t.Parallel()

	inbox := &fakeInboxService{
		markReadFn: func(ctx context.Context, userID, id string) error {
			return fmt.Errorf("%w: notification %q", domain.ErrNotFound, id)
		},
	}
	app := newTestApp(t, &fakeCheckService{}, inbox)

	resp, _ := doRequest(t, app, http.MethodPost, "/v1/notifications/missing/read", "user-1")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	t.Parallel()

	inbox := &fakeInboxService{
		markAllReadFn: func(ctx context.Context, userID string) (int64, error) {
			return 4, nil
		},
	}
	app := newTestApp(t, &fakeCheckService{}, inbox)

	resp, body := doRequest(t, app, http.MethodPost, "/v1/notifications/read-all", "user-1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var decoded struct {
		MarkedRead int64 `json:"marked_read"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if decoded.MarkedRead != 4 {
		t.Errorf("marked_read = %d, want 4", decoded.MarkedRead)
	}
}
