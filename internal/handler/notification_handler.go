package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/repository"
	"github.com/studyhub/notifier/internal/service"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100

	// userIDHeader is set by the session layer in front of this service.
	userIDHeader = "X-User-ID"
)

type CheckService interface {
	CheckUser(ctx context.Context, userID string) (service.CheckResult, error)
}

type InboxService interface {
	List(ctx context.Context, userID string, params repository.ListParams) ([]domain.Notification, int64, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationHandler struct {
	check CheckService
	inbox InboxService
}

func NewNotificationHandler(check CheckService, inbox InboxService) (*NotificationHandler, error) {
	if check == nil {
		return nil, fmt.Errorf("check service is required")
	}
	if inbox == nil {
		return nil, fmt.Errorf("inbox service is required")
	}
	return &NotificationHandler{check: check, inbox: inbox}, nil
}

func RegisterNotificationRoutes(router fiber.Router, check CheckService, inbox InboxService) error {
	h, err := NewNotificationHandler(check, inbox)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/notifications/check", h.CheckNotifications)
	v1.Get("/notifications", h.ListNotifications)
	v1.Get("/notifications/:id", h.GetNotification)
	v1.Post("/notifications/:id/read", h.MarkNotificationRead)
	v1.Post("/notifications/read-all", h.MarkAllNotificationsRead)

	return nil
}

type notificationResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TaskID    *string    `json:"task_id,omitempty"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Category  string     `json:"category"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type checkResponse struct {
	UnreadCount        int64                 `json:"unread_count"`
	NewReminders       int                   `json:"new_reminders"`
	LatestNotification *notificationResponse `json:"latest_notification"`
}

type listNotificationsResponse struct {
	Data []notificationResponse `json:"data"`
	Meta listMeta               `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// CheckNotifications is the pull trigger: a page load or explicit poll lands
// here, fires any due reminders for the session user, and reports inbox state.
func (h *NotificationHandler) CheckNotifications(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	result, err := h.check.CheckUser(c.Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	resp := checkResponse{
		UnreadCount:  result.UnreadCount,
		NewReminders: result.NewReminders,
	}
	if result.Latest != nil {
		latest := toNotificationResponse(result.Latest)
		resp.LatestNotification = &latest
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	notifications, total, err := h.inbox.List(c.Context(), userID, params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		data = append(data, toNotificationResponse(&notifications[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(c.Params("id"))
	notification, err := h.inbox.GetByID(c.Context(), userID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toNotificationResponse(notification))
}

func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(c.Params("id"))
	if err := h.inbox.MarkRead(c.Context(), userID, id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"notification_id": id,
		"is_read":         true,
	})
}

func (h *NotificationHandler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	marked, err := h.inbox.MarkAllRead(c.Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"marked_read": marked,
	})
}

func sessionUserID(c *fiber.Ctx) (string, error) {
	userID := strings.TrimSpace(c.Get(userIDHeader))
	if userID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
	}
	return userID, nil
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:       c.QueryInt("page", defaultPage),
		PageSize:   c.QueryInt("page_size", defaultPageSize),
		UnreadOnly: c.QueryBool("unread_only", false),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: page_size must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawCategory := strings.TrimSpace(c.Query("category")); rawCategory != "" {
		category, err := domain.ParseCategoryFromString(rawCategory)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Category = &category
	}

	return params, nil
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	if n == nil {
		return notificationResponse{}
	}

	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		TaskID:    n.TaskID,
		Title:     n.Title,
		Message:   n.Message,
		Category:  n.Category.String(),
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		// Transient store failure: generic message, never the raw cause.
		return fiber.NewError(fiber.StatusServiceUnavailable, "temporarily unavailable, try again later")
	default:
		return err
	}
}
