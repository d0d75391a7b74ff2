package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhub/notifier/internal/domain"
)

const (
	defaultAttemptLimit = 50
	maxAttemptLimit     = 200
)

type AttemptService interface {
	RecentAttempts(ctx context.Context, userID string, limit int) ([]domain.DispatchAttempt, error)
}

type AttemptHandler struct {
	attempts AttemptService
}

func NewAttemptHandler(attempts AttemptService) (*AttemptHandler, error) {
	if attempts == nil {
		return nil, fmt.Errorf("attempt service is required")
	}
	return &AttemptHandler{attempts: attempts}, nil
}

func RegisterAttemptRoutes(router fiber.Router, attempts AttemptService) error {
	h, err := NewAttemptHandler(attempts)
	if err != nil {
		return err
	}

	router.Group("/v1").Get("/dispatch-attempts", h.ListDispatchAttempts)
	return nil
}

type attemptResponse struct {
	ID             string    `json:"id"`
	NotificationID *string   `json:"notification_id,omitempty"`
	Channel        string    `json:"channel"`
	OK             bool      `json:"ok"`
	Reason         *string   `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListDispatchAttempts exposes the per-channel audit trail so a user-facing
// "why didn't I get this email" question is answerable without log access.
func (h *AttemptHandler) ListDispatchAttempts(c *fiber.Ctx) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", defaultAttemptLimit)
	if limit < 1 || limit > maxAttemptLimit {
		return toHTTPError(fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxAttemptLimit))
	}

	attempts, err := h.attempts.RecentAttempts(c.Context(), userID, limit)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]attemptResponse, 0, len(attempts))
	for i := range attempts {
		a := attempts[i]
		data = append(data, attemptResponse{
			ID:             a.ID,
			NotificationID: a.NotificationID,
			Channel:        a.Channel.String(),
			OK:             a.OK,
			Reason:         a.Reason,
			CreatedAt:      a.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
	})
}
