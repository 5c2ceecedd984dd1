package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/notify"
)

func (s *Server) handleListNotifications(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	unreadOnly := c.QueryParam("unread") == "true"
	items, err := s.Notifications.List(c.Request().Context(), userID, unreadOnly)
	if err != nil {
		s.logger.Error("failed to list notifications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleUnreadCount(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	count, err := s.Notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("failed to count notifications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleCreateNotification(c echo.Context) error {
	var n notify.Notification
	if err := c.Bind(&n); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	created, err := s.Notifications.Create(c.Request().Context(), n)
	if err != nil {
		var verr *notify.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Error()})
		}
		s.logger.Error("failed to create notification", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleMarkRead(c echo.Context) error {
	return s.mutateNotification(c, s.Notifications.MarkRead)
}

func (s *Server) handleMarkClicked(c echo.Context) error {
	return s.mutateNotification(c, s.Notifications.MarkClicked)
}

func (s *Server) handleDeleteNotification(c echo.Context) error {
	return s.mutateNotification(c, s.Notifications.Delete)
}

func (s *Server) mutateNotification(c echo.Context, op func(ctx context.Context, id uuid.UUID) error) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification ID"})
	}

	if err := op(c.Request().Context(), id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Notification not found"})
		}
		s.logger.Error("notification update failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
