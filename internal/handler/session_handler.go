package handler

import (
	"errors"
	"net/http"

	"github.com/d-g-Szabo/Club-backend/internal/dto"
	"github.com/d-g-Szabo/Club-backend/internal/repository"
	"github.com/d-g-Szabo/Club-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	sessions := e.Group("/api/v1/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.PATCH("/:id", h.UpdateSession)
	sessions.DELETE("/:id", h.RemoveSession)
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	session, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) ListSessions(c echo.Context) error {
	filter := repository.SessionFilter{
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	sessions, total, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	data := make([]dto.SessionResponse, len(sessions))
	for i, s := range sessions {
		data[i] = dto.ToSessionResponse(&s)
	}

	return c.JSON(http.StatusOK, dto.SessionListResponse{
		Data: data,
		Meta: dto.NewListMeta(total, filter.Page, filter.Limit),
	})
}

func (h *SessionHandler) UpdateSession(c echo.Context) error {
	var req dto.UpdateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidUpdate):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) RemoveSession(c echo.Context) error {
	if err := h.svc.Remove(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}
