package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
	"github.com/yourusername/monkeymind-api/internal/service"
	"github.com/yourusername/monkeymind-api/internal/service/gamemanager"
)

// respondError переводит ошибки сервисного слоя в HTTP-статусы
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, service.ErrLobbyFull),
		errors.Is(err, service.ErrLobbyNotJoinable),
		errors.Is(err, gamemanager.ErrNotEnoughPlayers),
		errors.Is(err, gamemanager.ErrMatchNotActive),
		errors.Is(err, gamemanager.ErrStaleQuestion),
		errors.Is(err, gamemanager.ErrAlreadyAnswered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
