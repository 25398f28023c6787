package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// Код лобби - шесть символов A-Z и 0-9
var lobbyCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ValidateLobbyCode создает middleware для валидации параметра кода лобби.
// Код нормализуется к верхнему регистру и сохраняется в контексте Gin
// под ключом lobbyCode.
func ValidateLobbyCode(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(strings.TrimSpace(c.Param(paramName)))
		if !lobbyCodePattern.MatchString(code) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lobby code"})
			c.Abort()
			return
		}
		c.Set("lobbyCode", code)
		c.Next()
	}
}
