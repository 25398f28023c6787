package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/domain/repository"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
	"github.com/yourusername/monkeymind-api/pkg/auth"
)

// Ограничения регистрации
const maxNameLength = 50

// PIN - ровно четыре цифры
var pinPattern = regexp.MustCompile(`^\d{4}$`)

// AuthService предоставляет методы для регистрации и входа игроков
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}, nil
}

// AuthResult - результат регистрации или входа
type AuthResult struct {
	User  *entity.User
	Token string
}

// Register регистрирует нового игрока по имени и PIN.
// PIN хешируется хуком сущности перед записью, аватар назначается случайно.
func (s *AuthService) Register(name, pin string) (*AuthResult, error) {
	name = sanitizeName(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePin(pin); err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:  name,
		Pin:       pin,
		AvatarURL: randomAvatarURL(),
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("name %q is already taken: %w", name, apperrors.ErrConflict)
		}
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован игрок %s (ID=%d)", user.Username, user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login выполняет вход по имени и PIN.
// Несуществующее имя и неверный PIN неразличимы для клиента.
func (s *AuthService) Login(name, pin string) (*AuthResult, error) {
	name = strings.TrimSpace(name)

	user, err := s.userRepo.GetByUsername(name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPin(pin) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Вход игрока %s (ID=%d)", user.Username, user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// ParseToken проверяет токен и возвращает его claims
func (s *AuthService) ParseToken(tokenString string) (*auth.JWTCustomClaims, error) {
	return s.jwtService.ParseToken(tokenString)
}

// sanitizeName убирает пробельное обрамление и угловые скобки из имени
func sanitizeName(name string) string {
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	return strings.TrimSpace(name)
}

// validateName проверяет отображаемое имя игрока
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty: %w", apperrors.ErrValidation)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters: %w", maxNameLength, apperrors.ErrValidation)
	}
	return nil
}

// validatePin проверяет формат PIN
func validatePin(pin string) error {
	if !pinPattern.MatchString(pin) {
		return fmt.Errorf("pin must be exactly 4 digits: %w", apperrors.ErrValidation)
	}
	return nil
}

// randomAvatarURL возвращает ссылку на случайный аватар
func randomAvatarURL() string {
	return fmt.Sprintf("https://www.placemonkeys.com/300?random=%d", rand.Intn(100000))
}
