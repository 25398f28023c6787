package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия
	// (например, не владелец лобби пытается запустить матч).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, попытка
	// запустить уже идущий матч или присоединиться к заполненному лобби).
	ErrConflict = errors.New("resource state conflict")

	// ErrUpstreamUnavailable используется, когда внешний источник вопросов
	// недоступен после всех повторных попыток.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
