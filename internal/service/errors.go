package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrLobbyFull возвращается при попытке войти в заполненное лобби
	ErrLobbyFull = errors.New("lobby is full")

	// ErrLobbyNotJoinable возвращается при входе в лобби не в статусе ожидания
	ErrLobbyNotJoinable = errors.New("lobby is not accepting players")

	// ErrInvalidCredentials возвращается при неверной паре имя/PIN
	ErrInvalidCredentials = errors.New("invalid name or pin")
)
