package websocket

// Входящие события от клиентов
const (
	// EventAuthenticate - аутентификация соединения по JWT
	EventAuthenticate = "authenticate"

	// EventJoinLobby - вход в лобби по коду
	EventJoinLobby = "joinLobby"

	// EventLeaveLobby - выход из лобби
	EventLeaveLobby = "leaveLobby"

	// EventUpdateLobbySettings - изменение настроек лобби владельцем
	EventUpdateLobbySettings = "updateLobbySettings"

	// EventStartGame - запуск матча владельцем лобби
	EventStartGame = "startGame"

	// EventSubmitAnswer - ответ игрока на текущий вопрос
	EventSubmitAnswer = "submitAnswer"

	// EventRequestNextQuestion - принудительный переход к следующему вопросу (только владелец)
	EventRequestNextQuestion = "requestNextQuestion"
)

// Исходящие события сервера
const (
	// EventAuthenticated - подтверждение аутентификации
	EventAuthenticated = "authenticated"

	// EventJoinedLobby - подтверждение входа в лобби
	EventJoinedLobby = "joinedLobby"

	// EventLobbyUpdate - изменение состава или настроек лобби
	EventLobbyUpdate = "lobbyUpdate"

	// EventGameStart - матч начался
	EventGameStart = "gameStart"

	// EventNewQuestion - новый вопрос (без правильного ответа)
	EventNewQuestion = "newQuestion"

	// EventAnswerResult - персональный результат ответа
	EventAnswerResult = "answerResult"

	// EventScoreUpdate - обновление таблицы счета
	EventScoreUpdate = "scoreUpdate"

	// EventPlayerDisconnected - игрок потерял соединение
	EventPlayerDisconnected = "playerDisconnected"

	// EventGameEnd - матч завершен, итоги и победитель
	EventGameEnd = "gameEnd"

	// EventError - сообщение об ошибке
	EventError = "error"
)
