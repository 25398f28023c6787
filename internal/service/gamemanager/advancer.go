package gamemanager

import (
	"log"
	"time"

	"github.com/yourusername/monkeymind-api/internal/websocket"
)

// Advancer управляет переходами между вопросами матча.
//
// На каждый вопрос взводится резервный таймер (лимит вопроса + запас).
// Когда ответили все подключенные игроки, резервный таймер снимается и
// взводится короткий льготный таймер. Оба таймера сходятся в advance -
// единственной точке перехода: колбэк несет индекс вопроса, для которого
// был взведен, и совпадение с текущим индексом проверяется под мьютексом
// состояния. Опоздавший колбэк (таймер сработал до Stop и ждал мьютекс)
// видит чужой индекс и выходит, поэтому переход для каждого индекса
// выполняется ровно один раз.
type Advancer struct {
	config      *Config
	store       *MatchStore
	deps        *Dependencies
	matchDoneCh chan string
}

// NewAdvancer создает новый контроллер переходов
func NewAdvancer(config *Config, store *MatchStore, deps *Dependencies) *Advancer {
	return &Advancer{
		config:      config,
		store:       store,
		deps:        deps,
		matchDoneCh: make(chan string, 16),
	}
}

// MatchDone возвращает канал с кодами матчей, исчерпавших вопросы
func (a *Advancer) MatchDone() <-chan string {
	return a.matchDoneCh
}

// ScheduleFirstQuestion взводит таймер рассылки первого вопроса
func (a *Advancer) ScheduleFirstQuestion(code string) {
	time.AfterFunc(a.config.FirstQuestionDelay, func() {
		a.SendQuestion(code, 0)
	})
}

// SendQuestion рассылает вопрос с данным индексом и взводит резервный таймер.
// Рассылка пропускается, если матч уже завершен или индекс устарел.
func (a *Advancer) SendQuestion(code string, index int) {
	state, ok := a.store.Get(code)
	if !ok {
		// Матч завершили до срабатывания таймера
		return
	}

	state.lock()
	if !state.IsActive || state.QuestionIndex != index || index >= len(state.Questions) {
		state.unlock()
		return
	}

	q := state.Questions[index]
	total := len(state.Questions)
	now := time.Now()
	state.QuestionStartedAt = now
	state.LastActivityAt = now
	state.AdvancePending = false
	state.stopTimersLocked()

	// Резервный таймер гарантирует переход даже если никто не ответит
	fallbackAfter := time.Duration(q.TimeLimitSec)*time.Second + a.config.FallbackBuffer
	state.fallbackTimer = time.AfterFunc(fallbackAfter, func() {
		a.advance(code, index)
	})
	state.unlock()

	log.Printf("[Advancer] Матч %s: вопрос %d/%d, лимит %dс", code, index+1, total, q.TimeLimitSec)
	a.deps.Broadcaster.BroadcastToLobby(code, websocket.EventNewQuestion, NewQuestionPayload(&q, index+1, total))
}

// OnAnswerScored проверяет условие быстрого перехода после принятого ответа.
// Быстрый переход возможен только когда есть хотя бы один подключенный игрок
// и все подключенные уже ответили; матч без подключенных игроков доигрывает
// по резервным таймерам.
func (a *Advancer) OnAnswerScored(code string) {
	state, ok := a.store.Get(code)
	if !ok {
		return
	}

	state.lock()
	defer state.unlock()

	if !state.IsActive || state.AdvancePending {
		return
	}

	current := state.currentQuestionLocked()
	if current == nil {
		return
	}

	connected := state.connectedCountLocked()
	if connected == 0 {
		return
	}
	if state.answeredCountLocked(current.ID) < connected {
		return
	}

	// Все подключенные ответили: снимаем резервный таймер и даем льготный период
	state.AdvancePending = true
	state.stopTimersLocked()

	index := state.QuestionIndex
	state.graceTimer = time.AfterFunc(a.config.GracePeriod, func() {
		a.advance(code, index)
	})

	log.Printf("[Advancer] Матч %s: все ответили на вопрос %d, льготный период %v", code, index+1, a.config.GracePeriod)
}

// advance - единственная точка перехода к следующему вопросу.
// fromIndex - индекс, для которого был взведен таймер; несовпадение с
// текущим индексом означает, что переход уже выполнен другим таймером.
func (a *Advancer) advance(code string, fromIndex int) {
	state, ok := a.store.Get(code)
	if !ok {
		// Таймер пережил матч
		return
	}

	state.lock()
	if !state.IsActive || state.QuestionIndex != fromIndex {
		state.unlock()
		return
	}

	state.QuestionIndex++
	state.LastActivityAt = time.Now()
	state.stopTimersLocked()
	next := state.QuestionIndex
	total := len(state.Questions)
	state.unlock()

	// Зеркалим индекс в лобби, ошибка не останавливает матч
	a.mirrorQuestionIndex(code, next)

	if next >= total {
		log.Printf("[Advancer] Матч %s: вопросы исчерпаны", code)
		a.signalMatchDone(code)
		return
	}

	a.SendQuestion(code, next)
}

// ForceAdvance принудительно выполняет переход с текущего индекса.
// Используется владельцем лобби для отладки.
func (a *Advancer) ForceAdvance(code string) {
	state, ok := a.store.Get(code)
	if !ok {
		return
	}

	state.lock()
	index := state.QuestionIndex
	active := state.IsActive
	state.unlock()

	if !active {
		return
	}
	a.advance(code, index)
}

// mirrorQuestionIndex сохраняет текущий индекс в лобби
func (a *Advancer) mirrorQuestionIndex(code string, index int) {
	lobby, err := a.deps.LobbyRepo.GetByCode(code)
	if err != nil {
		log.Printf("[Advancer] Матч %s: не удалось прочитать лобби для зеркалирования индекса: %v", code, err)
		return
	}
	lobby.CurrentQuestionIndex = index
	if err := a.deps.LobbyRepo.Update(lobby); err != nil {
		log.Printf("[Advancer] Матч %s: не удалось зеркалировать индекс вопроса: %v", code, err)
	}
}

// signalMatchDone сообщает фасаду о завершении матча
func (a *Advancer) signalMatchDone(code string) {
	select {
	case a.matchDoneCh <- code:
	default:
		// Канал переполнен: завершаем в отдельной горутине, чтобы не потерять сигнал
		go func() {
			a.matchDoneCh <- code
		}()
	}
}
