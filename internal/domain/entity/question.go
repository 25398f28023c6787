package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Виды вопросов
const (
	QuestionKindVisual = "visual" // картинка-головоломка, ответ — цифра
	QuestionKindText   = "text"   // текстовый вопрос с вариантами ответа
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет один вопрос матча.
// Вопросы не хранятся в отдельной таблице: снимок раунда сериализуется
// в JSONB внутри лобби, поэтому ID — это UUID, а не последовательный ключ.
type Question struct {
	ID            string      `json:"question_id"`
	Kind          string      `json:"kind"`
	Prompt        string      `json:"prompt,omitempty"`
	ImageURL      string      `json:"image_url,omitempty"`
	Choices       StringArray `json:"choices,omitempty"`
	CorrectAnswer string      `json:"correct_answer"`
	Category      string      `json:"category"`
	Difficulty    string      `json:"difficulty"`
	TimeLimitSec  int         `json:"time_limit_sec"`
}

// IsCorrect проверяет ответ строгим строковым сравнением.
// Никакой нормализации регистра или пробелов не выполняется: "paris" != "Paris".
func (q *Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// TimeLimitMs возвращает лимит времени вопроса в миллисекундах
func (q *Question) TimeLimitMs() int64 {
	return int64(q.TimeLimitSec) * 1000
}

// QuestionList - снимок вопросов матча, сериализуемый в JSONB
type QuestionList []Question

// Scan реализует интерфейс sql.Scanner для QuestionList
func (l *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*l = QuestionList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = QuestionList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для QuestionList
func (l QuestionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}
