package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect_ExactMatch(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            "q-1",
		Kind:          QuestionKindText,
		Prompt:        "What is the capital of France?",
		Choices:       StringArray{"Paris", "London", "Berlin", "Madrid"},
		CorrectAnswer: "Paris",
		TimeLimitSec:  30,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("Paris"), "IsCorrect должен вернуть true для точного совпадения")
}

func TestQuestion_IsCorrect_StrictComparison(t *testing.T) {
	// Arrange: сравнение строгое, без нормализации
	question := &Question{
		ID:            "q-1",
		CorrectAnswer: "Paris",
	}

	// Act & Assert: регистр и пробелы имеют значение
	assert.False(t, question.IsCorrect("paris"), "Регистр должен учитываться")
	assert.False(t, question.IsCorrect("PARIS"), "Регистр должен учитываться")
	assert.False(t, question.IsCorrect(" Paris"), "Пробелы должны учитываться")
	assert.False(t, question.IsCorrect("Paris "), "Пробелы должны учитываться")
	assert.False(t, question.IsCorrect(""), "Пустой ответ не должен совпадать")
}

func TestQuestion_IsCorrect_NumericAnswerAsString(t *testing.T) {
	// Arrange: ответ на визуальную головоломку — цифра в строковом виде
	question := &Question{
		ID:            "q-2",
		Kind:          QuestionKindVisual,
		ImageURL:      "https://example.com/puzzle.png",
		CorrectAnswer: "7",
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("7"))
	assert.False(t, question.IsCorrect("07"), "Число сравнивается как строка, без приведения")
	assert.False(t, question.IsCorrect("7.0"), "Число сравнивается как строка, без приведения")
}

func TestQuestion_TimeLimitMs(t *testing.T) {
	// Arrange
	testCases := []struct {
		name     string
		limitSec int
		expected int64
	}{
		{"30 секунд", 30, 30000},
		{"5 секунд", 5, 5000},
		{"60 секунд", 60, 60000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			question := &Question{TimeLimitSec: tc.limitSec}
			assert.Equal(t, tc.expected, question.TimeLimitMs())
		})
	}
}

// Тесты для StringArray (JSONB сериализация)

func TestStringArray_Scan_ValidJSON(t *testing.T) {
	// Arrange
	jsonBytes := []byte(`["Paris", "London", "Berlin"]`)
	var arr StringArray

	// Act
	err := arr.Scan(jsonBytes)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для валидного JSON")
	assert.Len(t, arr, 3, "Должно быть 3 элемента")
	assert.Equal(t, "Paris", arr[0])
	assert.Equal(t, "London", arr[1])
	assert.Equal(t, "Berlin", arr[2])
}

func TestStringArray_Scan_NullValue(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act
	err := arr.Scan(nil)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для nil")
	assert.Len(t, arr, 0, "Для nil должен вернуться пустой массив")
}

func TestStringArray_Scan_InvalidType(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act: передаём неподдерживаемый тип
	err := arr.Scan("not a byte slice")

	// Assert
	assert.Error(t, err, "Scan должен возвращать ошибку для неподдерживаемого типа")
}

func TestStringArray_Value_Empty(t *testing.T) {
	// Arrange
	arr := StringArray{}

	// Act
	val, err := arr.Value()

	// Assert
	require.NoError(t, err, "Value не должен возвращать ошибку для пустого массива")

	bytes, ok := val.([]byte)
	require.True(t, ok, "Value должен возвращать []byte")
	assert.Equal(t, "[]", string(bytes), "Пустой массив должен сериализоваться в []")
}

// Тесты для QuestionList (JSONB сериализация)

func TestQuestionList_RoundTrip(t *testing.T) {
	// Arrange: снимок с правильным ответом должен переживать сериализацию
	list := QuestionList{
		{
			ID:            "q-1",
			Kind:          QuestionKindText,
			Prompt:        "Which planet is known as the Red Planet?",
			Choices:       StringArray{"Venus", "Mars", "Jupiter", "Saturn"},
			CorrectAnswer: "Mars",
			Category:      "fallback",
			Difficulty:    DifficultyEasy,
			TimeLimitSec:  30,
		},
	}

	// Act
	val, err := list.Value()
	require.NoError(t, err)

	var restored QuestionList
	err = restored.Scan(val)

	// Assert
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "q-1", restored[0].ID)
	assert.Equal(t, "Mars", restored[0].CorrectAnswer, "Правильный ответ должен сохраняться в снимке")
	assert.Equal(t, 30, restored[0].TimeLimitSec)
}

func TestQuestionList_Scan_NullValue(t *testing.T) {
	// Arrange
	var list QuestionList

	// Act
	err := list.Scan(nil)

	// Assert
	require.NoError(t, err)
	assert.Len(t, list, 0, "Для nil должен вернуться пустой список")
}
