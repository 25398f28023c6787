package question

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// fallbackQuestion - заготовка текстового вопроса без ID и лимита времени
type fallbackQuestion struct {
	Prompt        string
	Choices       []string
	CorrectAnswer string
	Category      string
	Difficulty    string
}

// Резервный пул вопросов, используется когда Banana API недоступен
var fallbackQuestions = []fallbackQuestion{
	{
		Prompt:        "What is the capital of France?",
		Choices:       []string{"London", "Berlin", "Paris", "Madrid"},
		CorrectAnswer: "Paris",
		Category:      "Geography",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Which planet is known as the Red Planet?",
		Choices:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
		CorrectAnswer: "Mars",
		Category:      "Science",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Who painted the Mona Lisa?",
		Choices:       []string{"Vincent van Gogh", "Pablo Picasso", "Leonardo da Vinci", "Michelangelo"},
		CorrectAnswer: "Leonardo da Vinci",
		Category:      "Art",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "What is the largest ocean on Earth?",
		Choices:       []string{"Atlantic Ocean", "Indian Ocean", "Arctic Ocean", "Pacific Ocean"},
		CorrectAnswer: "Pacific Ocean",
		Category:      "Geography",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Which programming language is known as the \"language of the web\"?",
		Choices:       []string{"Python", "JavaScript", "Java", "C++"},
		CorrectAnswer: "JavaScript",
		Category:      "Technology",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "What year did World War II end?",
		Choices:       []string{"1943", "1944", "1945", "1946"},
		CorrectAnswer: "1945",
		Category:      "History",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "What is the chemical symbol for gold?",
		Choices:       []string{"Go", "Gd", "Au", "Ag"},
		CorrectAnswer: "Au",
		Category:      "Science",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "Which country is home to the kangaroo?",
		Choices:       []string{"New Zealand", "Australia", "South Africa", "Brazil"},
		CorrectAnswer: "Australia",
		Category:      "Geography",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "What is the smallest prime number?",
		Choices:       []string{"0", "1", "2", "3"},
		CorrectAnswer: "2",
		Category:      "Mathematics",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "Who wrote \"Romeo and Juliet\"?",
		Choices:       []string{"Charles Dickens", "William Shakespeare", "Jane Austen", "Mark Twain"},
		CorrectAnswer: "William Shakespeare",
		Category:      "Literature",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "What is the speed of light in vacuum?",
		Choices:       []string{"299,792 km/s", "300,000 km/s", "150,000 km/s", "450,000 km/s"},
		CorrectAnswer: "299,792 km/s",
		Category:      "Physics",
		Difficulty:    entity.DifficultyHard,
	},
	{
		Prompt:        "Which element has the atomic number 1?",
		Choices:       []string{"Helium", "Hydrogen", "Oxygen", "Carbon"},
		CorrectAnswer: "Hydrogen",
		Category:      "Chemistry",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "What is the largest mammal in the world?",
		Choices:       []string{"African Elephant", "Blue Whale", "Giraffe", "Polar Bear"},
		CorrectAnswer: "Blue Whale",
		Category:      "Biology",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "In which year did the first iPhone release?",
		Choices:       []string{"2005", "2006", "2007", "2008"},
		CorrectAnswer: "2007",
		Category:      "Technology",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "What is the tallest mountain in the world?",
		Choices:       []string{"K2", "Kangchenjunga", "Mount Everest", "Lhotse"},
		CorrectAnswer: "Mount Everest",
		Category:      "Geography",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Which gas do plants absorb from the atmosphere?",
		Choices:       []string{"Oxygen", "Nitrogen", "Carbon Dioxide", "Hydrogen"},
		CorrectAnswer: "Carbon Dioxide",
		Category:      "Biology",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Who developed the theory of relativity?",
		Choices:       []string{"Isaac Newton", "Albert Einstein", "Galileo Galilei", "Stephen Hawking"},
		CorrectAnswer: "Albert Einstein",
		Category:      "Physics",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "What is the main programming paradigm of JavaScript?",
		Choices:       []string{"Object-oriented", "Functional", "Multi-paradigm", "Procedural"},
		CorrectAnswer: "Multi-paradigm",
		Category:      "Technology",
		Difficulty:    entity.DifficultyHard,
	},
	{
		Prompt:        "How many continents are there?",
		Choices:       []string{"5", "6", "7", "8"},
		CorrectAnswer: "7",
		Category:      "Geography",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "What is the boiling point of water at sea level?",
		Choices:       []string{"90°C", "100°C", "110°C", "120°C"},
		CorrectAnswer: "100°C",
		Category:      "Science",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Which programming language is known for its use in data science?",
		Choices:       []string{"JavaScript", "Python", "C#", "Ruby"},
		CorrectAnswer: "Python",
		Category:      "Technology",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "What is the currency of Japan?",
		Choices:       []string{"Yuan", "Won", "Yen", "Ringgit"},
		CorrectAnswer: "Yen",
		Category:      "Geography",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Who is known as the father of computers?",
		Choices:       []string{"Alan Turing", "Charles Babbage", "John von Neumann", "Bill Gates"},
		CorrectAnswer: "Charles Babbage",
		Category:      "Technology",
		Difficulty:    entity.DifficultyMedium,
	},
	{
		Prompt:        "What is the largest planet in our solar system?",
		Choices:       []string{"Saturn", "Jupiter", "Uranus", "Neptune"},
		CorrectAnswer: "Jupiter",
		Category:      "Science",
		Difficulty:    entity.DifficultyEasy,
	},
	{
		Prompt:        "Which year did the Berlin Wall fall?",
		Choices:       []string{"1987", "1988", "1989", "1990"},
		CorrectAnswer: "1989",
		Category:      "History",
		Difficulty:    entity.DifficultyMedium,
	},
}

// FallbackQuestions собирает список вопросов из резервного пула.
// Фильтр по сложности применяется только если отфильтрованного пула хватает
// на запрошенное количество; при нехватке вопросы повторяются.
func FallbackQuestions(count int, difficulty string, timeLimitSec int) []entity.Question {
	pool := fallbackQuestions

	if difficulty != "" {
		filtered := make([]fallbackQuestion, 0, len(pool))
		for _, q := range pool {
			if q.Difficulty == difficulty {
				filtered = append(filtered, q)
			}
		}
		if len(filtered) >= count {
			pool = filtered
		}
	}

	// Перемешиваем копию пула
	shuffled := make([]fallbackQuestion, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	selected := make([]entity.Question, 0, count)
	for i := 0; i < count; i++ {
		// Повторяем вопросы по кругу, если пул меньше запрошенного количества
		src := shuffled[i%len(shuffled)]
		selected = append(selected, entity.Question{
			ID:            uuid.New().String(),
			Kind:          entity.QuestionKindText,
			Prompt:        src.Prompt,
			Choices:       entity.StringArray(src.Choices),
			CorrectAnswer: src.CorrectAnswer,
			Category:      src.Category,
			Difficulty:    src.Difficulty,
			TimeLimitSec:  timeLimitSec,
		})
	}

	return selected
}

// FallbackPoolSize возвращает размер резервного пула
func FallbackPoolSize() int {
	return len(fallbackQuestions)
}
