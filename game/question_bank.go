package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// QuestionBank holds trivia questions and scramble words
type QuestionBank struct {
	Questions []Question `json:"questions" validate:"dive"`
	Words     []string   `json:"words" validate:"dive,required"`
}

// LoadQuestionBank reads and validates a JSON bank file
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var bank QuestionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank %s: %w", path, err)
	}
	if err := validator.New().Struct(&bank); err != nil {
		return nil, fmt.Errorf("invalid question bank %s: %w", path, err)
	}

	for i, w := range bank.Words {
		bank.Words[i] = strings.ToLower(w)
	}
	return &bank, nil
}

// SampleQuestions picks n distinct questions in random order
func (b *QuestionBank) SampleQuestions(n int, rng *rand.Rand) ([]Question, error) {
	if n <= 0 || len(b.Questions) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientContent, n, len(b.Questions))
	}
	out := make([]Question, 0, n)
	for _, i := range rng.Perm(len(b.Questions))[:n] {
		out = append(out, b.Questions[i])
	}
	return out, nil
}

// SampleWords picks n distinct words in random order
func (b *QuestionBank) SampleWords(n int, rng *rand.Rand) ([]string, error) {
	if n <= 0 || len(b.Words) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientContent, n, len(b.Words))
	}
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(b.Words))[:n] {
		out = append(out, b.Words[i])
	}
	return out, nil
}
