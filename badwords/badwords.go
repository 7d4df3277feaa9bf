package badwords

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joy095/venue/logger"
)

//go:embed en.txt
var defaultList string

// ErrBadWords is returned when free text submitted with a booking contains a listed word.
var ErrBadWords = errors.New("text contains inappropriate language")

var (
	mu          sync.RWMutex
	badWordsMap = parse(defaultList)
)

func parse(data string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, line := range strings.Split(data, "\n") {
		if w := strings.ToLower(strings.TrimSpace(line)); w != "" && !strings.HasPrefix(w, "#") {
			words[w] = struct{}{}
		}
	}
	return words
}

// LoadBadWords replaces the built-in list with the words in filename, one per line.
func LoadBadWords(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read bad words file: %w", err)
	}
	words := parse(string(data))

	mu.Lock()
	badWordsMap = words
	mu.Unlock()

	logger.InfoLogger.Infof("Loaded %d bad words from %s", len(words), filename)
	return nil
}

// ContainsBadWords reports whether any word of text, split on non-alphanumerics, is listed.
func ContainsBadWords(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	mu.RLock()
	defer mu.RUnlock()
	for _, word := range words {
		if _, found := badWordsMap[word]; found {
			logger.WarnLogger.Warnf("Bad word detected: %s", word)
			return true
		}
	}
	return false
}

// Screen returns ErrBadWords naming the first offending field.
func Screen(fields map[string]string) error {
	for name, text := range fields {
		if ContainsBadWords(text) {
			return fmt.Errorf("%w: %s", ErrBadWords, name)
		}
	}
	return nil
}

// AddBadWord adds a word to the list.
func AddBadWord(badWord string) error {
	badWord = strings.ToLower(strings.TrimSpace(badWord))
	if badWord == "" {
		return errors.New("bad word must not be empty")
	}
	mu.Lock()
	defer mu.Unlock()
	badWordsMap[badWord] = struct{}{}
	return nil
}

// RemoveBadWord removes a word from the list and reports whether it was present.
func RemoveBadWord(badWord string) bool {
	badWord = strings.ToLower(strings.TrimSpace(badWord))
	mu.Lock()
	defer mu.Unlock()
	if _, found := badWordsMap[badWord]; !found {
		return false
	}
	delete(badWordsMap, badWord)
	return true
}
