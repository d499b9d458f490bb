package post

import (
	"fmt"
	"strings"
)

const wordsPerMinute = 200

// ReadingMinutes estimates whole minutes to read text, rounded up, never below one.
func ReadingMinutes(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ReadingTime formats ReadingMinutes as "N min read".
func ReadingTime(text string) string {
	return fmt.Sprintf("%d min read", ReadingMinutes(text))
}
