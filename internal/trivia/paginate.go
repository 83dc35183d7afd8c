package trivia

import "strconv"

// QuestionsPerPage is the fixed page size of every question listing
const QuestionsPerPage = 10

// Paginate returns the items of the 1-based page. Pages past the end and
// pages below 1 are empty.
func Paginate[T any](items []T, page int) []T {
	pages := (len(items) + QuestionsPerPage - 1) / QuestionsPerPage
	// compare page numbers before multiplying so huge pages cannot overflow
	if page < 1 || page > pages {
		return []T{}
	}
	start := (page - 1) * QuestionsPerPage
	end := start + QuestionsPerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ParsePage reads a page query value. Missing or non-numeric values mean
// the first page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return page
}
