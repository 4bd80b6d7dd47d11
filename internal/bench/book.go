package bench

import "fmt"

// Book is the ephemeral entity exercised by one workload cycle. It exists
// only for the duration of the cycle; the server-assigned id is the only
// identity that outlives creation.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// NewBook generates a deterministic book identity for (label, iteration).
// Labels are unique per virtual user, so concurrent workers never collide.
func NewBook(label string, iteration int64) Book {
	return Book{
		Title:  fmt.Sprintf("Perf Book %s-%d", label, iteration),
		Author: fmt.Sprintf("Author %s-%d", label, iteration),
	}
}

// Updated returns the mutated variant sent by the update step.
func (b Book) Updated() Book {
	return Book{
		Title:  "Updated " + b.Title,
		Author: "Updated " + b.Author,
	}
}
