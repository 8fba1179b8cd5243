package models

// Comment is one entry of a review thread attached to an element guid.
// Snapshot holds a data URI of the viewport at the time of writing.
type Comment struct {
	UUID     string `json:"uuid"`
	Text     string `json:"text"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	ID       string `json:"id"`
	Snapshot string `json:"snapshot,omitempty"`
}
