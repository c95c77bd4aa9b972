package item

import "time"

// ReviewEvent records one answered question. Events are append-only; they are
// written exactly once per answer and never modified.
type ReviewEvent struct {
	ID            string    `json:"id" db:"id"`
	Category      Category  `json:"category" db:"category"`
	ItemID        string    `json:"item_id" db:"item_id"`
	Correct       bool      `json:"correct" db:"correct"`
	Question      string    `json:"question" db:"question"`
	UserAnswer    string    `json:"user_answer" db:"user_answer"`
	CorrectAnswer string    `json:"correct_answer" db:"correct_answer"`
	Date          time.Time `json:"date" db:"date"`
}

// ErrorLogEntry records one incorrect answer for weak-point analysis. Entries
// come from two producers: the review session engine and the error-log sheet
// import, which fills in the sheet-only fields.
type ErrorLogEntry struct {
	ID                string    `json:"id" db:"id"`
	Category          Category  `json:"category" db:"category"`
	ItemID            string    `json:"item_id" db:"item_id"`
	Question          string    `json:"question" db:"question"`
	UserAnswer        string    `json:"user_answer" db:"user_answer"`
	CorrectAnswer     string    `json:"correct_answer" db:"correct_answer"`
	Explanation       string    `json:"explanation" db:"explanation"`
	Source            string    `json:"source,omitempty" db:"source"`
	Status            string    `json:"status,omitempty" db:"status"`
	NeedsSRS          bool      `json:"needs_srs,omitempty" db:"needs_srs"`
	PlannedReviewDate string    `json:"planned_review_date,omitempty" db:"planned_review_date"`
	Notes             string    `json:"notes,omitempty" db:"notes"`
	Date              time.Time `json:"date" db:"date"`
}
