package model

import "time"

// BorrowRecord is one student's live claim on one book. It exists from the
// borrow request until the return; a returned book has no record at all.
type BorrowRecord struct {
	ID              int64      `json:"id"`
	StudentID       int64      `json:"student_id"`
	BookID          int64      `json:"book_id"`
	ApplicationDate *time.Time `json:"book_application_date,omitempty"`
	IssueDate       *time.Time `json:"book_issue_date,omitempty"`
	ReturnDate      *time.Time `json:"book_return_date,omitempty"`
	IsIssued        bool       `json:"is_issued"`
	IssuerID        *int64     `json:"issuer_id,omitempty"`
}

// PendingRequest is the librarian-facing view of a not-yet-approved record.
type PendingRequest struct {
	RecordID        int64      `json:"record_id"`
	BookID          int64      `json:"book_id"`
	BookTitle       string     `json:"book_title"`
	StudentID       int64      `json:"student_id"`
	StudentUsername string     `json:"student_username"`
	ApplicationDate *time.Time `json:"book_application_date,omitempty"`
}
