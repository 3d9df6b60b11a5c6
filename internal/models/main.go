// Package models defines the core data structures for users and diagnoses.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// Email is the unique contact address of the user.
	Email string `json:"email"`
	// PasswordHash is the salted hash of the user's password.
	PasswordHash []byte `json:"-"`
}

// DiagnosisRecord is one persisted outcome of a diagnosis request.
// Records are immutable once written.
type DiagnosisRecord struct {
	// ID is assigned by the history store on append.
	ID int64 `json:"id"`
	// UserID references the owning user.
	UserID int64 `json:"user_id"`
	// ImageFilename is the generated name of the stored upload.
	ImageFilename string `json:"image_filename"`
	// Disease is the display form of the predicted label.
	Disease string `json:"disease"`
	// Confidence is the prediction probability in percent, 0..100.
	Confidence float64 `json:"confidence"`
	// Recommendation is markdown treatment advice.
	Recommendation string `json:"recommendation"`
	// CreatedAt is the UTC write time.
	CreatedAt time.Time `json:"created_at"`
}
