package participant

import "time"

// Role discriminates which variable field group applies to a record.
type Role string

const (
	RoleStudent             Role = "Student"
	RoleWorkingProfessional Role = "Working Professional"
)

// Record is one accepted registration. Records are immutable once stored:
// there is no update or delete path anywhere in the system.
type Record struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`

	// Populated only when Role is Working Professional.
	CompanyName       string `json:"companyName"`
	YearsOfExperience *int   `json:"yearsOfExperience"`

	// Populated only when Role is Student.
	Department  string `json:"department"`
	CurrentYear *int   `json:"currentYear"`

	CreatedAt time.Time `json:"createdAt"`
}

// Submission is the raw registration payload before validation. Numeric
// fields arrive as json.Number-compatible values or strings, so they are
// carried verbatim and parsed by the validator.
type Submission struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Role              string `json:"role"`
	CompanyName       string `json:"companyName"`
	YearsOfExperience any    `json:"yearsOfExperience"`
	Department        string `json:"department"`
	CurrentYear       any    `json:"currentYear"`
}
