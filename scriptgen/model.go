package scriptgen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrGenerationNotFound is returned when a generation record is not found.
	ErrGenerationNotFound = errors.New("generation not found")

	// ErrInvalidFramework is returned when framework is invalid.
	ErrInvalidFramework = errors.New("invalid framework")

	// ErrInvalidStatus is returned when a generation status is not recognised.
	ErrInvalidStatus = errors.New("invalid generation status")

	// ErrInvalidFileName is returned when a completed record has no file name.
	ErrInvalidFileName = errors.New("file_name is required")
)

// Framework represents the automation framework type.
type Framework string

const (
	FrameworkSelenium   Framework = "selenium"
	FrameworkPlaywright Framework = "playwright"
)

// IsValid checks if the framework is valid.
func (f Framework) IsValid() bool {
	switch f {
	case FrameworkSelenium, FrameworkPlaywright:
		return true
	default:
		return false
	}
}

// ParseFramework accepts the selector labels ("Playwright", "Selenium") as well
// as the lowercase identifiers.
func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q (must be 'playwright' or 'selenium')", ErrInvalidFramework, s)
	}
	return f, nil
}

// DisplayName returns the human-facing framework name.
func (f Framework) DisplayName() string {
	if f == FrameworkSelenium {
		return "Selenium"
	}
	return "Playwright"
}

// Extension is the file extension of generated artifacts. Both frameworks are
// driven from Python/pytest.
func (f Framework) Extension() string {
	return "py"
}

// GenerationStatus is the outcome of a recorded generation.
type GenerationStatus string

const (
	StatusPending   GenerationStatus = "pending"
	StatusCompleted GenerationStatus = "completed"
	StatusFailed    GenerationStatus = "failed"
)

// IsValid checks if the generation status is valid.
func (s GenerationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// GenerationRecord is the history entry kept for each generation request made
// through the HTTP frontend.
type GenerationRecord struct {
	ID           uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	SessionID    string           `json:"session_id,omitempty" gorm:"type:varchar(64)"`
	Framework    Framework        `json:"framework" gorm:"type:varchar(20);not null"`
	BaseURL      string           `json:"base_url,omitempty" gorm:"type:varchar(2048)"`
	Status       GenerationStatus `json:"status" gorm:"type:varchar(20);not null"`
	ErrorMessage *string          `json:"error_message,omitempty" gorm:"type:text"`
	Warning      *string          `json:"warning,omitempty" gorm:"type:text"`
	FileName     string           `json:"file_name,omitempty" gorm:"type:varchar(255)"`
	Files        string           `json:"files,omitempty" gorm:"type:varchar(1024)"`
	CombinedPath string           `json:"-" gorm:"type:varchar(512)"`
	FileSize     int64            `json:"file_size"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName pins the table created by the SQL migrations.
func (GenerationRecord) TableName() string {
	return "generations"
}

// BeforeCreate hook to generate UUID before creating a new record
func (r *GenerationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// FileList splits the stored artifact names.
func (r *GenerationRecord) FileList() []string {
	if r.Files == "" {
		return nil
	}
	return strings.Split(r.Files, ",")
}

// Validate checks if the record has valid required fields.
func (r *GenerationRecord) Validate() error {
	if !r.Framework.IsValid() {
		return ErrInvalidFramework
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.Status == StatusCompleted && r.FileName == "" {
		return ErrInvalidFileName
	}
	return nil
}

// NewPendingRecord builds the history record stored when a request is
// accepted. OutcomeSetters completes it once the generation returns.
func NewPendingRecord(req Request, sessionID string) *GenerationRecord {
	return &GenerationRecord{
		ID:        req.ID,
		SessionID: sessionID,
		Framework: req.Framework,
		BaseURL:   req.BaseURL,
		Status:    StatusPending,
	}
}
