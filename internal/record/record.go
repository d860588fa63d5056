// Where: internal/record/record.go
// What: Seed record domain model and field constraints.
// Why: One shared shape for every import target (document, blob, queue).
package record

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Sensitivity classifies a record by increasing protection requirement.
// Purely descriptive; nothing in the import pipeline enforces it.
type Sensitivity string

const (
	SensitivityPublic       Sensitivity = "Public"
	SensitivityInternal     Sensitivity = "Internal"
	SensitivityConfidential Sensitivity = "Confidential"
	SensitivityRestricted   Sensitivity = "Restricted"
)

// Levels returns all sensitivity levels in ascending protection order.
func Levels() []Sensitivity {
	return []Sensitivity{
		SensitivityPublic,
		SensitivityInternal,
		SensitivityConfidential,
		SensitivityRestricted,
	}
}

// Hyperlink is an external reference attached to a record.
type Hyperlink struct {
	URL         string `json:"url" validate:"required,url"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	IsExternal  bool   `json:"isExternal"`
	IsTrusted   bool   `json:"isTrusted"`
}

// DomainRecord is the unit of seeded content.
//
// ID, ImportedBy, ImportedOn, and PartitionKey are provenance fields stamped
// by the import loop at write time; the generator leaves them zero.
// PublishedBy/PublishedOn carry no invariant relative to ImportedOn.
type DomainRecord struct {
	ID           string      `json:"id,omitempty" dynamodbav:"id"`
	Title        string      `json:"title" dynamodbav:"title" validate:"required,min=1,max=100"`
	Description  *string     `json:"description,omitempty" dynamodbav:"description,omitempty" validate:"omitempty,max=800"`
	Tags         []string    `json:"tags" dynamodbav:"tags"`
	Sensitivity  Sensitivity `json:"sensitivity" dynamodbav:"sensitivity" validate:"required,oneof=Public Internal Confidential Restricted"`
	References   []Hyperlink `json:"references" dynamodbav:"references" validate:"dive"`
	ImportedBy   string      `json:"importedBy,omitempty" dynamodbav:"importedBy"`
	ImportedOn   time.Time   `json:"importedOn,omitzero" dynamodbav:"importedOn"`
	PublishedBy  *string     `json:"publishedBy,omitempty" dynamodbav:"publishedBy,omitempty"`
	PublishedOn  *time.Time  `json:"publishedOn,omitempty" dynamodbav:"publishedOn,omitempty"`
	PartitionKey string      `json:"filePath,omitempty" dynamodbav:"filePath"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the record against its declared field constraints.
func (r DomainRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid record %q: %w", r.Title, err)
	}
	return nil
}
