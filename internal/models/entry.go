package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"

	LanguagePT = "pt"
	LanguageEN = "en"

	ImageWord       = "word"
	ImageReflection = "reflection"
)

const (
	msgMissingFields = "Campos obrigatórios faltando"
	msgInvalidFields = "Valores inválidos"
)

func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusScheduled || s == StatusPublished
}

func ValidLanguage(l string) bool {
	return l == LanguagePT || l == LanguageEN
}

func ValidImageKind(k string) bool {
	return k == ImageWord || k == ImageReflection
}

// Localized is a text in Portuguese with an optional English version.
type Localized struct {
	PT string `bson:"pt,omitempty" json:"pt,omitempty"`
	EN string `bson:"en,omitempty" json:"en,omitempty"`
}

func (l Localized) trimmed() Localized {
	return Localized{PT: strings.TrimSpace(l.PT), EN: strings.TrimSpace(l.EN)}
}

// Images holds URLs of the pictures attached to an entry.
type Images struct {
	Word       string `bson:"word,omitempty" json:"word,omitempty"`
	Reflection string `bson:"reflection,omitempty" json:"reflection,omitempty"`
}

// Get returns the URL stored for kind.
func (i Images) Get(kind string) string {
	if kind == ImageReflection {
		return i.Reflection
	}
	return i.Word
}

// With returns a copy with the URL for kind replaced.
func (i Images) With(kind, url string) Images {
	if kind == ImageReflection {
		i.Reflection = url
	} else {
		i.Word = url
	}
	return i
}

// ImageSlot replaces the URL of one image, leaving the other untouched.
type ImageSlot struct {
	Kind string
	URL  string
}

// Entry is one "word of the day" devotional record.
type Entry struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Word        Localized           `bson:"word" json:"word"`
	Quote       Localized           `bson:"quote" json:"quote"`
	Reference   Localized           `bson:"reference" json:"reference"`
	Reflection  Localized           `bson:"reflection" json:"reflection"`
	PublishDate time.Time           `bson:"publishDate" json:"publishDate"`
	Status      string              `bson:"status" json:"status"`
	Language    string              `bson:"language" json:"language"`
	Images      Images              `bson:"images" json:"images"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy   *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// EntryInput is the body accepted when creating an entry.
type EntryInput struct {
	Word        Localized     `json:"word"`
	Quote       Localized     `json:"quote"`
	Reference   Localized     `json:"reference"`
	Reflection  Localized     `json:"reflection"`
	PublishDate *FlexibleTime `json:"publishDate"`
	Status      string        `json:"status"`
	Language    string        `json:"language"`
	Images      Images        `json:"images"`
}

// NewEntry builds an entry from input, trimming text and applying defaults.
// The caller still has to validate the result.
func NewEntry(in EntryInput, createdBy primitive.ObjectID, now time.Time) *Entry {
	e := &Entry{
		Word:        in.Word.trimmed(),
		Quote:       in.Quote.trimmed(),
		Reference:   in.Reference.trimmed(),
		Reflection:  in.Reflection.trimmed(),
		PublishDate: now,
		Status:      strings.TrimSpace(in.Status),
		Language:    strings.TrimSpace(in.Language),
		Images:      in.Images,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.PublishDate != nil && !in.PublishDate.IsZero() {
		e.PublishDate = in.PublishDate.Time.UTC().Truncate(time.Millisecond)
	}
	if e.Status == "" {
		e.Status = StatusDraft
	}
	if e.Language == "" {
		e.Language = LanguagePT
	}
	return e
}

// Validate checks required Portuguese fields and enum values.
func (e *Entry) Validate() error {
	var errs []FieldError
	errs = appendRequired(errs, "word.pt", e.Word.PT)
	errs = appendRequired(errs, "quote.pt", e.Quote.PT)
	errs = appendRequired(errs, "reflection.pt", e.Reflection.PT)
	errs = appendEnums(errs, e.Status, e.Language)
	return entryValidationError(errs)
}

// EntryPatch lists the fields replaced by an update. Nil fields keep their
// stored value; nested objects are replaced whole.
type EntryPatch struct {
	Word        *Localized    `json:"word"`
	Quote       *Localized    `json:"quote"`
	Reference   *Localized    `json:"reference"`
	Reflection  *Localized    `json:"reflection"`
	PublishDate *FlexibleTime `json:"publishDate"`
	Status      *string       `json:"status"`
	Language    *string       `json:"language"`
	Images      *Images       `json:"images"`

	Image     *ImageSlot         `json:"-"`
	UpdatedBy primitive.ObjectID `json:"-"`
	UpdatedAt time.Time          `json:"-"`
}

// Normalize trims text and drops empty scalar values, which count as absent.
func (p *EntryPatch) Normalize() {
	for _, l := range []**Localized{&p.Word, &p.Quote, &p.Reference, &p.Reflection} {
		if *l != nil {
			t := (*l).trimmed()
			*l = &t
		}
	}
	for _, s := range []**string{&p.Status, &p.Language} {
		if *s != nil {
			v := strings.TrimSpace(**s)
			if v == "" {
				*s = nil
			} else {
				*s = &v
			}
		}
	}
	if p.PublishDate != nil {
		if p.PublishDate.IsZero() {
			p.PublishDate = nil
		} else {
			p.PublishDate.Time = p.PublishDate.Time.UTC().Truncate(time.Millisecond)
		}
	}
}

// Validate checks the replaced fields. A replaced text object must keep its
// Portuguese value.
func (p *EntryPatch) Validate() error {
	var errs []FieldError
	if p.Word != nil {
		errs = appendRequired(errs, "word.pt", p.Word.PT)
	}
	if p.Quote != nil {
		errs = appendRequired(errs, "quote.pt", p.Quote.PT)
	}
	if p.Reflection != nil {
		errs = appendRequired(errs, "reflection.pt", p.Reflection.PT)
	}
	status, language := StatusDraft, LanguagePT
	if p.Status != nil {
		status = *p.Status
	}
	if p.Language != nil {
		language = *p.Language
	}
	errs = appendEnums(errs, status, language)
	return entryValidationError(errs)
}

// Apply replaces the fields present in p and stamps the audit fields.
func (e *Entry) Apply(p EntryPatch) {
	if p.Word != nil {
		e.Word = *p.Word
	}
	if p.Quote != nil {
		e.Quote = *p.Quote
	}
	if p.Reference != nil {
		e.Reference = *p.Reference
	}
	if p.Reflection != nil {
		e.Reflection = *p.Reflection
	}
	if p.PublishDate != nil {
		e.PublishDate = p.PublishDate.Time
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Language != nil {
		e.Language = *p.Language
	}
	if p.Images != nil {
		e.Images = *p.Images
	}
	if p.Image != nil {
		e.Images = e.Images.With(p.Image.Kind, p.Image.URL)
	}
	by := p.UpdatedBy
	e.UpdatedBy = &by
	e.UpdatedAt = p.UpdatedAt
}

func appendRequired(errs []FieldError, field, value string) []FieldError {
	if value == "" {
		errs = append(errs, FieldError{Field: field, Message: "campo obrigatório"})
	}
	return errs
}

func appendEnums(errs []FieldError, status, language string) []FieldError {
	if !ValidStatus(status) {
		errs = append(errs, FieldError{Field: "status", Message: "deve ser draft, scheduled ou published"})
	}
	if !ValidLanguage(language) {
		errs = append(errs, FieldError{Field: "language", Message: "deve ser pt ou en"})
	}
	return errs
}

func entryValidationError(errs []FieldError) error {
	msg := msgInvalidFields
	for _, f := range errs {
		if f.Message == "campo obrigatório" {
			msg = msgMissingFields
			break
		}
	}
	return NewValidationError(msg, errs)
}
