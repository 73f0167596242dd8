package models

import (
	"encoding/base64"
	"fmt"
	"time"
)

const (
	periodLayout = "2006-01"
	dateLayout   = "2006-01-02"
)

// EmployeeInfo is the header data of a report.
type EmployeeInfo struct {
	Name       string `form:"name" json:"name" binding:"max=120"`
	ID         string `form:"id" json:"id" binding:"max=40"`
	Position   string `form:"position" json:"position" binding:"max=120"`
	Department string `form:"department" json:"department" binding:"max=120"`
	ReportDate string `form:"reportDate" json:"reportDate" binding:"omitempty,datetime=2006-01-02"`
}

// Logo is an uploaded image already normalised for display and embedding.
type Logo struct {
	MIME string
	Data []byte
}

func (l *Logo) DataURL() string {
	if l == nil || len(l.Data) == 0 {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", l.MIME, base64.StdEncoding.EncodeToString(l.Data))
}

// Session is everything one browser is working on. It is owned by the session
// store and only changed through the intent methods below.
type Session struct {
	ID        string
	Employee  EmployeeInfo
	Period    string
	Ratings   Evaluation
	Logo      *Logo
	Preview   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession starts an empty evaluation for the month of now.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Employee:  EmployeeInfo{ReportDate: now.Format(dateLayout)},
		Period:    now.Format(periodLayout),
		Ratings:   Evaluation{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rate applies a rating for itemID using the rubric's weights.
func (s *Session) Rate(r *Rubric, itemID string, level RatingLevel) error {
	item, ok := r.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if !level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	s.Ratings = s.Ratings.Rate(item, level)
	return nil
}

func (s *Session) SetNote(r *Rubric, itemID, text string) error {
	if _, ok := r.Item(itemID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	s.Ratings = s.Ratings.SetNote(itemID, text)
	return nil
}

// SetEmployeeField updates one header field by its form name.
func (s *Session) SetEmployeeField(field, value string) error {
	switch field {
	case "name":
		s.Employee.Name = value
	case "id":
		s.Employee.ID = value
	case "position":
		s.Employee.Position = value
	case "department":
		s.Employee.Department = value
	case "reportDate":
		if value != "" {
			if _, err := time.Parse(dateLayout, value); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidDate, value)
			}
		}
		s.Employee.ReportDate = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetPeriod sets the evaluated month, formatted YYYY-MM.
func (s *Session) SetPeriod(period string) error {
	if _, err := time.Parse(periodLayout, period); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	s.Period = period
	return nil
}

// SetLogo replaces the current logo. A nil logo removes it.
func (s *Session) SetLogo(logo *Logo) {
	s.Logo = logo
}

// TogglePreview flips between the editor and the report preview.
func (s *Session) TogglePreview() bool {
	s.Preview = !s.Preview
	return s.Preview
}

// PeriodLabel renders the period as "Tháng MM/YYYY".
func (s *Session) PeriodLabel() string {
	t, err := time.Parse(periodLayout, s.Period)
	if err != nil {
		return s.Period
	}
	return fmt.Sprintf("Tháng %02d/%d", int(t.Month()), t.Year())
}

// ReportDateLabel renders the report date as dd/mm/yyyy, falling back to
// fallback's date when none is set.
func (s *Session) ReportDateLabel(fallback time.Time) string {
	t, err := time.Parse(dateLayout, s.Employee.ReportDate)
	if err != nil {
		t = fallback
	}
	return t.Format("02/01/2006")
}

// Clone returns a deep copy safe to hand to read-only consumers.
func (s *Session) Clone() *Session {
	c := *s
	c.Ratings = s.Ratings.Clone()
	if s.Logo != nil {
		logo := *s.Logo
		logo.Data = append([]byte(nil), s.Logo.Data...)
		c.Logo = &logo
	}
	return &c
}
