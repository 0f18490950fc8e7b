package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the shoot date format entered by the user and used in folder and file names.
const DateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ShootMetadata describes one shoot. It is supplied once per session and is
// not modified during a transfer run.
type ShootMetadata struct {
	Client  string `validate:"required"`
	Project string `validate:"required"`
	Date    string `validate:"required,datetime=2006-01-02"`
}

// NewShootMetadata trims the fields and falls back to today's date when date is blank.
func NewShootMetadata(client, project, date string, now time.Time) ShootMetadata {
	date = strings.TrimSpace(date)
	if date == "" {
		date = now.Format(DateLayout)
	}
	return ShootMetadata{
		Client:  strings.TrimSpace(client),
		Project: strings.TrimSpace(project),
		Date:    date,
	}
}

func (m ShootMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("invalid shoot metadata: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// BaseName is the naming key shared by every file of one (date, client, project) batch.
func (m ShootMetadata) BaseName() string {
	return fmt.Sprintf("%s_%s_%s", m.Date, Sanitize(m.Client), Sanitize(m.Project))
}

// FolderName is the destination folder below the destination root.
func (m ShootMetadata) FolderName() string {
	return fmt.Sprintf("%s_%s", Sanitize(m.Client), m.Date)
}

// SequencedName formats a destination file name. The counter is zero padded
// to two digits and grows past 99 as needed.
func (m ShootMetadata) SequencedName(counter int, ext string) string {
	return fmt.Sprintf("%s_%02d%s", m.BaseName(), counter, strings.ToLower(ext))
}

func Sanitize(value string) string {
	return strings.ReplaceAll(value, " ", "_")
}
