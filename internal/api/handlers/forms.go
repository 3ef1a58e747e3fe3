package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// eventForm is the typed DTO for the submission form. Field names mirror
// the form inputs: user_name, event_name, event_date.
type eventForm struct {
	Organizer string `validate:"max=120"`
	Name      string `validate:"required,max=200"`
	Date      string `validate:"required,datetime=2006-01-02"`
}

// credentialsForm covers both signup and login.
type credentialsForm struct {
	Username string `validate:"required,max=120"`
	Password string `validate:"required,max=200"`
}

// FormError carries one message per invalid field.
type FormError struct {
	Fields []string
}

func (e FormError) Error() string {
	return "invalid form: " + strings.Join(e.Fields, "; ")
}

func parseEventForm(r *http.Request) (eventForm, error) {
	if err := r.ParseForm(); err != nil {
		return eventForm{}, FormError{Fields: []string{"malformed form body"}}
	}
	form := eventForm{
		Organizer: strings.TrimSpace(r.PostFormValue("user_name")),
		Name:      strings.TrimSpace(r.PostFormValue("event_name")),
		Date:      strings.TrimSpace(r.PostFormValue("event_date")),
	}
	if err := validate.Struct(form); err != nil {
		return form, formError(err, map[string]string{
			"Organizer": "your name",
			"Name":      "event name",
			"Date":      "event date (YYYY-MM-DD)",
		})
	}
	return form, nil
}

func parseCredentialsForm(r *http.Request) (credentialsForm, error) {
	if err := r.ParseForm(); err != nil {
		return credentialsForm{}, FormError{Fields: []string{"malformed form body"}}
	}
	form := credentialsForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		return form, formError(err, map[string]string{
			"Username": "username",
			"Password": "password",
		})
	}
	return form, nil
}

func formError(err error, labels map[string]string) error {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return FormError{Fields: []string{"invalid form"}}
	}

	fields := make([]string, 0, len(invalid))
	for _, fieldErr := range invalid {
		label := labels[fieldErr.Field()]
		if label == "" {
			label = strings.ToLower(fieldErr.Field())
		}
		switch fieldErr.Tag() {
		case "required":
			fields = append(fields, fmt.Sprintf("%s is required", label))
		case "datetime":
			fields = append(fields, fmt.Sprintf("%s must match YYYY-MM-DD", label))
		case "max":
			fields = append(fields, fmt.Sprintf("%s is too long", label))
		default:
			fields = append(fields, fmt.Sprintf("%s is invalid", label))
		}
	}
	return FormError{Fields: fields}
}
