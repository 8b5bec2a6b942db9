package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"aitutor/internal/models"
)

const (
	MsgFillAllFields    = "Please fill in all fields."
	MsgPasswordMismatch = "Passwords do not match."
	MsgPasswordTooShort = "Password must be at least 6 characters."
	MsgLoginRequired    = "Please enter your email and password."

	MinPasswordLength = 6
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be blank"
	gradeTag     = "grade"
	gradeText    = "{0} must be one of the listed grades"
	requiredText = "{0} is required"
)

// Error is a validation failure. Message is the single line shown above a
// form; Fields holds per-field messages keyed by JSON name when known.
type Error struct {
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Validator wraps go-playground/validator with English messages and JSON field names
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a validator with the custom tags registered
func New() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(gradeTag, gradeValidation)

	v := &Validator{validate: validate, translator: translator}
	v.registerTranslation(notBlankTag, notBlankText, false)
	v.registerTranslation(gradeTag, gradeText, false)
	v.registerTranslation("required", requiredText, true)
	return v
}

func (v *Validator) registerTranslation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s against its `validate` tags. The returned *Error carries
// the first field message (in field name order) as its Message.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[fe.Field()] = fe.Translate(v.translator)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Error{Message: capitalize(fields[names[0]]) + ".", Fields: fields}
}

// SignupForm is the sign-up form as submitted
type SignupForm struct {
	Email           string `json:"email" validate:"required,notblank"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	UserType        string `json:"user_type"`
}

// Role returns the role picked on the form. Only parent and child can be
// self-assigned; anything else signs up as parent.
func (f SignupForm) Role() models.Role {
	if models.ParseRole(f.UserType) == models.RoleChild {
		return models.RoleChild
	}
	return models.RoleParent
}

// Signup checks a sign-up form in order: all fields present, passwords
// match, password long enough.
func (v *Validator) Signup(f SignupForm) error {
	if err := v.validate.Struct(f); err != nil {
		return &Error{Message: MsgFillAllFields}
	}
	if f.Password != f.ConfirmPassword {
		return &Error{Message: MsgPasswordMismatch, Fields: map[string]string{"confirm_password": MsgPasswordMismatch}}
	}
	if utf8.RuneCountInString(f.Password) < MinPasswordLength {
		return &Error{Message: MsgPasswordTooShort, Fields: map[string]string{"password": MsgPasswordTooShort}}
	}
	return nil
}

// LoginForm is the sign-in form as submitted
type LoginForm struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// Login checks that both credentials are present
func (v *Validator) Login(f LoginForm) error {
	if err := v.validate.Struct(f); err != nil {
		return &Error{Message: MsgLoginRequired}
	}
	return nil
}

// Message returns the user-facing message of a validation error
func Message(err error) string {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func gradeValidation(fl validator.FieldLevel) bool {
	return models.IsGradeOption(fl.Field().String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
