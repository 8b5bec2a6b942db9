package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitutor/internal/models"
)

func TestSignup(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		form SignupForm
		want string
	}{
		{
			name: "valid",
			form: SignupForm{Email: "new@test.com", Password: "secret1", ConfirmPassword: "secret1"},
			want: "",
		},
		{
			name: "missing email",
			form: SignupForm{Password: "secret1", ConfirmPassword: "secret1"},
			want: MsgFillAllFields,
		},
		{
			name: "blank email",
			form: SignupForm{Email: "   ", Password: "secret1", ConfirmPassword: "secret1"},
			want: MsgFillAllFields,
		},
		{
			name: "missing confirmation",
			form: SignupForm{Email: "new@test.com", Password: "secret1"},
			want: MsgFillAllFields,
		},
		{
			name: "mismatch checked before length",
			form: SignupForm{Email: "new@test.com", Password: "abc", ConfirmPassword: "abd"},
			want: MsgPasswordMismatch,
		},
		{
			name: "too short",
			form: SignupForm{Email: "new@test.com", Password: "abc12", ConfirmPassword: "abc12"},
			want: MsgPasswordTooShort,
		},
		{
			name: "multibyte password counted in characters",
			form: SignupForm{Email: "new@test.com", Password: "가나다", ConfirmPassword: "가나다"},
			want: MsgPasswordTooShort,
		},
		{
			name: "six multibyte characters",
			form: SignupForm{Email: "new@test.com", Password: "가나다라마바", ConfirmPassword: "가나다라마바"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Signup(tt.form)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestSignupRole(t *testing.T) {
	assert.Equal(t, models.RoleChild, SignupForm{UserType: "child"}.Role())
	assert.Equal(t, models.RoleParent, SignupForm{}.Role())
	assert.Equal(t, models.RoleParent, SignupForm{UserType: "admin"}.Role())
}

func TestLogin(t *testing.T) {
	v := New()
	assert.NoError(t, v.Login(LoginForm{Email: "a@b.co", Password: "x"}))
	assert.EqualError(t, v.Login(LoginForm{Email: "a@b.co"}), MsgLoginRequired)
	assert.EqualError(t, v.Login(LoginForm{Password: "x"}), MsgLoginRequired)
}

func TestStructGoal(t *testing.T) {
	v := New()

	err := v.Struct(models.CreateGoalRequest{Title: "Read 10 books", GoalType: models.GoalLongTerm})
	assert.NoError(t, err)

	err = v.Struct(models.CreateGoalRequest{Title: "  ", GoalType: models.GoalShortTerm})
	require.Error(t, err)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "title")

	err = v.Struct(models.CreateGoalRequest{Title: "x", GoalType: "forever"})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "goal_type")

	err = v.Struct(models.CreateGoalRequest{Title: "x", GoalType: models.GoalShortTerm, TargetDate: "31/12/2026"})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "target_date")
}

func TestStructChild(t *testing.T) {
	v := New()

	valid := models.NewChildRequest{
		FullName:   "Kim Min",
		BirthDate:  "2015-03-02",
		GradeLevel: "Elementary 4",
		SchoolName: "Hanbit Elementary",
	}
	assert.NoError(t, v.Struct(valid))

	bad := valid
	bad.GradeLevel = "Grade 13"
	err := v.Struct(bad)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "grade_level must be one of the listed grades", vErr.Fields["grade_level"])
	assert.Equal(t, "Grade_level must be one of the listed grades.", vErr.Message)

	missing := models.NewChildRequest{}
	err = v.Struct(missing)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "full_name is required", vErr.Fields["full_name"])
	assert.Len(t, vErr.Fields, 4)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, MsgLoginRequired, Message(&Error{Message: MsgLoginRequired}))
}
