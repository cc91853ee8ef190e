package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicKeyFoldsCase(t *testing.T) {
	assert.Equal(t, TopicKey("Art History"), TopicKey("art HISTORY"))
	assert.NotEqual(t, TopicKey("Art"), TopicKey("Arts"))
}

func TestValidationErrorIsValidation(t *testing.T) {
	var ve *ValidationError
	assert.NoError(t, ve.OrNil())
	ve = ve.Add("name", "This field is required.")
	ve = ve.Add("name", "ignored, first message wins")
	err := ve.OrNil()
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "This field is required.", ve.Fields["name"])
	assert.Equal(t, "validation failed: name: This field is required.", err.Error())
}

func TestValidateUsesFormNames(t *testing.T) {
	in := struct {
		Email     string `mapstructure:"email" validate:"required,email"`
		Password1 string `mapstructure:"password1" validate:"required,min=8"`
		Password2 string `mapstructure:"password2" validate:"required,eqfield=Password1"`
	}{Email: "nope", Password1: "short", Password2: "other"}
	ve := Validate(in)
	if assert.NotNil(t, ve) {
		assert.Equal(t, "Enter a valid email address.", ve.Fields["email"])
		assert.Equal(t, "Ensure this value has at least 8 characters.", ve.Fields["password1"])
		assert.Equal(t, "The two password fields didn't match.", ve.Fields["password2"])
	}
}

func TestUserIs(t *testing.T) {
	var anonymous *User
	a := &User{ID: 1}
	assert.True(t, a.Is(&User{ID: 1}))
	assert.False(t, a.Is(&User{ID: 2}))
	assert.False(t, anonymous.Is(a))
	assert.False(t, (&User{}).Is(&User{}))
}
