package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DisabledWithoutHostOrUser(t *testing.T) {
	assert.Nil(t, New("", "2525", "user", "pass", "s@x.com"))
	assert.Nil(t, New("smtp.example.com", "2525", "", "pass", "s@x.com"))
	assert.NotNil(t, New("smtp.example.com", "2525", "user", "pass", "s@x.com"))
}

func TestSend_ValidatesInput(t *testing.T) {
	m := New("smtp.example.com", "2525", "user", "pass", "s@x.com")

	assert.Error(t, m.Send("", "subject", "body"))
	assert.Error(t, m.Send("r@x.com", "", "body"))
}
