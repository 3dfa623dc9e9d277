package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipients(t *testing.T) {
	assert.Nil(t, recipients(""))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, recipients(" a@example.com, ,b@example.com "))
}
