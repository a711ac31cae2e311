package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalizeUppercasesFirstLetter(t *testing.T) {
	assert.Equal(t, "Hello world", Capitalize("hello world"))
}

func TestCapitalizeLeavesAlreadyCapitalized(t *testing.T) {
	assert.Equal(t, "Hello", Capitalize("Hello"))
}

func TestCapitalizeHandlesEmpty(t *testing.T) {
	assert.Equal(t, "", Capitalize(""))
}

func TestApplyTrimsAndCapitalizes(t *testing.T) {
	assert.Equal(t, "Hi there", Apply("  hi there  "))
}
