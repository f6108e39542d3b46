package domainerrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("register: %w", New(CodeInternal, "boom"))

	assert.True(t, Is(err, CodeInternal))
	assert.False(t, Is(err, CodeValidation))
	assert.False(t, Is(fmt.Errorf("plain"), CodeInternal))
}

func TestValidationCarriesDetails(t *testing.T) {
	err := NewValidation(map[string]string{"email": "bad"})

	assert.True(t, Is(err, CodeValidation))
	assert.Equal(t, map[string]string{"email": "bad"}, Details(err))
	assert.Nil(t, Details(fmt.Errorf("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeBadRequest))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(CodeInternal))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("unknown")))
}
