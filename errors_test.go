package cartsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunErrorFormat(t *testing.T) {
	err := NewDataIntegrityError("data/products.json", errors.New("unexpected end of JSON input"))

	got := err.Format()
	assert.Contains(t, got, "ERROR [3]: Persisted state is malformed")
	assert.Contains(t, got, "Context: data/products.json: unexpected end of JSON input")
	assert.Contains(t, got, "Next step: Fix data/products.json by hand")
}

func TestRunErrorUnwrap(t *testing.T) {
	inner := errors.New("token expired")
	err := NewAuthError("Google Tasks", inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitAuth, err.Code)
}

func TestEveryConstructorCarriesANextStep(t *testing.T) {
	errs := []*RunError{
		NewUnmappedItemError("ornaments", "https://example.test/search", "Groceries"),
		NewAmbiguousMappingError("rainbow carrots", 2),
		NewDataIntegrityError("data/products.json", errors.New("bad")),
		NewAuthError("Hy-Vee", errors.New("bad")),
		NewDriverSetupError("no chromium found"),
		NewAddFailedError("eggs", 2, "https://example.test/search"),
	}

	for _, err := range errs {
		assert.NotEmpty(t, err.Short, "short for code %d", err.Code)
		assert.NotEmpty(t, err.Context, "context for code %d", err.Code)
		assert.NotEmpty(t, err.NextStep, "next step for code %d", err.Code)
	}
}
