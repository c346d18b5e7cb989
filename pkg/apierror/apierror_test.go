package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty collection yields nil error", func(t *testing.T) {
		fields := FieldErrors{}
		require.True(t, fields.Empty())
		require.NoError(t, fields.Err())
	})

	t.Run("collected messages become a validation error", func(t *testing.T) {
		fields := FieldErrors{}
		fields.Add("title", "This field is required.")
		fields.Add("title", "Ensure this field has no more than 100 characters.")
		fields.Add("description", "Too long.")

		err := fields.Err()
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
		require.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		require.Len(t, apiErr.Fields["title"], 2)
		require.Equal(t, "VALIDATION_ERROR: request validation failed (description, title)", apiErr.Error())
	})
}

func TestAPIErrorString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NOT_FOUND: todo not found", New("NOT_FOUND", "todo not found", "", http.StatusNotFound).Error())
	require.Equal(t, "BAD_REQUEST: invalid id (abc)", New("BAD_REQUEST", "invalid id", "abc", http.StatusBadRequest).Error())

	var nilErr *APIError
	require.Equal(t, "", nilErr.Error())
}
