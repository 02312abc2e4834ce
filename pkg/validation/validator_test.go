package validation

import (
	"errors"
	"net/http"
	"testing"

	"gymdesk/pkg/dates"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBooking() model.BookingRequest {
	return model.BookingRequest{
		ID:       "b1",
		Date:     dates.MustParse("2026-03-04"),
		Period:   model.Period3,
		Location: model.Gymnasium,
		Class:    "5-1",
		Status:   model.BookingPending,
	}
}

func TestStructDomainTags(t *testing.T) {
	v := New(logger.Discard())

	tests := []struct {
		name   string
		mutate func(b *model.BookingRequest)
		field  string
	}{
		{"valid", func(b *model.BookingRequest) {}, ""},
		{"unknown period", func(b *model.BookingRequest) { b.Period = "9교시" }, "period"},
		{"unknown facility", func(b *model.BookingRequest) { b.Location = "수영장" }, "location"},
		{"missing class", func(b *model.BookingRequest) { b.Class = "" }, "class"},
		{"class holding a date", func(b *model.BookingRequest) { b.Class = "2026-03-04" }, "class"},
		{"class holding a datetime", func(b *model.BookingRequest) { b.Class = "2026-03-04T00:00:00.000Z" }, "class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(&b)

			err := v.Struct(b)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestCheckReturnsValidationAppError(t *testing.T) {
	v := New(logger.Discard())

	err := v.Check(model.LoginPayload{ID: "admin", Password: "12a4"})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Equal(t, "password must be exactly 4 digits", appErr.Details["password"])
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("0420"))
	assert.False(t, Password("420"))
	assert.False(t, Password("04200"))
	assert.False(t, Password("abcd"))
}
