package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonEmptyString(t *testing.T) {
	got, err := NonEmptyString("  Elderwood \t", "address")
	require.NoError(t, err)
	assert.Equal(t, "Elderwood", got)

	_, err = NonEmptyString("   ", "address")
	assert.ErrorIs(t, err, KindEmpty)

	for _, raw := range []any{nil, 5, true, decimal.NewFromInt(1)} {
		_, err = NonEmptyString(raw, "address")
		assert.ErrorIs(t, err, KindType, "raw=%v", raw)
	}
}

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"nil is absent", nil, ""},
		{"blank is absent", "   ", ""},
		{"trimmed", "  Suite 4  ", "Suite 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OptionalString(tt.raw, "line2")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := OptionalString(12, "line2")
	assert.ErrorIs(t, err, KindType)
}

func TestDescription(t *testing.T) {
	atLimit := strings.Repeat("a", MaxDescriptionLength)
	got, err := Description("  "+atLimit+"  ", "description")
	require.NoError(t, err)
	assert.Equal(t, atLimit, got)

	_, err = Description(atLimit+"a", "description")
	assert.ErrorIs(t, err, KindLength)

	_, err = Description("", "description")
	assert.ErrorIs(t, err, KindEmpty)
}

func TestDate(t *testing.T) {
	valid := []struct {
		raw  string
		want time.Time
	}{
		{"10/30/2025", time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)},
		{" 1/2/2024 ", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"02/29/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range valid {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Date(tt.raw, "dates")
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	formatErrors := []string{"2025-10-30", "10/30/25", "10-30-2025", "Oct 30 2025", "", "100/1/2024"}
	for _, raw := range formatErrors {
		_, err := Date(raw, "dates")
		assert.ErrorIs(t, err, KindFormat, "raw=%q", raw)
	}

	calendarErrors := []string{"18/01/2024", "01/56/2024", "02/30/2024", "02/29/2023", "0/10/2024"}
	for _, raw := range calendarErrors {
		_, err := Date(raw, "dates")
		assert.ErrorIs(t, err, KindInvalid, "raw=%q", raw)
		assert.NotErrorIs(t, err, KindFormat, "raw=%q", raw)
	}

	_, err := Date(20240101, "dates")
	assert.ErrorIs(t, err, KindType)
}

func TestFormatDateRoundTrip(t *testing.T) {
	d := time.Date(2024, 11, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "11/08/2024", FormatDate(d))

	again, err := Date(FormatDate(d), "dates")
	require.NoError(t, err)
	assert.True(t, d.Equal(again))
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"plain text", "65", "65"},
		{"fraction", "1.5", "1.5"},
		{"symbols", "$1,458,547", "1458547"},
		{"whitespace", "  $12.50 ", "12.5"},
		{"int", 80, "80"},
		{"int64", int64(3), "3"},
		{"uint", uint(7), "7"},
		{"decimal", decimal.RequireFromString("84.33796"), "84.33796"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decimal(tt.raw, "rate")
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestDecimalFailures(t *testing.T) {
	_, err := Decimal(1.5, "qty")
	assert.ErrorIs(t, err, KindType)
	assert.ErrorIs(t, err, ErrFloatInput)

	_, err = Decimal(float32(2), "qty")
	assert.ErrorIs(t, err, ErrFloatInput)

	_, err = Decimal(" $, ", "qty")
	assert.ErrorIs(t, err, KindEmpty)

	for _, raw := range []string{"-5", "1.", ".5", "1e3", "abc", "1.2.3", "NaN", "Infinity"} {
		_, err = Decimal(raw, "qty")
		assert.ErrorIs(t, err, KindFormat, "raw=%q", raw)
	}

	_, err = Decimal(-3, "qty")
	assert.ErrorIs(t, err, KindInvalid)

	_, err = Decimal(decimal.NewFromInt(-1), "qty")
	assert.ErrorIs(t, err, KindInvalid)

	_, err = Decimal(true, "qty")
	assert.ErrorIs(t, err, KindType)
	assert.NotErrorIs(t, err, ErrFloatInput)

	_, err = Decimal(nil, "qty")
	assert.ErrorIs(t, err, KindType)
}

func TestDecimalIdempotent(t *testing.T) {
	for _, raw := range []string{"$1,458,547", "0.0625", "12.50", "007", " 3.25 "} {
		first, err := Decimal(raw, "rate")
		require.NoError(t, err)

		second, err := Decimal(first.String(), "rate")
		require.NoError(t, err)
		assert.True(t, first.Equal(second), "raw=%q first=%s second=%s", raw, first, second)

		third, err := Decimal(first, "rate")
		require.NoError(t, err)
		assert.True(t, first.Equal(third))
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		raw  any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"FALSE", false},
		{" True ", true},
		{"fAlSe", false},
	}

	for _, tt := range tests {
		got, err := Bool(tt.raw, "paid")
		require.NoError(t, err, "raw=%v", tt.raw)
		assert.Equal(t, tt.want, got)
	}

	_, err := Bool("yes", "paid")
	assert.ErrorIs(t, err, KindFormat)

	_, err = Bool(1, "paid")
	assert.ErrorIs(t, err, KindType)
}

func TestSourceRow(t *testing.T) {
	got, err := SourceRow(3, "source_row")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = SourceRow(int64(250), "source_row")
	require.NoError(t, err)
	assert.Equal(t, 250, got)

	for _, raw := range []any{2, 1, 0, -4} {
		_, err = SourceRow(raw, "source_row")
		assert.ErrorIs(t, err, KindRange, "raw=%v", raw)
	}

	for _, raw := range []any{true, "5", 5.0, nil} {
		_, err = SourceRow(raw, "source_row")
		assert.ErrorIs(t, err, KindType, "raw=%v", raw)
	}
}

func TestErrorsCollection(t *testing.T) {
	var es Errors
	assert.NoError(t, es.ErrOrNil())

	_, dateErr := Date("13/13/2024", "dates")
	_, rowErr := SourceRow(1, "source_row")
	es = append(es,
		&RecordError{Index: 0, Row: 3, Err: InEntity("JobLine", dateErr)},
		&RecordError{Index: 1, Err: rowErr},
	)

	err := es.ErrOrNil()
	require.Error(t, err)
	assert.ErrorIs(t, err, KindInvalid)
	assert.ErrorIs(t, err, KindRange)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "JobLine", fe.Entity)
	assert.Equal(t, "dates", fe.Field)

	out := FormatErrors(err)
	assert.Contains(t, out, "2 error(s)")
	assert.Contains(t, out, "1. row 3: JobLine.dates: invalid calendar date '13/13/2024'")
	assert.Contains(t, out, "2. record 2: source_row:")
}
