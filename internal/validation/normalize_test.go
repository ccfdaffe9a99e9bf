package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank/internal/domain"
)

func TestNormalizeAccountNo(t *testing.T) {
	got, err := NormalizeAccountNo("  1001000001 ", "accountNo")
	require.NoError(t, err)
	assert.Equal(t, "1001000001", got)

	again, err := NormalizeAccountNo(got, "accountNo")
	require.NoError(t, err)
	assert.Equal(t, got, again)

	cases := []struct{ in, msg string }{
		{"", "senderAccount is required"},
		{"   ", "senderAccount is required"},
		{"123456789", "senderAccount must be exactly 10 digits"},
		{"12345678901", "senderAccount must be exactly 10 digits"},
		{"12345abcde", "senderAccount must be exactly 10 digits"},
		{"١٢٣٤٥٦٧٨٩٠", "senderAccount must be exactly 10 digits"},
	}
	for _, tc := range cases {
		_, err := NormalizeAccountNo(tc.in, "senderAccount")
		require.Error(t, err, tc.in)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), tc.in)
		assert.Equal(t, tc.msg, err.Error(), tc.in)
	}
}

func TestNormalizeHolderName(t *testing.T) {
	got, err := NormalizeHolderName("  Asha \t  Rao\n")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got)

	_, err = NormalizeHolderName("   ")
	assert.EqualError(t, err, "holderName is required")

	_, err = NormalizeHolderName("Al")
	assert.EqualError(t, err, "holderName must be between 3 and 60 characters")

	long := make([]byte, 61)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NormalizeHolderName(string(long))
	assert.EqualError(t, err, "holderName must be between 3 and 60 characters")

	got, err = NormalizeHolderName("Zoë")
	require.NoError(t, err)
	assert.Equal(t, "Zoë", got)
}

func TestParseAmount(t *testing.T) {
	valid := []struct{ in, want string }{
		{"50.5", "50.5"},
		{" 10 ", "10"},
		{"0.01", "0.01"},
		{"1000000000", "1000000000"},
		{"1e2", "100"},
	}
	for _, tc := range valid {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "%s: got %s", tc.in, got)
	}

	invalid := []struct{ in, msg string }{
		{"", "Amount must be a valid number greater than 0"},
		{"abc", "Amount must be a valid number greater than 0"},
		{"Infinity", "Amount must be a valid number greater than 0"},
		{"0", "Amount must be a valid number greater than 0"},
		{"-5", "Amount must be a valid number greater than 0"},
		{"1000000000.01", "Amount cannot be more than 1000000000"},
		{"10.001", "Amount can have at most 2 decimal places"},
		{"0.105", "Amount can have at most 2 decimal places"},
	}
	for _, tc := range invalid {
		_, err := ParseAmount(tc.in)
		require.Error(t, err, tc.in)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), tc.in)
		assert.Equal(t, tc.msg, err.Error(), tc.in)
	}
}

func TestParseAmountRejectsAnyThirdDecimal(t *testing.T) {
	for _, in := range []string{"1.001", "1.009", "999.999", "0.001", "12.3456"} {
		_, err := ParseAmount(in)
		assert.EqualError(t, err, "Amount can have at most 2 decimal places", in)
	}
}

func TestParseNonNegativeMoney(t *testing.T) {
	got, err := ParseNonNegativeMoney("", "Initial balance")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseNonNegativeMoney("0", "Initial balance")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseNonNegativeMoney("100.00", "Initial balance")
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.StringFixed(2))

	_, err = ParseNonNegativeMoney("-1", "Initial balance")
	assert.EqualError(t, err, "Initial balance must be a valid non-negative number")

	_, err = ParseNonNegativeMoney("1.234", "Initial balance")
	assert.EqualError(t, err, "Initial balance can have at most 2 decimal places")

	_, err = ParseNonNegativeMoney("2000000000", "Initial balance")
	assert.EqualError(t, err, "Initial balance cannot be more than 1000000000")
}

func TestParseRejectsOutOfRangeExponents(t *testing.T) {
	inputs := []string{
		"1e999999999",
		"1e-999999999",
		"-1e999999999",
		"1e400",
		"1e-400",
		strings.Repeat("9", 65),
	}
	for _, in := range inputs {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := ParseAmount(in)
			assert.EqualError(t, err, "Amount must be a valid number greater than 0", in)
			_, err = ParseNonNegativeMoney(in, "Initial balance")
			assert.EqualError(t, err, "Initial balance must be a valid non-negative number", in)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("parsing %q did not finish in time", in)
		}
	}
}

func TestParseLargeButRepresentableAmounts(t *testing.T) {
	_, err := ParseAmount("1e308")
	assert.EqualError(t, err, "Amount cannot be more than 1000000000")

	_, err = ParseNonNegativeMoney("1e-300", "Initial balance")
	assert.EqualError(t, err, "Initial balance can have at most 2 decimal places")
}
