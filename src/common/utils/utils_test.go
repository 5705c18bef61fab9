package utils

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAddressHelpers(t *testing.T) {
	assert.True(t, IsAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3"))
	assert.False(t, IsAddress("5fbdb2315678afecb367f032d93f642f64180aa3"))
	assert.False(t, IsAddress("0xzz"))

	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ToValidateAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3"))
	assert.Equal(t, "not-an-address", ToValidateAddress("not-an-address"))

	assert.Equal(t, "0x5FbD...0aa3", ShortAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	assert.True(t, IsZeroAddress("0x0000000000000000000000000000000000000000"))
	assert.True(t, IsZeroAddress(""))
	assert.False(t, IsZeroAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry("dial", 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("refused")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = Retry("dial", 2, time.Millisecond, func() error {
		calls++
		return errors.New("refused")
	})
	assert.EqualError(t, err, "dial: retry time over: refused")
	assert.Equal(t, 2, calls)
}

func TestMin(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Min(3, 2))
}
