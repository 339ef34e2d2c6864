package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakevault/jsonx"
)

func TestFromCode(t *testing.T) {
	e := FromCode("already_staked")
	assert.Equal(t, ErrCodeAlreadyStaked, e.Code)
	assert.Equal(t, ErrMsgAlreadyStaked, e.Message)

	unknown := FromCode("something_else")
	assert.Equal(t, ErrCodeInternal, unknown.Code)
}

func TestNetworkError_ErrorIsJSON(t *testing.T) {
	err := NewError(ErrCodeNotStaked, ErrMsgNotStaked)

	var decoded NetworkError
	require.NoError(t, jsonx.Unmarshal([]byte(err.Error()), &decoded))
	assert.Equal(t, ErrCodeNotStaked, decoded.Code)
	assert.Equal(t, ErrMsgNotStaked, decoded.Message)
}
