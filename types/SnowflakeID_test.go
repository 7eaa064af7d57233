package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeIDJSONAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber SnowflakeID
	require.NoError(t, json.Unmarshal([]byte(`"1830276591847374848"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`1830276591847374848`), &fromNumber))
	assert.Equal(t, fromString, fromNumber)

	out, err := json.Marshal(fromString)
	require.NoError(t, err)
	assert.Equal(t, `"1830276591847374848"`, string(out))
}

func TestSnowflakeIDScan(t *testing.T) {
	var id SnowflakeID
	require.NoError(t, id.Scan(int64(42)))
	assert.Equal(t, SnowflakeID(42), id)

	require.NoError(t, id.Scan([]byte("43")))
	assert.Equal(t, SnowflakeID(43), id)

	assert.Error(t, id.Scan(3.5))
}

func TestParseSnowflakeIDRejectsGarbage(t *testing.T) {
	_, err := ParseSnowflakeID("abc")
	assert.Error(t, err)
	_, err = ParseSnowflakeID("0")
	assert.Error(t, err)

	id, err := ParseSnowflakeID("77")
	require.NoError(t, err)
	assert.Equal(t, "77", id.String())
}
