package common

import (
	"encoding/json"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()

	id1, ch1 := b.Subscribe(1)
	_, ch2 := b.Subscribe(1)
	assert.Equal(t, 2, b.Len())

	assert.Equal(t, 2, b.Publish([]byte("one")))
	assert.Equal(t, []byte("one"), <-ch1)
	assert.Equal(t, []byte("one"), <-ch2)

	b.Unsubscribe(id1)
	_, open := <-ch1
	assert.False(t, open)
	assert.Equal(t, 1, b.Publish([]byte("two")))

	// Full buffers drop instead of blocking.
	assert.Equal(t, 0, b.Publish([]byte("three")))
	assert.Equal(t, []byte("two"), <-ch2)

	b.Close()
	_, open = <-ch2
	assert.False(t, open)
	assert.Equal(t, 0, b.Len())

	_, late := b.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}

func TestChainID(t *testing.T) {
	assert.Equal(t, "berachain", Berachain.String())
	assert.True(t, Berachain.Known())
	assert.Equal(t, "31337", ChainID(31337).String())
	assert.False(t, ChainID(31337).Known())
}

func TestParseUint(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0", want: "0"},
		{in: "80094", want: "80094"},
		{in: "0x138de", want: "80094"},
		{in: "0x00ff", want: "255"},
		{in: "115792089237316195423570985008687907853269984665640564039457584007913129639935", want: "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
		{in: "115792089237316195423570985008687907853269984665640564039457584007913129639936", wantErr: true},
		{in: "0x1" + "0000000000000000000000000000000000000000000000000000000000000000", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "0xzz", wantErr: true},
		{in: "0x-1", wantErr: true},
		{in: "0X-1", wantErr: true},
		{in: "0x+5", wantErr: true},
		{in: "0x", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseUint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Dec())
		})
	}
}

func TestDelegateSignerMessageJSON(t *testing.T) {
	input := `{
		"delegateContract": "0x1111111111111111111111111111111111111111",
		"brokerId": "woofi_pro",
		"chainId": 80094,
		"timestamp": 1700000000000,
		"registrationNonce": "42",
		"txHash": "0x2222222222222222222222222222222222222222222222222222222222222222"
	}`

	var msg DelegateSignerMessage
	require.NoError(t, json.Unmarshal([]byte(input), &msg))

	assert.Equal(t, ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"), msg.DelegateContract)
	assert.Equal(t, "woofi_pro", msg.BrokerID)
	assert.Equal(t, "80094", msg.ChainID.String())
	assert.Equal(t, uint64(1700000000000), msg.Timestamp)
	assert.Equal(t, "42", msg.RegistrationNonce.String())

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"chainId":80094`)
	assert.Contains(t, string(out), `"registrationNonce":42`)
	assert.Contains(t, string(out), `"timestamp":1700000000000`)
}

func TestUintRejectsGarbage(t *testing.T) {
	var u Uint
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &u))
	assert.Error(t, json.Unmarshal([]byte(`-5`), &u))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &u))
	assert.Error(t, json.Unmarshal([]byte(`"0x-1"`), &u))
	assert.Error(t, json.Unmarshal([]byte(`"0x+5"`), &u))
}
