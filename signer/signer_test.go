package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func recoverSigner(t *testing.T, sigHex string, hash []byte) common.Address {
	t.Helper()
	sig, err := hexutil.Decode(sigHex)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	sig[64] -= 27 // back to the 0/1 recovery id go-ethereum expects
	prefixed := crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), hash)
	pub, err := crypto.SigToPub(prefixed, sig)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(*pub)
}

func TestNew_WithAndWithoutKey(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, s.Address())

	// 0x 前缀同样接受
	s2, err := New("0x" + testKey)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), s2.Address())

	// 未配置私钥时退化为一次性随机密钥
	s3, err := New("")
	require.NoError(t, err)
	assert.NotEqual(t, s.Address(), s3.Address())

	_, err = New("not-a-key")
	assert.Error(t, err)
}

func TestSignPvPResult_Recoverable(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)

	battleID := BattleID("room-123")
	winner := common.HexToAddress("0x1111111111111111111111111111111111111111")

	sigHex, err := s.SignPvPResult(battleID, winner)
	require.NoError(t, err)

	hash := crypto.Keccak256(battleID[:], winner.Bytes())
	assert.Equal(t, s.Address(), recoverSigner(t, sigHex, hash))
}

func TestSignBattleReward_Recoverable(t *testing.T) {
	s, err := New(testKey)
	require.NoError(t, err)

	battleID := BattleID("room-456")
	player := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount := big.NewInt(1_000_000_000)

	sigHex, err := s.SignBattleReward(player, battleID, amount)
	require.NoError(t, err)

	hash := crypto.Keccak256(player.Bytes(), battleID[:], common.LeftPadBytes(amount.Bytes(), 32))
	assert.Equal(t, s.Address(), recoverSigner(t, sigHex, hash))
}

func TestBattleID_Deterministic(t *testing.T) {
	assert.Equal(t, BattleID("room-1"), BattleID("room-1"))
	assert.NotEqual(t, BattleID("room-1"), BattleID("room-2"))
}
