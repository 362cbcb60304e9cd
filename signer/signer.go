// signer/signer.go
package signer

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/wfunc/battleserver/logger"
)

// Signer 用服务器私钥对战斗结果签名，玩家拿签名去链上领取奖励。
// 服务器本身不发起任何链上交易。
type Signer struct {
	key *ecdsa.PrivateKey
}

// New creates a signer from a hex private key. With an empty key a random
// throwaway key is generated: signatures still work but no deployed contract
// will accept them.
func New(privateKeyHex string) (*Signer, error) {
	if privateKeyHex == "" {
		logger.Log.Warn("signer private key not set, using a random throwaway key")
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		return &Signer{key: key}, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// Address returns the signer's ethereum address.
func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignBattleReward signs (player, battleId, amount) for the reward claim,
// solidity-packed: address ++ bytes32 ++ uint256.
func (s *Signer) SignBattleReward(player common.Address, battleID [32]byte, amount *big.Int) (string, error) {
	hash := crypto.Keccak256(
		player.Bytes(),
		battleID[:],
		common.LeftPadBytes(amount.Bytes(), 32),
	)
	return s.personalSign(hash)
}

// SignPvPResult signs (battleId, winner) for on-chain match resolution.
func (s *Signer) SignPvPResult(battleID [32]byte, winner common.Address) (string, error) {
	hash := crypto.Keccak256(battleID[:], winner.Bytes())
	return s.personalSign(hash)
}

// personalSign applies the EIP-191 prefix before signing, matching
// ethers.Wallet.signMessage on the client side.
func (s *Signer) personalSign(hash []byte) (string, error) {
	prefixed := crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), hash)
	sig, err := crypto.Sign(prefixed, s.key)
	if err != nil {
		return "", err
	}
	// 合约侧 ecrecover 预期 v 为 27/28
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// BattleID derives the bytes32 battle identifier from a room id.
func BattleID(roomID string) [32]byte {
	var id [32]byte
	copy(id[:], crypto.Keccak256([]byte(roomID)))
	return id
}
