package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/superuser-module-go/review"
	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/verifier"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestNewWalletFromPrivateKey(t *testing.T) {
	key, err := ethcrypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	expected := ethcrypto.PubkeyToAddress(key.PublicKey)

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "plain hex", key: testKeyHex},
		{name: "0x prefix", key: "0x" + testKeyHex},
		{name: "invalid hex", key: "zz", wantErr: true},
		{name: "short key", key: "abcd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWalletFromPrivateKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, expected, w.Address())
			assert.NotNil(t, w.PrivateKey())
		})
	}
}

func TestSignReview_VerifiesAgainstECDSA(t *testing.T) {
	w, err := NewWallet()
	require.NoError(t, err)

	action := target.Action{To: common.HexToAddress("0x01"), Value: big.NewInt(5), Operation: target.Call}
	sig, err := w.SignReview(action, 3)
	require.NoError(t, err)
	require.Len(t, sig, verifier.SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig[64])

	hash, err := review.SigningHash(action, 3)
	require.NoError(t, err)
	ok, err := verifier.ECDSA{}.IsValidSignature(context.Background(), w.Address(), hash, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignMessage_EqualsReviewSignatureOverDigest(t *testing.T) {
	w, err := NewWalletFromPrivateKey(testKeyHex)
	require.NoError(t, err)

	action := target.Action{To: common.HexToAddress("0x02"), Operation: target.DelegateCall}
	digest, err := review.Digest(action, 0)
	require.NoError(t, err)

	viaMessage, err := w.SignMessage(digest.Bytes())
	require.NoError(t, err)
	viaReview, err := w.SignReview(action, 0)
	require.NoError(t, err)

	// RFC6979 确定性签名
	assert.Equal(t, viaMessage, viaReview)
}
