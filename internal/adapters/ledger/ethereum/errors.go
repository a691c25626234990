package ethereum

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/votechain/backend/internal/core/domain"
)

// mapWriteError sorts a failed write into the two outcomes callers care
// about: a contract-level revert (surfaced verbatim, never retried) or a
// connectivity failure (the caller may retry).
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := revertReason(err); ok {
		return &domain.LedgerRejection{Reason: reason}
	}
	return fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
}

func mapReadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
}

// revertReason extracts the contract's revert message from the error
// shapes geth produces: ABI-encoded revert data on rpc.DataError, or the
// "execution reverted: ..." text form.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := revertData(dataErr.ErrorData()); ok {
			if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
				return reason, true
			}
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx:], "execution reverted")
		reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
		if reason == "" {
			reason = "execution reverted"
		}
		return reason, true
	}
	return "", false
}

func revertData(data any) ([]byte, bool) {
	hexStr, ok := data.(string)
	if !ok {
		return nil, false
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return nil, false
	}
	return raw, true
}
