package nakama

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/ports"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile sets the generated name and records the game the account was created for.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	metadata := map[string]interface{}{"game": scoreKey}
	return a.nk.AccountUpdateId(ctx, userID, username, metadata, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
