package main

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/ports/nakama"
)

// InitModule is the entry point Nakama looks up in the plugin.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

// main is unused: the package is built with -buildmode=plugin and loaded by Nakama.
func main() {}
