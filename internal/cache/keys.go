package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix   = "user_profile:%d"
	PublicPlaylistsKey = "playlists:public"
)

const (
	ProfileTTL         = 300 * time.Second
	PublicPlaylistsTTL = 60 * time.Second
)

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

// Invalidate deletes key. Errors are ignored; the entry expires on its own.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, userID uint) {
	Invalidate(ctx, ProfileKey(userID))
}

func InvalidatePublicPlaylists(ctx context.Context) {
	Invalidate(ctx, PublicPlaylistsKey)
}
