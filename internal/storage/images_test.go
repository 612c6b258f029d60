package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "red shirt.png", want: "red_shirt.png"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\photos\blue hat.jpg`, want: "blue_hat.jpg"},
		{in: "köşe.png", want: "ke.png"},
		{in: "", want: "image"},
		{in: "...", want: "image"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestImageStore_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	store := NewImageStore(bucket)
	store.Now = func() time.Time { return time.UnixMilli(1700000000000) }

	path, err := store.Save(ctx, "blue shirt.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-blue_shirt.png", path)

	data, err := bucket.ReadAll(ctx, "1700000000000-blue_shirt.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	ok, err := store.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, path))
	ok, err = store.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, path))
	require.NoError(t, store.Delete(ctx, ""))
	require.NoError(t, store.Delete(ctx, "https://cdn.example.com/x.png"))
}
