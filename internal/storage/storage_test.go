package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "food_items/food_1.png", want: "food_items/food_1.png"},
		{in: "/food_items/food_1.png", want: "food_items/food_1.png"},
		{in: "./a/../b.png", want: "b.png"},
		{in: `food_items\food_1.png`, want: "food_items/food_1.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "..", wantErr: true},
		{in: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := sanitizeKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := NewFileStore(root, "/media/")
	require.NoError(t, err)

	key := PhotoKey("food_items", "abc", "png")
	require.NoError(t, store.Put(ctx, key, "image/png", []byte("png-bytes")))

	data, err := os.ReadFile(filepath.Join(root, "food_items", "food_abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	u, err := store.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/media/food_items/food_abc.png", u)

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "food_items", "food_abc.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, key), "deleting a missing file is fine")
}

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})

	photo, err := DecodeDataURL("data:image/jpeg;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", photo.ContentType)
	assert.Equal(t, "jpg", photo.Ext)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, photo.Data)

	photo, err = DecodeDataURL("data:image/WEBP;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", photo.ContentType)
	assert.Equal(t, "webp", photo.Ext)

	for _, bad := range []string{
		"",
		"not a data url",
		"data:text/plain;base64," + payload,
		"data:image/png;base64,***",
		"data:image/png;base64,",
		"data:image/html;base64," + base64.StdEncoding.EncodeToString([]byte("<script>alert(1)</script>")),
		"data:image/svg+xml;base64," + payload,
	} {
		_, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidDataURL, bad)
	}
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []string
	failKey string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if *in.Key == f.failKey {
		return nil, errors.New("access denied")
	}
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	return &PresignedRequest{URL: "https://" + *in.Bucket + ".example/" + *in.Key + "?sig=1"}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{failKey: "food_items/food_bad.png"}
	store := newS3Store(client, fakePresigner{}, "photos", 0)

	require.NoError(t, store.Put(ctx, "food_items/food_1.png", "image/png", []byte("x")))
	require.Len(t, client.puts, 1)
	assert.Equal(t, "photos", *client.puts[0].Bucket)
	assert.Equal(t, "image/png", *client.puts[0].ContentType)
	assert.EqualValues(t, 1, *client.puts[0].ContentLength)

	u, err := store.URL(ctx, "food_items/food_1.png")
	require.NoError(t, err)
	assert.Equal(t, "https://photos.example/food_items/food_1.png?sig=1", u)

	failed, err := DeleteAll(ctx, store, []string{"food_items/food_1.png", "food_items/food_bad.png"})
	assert.Error(t, err)
	assert.Equal(t, []string{"food_items/food_bad.png"}, failed)
	assert.Equal(t, []string{"food_items/food_1.png"}, client.deletes)
}
