package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftshop/core/internal/domain/entities"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "images")
	store := NewLocalStorage(dir, 1024)

	first, err := store.Save(ctx, "crane.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "crane.png", strings.NewReader("other-bytes"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same filename must not collide")
	assert.True(t, strings.HasPrefix(first, "uploads/"), first)
	assert.True(t, strings.HasSuffix(first, "-crane.png"))
	assert.NotContains(t, first, dir)

	onDisk := filepath.Join(dir, path.Base(first))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, first))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Delete(ctx, first), entities.ErrUploadNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStorage(filepath.Join(dir, "uploads"), 0)

	_, err := store.Save(ctx, "../escape.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, entities.ErrInvalidFilename)

	for _, p := range []string{
		filepath.Join(dir, "crafts.json"),
		"uploads/../crafts.json",
		"uploads/",
		"uploads/a/b.png",
		"crafts.json",
	} {
		assert.ErrorIs(t, store.Delete(ctx, p), entities.ErrInvalidFilename, p)
	}
}

func TestLocalStorage_SizeCap(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(dir, 4)

	_, err := store.Save(context.Background(), "big.png", strings.NewReader("too many bytes"))
	assert.ErrorIs(t, err, entities.ErrUploadTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial upload should be removed")
}

type fakeS3 struct {
	objects map[string][]byte
	failPut error
}

func (f *fakeS3) UploadObject(ctx context.Context, input *transfermanager.UploadObjectInput, opts ...func(*transfermanager.Options)) (*transfermanager.UploadObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(input.Bucket)+"/"+aws.ToString(input.Key)] = data
	return &transfermanager.UploadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(input.Bucket)+"/"+aws.ToString(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := newS3Storage("craft-images", "/uploads/", 1024, fake, fake)

	location, err := store.Save(ctx, "crane.png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location, "s3://craft-images/uploads/"))
	assert.True(t, strings.HasSuffix(location, "-crane.png"))
	assert.Len(t, fake.objects, 1)

	require.NoError(t, store.Delete(ctx, location))
	assert.Empty(t, fake.objects)

	assert.ErrorIs(t, store.Delete(ctx, "s3://other-bucket/uploads/x.png"), entities.ErrInvalidFilename)
}

func TestS3Storage_Errors(t *testing.T) {
	ctx := context.Background()

	fake := &fakeS3{objects: map[string][]byte{}}
	store := newS3Storage("craft-images", "", 2, fake, fake)
	_, err := store.Save(ctx, "big.png", strings.NewReader("too big"))
	assert.ErrorIs(t, err, entities.ErrUploadTooLarge)

	_, err = store.Save(ctx, "../x.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, entities.ErrInvalidFilename)

	broken := &fakeS3{objects: map[string][]byte{}, failPut: errors.New("access denied")}
	store = newS3Storage("craft-images", "", 0, broken, broken)
	_, err = store.Save(ctx, "crane.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
