package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	pages    [][]string
	objects  map[string][]byte
	sizes    map[string]int64
	failures map[string]int
	listErr  error
	gets     map[string]int
	read     map[string]int
}

// countingReader records how many bytes of an object body were consumed.
type countingReader struct {
	r    io.Reader
	key  string
	read map[string]int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read[c.key] += n
	return n, err
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := 0
	if in.ContinuationToken != nil {
		page = int(aws.ToString(in.ContinuationToken)[0] - '0')
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.pages[page] {
		size, ok := f.sizes[k]
		if !ok {
			size = int64(len(f.objects[k]))
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(size)})
	}
	if page+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(string(rune('0' + page + 1)))
	}
	return out, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.gets == nil {
		f.gets = map[string]int{}
	}
	f.gets[key]++
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, errors.New("connection reset")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	if f.read == nil {
		f.read = map[string]int{}
	}
	body := &countingReader{r: bytes.NewReader(data), key: key, read: f.read}
	return &s3.GetObjectOutput{Body: io.NopCloser(body)}, nil
}

func TestS3Source_ListPaginates(t *testing.T) {
	fake := &fakeObjects{
		pages:   [][]string{{"cv/a.pdf", "cv/b.pdf"}, {"cv/c.pdf"}},
		objects: map[string][]byte{"cv/a.pdf": []byte("abc")},
	}
	objects, err := NewS3Source(fake, "resumes").List(context.Background(), "cv/")
	require.NoError(t, err)
	assert.Equal(t, []Object{{Key: "cv/a.pdf", Size: 3}, {Key: "cv/b.pdf"}, {Key: "cv/c.pdf"}}, objects)
}

func TestS3Source_DownloadRetries(t *testing.T) {
	fake := &fakeObjects{
		objects:  map[string][]byte{"a.pdf": []byte("pdf")},
		failures: map[string]int{"a.pdf": 2},
	}
	src := NewS3Source(fake, "b", WithRetry(3, time.Millisecond))
	data, err := src.Download(context.Background(), "a.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))
	assert.Equal(t, 3, fake.gets["a.pdf"])
}

func TestS3Source_DownloadGivesUp(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}}
	_, err := NewS3Source(fake, "b", WithRetry(2, time.Millisecond)).Download(context.Background(), "missing.pdf", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, fake.gets["missing.pdf"])
}

func TestS3Source_Fetch(t *testing.T) {
	fake := &fakeObjects{
		pages: [][]string{{"cv/alice.pdf", "cv/notes.xlsx", "cv/broken.pdf", "cv/huge.pdf"}},
		objects: map[string][]byte{
			"cv/alice.pdf": []byte("alice"),
			"cv/huge.pdf":  bytes.Repeat([]byte("x"), 64),
		},
	}
	dir := t.TempDir()
	staging := NewStaging(dir, []string{".pdf"}, 32)
	paths, skipped, err := NewS3Source(fake, "resumes", WithRetry(1, 0)).Fetch(context.Background(), "cv/", staging)
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "alice.pdf"), paths[0])
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "alice", string(data))

	require.Len(t, skipped, 2)
	assert.Equal(t, "s3://resumes/cv/broken.pdf", skipped[0].Path)
	assert.Equal(t, "s3://resumes/cv/huge.pdf", skipped[1].Path)
	assert.Zero(t, fake.gets["cv/notes.xlsx"], "unsupported keys are not downloaded")
	assert.Zero(t, fake.gets["cv/huge.pdf"], "keys listed above the limit are not downloaded")
}

func TestS3Source_FetchBoundsUnderreportedSize(t *testing.T) {
	fake := &fakeObjects{
		pages:   [][]string{{"cv/liar.pdf"}},
		objects: map[string][]byte{"cv/liar.pdf": bytes.Repeat([]byte("x"), 4096)},
		sizes:   map[string]int64{"cv/liar.pdf": 10},
	}
	staging := NewStaging(t.TempDir(), []string{".pdf"}, 32)
	paths, skipped, err := NewS3Source(fake, "resumes", WithRetry(1, 0)).Fetch(context.Background(), "cv/", staging)
	require.NoError(t, err)
	assert.Empty(t, paths)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "too large")
	assert.Equal(t, 1, fake.gets["cv/liar.pdf"])
	assert.LessOrEqual(t, fake.read["cv/liar.pdf"], 33, "body is read only up to the limit plus one byte")
}

func TestS3Source_DownloadLimit(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{"a.pdf": []byte("0123456789")}}
	src := NewS3Source(fake, "b", WithRetry(1, 0))

	data, err := src.Download(context.Background(), "a.pdf", 4)
	require.NoError(t, err)
	assert.Equal(t, "01234", string(data))

	data, err = src.Download(context.Background(), "a.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}

func TestS3Source_FetchListError(t *testing.T) {
	fake := &fakeObjects{listErr: errors.New("access denied")}
	_, _, err := NewS3Source(fake, "b").Fetch(context.Background(), "", NewStaging(t.TempDir(), []string{".pdf"}, 0))
	assert.Error(t, err)
}
