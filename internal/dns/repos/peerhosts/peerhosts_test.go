package peerhosts

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/nodar/internal/dns/common/log"
)

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func writeHosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "donar.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseHostList_Basics(t *testing.T) {
	input := "\uFEFFhost1.example.org\n" +
		"  host2.example.org  \n" +
		"\n" +
		"# commented.example.org\n" +
		"host3.example.org # inline\n" +
		"\t\n" +
		"bücher.example\n"

	got, err := ParseHostList(bytes.NewBufferString(input), 6, log.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"host1.example.org",
		"host2.example.org",
		"host3.example.org",
		"xn--bcher-kva.example",
	}, got)
}

func TestParseHostList_CapsInSourceOrder(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 9; i++ {
		b.WriteString("host")
		b.WriteByte(byte('0' + i))
		b.WriteString(".example.org\n")
	}
	got, err := ParseHostList(strings.NewReader(b.String()), 6, log.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"host1.example.org",
		"host2.example.org",
		"host3.example.org",
		"host4.example.org",
		"host5.example.org",
		"host6.example.org",
	}, got)
}

func TestParseHostList_DefaultMax(t *testing.T) {
	input := strings.Repeat("h.example\n", 10)
	got, err := ParseHostList(strings.NewReader(input), 0, log.NewNoopLogger())
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxHosts)
}

func TestParseHostList_Empty(t *testing.T) {
	got, err := ParseHostList(strings.NewReader("\n# only comments\n   \n"), 6, log.NewNoopLogger())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseHostList_ScannerError(t *testing.T) {
	got, err := ParseHostList(errReader{}, 6, log.NewNoopLogger())
	require.Error(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileSource_Load(t *testing.T) {
	path := writeHosts(t, "a.example.org\nb.example.org\n")
	src := NewFileSource(path, 6, log.NewNoopLogger())
	assert.Equal(t, path, src.Path())

	got, err := src.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.org", "b.example.org"}, got)
}

func TestFileSource_RereadsEveryLoad(t *testing.T) {
	path := writeHosts(t, "a.example.org\n")
	src := NewFileSource(path, 6, log.NewNoopLogger())

	got, err := src.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.org"}, got)

	require.NoError(t, os.WriteFile(path, []byte("b.example.org\n"), 0o644))
	got, err = src.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.example.org"}, got)
}

func TestFileSource_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	src := NewFileSource(path, 6, log.NewNoopLogger())

	got, err := src.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), path)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileSource_Directory(t *testing.T) {
	src := NewFileSource(t.TempDir(), 6, log.NewNoopLogger())
	got, err := src.Load()
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestFileSource_DefaultMax(t *testing.T) {
	path := writeHosts(t, strings.Repeat("h.example\n", 8))
	got, err := NewFileSource(path, -1, log.NewNoopLogger()).Load()
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxHosts)
}

type countingLoader struct {
	calls int
	hosts []string
	err   error
}

func (l *countingLoader) Load() ([]string, error) {
	l.calls++
	if l.err != nil {
		return []string{}, l.err
	}
	return l.hosts, nil
}

func TestCachedSource_HitsWithinTTL(t *testing.T) {
	inner := &countingLoader{hosts: []string{"a.example", "b.example"}}
	c := NewCachedSource(inner, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := c.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"a.example", "b.example"}, got)
	}
	assert.Equal(t, 1, inner.calls)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCachedSource_ReturnsCopies(t *testing.T) {
	inner := &countingLoader{hosts: []string{"a.example"}}
	c := NewCachedSource(inner, time.Minute)

	got, err := c.Load()
	require.NoError(t, err)
	got[0] = "mutated"

	again, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example"}, again)
}

func TestCachedSource_FailuresNotCached(t *testing.T) {
	inner := &countingLoader{err: errors.New("unreadable")}
	c := NewCachedSource(inner, time.Minute)

	for i := 0; i < 2; i++ {
		got, err := c.Load()
		require.Error(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 2, inner.calls)

	inner.err = nil
	inner.hosts = []string{"a.example"}
	got, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example"}, got)
}

func TestCachedSource_Expires(t *testing.T) {
	inner := &countingLoader{hosts: []string{"a.example"}}
	c := NewCachedSource(inner, 20*time.Millisecond)

	_, err := c.Load()
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = c.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_Purge(t *testing.T) {
	inner := &countingLoader{hosts: []string{"a.example"}}
	c := NewCachedSource(inner, time.Minute)

	_, _ = c.Load()
	c.Purge()
	_, _ = c.Load()
	assert.Equal(t, 2, inner.calls)
}
