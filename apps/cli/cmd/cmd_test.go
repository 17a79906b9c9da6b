package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpected(t *testing.T) {
	got, err := parseExpected("<a>1</a>", "auto")
	require.NoError(t, err)
	assert.Equal(t, "<a>1</a>", got)

	got, err = parseExpected("42", "auto")
	require.NoError(t, err)
	assert.Equal(t, value.KindNumber, value.Classify(got.(value.Value)))

	got, err = parseExpected("true", "auto")
	require.NoError(t, err)
	assert.Equal(t, value.KindBoolean, value.Classify(got.(value.Value)))

	got, err = parseExpected(`"quoted"`, "auto")
	require.NoError(t, err)
	assert.Equal(t, `"quoted"`, got)

	got, err = parseExpected("42", "string")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = parseExpected(`"quoted"`, "json")
	require.NoError(t, err)
	assert.Equal(t, "quoted", got.(value.Value).String())

	_, err = parseExpected("not json", "json")
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, err = parseExpected("1", "xml")
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitTestFailure, exitCode(errFailed))
	assert.Equal(t, "", errFailed.Error())
	assert.Equal(t, ExitParseError, exitCode(withExitCode(ExitParseError, errors.New("bad suite"))))
	assert.Equal(t, ExitConfigError, exitCode(withExitCode(ExitConfigError, errors.New("bad config"))))
	assert.Equal(t, ExitUsageError, exitCode(errors.New("unknown flag: --nope")))

	err := withExitCode(ExitParseError, os.ErrNotExist)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))

	for _, name := range []string{
		filepath.Join(dir, "a.xpathspec.yaml"),
		filepath.Join(sub, "b.xpathspec.yml"),
		filepath.Join(dir, "context.yaml"),
		filepath.Join(dir, "doc.xml"),
	} {
		require.NoError(t, os.WriteFile(name, []byte("cases: []\n"), 0644))
	}

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.xpathspec.yaml"),
		filepath.Join(sub, "b.xpathspec.yml"),
	}, files)

	explicit := filepath.Join(dir, "context.yaml")
	files, err = collectFiles([]string{explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestFileKinds(t *testing.T) {
	assert.True(t, isSuiteFile("suites/Catalog.XPathSpec.yaml"))
	assert.False(t, isSuiteFile("suites/catalog.yaml"))
	assert.True(t, isContextFile("doc.xml"))
	assert.True(t, isContextFile("data.json"))
	assert.False(t, isContextFile("notes.txt"))
}

func TestSerialized(t *testing.T) {
	var active, overlaps atomic.Int32
	var mu sync.Mutex
	var seen []string

	run := serialized(func(name string) {
		if active.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
		active.Add(-1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run("suite.xpathspec.yaml")
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load())
	assert.Len(t, seen, 8)
}
