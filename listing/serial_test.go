package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSerial_RootRules(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/only/file")

	assert.Empty(t, ListSerial(m, "/missing", nil))
	assert.Equal(t, Set{"/only/file": {}}, ListSerial(m, "/only/file", nil))
	assert.Equal(t, Set{"/only": {}, "/only/file": {}}, ListSerial(m, "/only", nil))
}

func TestListSerial_ReportsErrors(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/r/a/x")
	m.AddFile("/r/b/y")
	denied := errors.New("denied")
	m.FailOn("/r/a", denied)

	var got []*TraversalError
	paths := ListSerial(m, "/r", func(te *TraversalError) { got = append(got, te) })

	require.Len(t, got, 1)
	assert.Equal(t, "/r/a", got[0].Path)
	assert.ErrorIs(t, got[0], denied)
	assert.Equal(t, "list /r/a: readdir /r/a: denied", got[0].Error())
	assert.Equal(t, Set{"/r": {}, "/r/a": {}, "/r/b": {}, "/r/b/y": {}}, paths)
}

func TestListSpawn_MatchesSerial(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 3, 4, 3)

	assert.Equal(t, ListSerial(m, "/r", nil), ListSpawn(m, "/r"))
	assert.Empty(t, ListSpawn(m, "/missing"))

	m.AddFile("/file")
	assert.Equal(t, Set{"/file": {}}, ListSpawn(m, "/file"))
}

func TestListExecutor_MatchesSerial(t *testing.T) {
	m := NewMemFS()
	buildTree(m, "/r", 3, 4, 3)
	want := ListSerial(m, "/r", nil)

	for _, workers := range []int{0, 1, 2, 8} {
		assert.Equal(t, want, ListExecutor(m, "/r", workers), "workers=%d", workers)
	}
	assert.Empty(t, ListExecutor(m, "/missing", 2))

	m.AddFile("/file")
	assert.Equal(t, Set{"/file": {}}, ListExecutor(m, "/file", 2))
}

func TestListExecutor_SkipsFailedDirectory(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/r/a/x")
	m.AddFile("/r/b/y")
	m.FailOn("/r/a", errors.New("denied"))

	assert.Equal(t, Set{"/r": {}, "/r/a": {}, "/r/b": {}, "/r/b/y": {}}, ListExecutor(m, "/r", 2))
}
