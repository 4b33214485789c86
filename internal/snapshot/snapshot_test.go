package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// branching builds capacity 5 with 1 -> {2, 4}, 2 -> 3 and slot 5 empty.
func branching(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(5)
	require.NoError(t, err)

	add := func(id int, name string, primary, secondary types.Kind) {
		e := types.NewEntry(id, name)
		e.Primary, e.Secondary = primary, secondary
		require.NoError(t, c.Add(e))
	}
	add(1, "Alpha", types.KindGrass, types.KindPoison)
	add(2, "Beta", types.KindGrass, types.KindNone)
	add(3, "Gamma", types.KindUnknown, types.KindNone)
	add(4, "Delta, Jr", types.KindFire, types.KindNone)

	require.NoError(t, c.Link(1, 4))
	require.NoError(t, c.Link(1, 2))
	require.NoError(t, c.Link(2, 3))
	return c
}

const branchingCSV = `5
1,Alpha,GRASS,POISON,,2,4
2,Beta,GRASS,NONE,1,3
3,Gamma,UNKNOWN,NONE,2
4,"Delta, Jr",FIRE,NONE,1
`

func roundTrip(t *testing.T, c *catalog.Catalog) *catalog.Catalog {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c))
	back, err := Read(&buf)
	require.NoError(t, err)
	return back
}

func assertSameCatalog(t *testing.T, want, got *catalog.Catalog) {
	t.Helper()
	assert.Equal(t, want.Capacity(), got.Capacity())
	assert.Equal(t, want.Size(), got.Size())
	assert.Equal(t, want.Entries(), got.Entries())
	require.NoError(t, got.Verify())
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, branching(t)))
	assert.Equal(t, branchingCSV, buf.String())
}

func TestRoundTrip(t *testing.T) {
	empty, err := catalog.New(3)
	require.NoError(t, err)

	single, err := catalog.New(1)
	require.NoError(t, err)
	require.NoError(t, single.Add(types.NewEntry(1, "Solo")))

	tests := []struct {
		name    string
		catalog *catalog.Catalog
	}{
		{name: "empty", catalog: empty},
		{name: "single unlinked", catalog: single},
		{name: "multi level branching", catalog: branching(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSameCatalog(t, tt.catalog, roundTrip(t, tt.catalog))
		})
	}
}

func TestReadForwardReferences(t *testing.T) {
	// Rows are out of order and only one side of each edge is recorded.
	input := `6
3,Gamma,UNKNOWN,NONE,2
6,Zeta,WATER,NONE,
2,Beta,GRASS,NONE,,3
1,Alpha,GRASS,POISON,,2
`
	c, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	chain, err := c.Chain(3)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, 1, chain[0].Entry.ID)
	assert.Equal(t, map[edge]bool{{1, 2}: true, {2, 3}: true}, edgeSet(c))
	require.NoError(t, c.Verify())
}

func TestReadLegacyTags(t *testing.T) {
	input := "151\n1,Bulbasaur,TypeEnum.GRASS,TypeEnum.POISON,,2\n2,Ivysaur,TypeEnum.GRASS,TypeEnum.POISON,1\n"

	c, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	e, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, types.KindGrass, e.Primary)
	assert.Equal(t, types.KindPoison, e.Secondary)
	assert.Equal(t, []int{2}, e.Successors)

	// Written back in canonical form.
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c))
	assert.Contains(t, buf.String(), "1,Bulbasaur,GRASS,POISON,,2\n")
}

func TestReadToleratesPaddedSuccessors(t *testing.T) {
	c, err := Read(strings.NewReader("3\n1,Alpha,FIRE,NONE,,2,,\n2,Beta,FIRE,NONE,,,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, mustGet(t, c, 2).Precursor)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    string
	}{
		{name: "empty input", input: "", wantErr: types.ErrMalformedRecord},
		{name: "header not a number", input: "many\n", wantErr: types.ErrMalformedRecord, line: "line 1"},
		{name: "header with extra field", input: "3,4\n", wantErr: types.ErrMalformedRecord, line: "line 1"},
		{name: "zero capacity", input: "0\n", wantErr: types.ErrInvalidCapacity, line: "line 1"},
		{name: "too few fields", input: "3\n1,Alpha,FIRE\n", wantErr: types.ErrMalformedRecord, line: "line 2"},
		{name: "bad id", input: "3\nx,Alpha,FIRE,NONE,\n", wantErr: types.ErrMalformedRecord, line: "line 2"},
		{name: "unknown kind", input: "3\n1,Alpha,PLASMA,NONE,\n", wantErr: types.ErrInvalidKind, line: "line 2"},
		{name: "bad precursor", input: "3\n1,Alpha,FIRE,NONE,?\n", wantErr: types.ErrMalformedRecord},
		{name: "bad successor", input: "3\n1,Alpha,FIRE,NONE,,2x\n", wantErr: types.ErrMalformedRecord},
		{name: "unterminated quote", input: "3\n1,\"Alpha,FIRE,NONE,\n", wantErr: types.ErrMalformedRecord},
		{name: "duplicate id", input: "3\n1,Alpha,FIRE,NONE,\n1,Beta,FIRE,NONE,\n", wantErr: types.ErrDuplicateID, line: "line 3"},
		{name: "duplicate name", input: "3\n1,Alpha,FIRE,NONE,\n2,ALPHA,FIRE,NONE,\n", wantErr: types.ErrDuplicateName},
		{name: "id out of range", input: "3\n4,Alpha,FIRE,NONE,\n", wantErr: types.ErrOutOfRange},
		{name: "too many rows", input: "1\n1,Alpha,FIRE,NONE,\n2,Beta,FIRE,NONE,\n", wantErr: types.ErrFull},
		{name: "cycle", input: "2\n1,Alpha,FIRE,NONE,2,2\n2,Beta,FIRE,NONE,1,1\n", wantErr: types.ErrCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.line != "" {
				assert.Contains(t, err.Error(), tt.line)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteFailureIsIOError(t *testing.T) {
	err := Write(failingWriter{}, branching(t))
	assert.ErrorIs(t, err, types.ErrIO)
}

func mustGet(t *testing.T, c *catalog.Catalog, id int) types.Entry {
	t.Helper()
	e, err := c.Get(id)
	require.NoError(t, err)
	return e
}

type edge struct{ from, to int }

func edgeSet(c *catalog.Catalog) map[edge]bool {
	out := make(map[edge]bool)
	for _, e := range c.Entries() {
		for _, s := range e.Successors {
			out[edge{e.ID, s}] = true
		}
	}
	return out
}
