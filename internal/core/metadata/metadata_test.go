package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneDoesNotAlias(t *testing.T) {
	original := Metadata{"a": "1", "b": "2"}
	clone := original.Clone()
	clone["a"] = "changed"

	assert.Equal(t, "1", original["a"])
	assert.Len(t, clone, len(original))
}

func TestCloneEmpty(t *testing.T) {
	var m Metadata
	cloned := m.Clone()
	assert.NotNil(t, cloned)
	assert.Empty(t, cloned)
}

func TestWithAndWithAll(t *testing.T) {
	base := Metadata{"foo": "bar"}
	enriched := base.With("baz", "qux")
	assert.Empty(t, base["baz"])
	assert.Equal(t, "qux", enriched["baz"])

	combined := base.WithAll(Metadata{"a": "1", "b": "2"})
	assert.Equal(t, "1", combined["a"])
	assert.Equal(t, "2", combined["b"])
	assert.Equal(t, "bar", combined["foo"])
}

func TestNewFromPairs(t *testing.T) {
	md := New("k1", "v1", "k2", "v2")
	assert.Equal(t, "v1", md["k1"])
	assert.Equal(t, "v2", md["k2"])
}

func TestNewOddPairsIgnoresTrailing(t *testing.T) {
	md := New("k1", "v1", "dangling")
	assert.Equal(t, "v1", md["k1"])
	assert.Len(t, md, 1)
}
