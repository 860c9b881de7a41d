package consumer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(t *testing.T, facts map[string]string) *Consumer {
	c, err := NewConsumer(Params{OwnerID: "owner-1", Name: "sys1", Type: TypeSystem, Facts: facts})
	require.NoError(t, err)
	return c
}

func TestNewConsumer_Validation(t *testing.T) {
	_, err := NewConsumer(Params{Name: "x", Type: TypeSystem})
	assert.ErrorIs(t, err, ErrOwnerRequired)

	_, err = NewConsumer(Params{OwnerID: "o", Name: "  ", Type: TypeSystem})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = NewConsumer(Params{OwnerID: "o", Name: "x"})
	assert.ErrorIs(t, err, ErrTypeRequired)
}

func TestConsumer_UUIDImmutable(t *testing.T) {
	c := newTestConsumer(t, nil)
	require.NoError(t, c.SetUUID("abc"))
	require.NoError(t, c.SetUUID("abc"))
	assert.ErrorIs(t, c.SetUUID("def"), ErrUUIDAlreadyAssigned)
	assert.Equal(t, "abc", c.UUID())
}

func TestConsumer_GuestFacts(t *testing.T) {
	assert.False(t, newTestConsumer(t, nil).IsGuest())
	assert.False(t, newTestConsumer(t, map[string]string{FactVirtIsGuest: "false"}).IsGuest())

	guest := newTestConsumer(t, map[string]string{FactVirtIsGuest: "True", FactVirtUUID: "ABC-123"})
	assert.True(t, guest.IsGuest())
	uuid, ok := guest.VirtUUID()
	assert.True(t, ok)
	assert.Equal(t, "ABC-123", uuid)

	_, ok = newTestConsumer(t, map[string]string{FactVirtUUID: " "}).VirtUUID()
	assert.False(t, ok)
}

func TestConsumer_FactsAreCopied(t *testing.T) {
	facts := map[string]string{"a": "1"}
	c := newTestConsumer(t, facts)
	facts["a"] = "2"
	v, _ := c.Fact("a")
	assert.Equal(t, "1", v)

	got := c.Facts()
	got["b"] = "x"
	_, ok := c.Fact("b")
	assert.False(t, ok)
}

func TestConsumerType(t *testing.T) {
	assert.True(t, TypeCandlepin.IsManifest())
	assert.False(t, TypeSystem.IsManifest())
	assert.True(t, newTestConsumer(t, nil).Type() == TypeSystem)
}

func TestDefaultFactValidator(t *testing.T) {
	v := NewDefaultFactValidator("custom.count")

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"free form fact", "distribution.name", "Red Hat Enterprise Linux", false},
		{"integer fact", "cpu.cpu_socket(s)", "4", false},
		{"empty integer fact", "cpu.cpu_socket(s)", "", false},
		{"non integer socket count", "cpu.cpu_socket(s)", "four", true},
		{"negative memory", "memory.memtotal", "-1", true},
		{"extra integer fact", "custom.count", "1.5", true},
		{"empty key", "", "x", true},
		{"long value", "uname.machine", strings.Repeat("x", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFact)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, ValidateFacts(v, map[string]string{"ok": "1", "memory.memtotal": "lots"}), ErrInvalidFact)
	assert.NoError(t, ValidateFacts(nil, map[string]string{"memory.memtotal": "lots"}))
}

func TestHostCache(t *testing.T) {
	cache := NewHostCache(0)
	host := newTestConsumer(t, nil)

	_, ok := cache.Get("GUEST-1", "owner-1")
	assert.False(t, ok)

	cache.Put("GUEST-1", "owner-1", host)
	got, ok := cache.Get("guest-1", "owner-1")
	require.True(t, ok)
	assert.Same(t, host, got)

	_, ok = cache.Get("guest-1", "owner-2")
	assert.False(t, ok)

	cache.Put("missing", "owner-1", nil)
	got, ok = cache.Get("MISSING", "owner-1")
	assert.True(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 2, cache.Len())
}

func TestHostCache_Context(t *testing.T) {
	_, ok := HostCacheFrom(context.Background())
	assert.False(t, ok)

	cache := NewHostCache(4)
	got, ok := HostCacheFrom(WithHostCache(context.Background(), cache))
	require.True(t, ok)
	assert.Same(t, cache, got)
}
