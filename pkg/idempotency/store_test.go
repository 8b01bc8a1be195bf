package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Key(t *testing.T) {
	s := NewStore(nil, 0)
	assert.Equal(t, "idem:cart_cleared:abc", s.Key("cart_cleared", "abc"))
}
