package flag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Registration must not parse: a test binary carries -test.* flags on its
// command line that only the testing framework knows about, so any value read
// before ParseFlags sees the registered defaults.
func TestDefaultsAvailableWithoutParsing(t *testing.T) {
	assert.True(t, IsDevelopment)
	assert.Equal(t, APIServer, ServiceName)
	assert.False(t, ByPassAuth)
}
