package app

import (
	"testing"
	"time"

	"github.com/quickcal/quickcal/pkg/extraction"
	"github.com/stretchr/testify/assert"
)

func TestWriteTimeout(t *testing.T) {
	t.Run("should outlast configured model timeout", func(t *testing.T) {
		assert.Equal(t, 45*time.Second, writeTimeout(30*time.Second))
	})

	t.Run("should use model default when timeout is unset", func(t *testing.T) {
		got := writeTimeout(0)

		assert.Equal(t, extraction.DefaultModelTimeout+15*time.Second, got)
		assert.Greater(t, got, extraction.DefaultModelTimeout)
	})
}
