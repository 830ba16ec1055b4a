package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	got := Available()
	assert.Equal(t, []string{"http", "mock"}, got[KindPredictor])
	assert.Equal(t, []string{"influx", "nop", "prometheus"}, got[KindMetricsSink])
	assert.Equal(t, []string{"redis", "static"}, got[KindSuggestions])
}
