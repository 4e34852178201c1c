package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRejectsBadInterval(t *testing.T) {
	withFakes(t, goodRun(), &fakeStore{})
	viper.Set("watch.interval", "whenever")

	_, err := execCLI(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing watch interval")
}

func TestWatchRejectsNegativeInterval(t *testing.T) {
	withFakes(t, goodRun(), &fakeStore{})
	viper.Set("watch.interval", "-1h")

	_, err := execCLI(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}
