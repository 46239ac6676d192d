package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHost(t *testing.T) {
	kernel := func() (string, error) { return "node-1", nil }
	broken := func() (string, error) { return "", errors.New("no uts") }

	assert.Equal(t, "catalog-7f9c", resolveHost(" catalog-7f9c ", kernel))
	assert.Equal(t, "node-1", resolveHost("", kernel))
	assert.Equal(t, unknownHost, resolveHost("", broken))
}

func TestGetHost_Stable(t *testing.T) {
	first := GetHost()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, GetHost())
}
