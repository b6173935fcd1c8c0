package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDir(t *testing.T) {
	assert.EqualValues(t, "/tmp/cache", Dir("/tmp/cache/"))

	userCache, err := os.UserCacheDir()
	if err != nil {
		t.Skip("no user cache dir")
	}
	assert.EqualValues(t, filepath.Join(userCache, "aya"), Dir(""))
}
