package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrgList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgs.txt")
	content := "acme\n\n# infrastructure orgs\nplatform-team \n  tools\n#commented-out\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	orgs, err := ReadOrgList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "platform-team", "tools"}, orgs)
}

func TestReadOrgListMissingFile(t *testing.T) {
	_, err := ReadOrgList(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestReadOrgListDirectory(t *testing.T) {
	_, err := ReadOrgList(t.TempDir())
	assert.Error(t, err)
}
