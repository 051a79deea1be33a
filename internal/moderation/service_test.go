package moderation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPubkey(c byte) string {
	return strings.Repeat(string(c), 64)
}

func TestNewService_NoConfig(t *testing.T) {
	// Service should work in disabled mode with empty config path
	svc, err := NewService("")
	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.False(t, svc.IsEnabled())
	assert.False(t, svc.IsAdmin(testPubkey('a')))
	assert.Empty(t, svc.AdminPubkey())
	assert.Empty(t, svc.CuratorPubkey())
}

func TestNewService_MissingFile(t *testing.T) {
	// Service should work in disabled mode when file doesn't exist
	svc, err := NewService("/nonexistent/path/config.json")
	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.False(t, svc.IsEnabled())
}

func TestNewService_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moderators.json")

	err := os.WriteFile(configPath, []byte("not valid json"), 0644)
	require.NoError(t, err)

	_, err = NewService(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestNewService_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moderators.json")

	admin := testPubkey('a')
	second := testPubkey('b')
	curator := testPubkey('c')

	config := fmt.Sprintf(`{
		"admins": [%q, %q],
		"curator": %q
	}`, admin, second, curator)

	err := os.WriteFile(configPath, []byte(config), 0644)
	require.NoError(t, err)

	svc, err := NewService(configPath)
	require.NoError(t, err)
	assert.True(t, svc.IsEnabled())
	assert.True(t, svc.IsAdmin(admin))
	assert.True(t, svc.IsAdmin(second))
	assert.False(t, svc.IsAdmin(testPubkey('d')))
	assert.Equal(t, admin, svc.AdminPubkey())
	assert.Equal(t, curator, svc.CuratorPubkey())
}

func TestNewService_DropsInvalidPubkeys(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moderators.json")

	admin := testPubkey('a')
	config := fmt.Sprintf(`{
		"admins": ["not-a-pubkey", %q],
		"curator": "also-bogus"
	}`, admin)

	err := os.WriteFile(configPath, []byte(config), 0644)
	require.NoError(t, err)

	svc, err := NewService(configPath)
	require.NoError(t, err)
	assert.True(t, svc.IsEnabled())
	assert.False(t, svc.IsAdmin("not-a-pubkey"))
	assert.True(t, svc.IsAdmin(admin))
	// Curator was invalid, so the first admin takes over
	assert.Equal(t, admin, svc.CuratorPubkey())
}

func TestService_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moderators.json")

	first := testPubkey('a')
	err := os.WriteFile(configPath, []byte(fmt.Sprintf(`{"admins": [%q]}`, first)), 0644)
	require.NoError(t, err)

	svc, err := NewService(configPath)
	require.NoError(t, err)
	assert.True(t, svc.IsAdmin(first))

	second := testPubkey('b')
	err = os.WriteFile(configPath, []byte(fmt.Sprintf(`{"admins": [%q]}`, second)), 0644)
	require.NoError(t, err)

	require.NoError(t, svc.Reload())
	assert.False(t, svc.IsAdmin(first))
	assert.True(t, svc.IsAdmin(second))
}
