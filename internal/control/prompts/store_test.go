package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func TestMain(m *testing.M) {
	logger_i.Init()
	os.Exit(m.Run())
}

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestListReturnsSortedValidDefinitions(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KYC")
	writePrompt(t, dir, "kyc_02.json", `{"control_id":"KYC-02","description":"d2","meta_category":"KYC","prompt_instructions":["check"]}`)
	writePrompt(t, dir, "kyc_01.json", `{"control_id":"KYC-01","description":"d1","meta_category":"KYC","prompt_instructions":["verify"]}`)

	defs, failures, err := NewStore(root).List("KYC")
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, defs, 2)
	assert.Equal(t, "KYC-01", defs[0].ControlID)
	assert.Equal(t, "KYC-02", defs[1].ControlID)
}

func TestListReportsMalformedFilesAsFailures(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "RGPD")
	writePrompt(t, dir, "good.json", `{"control_id":"RGPD-01","prompt_instructions":["scan for personal data"]}`)
	writePrompt(t, dir, "broken.json", `{not json`)
	writePrompt(t, dir, "notes.txt", "ignore me")

	defs, failures, err := NewStore(root).List("RGPD")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "RGPD-01", defs[0].ControlID)
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].ControlID)
	assert.NotEmpty(t, failures[0].Cause)
}

func TestListEmptyCategoryFails(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "MIFID"), 0o755))

	_, _, err := NewStore(root).List("MIFID")
	assert.ErrorIs(t, err, ErrNoControls)
}

func TestListUnknownCategoryFails(t *testing.T) {
	_, _, err := NewStore(t.TempDir()).List("LCBFT")
	assert.Error(t, err)
}

func TestLoadRejectsMissingInstructions(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "RSE")
	writePrompt(t, dir, "empty.json", `{"control_id":"RSE-01","prompt_instructions":[]}`)
	writePrompt(t, dir, "blank.json", `{"control_id":"RSE-02","prompt_instructions":["  "]}`)

	s := NewStore(root)
	_, err := s.Load(filepath.Join(dir, "empty.json"))
	assert.Error(t, err)
	_, err = s.Load(filepath.Join(dir, "blank.json"))
	assert.Error(t, err)
}

func TestLoadDefaultsControlIDToFileStem(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "KYC")
	writePrompt(t, dir, "kyc_identity_check.json", `{"prompt_instructions":["confirm identity documents are listed"]}`)

	def, err := NewStore(root).Load(filepath.Join(dir, "kyc_identity_check.json"))
	require.NoError(t, err)
	assert.Equal(t, "kyc_identity_check", def.ControlID)
}

func TestListAllGroupsByCategory(t *testing.T) {
	root := t.TempDir()
	writePrompt(t, filepath.Join(root, "KYC"), "a.json", `{"control_id":"KYC-01","prompt_instructions":["x"]}`)
	writePrompt(t, filepath.Join(root, "RGPD"), "b.json", `{"control_id":"RGPD-01","prompt_instructions":["y"]}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "EMPTY"), 0o755))

	all, err := NewStore(root).ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, all, "KYC")
	assert.Contains(t, all, "RGPD")
	assert.NotContains(t, all, "EMPTY")
}
