package category

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/internal/control/vectordb/memoryDB"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func TestMain(m *testing.M) {
	logger_i.Init()
	os.Exit(m.Run())
}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(config.PipelineFromEnv())
	require.NoError(t, err)
	return r
}

func indexWithText(t *testing.T, text string) (vectordb.Index, vectordb.Handle) {
	t.Helper()
	s := memoryDB.NewStore()
	h, err := s.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), h, []string{"c0"}, [][]float32{{1}}, []string{text}))
	return s, h
}

func TestExplicitCategoryWins(t *testing.T) {
	r := newResolver(t)

	// explicit beats everything else, including a contradicting path
	cat, err := r.Resolve(context.Background(), "kyc", "/docs/RGPD/file.pdf", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "KYC", cat)
}

func TestUnknownExplicitFallsThrough(t *testing.T) {
	r := newResolver(t)

	cat, err := r.Resolve(context.Background(), "FINANCE", "/docs/MIFID/file.pdf", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "MIFID", cat)
}

func TestParentDirectoryMatch(t *testing.T) {
	r := newResolver(t)

	cat, err := r.Resolve(context.Background(), "", "/data/docs/rgpd/notice.docx", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "RGPD", cat)
}

func TestPathSegmentMatch(t *testing.T) {
	r := newResolver(t)

	// LCBFT is not the parent directory but appears earlier in the path
	cat, err := r.Resolve(context.Background(), "", "/data/LCBFT/2024/q3/report.pdf", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "LCBFT", cat)
}

func TestContentKeywordMatch(t *testing.T) {
	r := newResolver(t)
	idx, h := indexWithText(t, "This procedure covers identity verification and beneficial owner records.")

	cat, err := r.Resolve(context.Background(), "", "/tmp/upload-381.pdf", idx, h)
	require.NoError(t, err)
	assert.Equal(t, "KYC", cat)
}

func TestUnresolvedFails(t *testing.T) {
	r := newResolver(t)
	idx, h := indexWithText(t, "Quarterly cafeteria menu. Nothing regulatory in here.")

	_, err := r.Resolve(context.Background(), "", "/tmp/upload-382.pdf", idx, h)
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestUnresolvedWithoutIndex(t *testing.T) {
	r := newResolver(t)

	_, err := r.Resolve(context.Background(), "", "/tmp/upload-383.pdf", nil, "")
	assert.ErrorIs(t, err, ErrUnresolved)
}
