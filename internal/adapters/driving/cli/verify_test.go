package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pacer/internal/core/ports/driven"
)

// driftSlide overwrites one stored fingerprint's normalised content.
func driftSlide(t *testing.T, env *testEnv, owner, doc, slide string) {
	t.Helper()
	ctx := context.Background()
	fps, err := env.store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	for _, fp := range fps {
		if fp.SourceDocumentID == doc && fp.SourceSlideID == slide {
			fp.ContentNormalized = "stale"
			require.NoError(t, env.store.Atomic(ctx, owner, doc, func(tx driven.FingerprintTx) error {
				return tx.Upsert(fp)
			}))
			return
		}
	}
	t.Fatalf("fingerprint %s/%s not found", doc, slide)
}

func TestVerifyCmd_Clean(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("index", writeDeck(t, t.TempDir(), "intro.yaml", introDeck))
	require.NoError(t, err)

	out, err := runCommand("verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 2 fingerprint(s)")
	assert.Contains(t, out, "No drift found.")
}

func TestVerifyCmd_DriftWithoutRepair(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("index", writeDeck(t, t.TempDir(), "intro.yaml", introDeck))
	require.NoError(t, err)
	driftSlide(t, env, "alice", "intro", "s3")

	out, err := runCommand("verify", "--owner", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 drifted fingerprint(s); run with --repair")
	assert.Contains(t, out, "drift: intro/s3 (alice)")
}

func TestVerifyCmd_Repair(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("index", writeDeck(t, t.TempDir(), "intro.yaml", introDeck))
	require.NoError(t, err)
	driftSlide(t, env, "alice", "intro", "s1")

	out, err := runCommand("verify", "--repair")
	require.NoError(t, err)
	assert.Contains(t, out, "Repaired 1 of 1.")

	out, err = runCommand("verify")
	require.NoError(t, err)
	assert.Contains(t, out, "No drift found.")
}
