// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/meridian-tui/internal/model"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func testSession() model.Session {
	return model.Session{
		ID:        "s1",
		Title:     "Pipeline review",
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	a := openTestArchive(t)

	msgs := []model.Message{
		model.NewUserMessage("how is the pipeline"),
		model.NewSyntheticMessage("Looking good."),
	}
	require.NoError(t, a.SaveTranscript(testSession(), msgs))

	sessions, err := a.SessionCount()
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)

	count, err := a.MessageCount("s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestArchiveIdempotent(t *testing.T) {
	a := openTestArchive(t)
	s := testSession()
	msgs := []model.Message{model.NewUserMessage("hello")}

	require.NoError(t, a.SaveTranscript(s, msgs))
	require.NoError(t, a.SaveTranscript(s, msgs))

	count, err := a.MessageCount(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-archiving must not duplicate rows")
}

func TestSaveMessageUpsertsContent(t *testing.T) {
	a := openTestArchive(t)
	s := testSession()
	require.NoError(t, a.SaveSession(s))

	m := model.NewSyntheticMessage("partial")
	require.NoError(t, a.SaveMessage(s.ID, m))

	m.Content = "partial then complete"
	require.NoError(t, a.SaveMessage(s.ID, m))

	count, err := a.MessageCount(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteSession(t *testing.T) {
	a := openTestArchive(t)
	s := testSession()
	require.NoError(t, a.SaveTranscript(s, []model.Message{model.NewUserMessage("x")}))

	require.NoError(t, a.DeleteSession(s.ID))

	sessions, err := a.SessionCount()
	require.NoError(t, err)
	assert.Zero(t, sessions)

	count, err := a.MessageCount(s.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClosedArchive(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.SaveSession(testSession()), ErrClosed)
	_, err := a.SessionCount()
	assert.ErrorIs(t, err, ErrClosed)
}
