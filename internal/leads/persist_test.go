package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/payload"
)

func newTestPersister(store *fakeLeadStore) *Persister {
	return NewPersister(store, &fakeIDGen{prefix: "lead-"}, fakeClock{now: time.Unix(1700000000, 0).UTC()}, zap.NewNop())
}

func TestPersistFoldsLeadFailures(t *testing.T) {
	t.Parallel()

	store := &fakeLeadStore{failOn: map[int]bool{3: true}}
	records := decode(t, `[
		{"Business Name":"One"},
		{"Business Name":"Two"},
		{"Business Name":"Three"},
		{"Business Name":"Four"},
		{"Business Name":"Five"}
	]`).Items()

	outcome, err := newTestPersister(store).Persist(context.Background(), Batch{
		SessionID:     "ABC123",
		UserID:        "user-1",
		SearchTerms:   "plumbers",
		LocationQuery: "Boston, MA",
		Records:       records,
	})
	require.NoError(t, err)
	require.Equal(t, "ABC123", outcome.SessionID)
	require.Equal(t, 4, outcome.LeadCount())
	require.Len(t, outcome.Failed, 1)
	require.Equal(t, 2, outcome.Failed[0].Index)
	require.Equal(t, `{"Business Name":"Three"}`, outcome.Failed[0].Record.String())

	require.Len(t, store.sessions, 1)
	require.Equal(t, "user-1", store.sessions[0].UserID)
	require.Equal(t, "plumbers", store.sessions[0].SearchTerms)
	require.Equal(t, "Boston, MA", store.sessions[0].LocationQuery)

	names := make([]string, 0, len(store.leads))
	for _, lead := range store.leads {
		require.Equal(t, "ABC123", lead.SessionID)
		names = append(names, lead.BusinessName)
	}
	require.Equal(t, []string{"One", "Two", "Four", "Five"}, names)
}

func TestPersistSessionFailureAborts(t *testing.T) {
	t.Parallel()

	store := &fakeLeadStore{sessionErr: errors.New("fk violation")}
	_, err := newTestPersister(store).Persist(context.Background(), Batch{
		SessionID: "ABC123",
		UserID:    "missing-user",
		Records:   []payload.Value{payload.MappingOf()},
	})
	require.ErrorContains(t, err, "create scrape session")
	require.Zero(t, store.calls)
}

func TestPersistNullRecordIsPerRecordFailure(t *testing.T) {
	t.Parallel()

	store := &fakeLeadStore{}
	outcome, err := newTestPersister(store).Persist(context.Background(), Batch{
		SessionID: "S1",
		UserID:    "user-1",
		Records:   decode(t, `[null,{"businessName":"Real"},"bare"]`).Items(),
	})
	require.NoError(t, err)
	require.Equal(t, 2, outcome.LeadCount())
	require.Len(t, outcome.Failed, 1)
	require.ErrorIs(t, outcome.Failed[0].Err, ErrNullRecord)
	require.Equal(t, "Real", outcome.Saved[0].BusinessName)
	require.Equal(t, DefaultBusinessName, outcome.Saved[1].BusinessName)
}

func TestPersistEmptyBatchStillCreatesSession(t *testing.T) {
	t.Parallel()

	store := &fakeLeadStore{}
	outcome, err := newTestPersister(store).Persist(context.Background(), Batch{SessionID: "S1", UserID: "u"})
	require.NoError(t, err)
	require.Zero(t, outcome.LeadCount())
	require.Len(t, store.sessions, 1)
}

func TestPersistAssignsFreshIDsAndTimestamps(t *testing.T) {
	t.Parallel()

	store := &fakeLeadStore{}
	outcome, err := newTestPersister(store).Persist(context.Background(), Batch{
		SessionID: "S1",
		UserID:    "u",
		Records:   decode(t, `[{"businessName":"A"},{"businessName":"B"}]`).Items(),
	})
	require.NoError(t, err)
	require.Equal(t, "lead-1", outcome.Saved[0].ID)
	require.Equal(t, "lead-2", outcome.Saved[1].ID)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), outcome.Saved[0].CreatedAt)
}
