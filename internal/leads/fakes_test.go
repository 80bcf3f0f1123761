package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/seo-reporter/internal/reporter"
	"github.com/JakeFAU/seo-reporter/internal/webhook"
)

type fakeLeadStore struct {
	mu         sync.Mutex
	sessions   []reporter.ScrapeSession
	leads      []reporter.Lead
	calls      int
	failOn     map[int]bool
	sessionErr error
}

func (f *fakeLeadStore) CreateScrapeSession(_ context.Context, session reporter.ScrapeSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return f.sessionErr
	}
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeLeadStore) CreateLead(_ context.Context, lead reporter.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn[f.calls] {
		return errors.New("constraint violation")
	}
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeLeadStore) ListScrapeSessions(context.Context, string) ([]reporter.ScrapeSession, error) {
	return nil, nil
}

type fakeIDGen struct {
	mu     sync.Mutex
	ids    []string
	prefix string
	n      int
}

func (f *fakeIDGen) NewID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ids) > 0 {
		id := f.ids[0]
		f.ids = f.ids[1:]
		return id, nil
	}
	f.n++
	return fmt.Sprintf("%s%d", f.prefix, f.n), nil
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

type fakePoster struct {
	resp     webhook.Response
	err      error
	endpoint webhook.Endpoint
	payload  any
	calls    int
}

func (f *fakePoster) Post(_ context.Context, endpoint webhook.Endpoint, payload any) (webhook.Response, error) {
	f.calls++
	f.endpoint = endpoint
	f.payload = payload
	return f.resp, f.err
}
