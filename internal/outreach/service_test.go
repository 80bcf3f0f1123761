package outreach

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/journal"
	memorypublisher "github.com/JakeFAU/seo-reporter/internal/publisher/memory"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
	"github.com/JakeFAU/seo-reporter/internal/webhook"
)

type fakePoster struct {
	err      error
	endpoint webhook.Endpoint
	payload  any
	calls    int
}

func (f *fakePoster) Post(_ context.Context, endpoint webhook.Endpoint, payload any) (webhook.Response, error) {
	f.calls++
	f.endpoint = endpoint
	f.payload = payload
	return webhook.Response{StatusCode: 200}, f.err
}

var (
	emailEndpoint = webhook.Endpoint{Name: "email", URL: "http://n8n.test/email", Setting: "N8N_SEND_EMAIL_WEBHOOK_URL"}
	sender        = reporter.User{ID: "u2", Name: "Bright Agency", Email: "hello@bright.test", Role: reporter.RoleAgency}
)

func TestSendForwardsComposedEmail(t *testing.T) {
	t.Parallel()

	poster := &fakePoster{}
	pub := memorypublisher.New()
	jrnl := journal.New(journal.Config{Topic: "seo-events"}, nil, pub, nil, nil, zap.NewNop())
	svc := NewService(poster, emailEndpoint, jrnl, zap.NewNop())

	err := svc.Send(context.Background(), sender, Request{
		LeadEmail:    "owner@acme.test",
		BusinessName: "Acme",
		WebsiteURL:   "https://acme.test",
		AuditContent: "<h1>Audit</h1>",
	})
	require.NoError(t, err)

	got, ok := poster.payload.(emailPayload)
	require.True(t, ok)
	want := Compose("Acme", "https://acme.test", "Bright Agency")
	require.Equal(t, emailPayload{
		To:           "owner@acme.test",
		Subject:      want.Subject,
		TextBody:     want.Body,
		BusinessName: "Acme",
		WebsiteURL:   "https://acme.test",
		AuditContent: "<h1>Audit</h1>",
		AgencyName:   "Bright Agency",
		AgencyEmail:  "hello@bright.test",
	}, got)
	require.Equal(t, emailEndpoint, poster.endpoint)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, journal.EventLeadEmailSent, msgs[0].Payload.(journal.Event).Type)
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing lead email", req: Request{BusinessName: "Acme"}},
		{name: "missing business name", req: Request{LeadEmail: "a@b.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			poster := &fakePoster{}
			err := NewService(poster, emailEndpoint, nil, nil).Send(context.Background(), sender, tt.req)
			require.ErrorIs(t, err, reporter.ErrInvalidInput)
			require.Equal(t, "Lead email and business name are required", err.Error())
			require.Zero(t, poster.calls)
		})
	}
}

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) Post(ctx context.Context, endpoint webhook.Endpoint, payload any) (webhook.Response, error) {
	args := m.Called(ctx, endpoint, payload)
	return args.Get(0).(webhook.Response), args.Error(1)
}

func TestSendWebhookFailure(t *testing.T) {
	t.Parallel()

	poster := &mockPoster{}
	poster.On("Post", mock.Anything, emailEndpoint, mock.AnythingOfType("outreach.emailPayload")).
		Return(webhook.Response{StatusCode: 500}, &webhook.StatusError{StatusCode: 500, Body: "smtp down"}).
		Once()

	pub := memorypublisher.New()
	jrnl := journal.New(journal.Config{Topic: "seo-events"}, nil, pub, nil, nil, zap.NewNop())
	err := NewService(poster, emailEndpoint, jrnl, nil).Send(context.Background(), sender, Request{LeadEmail: "a@b.test", BusinessName: "Acme"})

	require.EqualError(t, err, "n8n responded with 500: smtp down")
	require.Empty(t, pub.Messages())
	poster.AssertExpectations(t)
}
