package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, _ := event.(map[string]any)
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: e})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

func fixedCode(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}

func addProduct(t *testing.T, r *repo.GormRepo, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: "tops"}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func addVerifiedUser(t *testing.T, r *repo.GormRepo, email, address string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Ayse",
		Email:        email,
		Address:      address,
		PasswordHash: "unused",
		Role:         models.RoleUser,
		IsVerified:   true,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}
