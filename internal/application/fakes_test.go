package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/lovejar/internal/domain/model"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memAccountStore is an in-memory driven.AccountStore.
type memAccountStore struct {
	mu        sync.Mutex
	byCode    map[string]model.Account
	nextID    int64
	createErr []error
	linkCalls int
}

var _ driven.AccountStore = (*memAccountStore)(nil)

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{byCode: make(map[string]model.Account)}
}

func (m *memAccountStore) put(a model.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.byCode[a.UniqueCode] = a
}

func (m *memAccountStore) Create(_ context.Context, a model.Account) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.createErr) > 0 {
		err := m.createErr[0]
		m.createErr = m.createErr[1:]
		if err != nil {
			return model.Account{}, err
		}
	}
	for _, existing := range m.byCode {
		if existing.Handle == a.Handle {
			return model.Account{}, driven.ErrHandleTaken
		}
	}
	if _, ok := m.byCode[a.UniqueCode]; ok {
		return model.Account{}, driven.ErrCodeTaken
	}

	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now().UTC()
	m.byCode[a.UniqueCode] = a
	return a, nil
}

func (m *memAccountStore) GetByCode(_ context.Context, code string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byCode[code]
	if !ok {
		return model.Account{}, fmt.Errorf("get %s: %w", code, driven.ErrAccountNotFound)
	}
	return a, nil
}

func (m *memAccountStore) GetByHandle(_ context.Context, handle string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byCode {
		if a.Handle == handle {
			return a, nil
		}
	}
	return model.Account{}, driven.ErrAccountNotFound
}

func (m *memAccountStore) UpdateProfile(_ context.Context, code, displayName, pictureURL string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byCode[code]
	if !ok {
		return model.Account{}, driven.ErrAccountNotFound
	}
	a.DisplayName = displayName
	a.PictureURL = pictureURL
	m.byCode[code] = a
	return a, nil
}

func (m *memAccountStore) Link(_ context.Context, requesterCode, partnerCode string) (driven.LinkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkCalls++

	requester, ok := m.byCode[requesterCode]
	if !ok {
		return driven.LinkResult{}, driven.ErrAccountNotFound
	}
	partner, ok := m.byCode[partnerCode]
	if !ok {
		return driven.LinkResult{}, driven.ErrAccountNotFound
	}

	linked, err := model.CheckLink(requester, partner)
	if err != nil {
		return driven.LinkResult{}, err
	}
	if linked {
		return driven.LinkResult{Account: requester}, nil
	}

	requester.LinkedPartnerCode = partnerCode
	partner.LinkedPartnerCode = requesterCode
	m.byCode[requesterCode] = requester
	m.byCode[partnerCode] = partner
	return driven.LinkResult{Account: requester, Changed: true}, nil
}

func (m *memAccountStore) Unlink(_ context.Context, code string) (driven.UnlinkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byCode[code]
	if !ok {
		return driven.UnlinkResult{}, driven.ErrAccountNotFound
	}
	if !a.IsLinked() {
		return driven.UnlinkResult{}, model.ErrNotLinked
	}
	former := a.LinkedPartnerCode
	a.LinkedPartnerCode = ""
	m.byCode[code] = a

	if p, ok := m.byCode[former]; ok && p.LinkedPartnerCode == code {
		p.LinkedPartnerCode = ""
		m.byCode[former] = p
	}
	return driven.UnlinkResult{Account: a, FormerPartnerCode: former}, nil
}

func (m *memAccountStore) SetAnniversary(_ context.Context, code string, date time.Time) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byCode[code]
	if !ok {
		return model.Account{}, driven.ErrAccountNotFound
	}
	a.AnniversaryDate = &date
	m.byCode[code] = a

	if p, ok := m.byCode[a.LinkedPartnerCode]; ok && p.LinkedPartnerCode == code {
		p.AnniversaryDate = &date
		m.byCode[p.UniqueCode] = p
	}
	return a, nil
}

// memJarStore is an in-memory driven.JarStore.
type memJarStore struct {
	mu     sync.Mutex
	items  []model.JarItem
	nextID int64
}

func (m *memJarStore) Add(_ context.Context, item model.JarItem) (model.JarItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.ID = m.nextID
	item.CreatedAt = time.Date(2026, 1, 1, 0, 0, int(m.nextID), 0, time.UTC)
	m.items = append(m.items, item)
	return item, nil
}

func (m *memJarStore) ListByOwners(_ context.Context, owners []string) ([]model.JarItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.JarItem
	for _, item := range m.items {
		if contains(owners, item.OwnerCode) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memJarStore) Delete(_ context.Context, id int64, owners []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == id && contains(owners, item.OwnerCode) {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return driven.ErrJarItemNotFound
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

type stubTokens struct{}

func (stubTokens) Issue(subject string) (string, error) { return "token-" + subject, nil }

type recordingPublisher struct {
	events []model.PartnerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e model.PartnerEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type stubVerifier struct {
	identity model.FederatedIdentity
	err      error
}

func (v stubVerifier) Verify(context.Context, string) (model.FederatedIdentity, error) {
	return v.identity, v.err
}

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}
