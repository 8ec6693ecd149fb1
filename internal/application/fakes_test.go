package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tiergate/internal/models"
	"tiergate/internal/repository"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

type recLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recLogger) add(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, v...))
}

func (l *recLogger) Error(format string, v ...interface{}) { l.add("ERROR", format, v...) }
func (l *recLogger) Warn(format string, v ...interface{}) { l.add("WARN", format, v...) }
func (l *recLogger) Info(format string, v ...interface{}) { l.add("INFO", format, v...) }
func (l *recLogger) Debug(format string, v ...interface{}) { l.add("DEBUG", format, v...) }

func (l *recLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// memStore is an in-memory stand-in for both Postgres stores and the
// transaction helper.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	links   map[string]string // discord -> minecraft
	pending map[string]string // minecraft -> code
	codeSeq int
	fail    error
}

func newMemStore() *memStore {
	return &memStore{
		links:   make(map[string]string),
		pending: make(map[string]string),
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	links := cloneMap(m.links)
	pending := cloneMap(m.pending)
	m.mu.Unlock()

	if err := fn(m, m); err != nil {
		m.mu.Lock()
		m.links, m.pending = links, pending
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) ResolveDiscordID(_ context.Context, minecraftID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", false, m.fail
	}
	for d, mc := range m.links {
		if mc == minecraftID {
			return d, true, nil
		}
	}
	return "", false, nil
}

func (m *memStore) ResolveMinecraftID(_ context.Context, discordID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.links[discordID]
	if !ok {
		return "", models.ErrNoMinecraftAccount
	}
	return mc, nil
}

func (m *memStore) Create(_ context.Context, link models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, discordTaken := m.links[link.DiscordID]
	minecraftTaken := false
	for _, mc := range m.links {
		if mc == link.MinecraftID {
			minecraftTaken = true
		}
	}
	switch {
	case discordTaken && minecraftTaken:
		return &models.AlreadyLinkedError{Side: models.SideBoth}
	case discordTaken:
		return &models.AlreadyLinkedError{Side: models.SideDiscord}
	case minecraftTaken:
		return &models.AlreadyLinkedError{Side: models.SideMinecraft}
	}
	m.links[link.DiscordID] = link.MinecraftID
	return nil
}

func (m *memStore) DeleteByDiscordID(_ context.Context, discordID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.links[discordID]
	delete(m.links, discordID)
	return ok, nil
}

func (m *memStore) DeleteByMinecraftID(_ context.Context, minecraftID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for d, mc := range m.links {
		if mc == minecraftID {
			delete(m.links, d)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListDiscordIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.links))
	for d := range m.links {
		ids = append(ids, d)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) List(ctx context.Context) ([]models.Link, error) {
	ids, _ := m.ListDiscordIDs(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	links := make([]models.Link, 0, len(ids))
	for _, d := range ids {
		links = append(links, models.Link{DiscordID: d, MinecraftID: m.links[d]})
	}
	return links, nil
}

func (m *memStore) LookupByMinecraftID(_ context.Context, minecraftID string) (*models.PendingAuthorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.pending[minecraftID]
	if !ok {
		return nil, nil
	}
	return &models.PendingAuthorization{MinecraftID: minecraftID, AuthCode: code}, nil
}

func (m *memStore) LookupByCode(_ context.Context, code string) (*models.PendingAuthorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for mc, c := range m.pending {
		if c == code {
			return &models.PendingAuthorization{MinecraftID: mc, AuthCode: c}, nil
		}
	}
	return nil, nil
}

func (m *memStore) IssueOrRefresh(_ context.Context, minecraftID string) (*models.PendingAuthorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeSeq++
	code := fmt.Sprintf("%08x", m.codeSeq)
	m.pending[minecraftID] = code
	return &models.PendingAuthorization{MinecraftID: minecraftID, AuthCode: code, IssuedAt: time.Now()}, nil
}

func (m *memStore) Consume(_ context.Context, code string) (*models.PendingAuthorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for mc, c := range m.pending {
		if c == code {
			delete(m.pending, mc)
			return &models.PendingAuthorization{MinecraftID: mc, AuthCode: c}, nil
		}
	}
	return nil, nil
}

func (m *memStore) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}

type oracleAnswer struct {
	ok    bool
	err   error
	delay time.Duration
}

type fakeOracle struct {
	answers map[string]oracleAnswer
}

func (o *fakeOracle) IsTierThree(ctx context.Context, discordID string) (bool, error) {
	a, ok := o.answers[discordID]
	if !ok {
		return false, models.ErrNoDiscordAccount
	}
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	return a.ok, a.err
}
