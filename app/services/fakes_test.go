package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

var errStoreDown = errors.New("store down")

type memProducts struct {
	mu       sync.Mutex
	seq      int64
	products []models.Product
	fail     error
}

func (m *memProducts) NextID(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	m.seq++
	return m.seq, nil
}

func (m *memProducts) Insert(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	p.ObjectID = primitive.NewObjectID()
	m.products = append(m.products, *p)
	return nil
}

func (m *memProducts) DeleteByID(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memProducts) All(context.Context) ([]models.Product, error) {
	return m.sorted(func(a, b models.Product) bool { return a.ID < b.ID }, "", -1)
}

func (m *memProducts) Latest(_ context.Context, n int) ([]models.Product, error) {
	return m.sorted(func(a, b models.Product) bool {
		if a.Date.Equal(b.Date) {
			return a.ID > b.ID
		}
		return a.Date.After(b.Date)
	}, "", n)
}

func (m *memProducts) ByCategory(_ context.Context, category string, n int) ([]models.Product, error) {
	return m.sorted(func(a, b models.Product) bool { return a.ID < b.ID }, category, n)
}

func (m *memProducts) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	for _, p := range m.products {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProducts) sorted(less func(a, b models.Product) bool, category string, n int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	cp.CartData = models.Cart{}
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (m *memUsers) lookup(userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repositories.ErrUserNotFound
	}
	u, ok := m.users[oid]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) IncrementCartItem(_ context.Context, userID string, item int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.lookup(userID)
	if err != nil {
		return err
	}
	u.CartData[models.CartKey(item)]++
	return nil
}

func (m *memUsers) DecrementCartItem(_ context.Context, userID string, item int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.lookup(userID)
	if err != nil {
		return false, err
	}
	key := models.CartKey(item)
	if u.CartData[key] <= 0 {
		return false, nil
	}
	u.CartData[key]--
	return true, nil
}

func (m *memUsers) Cart(_ context.Context, userID string) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.lookup(userID)
	if err != nil {
		return nil, err
	}
	out := make(models.Cart, len(u.CartData))
	for k, v := range u.CartData {
		out[k] = v
	}
	return out, nil
}

// addUser stores a user directly, bypassing signup.
func (m *memUsers) addUser(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = primitive.NewObjectID()
	if u.CartData == nil {
		u.CartData = models.Cart{}
	}
	m.users[u.ID] = &u
	return &u
}

type stubTokens struct{}

func (stubTokens) Generate(userID string) (string, error) { return "token-for-" + userID, nil }

// inlineJobs runs submitted tasks synchronously.
type inlineJobs struct{ err error }

func (j inlineJobs) Submit(task func()) error {
	if j.err != nil {
		return j.err
	}
	task()
	return nil
}
