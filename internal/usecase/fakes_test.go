package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeStore is an in-memory stand-in for Postgres. Transactions snapshot the
// whole store on Begin and restore it on Rollback, which lets tests assert
// that failed operations leave no partial effect.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	products map[uuid.UUID]*entity.Product
	carts    map[uuid.UUID]*entity.Cart // keyed by user ID
	orders   map[uuid.UUID]*entity.Order
	sessions map[string]*entity.Session
	tokens   map[string]*entity.VerificationToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*entity.User),
		products: make(map[uuid.UUID]*entity.Product),
		carts:    make(map[uuid.UUID]*entity.Cart),
		orders:   make(map[uuid.UUID]*entity.Order),
		sessions: make(map[string]*entity.Session),
		tokens:   make(map[string]*entity.VerificationToken),
	}
}

func (s *fakeStore) repos() *repository.Repository {
	return &repository.Repository{
		User:    &fakeUserRepo{s},
		Session: &fakeSessionRepo{s},
		Token:   &fakeTokenRepo{s},
		Product: &fakeProductRepo{s},
		Cart:    &fakeCartRepo{s},
		Order:   &fakeOrderRepo{s},
	}
}

func (s *fakeStore) snapshotLocked() *fakeStore {
	snap := newFakeStore()
	for k, v := range s.users {
		u := *v
		snap.users[k] = &u
	}
	for k, v := range s.products {
		p := *v
		snap.products[k] = &p
	}
	for k, v := range s.carts {
		snap.carts[k] = cloneCart(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.sessions {
		sess := *v
		snap.sessions[k] = &sess
	}
	for k, v := range s.tokens {
		t := *v
		snap.tokens[k] = &t
	}
	return snap
}

func (s *fakeStore) restoreLocked(snap *fakeStore) {
	s.users = snap.users
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.sessions = snap.sessions
	s.tokens = snap.tokens
}

func cloneCart(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = append([]entity.CartItem(nil), c.Items...)
	return &cp
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp
}

// ==================== FAKE DB ====================

type fakeDB struct {
	store *fakeStore
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("raw query not supported by fake")
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("raw query not supported by fake")
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("raw exec not supported by fake")
}

func (db *fakeDB) Begin(ctx context.Context) (database.Tx, error) {
	db.store.mu.Lock()
	snap := db.store.snapshotLocked()
	db.store.mu.Unlock()
	return &fakeTx{store: db.store, snapshot: snap}, nil
}

func (db *fakeDB) Ping(ctx context.Context) error { return nil }
func (db *fakeDB) Close()                         {}

type fakeTx struct {
	store    *fakeStore
	snapshot *fakeStore
	done     bool
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("raw query not supported by fake")
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("raw query not supported by fake")
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("raw exec not supported by fake")
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.done = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.store.mu.Lock()
	tx.store.restoreLocked(tx.snapshot)
	tx.store.mu.Unlock()
	return nil
}

// ==================== FAKE REPOSITORIES ====================

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) SetCartID(ctx context.Context, q database.Queryer, userID, cartID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[userID]; ok {
		id := cartID
		u.CartID = &id
	}
	return nil
}

type fakeSessionRepo struct{ s *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess := *session
	r.s.sessions[session.Token.String()] = &sess
	return nil
}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[token]; ok && sess.RevokedAt == nil {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[token]; ok && sess.RevokedAt == nil {
		now := sess.ExpiresAt
		sess.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			now := sess.ExpiresAt
			sess.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(ctx context.Context) error { return nil }

type fakeTokenRepo struct{ s *fakeStore }

func (r *fakeTokenRepo) Create(ctx context.Context, token *entity.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := *token
	r.s.tokens[token.Token] = &t
	return nil
}

func (r *fakeTokenRepo) FindValid(ctx context.Context, token string) (*entity.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tokens[token]; ok && !t.IsUsed {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTokenRepo) MarkAsUsed(ctx context.Context, tokenID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.ID == tokenID {
			t.IsUsed = true
		}
	}
	return nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := *product
	r.s.products[product.ID] = &p
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var products []*entity.Product
	for _, p := range r.s.products {
		cp := *p
		products = append(products, &cp)
	}
	if offset > len(products) {
		return nil, nil
	}
	products = products[offset:]
	if limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}

func (r *fakeProductRepo) CountAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

func (r *fakeProductRepo) Categories(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool)
	var categories []string
	for _, p := range r.s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := *product
	r.s.products[product.ID] = &p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, q database.Queryer, id uuid.UUID, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *fakeProductRepo) RestoreStock(ctx context.Context, q database.Queryer, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

type fakeCartRepo struct{ s *fakeStore }

func (r *fakeCartRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.carts[userID]; ok {
		return cloneCart(c), nil
	}
	return nil, nil
}

func (r *fakeCartRepo) FindByUserIDForUpdate(ctx context.Context, q database.Queryer, userID uuid.UUID) (*entity.Cart, error) {
	return r.FindByUserID(ctx, userID)
}

func (r *fakeCartRepo) Create(ctx context.Context, q database.Queryer, cart *entity.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[cart.UserID]; ok {
		return nil
	}
	r.s.carts[cart.UserID] = cloneCart(cart)
	return nil
}

func (r *fakeCartRepo) UpsertItem(ctx context.Context, q database.Queryer, item *entity.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		if c.ID != item.CartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ProductID == item.ProductID {
				c.Items[i].Quantity += item.Quantity
				return nil
			}
		}
		c.Items = append(c.Items, *item)
		return nil
	}
	return nil
}

func (r *fakeCartRepo) SetItemQuantity(ctx context.Context, q database.Queryer, cartID, productID uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity = qty
			}
		}
	}
	return nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, q database.Queryer, cartID, productID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		if c.ID != cartID {
			continue
		}
		items := c.Items[:0]
		for _, item := range c.Items {
			if item.ProductID != productID {
				items = append(items, item)
			}
		}
		c.Items = items
	}
	return nil
}

func (r *fakeCartRepo) Touch(ctx context.Context, q database.Queryer, cartID uuid.UUID) error {
	return nil
}

func (r *fakeCartRepo) DeleteByUserID(ctx context.Context, q database.Queryer, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(ctx context.Context, q database.Queryer, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orders []*entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdatePayment(ctx context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

// ==================== FAKE MAILER ====================

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}
