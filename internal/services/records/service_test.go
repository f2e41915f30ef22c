package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"aspataal/internal/apperr"
	"aspataal/internal/domain/entity"
	"aspataal/internal/store/memory"
	"aspataal/internal/store/repositories"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func descriptor(t *testing.T, name string) *entity.Descriptor {
	t.Helper()
	reg, err := entity.Default()
	require.NoError(t, err)
	d, err := reg.Get(name)
	require.NoError(t, err)
	return d
}

func newTestService(st *memory.Store) *Service {
	s := NewService(st)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func payload(t *testing.T, body string) Payload {
	t.Helper()
	var p Payload
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&p))
	return p
}

func TestAddUserHashesPasswordAndHidesIt(t *testing.T) {
	st := memory.New()
	svc := newTestService(st)
	d := descriptor(t, "users")

	rec, err := svc.Add(context.Background(), d, payload(t, `{
		"first_name": "Asha", "email": "asha@example.com",
		"password": "s3cret!", "confirm_password": "s3cret!",
		"user_role_id": "2", "user_id": 99
	}`))
	require.NoError(t, err)
	require.NotContains(t, rec, "password")
	require.EqualValues(t, 1, rec["user_id"])
	require.EqualValues(t, 2, rec["user_role_id"])

	stored, err := st.FindOne(context.Background(), "users", []string{"password"}, "user_id", int64(1))
	require.NoError(t, err)
	hash, ok := stored["password"].(string)
	require.True(t, ok)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))
}

func TestAddValidatesRules(t *testing.T) {
	svc := newTestService(memory.New())
	_, err := svc.Add(context.Background(), descriptor(t, "users"), payload(t, `{
		"email": "not-an-email", "password": "abc", "confirm_password": "abd"
	}`))
	require.ErrorIs(t, err, apperr.ErrInvalidParameter)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "first_name")
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "password")
	require.Equal(t, "does not match password", verr.Fields["confirm_password"])
}

func TestAddRejectsBadTypes(t *testing.T) {
	svc := newTestService(memory.New())
	_, err := svc.Add(context.Background(), descriptor(t, "revenue"), payload(t, `{"amount": "lots", "patient_id": 1}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "amount must be numeric", verr.Fields["amount"])
}

func TestAddRejectsDuplicateUnique(t *testing.T) {
	st := memory.New()
	st.Seed("users", repositories.Record{"user_id": int64(1), "first_name": "Asha", "email": "asha@example.com"})
	svc := newTestService(st)

	_, err := svc.Add(context.Background(), descriptor(t, "users"), payload(t, `{
		"first_name": "Ravi", "email": "asha@example.com",
		"password": "s3cret!", "confirm_password": "s3cret!"
	}`))
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.EqualError(t, err, "asha@example.com already exist.")
}

func TestAddAppliesDefaultsAndStamp(t *testing.T) {
	svc := newTestService(memory.New())
	rec, err := svc.Add(context.Background(), descriptor(t, "patient"), payload(t, `{
		"first_name": "Meera", "amount": 1500.5, "status": "Disburssed"
	}`))
	require.NoError(t, err)
	require.Equal(t, "New", rec["status"])
	require.Equal(t, 1500.5, rec["amount"])
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), rec["date_added"])
}

func TestReadOnlyEntityRejectsWrites(t *testing.T) {
	svc := newTestService(memory.New())
	d := descriptor(t, "revenu_list")

	_, err := svc.Add(context.Background(), d, Payload{"amount": 1.0})
	require.ErrorIs(t, err, apperr.ErrReadOnly)
	_, err = svc.Update(context.Background(), d, "1", Payload{"amount": 1.0})
	require.ErrorIs(t, err, apperr.ErrReadOnly)
	_, err = svc.Delete(context.Background(), d, "1")
	require.ErrorIs(t, err, apperr.ErrReadOnly)
	_, err = svc.EditForm(context.Background(), d, "1")
	require.ErrorIs(t, err, apperr.ErrReadOnly)
}

func TestViewAndEditForm(t *testing.T) {
	st := memory.New()
	st.Seed("users", repositories.Record{
		"user_id": int64(7), "first_name": "Asha", "email": "asha@example.com",
		"photo": "a.png", "password": "$2a$hash",
	})
	svc := newTestService(st)
	d := descriptor(t, "users")

	view, err := svc.View(context.Background(), d, "7")
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", view["email"])
	require.NotContains(t, view, "photo")
	require.NotContains(t, view, "password")

	edit, err := svc.EditForm(context.Background(), d, "7")
	require.NoError(t, err)
	require.Equal(t, "a.png", edit["photo"])
	require.NotContains(t, edit, "email")

	_, err = svc.View(context.Background(), d, "8")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.View(context.Background(), d, "seven")
	require.ErrorIs(t, err, apperr.ErrInvalidParameter)
}

func TestUpdate(t *testing.T) {
	st := memory.New()
	st.Seed("users",
		repositories.Record{"user_id": int64(1), "first_name": "Asha", "email": "a@example.com"},
		repositories.Record{"user_id": int64(2), "first_name": "Ravi", "email": "r@example.com"},
	)
	svc := newTestService(st)
	d := descriptor(t, "users")
	ctx := context.Background()

	applied, err := svc.Update(ctx, d, "1", payload(t, `{"first_name": "Asha", "telephone": "555", "email": "x@example.com"}`))
	require.NoError(t, err)
	require.Equal(t, repositories.Record{"first_name": "Asha", "telephone": "555"}, applied)

	_, err = svc.Update(ctx, d, "1", payload(t, `{"first_name": "Ravi"}`))
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Update(ctx, d, "3", payload(t, `{"telephone": "1"}`))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Update(ctx, d, "1", payload(t, `{"email": "only@example.com"}`))
	require.ErrorIs(t, err, apperr.ErrInvalidParameter)

	_, err = svc.Update(ctx, d, "1", payload(t, `{"first_name": ""}`))
	require.ErrorIs(t, err, apperr.ErrInvalidParameter)

	rec, err := svc.View(ctx, d, "1")
	require.NoError(t, err)
	require.Equal(t, "a@example.com", rec["email"])
}

// racingStore passes the pre-write unique check but loses the race at the
// constraint, as a concurrent writer would cause.
type racingStore struct {
	*memory.Store
}

func (racingStore) Insert(context.Context, string, repositories.Record, string) (any, error) {
	return nil, fmt.Errorf("%w: Key (email)=(r@example.com) already exists.", apperr.ErrConflict)
}

func (racingStore) Update(context.Context, string, string, any, repositories.Record) (int64, error) {
	return 0, fmt.Errorf("%w: Key (email)=(r@example.com) already exists.", apperr.ErrConflict)
}

func TestWriteConflictAtStoreIsNotAQueryError(t *testing.T) {
	st := memory.New()
	st.Seed("users", repositories.Record{"user_id": int64(1), "first_name": "Asha", "email": "a@example.com"})
	svc := NewService(racingStore{st})
	d := descriptor(t, "users")
	ctx := context.Background()

	_, err := svc.Update(ctx, d, "1", payload(t, `{"first_name": "Asha", "telephone": "555"}`))
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NotErrorIs(t, err, apperr.ErrQuery)

	_, err = svc.Add(ctx, d, payload(t, `{
		"first_name": "Ravi", "email": "r@example.com",
		"password": "s3cret!", "confirm_password": "s3cret!"
	}`))
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.NotErrorIs(t, err, apperr.ErrQuery)
}

func TestUpdatePasswordIsHashedButNotEchoed(t *testing.T) {
	st := memory.New()
	st.Seed("users", repositories.Record{"user_id": int64(1), "first_name": "Asha"})
	svc := newTestService(st)

	applied, err := svc.Update(context.Background(), descriptor(t, "users"), "1",
		payload(t, `{"password": "n3wpass", "confirm_password": "n3wpass"}`))
	require.NoError(t, err)
	require.Empty(t, applied)

	stored, err := st.FindOne(context.Background(), "users", []string{"password"}, "user_id", int64(1))
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored["password"].(string)), []byte("n3wpass")))
}

func TestDelete(t *testing.T) {
	st := memory.New()
	st.Seed("roles",
		repositories.Record{"role_id": int64(1), "role_name": "admin"},
		repositories.Record{"role_id": int64(2), "role_name": "agent"},
		repositories.Record{"role_id": int64(3), "role_name": "viewer"},
	)
	svc := newTestService(st)
	d := descriptor(t, "roles")
	ctx := context.Background()

	ids, err := svc.Delete(ctx, d, "1, 3,")
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(3)}, ids)

	_, err = svc.View(ctx, d, "1")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.View(ctx, d, "2")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, d, "1")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Delete(ctx, d, "x")
	require.ErrorIs(t, err, apperr.ErrInvalidParameter)
	_, err = svc.Delete(ctx, d, " , ")
	require.ErrorIs(t, err, apperr.ErrInvalidParameter)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	require.NotEqual(t, "pw", h)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")))
}
