package lifecycle_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/models"
	"github.com/linesmerrill/legal-aid-api/storage"
)

// memAppointments keeps appointments in memory with the same conditional
// update semantics as the mongo store.
type memAppointments struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Appointment
	// beforeUpdate runs inside UpdateStatus before the status is compared
	beforeUpdate func(a *models.Appointment)
	writes       int
}

func newMemAppointments() *memAppointments {
	return &memAppointments{byID: map[primitive.ObjectID]models.Appointment{}}
}

func clone(a models.Appointment) *models.Appointment {
	a.Documents = append([]models.Document{}, a.Documents...)
	return &a
}

func (m *memAppointments) put(a models.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Documents == nil {
		a.Documents = []models.Document{}
	}
	m.byID[a.ID] = a
}

func (m *memAppointments) get(id primitive.ObjectID) models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *clone(m.byID[id])
}

func (m *memAppointments) InsertOne(_ context.Context, a *models.Appointment) error {
	m.put(*clone(*a))
	return nil
}

func (m *memAppointments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return clone(a), nil
}

func (m *memAppointments) FindByParty(_ context.Context, field, userID string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.byID {
		if (field == databases.CitizenField && a.CitizenID == userID) || (field == databases.LawyerField && a.LawyerID == userID) {
			out = append(out, *clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memAppointments) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.Status, remarks *string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(&a)
	}
	if a.Status != from {
		m.byID[id] = a
		return nil, databases.ErrNotFound
	}
	a.Status = to
	if remarks != nil {
		a.Remarks = *remarks
	}
	m.byID[id] = a
	m.writes++
	return clone(a), nil
}

func (m *memAppointments) SetReview(_ context.Context, id primitive.ObjectID, rating float64, review string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.Status != models.StatusCompleted {
		return nil, databases.ErrNotFound
	}
	a.Rating = rating
	a.Review = review
	m.byID[id] = a
	m.writes++
	return clone(a), nil
}

func (m *memAppointments) PushDocument(_ context.Context, id primitive.ObjectID, doc models.Document) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	a.Documents = append(clone(a).Documents, doc)
	m.byID[id] = a
	m.writes++
	return clone(a), nil
}

func (m *memAppointments) FindRatedByLawyer(_ context.Context, lawyerID string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.byID {
		if a.LawyerID == lawyerID && a.Rating > 0 {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointments) EnsureIndexes(context.Context) error { return nil }

type memUsers struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]models.User
	ratingErr error
	lookupErr error
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{byID: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) user(id primitive.ObjectID) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

func (m *memUsers) InsertOne(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, databases.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, databases.ErrNotFound
}

func (m *memUsers) FindByRole(_ context.Context, role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, _ models.ProfileUpdate, _ bool) (*models.User, error) {
	return m.FindByID(context.Background(), id)
}

func (m *memUsers) UpdateRating(_ context.Context, id primitive.ObjectID, rating float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ratingErr != nil {
		return m.ratingErr
	}
	u, ok := m.byID[id]
	if !ok {
		return databases.ErrNotFound
	}
	u.Rating = rating
	u.RatingCount = count
	m.byID[id] = u
	return nil
}

func (m *memUsers) EnsureIndexes(context.Context) error { return nil }

// memStore records blobs by key
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	err   error
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (storage.Object, error) {
	if s.err != nil {
		return storage.Object{}, s.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return storage.Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = buf.Bytes()
	return storage.Object{Key: key, URL: "mem://" + key, Size: size, ContentType: contentType}, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
