package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/reconcile"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Session is one saved reconciliation: the resolved records plus the per-row
// candidate lists a reviewer needs to pick overrides from.
type Session struct {
	ID         string                        `json:"id" bson:"_id"`
	Sheet      string                        `json:"sheet" bson:"sheet"`
	Threshold  float64                       `json:"threshold" bson:"threshold"`
	Records    []models.ResolvedRecord       `json:"records" bson:"records"`
	Candidates map[string][]models.Candidate `json:"candidates" bson:"candidates"`
	Stats      reconcile.Stats               `json:"stats" bson:"stats"`
	CreatedAt  time.Time                     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time                     `json:"updated_at" bson:"updated_at"`
}

// SessionService persists reconciliation sessions. With a Mongo database it
// stores them in the sessions collection; without one it keeps them in memory
// for the life of the process.
type SessionService struct {
	collection *mongo.Collection
	logger     *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService creates a session store. db may be nil.
func NewSessionService(db *mongo.Database, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SessionService{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	if db != nil {
		svc.collection = db.Collection("sessions")
	}
	return svc
}

// Save stores a new session built from a reconciliation run.
func (ss *SessionService) Save(
	ctx context.Context,
	id, sheet string,
	threshold float64,
	records []models.ResolvedRecord,
	cache *reconcile.CandidateCache,
	stats reconcile.Stats,
) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:         id,
		Sheet:      sheet,
		Threshold:  threshold,
		Records:    records,
		Candidates: flattenCandidates(sheet, cache),
		Stats:      stats,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if ss.collection != nil {
		opts := mongooptions.Replace().SetUpsert(true)
		if _, err := ss.collection.ReplaceOne(ctx, bson.M{"_id": id}, session, opts); err != nil {
			return nil, fmt.Errorf("save session %s: %w", id, err)
		}
		ss.logger.Debug("session saved", zap.String("id", id), zap.Int("records", len(records)))
		return session, nil
	}

	ss.mu.Lock()
	ss.sessions[id] = session
	ss.mu.Unlock()
	return session, nil
}

// Get returns a session by id. The in-memory path hands out a copy so
// callers never share the stored struct with a concurrent update.
func (ss *SessionService) Get(ctx context.Context, id string) (*Session, error) {
	if ss.collection != nil {
		var session Session
		err := ss.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
		if err == mongo.ErrNoDocuments {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", id, err)
		}
		return &session, nil
	}

	ss.mu.RLock()
	stored, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	session := *stored
	return &session, nil
}

// ApplyOverrides applies manual choices to a stored session's records and
// persists the result. Overrides map row ids to a directory name or the
// no-match sentinel. The in-memory path performs the whole read-modify-write
// under the lock and stores a fresh struct, so readers only ever see a
// session before or after an update, never mid-flight.
func (ss *SessionService) ApplyOverrides(
	ctx context.Context,
	id string,
	overrides map[int]string,
	dir *models.Directory,
) (*Session, error) {
	if ss.collection != nil {
		session, err := ss.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		session.Records = reconcile.ApplyOverrides(session.Records, overrides, dir)
		session.UpdatedAt = time.Now().UTC()

		update := bson.M{"$set": bson.M{
			"records":    session.Records,
			"updated_at": session.UpdatedAt,
		}}
		if _, err := ss.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
			return nil, fmt.Errorf("update session %s: %w", id, err)
		}
		return session, nil
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	stored, ok := ss.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	updated := *stored
	updated.Records = reconcile.ApplyOverrides(stored.Records, overrides, dir)
	updated.UpdatedAt = time.Now().UTC()
	ss.sessions[id] = &updated

	result := updated
	return &result, nil
}

// flattenCandidates keys candidate lists by row id so the session survives
// JSON and BSON round-trips.
func flattenCandidates(sheet string, cache *reconcile.CandidateCache) map[string][]models.Candidate {
	out := make(map[string][]models.Candidate)
	if cache == nil {
		return out
	}
	for row, candidates := range cache.Rows(sheet) {
		out[strconv.Itoa(row)] = candidates
	}
	return out
}
