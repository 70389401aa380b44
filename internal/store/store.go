package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdeck/netops-go-backend/internal/models"
	"github.com/opsdeck/netops-go-backend/internal/ops"
)

const defaultPriority = "High"

const creationComment = "Création de la demande."

// CreateParams are the fields accepted when opening a new change request.
type CreateParams struct {
	Feature        string
	Parameter      string
	Value          string
	Zone           string
	Sites          []string
	DesiredDate    *string
	PlannedDate    *string
	Priority       string
	InitialComment *string
}

// StatusUpdateParams drive one transition of the status workflow.
type StatusUpdateParams struct {
	Department  string
	ToStatus    string
	Comment     string
	PlannedDate *string
}

// RequestStore is the persistence contract the HTTP layer and the assistant
// depend on.
type RequestStore interface {
	Create(ctx context.Context, p CreateParams) (*models.ChangeRequest, error)
	List(ctx context.Context, status, q string) ([]models.ChangeRequest, error)
	Get(ctx context.Context, opID string) (*models.ChangeRequest, error)
	UpdateStatus(ctx context.Context, opID string, p StatusUpdateParams) (*models.ChangeRequest, error)
	ListPlanning(ctx context.Context) ([]models.ChangeRequest, error)
	Latest(ctx context.Context, limit int) ([]models.ChangeRequest, error)
}

// Store is the MongoDB-backed RequestStore.
type Store struct {
	requests *mongo.Collection
}

func New(requests *mongo.Collection) *Store {
	return &Store{requests: requests}
}

// listProjection drops the embedded history from list-shaped reads.
var listProjection = bson.M{"history": 0}

// EnsureIndexes creates the unique index backing op_id identity. Two creates
// racing for the same suffix make the loser fail on insert instead of
// silently duplicating an id.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.requests.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "op_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// NextOpID returns the next operation id for the current year.
func (s *Store) NextOpID(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	prefix := "OP-" + time.Now().UTC().Format("2006") + "-"

	opts := options.FindOne().
		SetSort(bson.D{{Key: "op_id", Value: -1}}).
		SetProjection(bson.M{"op_id": 1})
	filter := bson.M{"op_id": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}

	var last struct {
		OpID string `bson:"op_id"`
	}
	err := s.requests.FindOne(ctx, filter, opts).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ops.NextOpID("", year), nil
		}
		return "", err
	}
	return ops.NextOpID(last.OpID, year), nil
}

// Create inserts a new request in status PENDING with its synthetic creation
// history entry. Both land in one document, so they are atomic.
func (s *Store) Create(ctx context.Context, p CreateParams) (*models.ChangeRequest, error) {
	opID, err := s.NextOpID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	priority := p.Priority
	if priority == "" {
		priority = defaultPriority
	}
	comment := creationComment
	if p.InitialComment != nil && strings.TrimSpace(*p.InitialComment) != "" {
		comment = *p.InitialComment
	}

	req := models.ChangeRequest{
		OpID:           opID,
		Feature:        strings.TrimSpace(p.Feature),
		Parameter:      strings.TrimSpace(p.Parameter),
		Value:          strings.TrimSpace(p.Value),
		Zone:           strings.TrimSpace(p.Zone),
		Sites:          p.Sites,
		DesiredDate:    emptyToNil(p.DesiredDate),
		PlannedDate:    emptyToNil(p.PlannedDate),
		Priority:       priority,
		InitialComment: emptyToNil(p.InitialComment),
		Status:         string(ops.StatusPending),
		CreatedAt:      now,
		UpdatedAt:      now,
		History: []models.HistoryEntry{{
			At:         now,
			Department: string(ops.DeptEngineering),
			FromStatus: nil,
			ToStatus:   string(ops.StatusPending),
			Comment:    comment,
		}},
	}

	if _, err := s.requests.InsertOne(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests matching the status filter ("" or "ALL" means any)
// and the free-text filter q (substring over op_id, feature, parameter,
// zone), most recently updated first. History is excluded.
func (s *Store) List(ctx context.Context, status, q string) ([]models.ChangeRequest, error) {
	filter := bson.M{}
	if status != "" && status != "ALL" {
		filter["status"] = status
	}
	if q != "" {
		like := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = []bson.M{
			{"op_id": like},
			{"feature": like},
			{"parameter": like},
			{"zone": like},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(listProjection)
	cursor, err := s.requests.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	requests := []models.ChangeRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Get returns one request with its full history, or ErrNotFound.
func (s *Store) Get(ctx context.Context, opID string) (*models.ChangeRequest, error) {
	var req models.ChangeRequest
	err := s.requests.FindOne(ctx, bson.M{"op_id": opID}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus applies one transition of the status workflow. The write is a
// compare-and-swap on (op_id, current status): the status update and the
// history append either both happen or neither does, and two concurrent
// transitions can never both consume the same prior status.
func (s *Store) UpdateStatus(ctx context.Context, opID string, p StatusUpdateParams) (*models.ChangeRequest, error) {
	req, err := s.Get(ctx, opID)
	if err != nil {
		return nil, err
	}

	from, err := ops.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	to, err := ops.ParseStatus(p.ToStatus)
	if err != nil {
		return nil, validationf("invalid status %q", p.ToStatus)
	}
	if _, err := ops.ParseDepartment(p.Department); err != nil {
		return nil, validationf("invalid department %q", p.Department)
	}
	if !ops.CanTransition(from, to) {
		return nil, validationf("transition not allowed: %s -> %s", from, to)
	}
	comment := strings.TrimSpace(p.Comment)
	if comment == "" {
		return nil, validationf("comment is required")
	}

	now := time.Now().UTC().Truncate(time.Second)
	fromStr := string(from)
	entry := models.HistoryEntry{
		At:         now,
		Department: p.Department,
		FromStatus: &fromStr,
		ToStatus:   string(to),
		Comment:    comment,
	}

	set := bson.M{"status": string(to), "updated_at": now}
	if p.PlannedDate != nil && *p.PlannedDate != "" {
		set["planned_date"] = *p.PlannedDate
	}

	var updated models.ChangeRequest
	err = s.requests.FindOneAndUpdate(ctx,
		bson.M{"op_id": opID, "status": string(from)},
		bson.M{"$set": set, "$push": bson.M{"history": entry}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The request moved under us; the prior status was consumed
			// by a concurrent transition.
			return nil, validationf("transition not allowed: request is no longer %s", from)
		}
		return nil, err
	}
	return &updated, nil
}

// ListPlanning returns PLANNED requests ordered by planned_date ascending
// with undated ones last, then by updated_at descending.
func (s *Store) ListPlanning(ctx context.Context) ([]models.ChangeRequest, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(ops.StatusPlanned)}}},
		{{Key: "$addFields", Value: bson.M{
			"undated": bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$planned_date", nil}}, nil}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "undated", Value: 1},
			{Key: "planned_date", Value: 1},
			{Key: "updated_at", Value: -1},
		}}},
		{{Key: "$project", Value: bson.M{"undated": 0, "history": 0}}},
	}

	cursor, err := s.requests.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	requests := []models.ChangeRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Latest returns at most limit requests ordered by updated_at descending,
// history excluded. It feeds the assistant's context snapshot.
func (s *Store) Latest(ctx context.Context, limit int) ([]models.ChangeRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(listProjection)
	cursor, err := s.requests.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	requests := []models.ChangeRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
