// Package intake persists metadata submissions to the document store.
//
// Every submission is written to the local activity log before anything else
// is attempted, so a submission is never lost when the database is down. In
// that case Save reports a local placeholder id instead of failing.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"metadata-repository/internal/classify"
	"metadata-repository/internal/database"
	"metadata-repository/internal/events"
	"metadata-repository/internal/metrics"
	"metadata-repository/internal/models"
	"metadata-repository/internal/normalize"
	"metadata-repository/internal/record"
)

// Error is the error class for intake failures.
var Error = errs.Class("intake")

// ErrNotFound is returned when a dataset id does not exist.
var ErrNotFound = errs.New("dataset not found")

// ErrUnavailable is returned by reads when the document store is down.
var ErrUnavailable = errs.New("document store unavailable")

// Actions recorded for a submission.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
)

// LocalIDPrefix marks ids of submissions that were only logged locally.
const LocalIDPrefix = "local-"

// Result describes what happened to a submission.
type Result struct {
	ID        string
	Action    string
	Persisted bool
	Domain    string
	Unknown   []string
}

// Document is a stored dataset with its decoded payload.
type Document struct {
	models.Dataset
	Data *record.Record `json:"data"`
}

// MarshalJSON flattens the stored columns and the payload into one object.
func (d Document) MarshalJSON() ([]byte, error) {
	type meta struct {
		ID        string    `json:"id"`
		DatasetID string    `json:"datasetId,omitempty"`
		Domain    string    `json:"domain"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		Data      any       `json:"data"`
	}
	return json.Marshal(meta{
		ID:        d.ID.String(),
		DatasetID: d.DatasetID,
		Domain:    d.Domain,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Data:      d.Data,
	})
}

// ListOptions filters List.
type ListOptions struct {
	Domain string
	Query  string
	Limit  int
	Offset int
}

// Service saves and reads metadata submissions.
type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	events     events.Publisher
	now        func() time.Time
}

// NewService returns a Service. db may be nil when no document store is configured.
func NewService(db *gorm.DB, log *zap.Logger, n *normalize.Normalizer, c *classify.Classifier) *Service {
	return &Service{db: db, log: log, normalizer: n, classifier: c, now: time.Now}
}

// WithEvents makes Save publish a DatasetEvent for every stored submission.
func (s *Service) WithEvents(p events.Publisher) *Service {
	s.events = p
	return s
}

// Available reports whether the document store can be reached.
func (s *Service) Available(ctx context.Context) bool {
	return database.Available(ctx, s.db)
}

// Save logs raw locally, then inserts it or, for action "update", merges it
// into the existing document found by datasetId or by title and agency.
func (s *Service) Save(ctx context.Context, raw *record.Record) (Result, error) {
	action := ActionInsert
	if strings.EqualFold(strings.TrimSpace(raw.String("action")), ActionUpdate) {
		action = ActionUpdate
	}

	norm := s.normalizer.Normalize(raw)
	res := Result{
		Action:  action,
		Domain:  s.classifier.Classify(norm.Canonical),
		Unknown: norm.Unknown,
	}

	payload, err := raw.MarshalJSON()
	if err != nil {
		return res, Error.Wrap(err)
	}
	tag := "[LOCAL_SAVE_LOG]"
	if action == ActionUpdate {
		tag = "[LOCAL_UPDATE_LOG]"
	}
	s.log.Info(tag,
		zap.String("domain", orDefault(norm.Canonical.String("businessDomain"), "Unknown")),
		zap.String("title", orDefault(norm.Canonical.String("title"), "Untitled")),
		zap.ByteString("data", payload),
	)

	if !s.Available(ctx) {
		return s.keepLocal(res, action), nil
	}

	doc := stripCommand(raw)
	var stored *models.Dataset
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if action == ActionUpdate {
			existing, err := s.findExisting(tx, doc, norm.Canonical)
			if err != nil {
				return err
			}
			if existing != nil {
				merged, err := decodePayload(existing.Payload)
				if err != nil {
					return err
				}
				merged.Merge(doc)
				if err := s.fill(existing, merged); err != nil {
					return err
				}
				if err := tx.Save(existing).Error; err != nil {
					return err
				}
				res.ID = existing.ID.String()
				res.Persisted = true
				stored = existing
				s.log.Info("[DB_UPDATE] Updated document", zap.String("id", res.ID), zap.String("title", existing.Title))
				return nil
			}
		}

		ds := &models.Dataset{ID: uuid.New()}
		if err := s.fill(ds, doc); err != nil {
			return err
		}
		if err := tx.Create(ds).Error; err != nil {
			return err
		}
		res.ID = ds.ID.String()
		res.Persisted = true
		stored = ds
		s.log.Info("[DB_INSERT] Saved new document", zap.String("id", res.ID), zap.String("title", ds.Title))
		return nil
	})
	if err != nil {
		if !s.Available(ctx) {
			// connection lost mid-save; the local log already holds the submission
			s.log.Warn("[SAVE_ERROR] Document store lost, kept locally", zap.Error(err))
			return s.keepLocal(res, action), nil
		}
		metrics.Submissions.WithLabelValues(action, "error").Inc()
		s.log.Error("[SAVE_ERROR] Failed to save/update", zap.Error(err))
		return res, Error.Wrap(err)
	}

	metrics.Submissions.WithLabelValues(action, "stored").Inc()
	s.publish(ctx, action, stored)
	return res, nil
}

// keepLocal marks res as accepted only by the local activity log.
func (s *Service) keepLocal(res Result, action string) Result {
	res.ID = fmt.Sprintf("%s%d", LocalIDPrefix, s.now().UnixMilli())
	res.Persisted = false
	metrics.Submissions.WithLabelValues(action, "local").Inc()
	return res
}

// publish notifies subscribers about a stored dataset. Failures are logged
// and never fail the submission.
func (s *Service) publish(ctx context.Context, action string, ds *models.Dataset) {
	if s.events == nil || ds == nil {
		return
	}
	ev := events.DatasetEvent{
		EventID:    uuid.NewString(),
		DatasetID:  ds.ID.String(),
		Action:     action,
		Domain:     ds.Domain,
		Title:      ds.Title,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("[EVENT_ERROR] Failed to publish dataset event", zap.String("id", ev.DatasetID), zap.Error(err))
	}
}

// findExisting looks a document up by datasetId, then by title and agency.
func (s *Service) findExisting(tx *gorm.DB, doc, canonical *record.Record) (*models.Dataset, error) {
	var ds models.Dataset
	if id := datasetID(doc); id != "" {
		err := tx.Where("dataset_id = ?", id).First(&ds).Error
		if err == nil {
			return &ds, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	title := canonical.String("title")
	agency := canonical.String("submitterAgency")
	if title == "" {
		return nil, nil
	}
	err := tx.Where("title = ? AND submitter_agency = ?", title, agency).First(&ds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// fill derives the indexed columns of ds from the payload.
func (s *Service) fill(ds *models.Dataset, payload *record.Record) error {
	canonical := s.normalizer.Normalize(payload).Canonical
	data, err := payload.MarshalJSON()
	if err != nil {
		return err
	}
	if id := datasetID(payload); id != "" {
		ds.DatasetID = id
	}
	ds.Title = canonical.String("title")
	ds.SubmitterAgency = canonical.String("submitterAgency")
	ds.Domain = s.classifier.Classify(canonical)
	ds.Payload = string(data)
	return nil
}

// Get returns one stored document by its id.
func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	if !s.Available(ctx) {
		return nil, ErrUnavailable
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var ds models.Dataset
	if err := s.db.WithContext(ctx).First(&ds, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, Error.Wrap(err)
	}
	return toDocument(ds)
}

// List returns documents matching the domain filter and free-text query,
// newest first. Filtering runs in process with the domain classifier so the
// stored payload is matched exactly like a fresh submission.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Document, int64, error) {
	if !s.Available(ctx) {
		return nil, 0, ErrUnavailable
	}
	var rows []models.Dataset
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, 0, Error.Wrap(err)
	}

	matched := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := toDocument(row)
		if err != nil {
			s.log.Warn("skipping undecodable document", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		if s.classifier.Filter(doc.Data, opts.Domain, opts.Query) {
			matched = append(matched, *doc)
		}
	}

	total := int64(len(matched))
	if opts.Offset >= len(matched) {
		return []Document{}, total, nil
	}
	end := len(matched)
	if opts.Limit > 0 && opts.Offset+opts.Limit < end {
		end = opts.Offset + opts.Limit
	}
	return matched[opts.Offset:end], total, nil
}

func toDocument(ds models.Dataset) (*Document, error) {
	data, err := decodePayload(ds.Payload)
	if err != nil {
		return nil, err
	}
	return &Document{Dataset: ds, Data: data}, nil
}

func decodePayload(payload string) (*record.Record, error) {
	r := record.New()
	if err := json.Unmarshal([]byte(payload), r); err != nil {
		return nil, Error.New("decode payload: %v", err)
	}
	return r, nil
}

// stripCommand drops the "action" key, which is an instruction rather than data.
func stripCommand(raw *record.Record) *record.Record {
	doc := raw.Clone()
	for _, k := range doc.Keys() {
		if strings.EqualFold(k, "action") {
			doc.Delete(k)
		}
	}
	return doc
}

func datasetID(r *record.Record) string {
	v, ok := r.GetFold("datasetId")
	if !ok {
		return ""
	}
	return strings.TrimSpace(record.Text(v))
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
