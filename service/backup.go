package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"retroboard/metrics"
	"retroboard/models"
	"retroboard/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BackupStore is what the backup service needs from the storage layer.
type BackupStore interface {
	DumpCollection(ctx context.Context, name string) ([]bson.M, error)
	// ClearCollection deletes every document, batched to the store's
	// 500-document write limit. Returns the number deleted.
	ClearCollection(ctx context.Context, name string) (int64, error)
	WriteDocument(ctx context.Context, name string, id interface{}, doc bson.M, overwrite bool) error
}

const backupVersion = "1.0"

type BackupMetadata struct {
	ID          string         `json:"id"`
	CreatedAt   string         `json:"createdAt"`
	Version     string         `json:"version"`
	Collections []string       `json:"collections"`
	Counts      map[string]int `json:"counts"`
}

// Backup is the exchange format: every document is flattened to
// {id, ...fields} with store-native timestamps rendered as ISO-8601.
type Backup struct {
	Metadata BackupMetadata                      `json:"metadata"`
	Data     map[string][]map[string]interface{} `json:"data"`
}

type RestoreOptions struct {
	Collections         []string `json:"collections"`
	Overwrite           bool     `json:"overwrite"`
	DeleteBeforeRestore bool     `json:"deleteBeforeRestore"`
}

type RestoreResult struct {
	Restored map[string]int `json:"restored"`
	Failed   int            `json:"failed"`
	Deleted  int64          `json:"deleted"`
	Warnings []string       `json:"warnings"`
}

type BackupService struct {
	store BackupStore
	log   *zap.SugaredLogger
}

func NewBackupService(s BackupStore, log *zap.SugaredLogger) *BackupService {
	return &BackupService{store: s, log: log}
}

// Create dumps the requested collections. The users collection is only
// included when explicitly asked for.
func (s *BackupService) Create(ctx context.Context, collections []string, includeUsers bool) (*Backup, error) {
	if len(collections) == 0 {
		collections = store.BackupCollections
	}

	known := make(map[string]bool, len(store.BackupCollections))
	for _, name := range store.BackupCollections {
		known[name] = true
	}

	backup := &Backup{
		Metadata: BackupMetadata{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
			Version:   backupVersion,
			Counts:    map[string]int{},
		},
		Data: map[string][]map[string]interface{}{},
	}

	for _, name := range collections {
		if !known[name] {
			return nil, models.NewValidationError("unknown collection: " + name)
		}
		if name == store.ColUsers && !includeUsers {
			continue
		}

		docs, err := s.store.DumpCollection(ctx, name)
		if err != nil {
			return nil, err
		}

		out := make([]map[string]interface{}, 0, len(docs))
		for _, doc := range docs {
			out = append(out, exportDocument(doc))
		}

		backup.Data[name] = out
		backup.Metadata.Collections = append(backup.Metadata.Collections, name)
		backup.Metadata.Counts[name] = len(out)
	}

	return backup, nil
}

// Restore replays a backup. Malformed JSON fails the whole call; after
// that, partial success is the intended failure mode — each document
// failure is counted and reported as a warning instead of aborting.
func (s *BackupService) Restore(ctx context.Context, raw []byte, opts RestoreOptions) (*RestoreResult, error) {
	var backup Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, models.NewValidationError("malformed backup JSON: " + err.Error())
	}
	if backup.Data == nil {
		return nil, models.NewValidationError("backup has no data section")
	}

	known := make(map[string]bool, len(store.BackupCollections))
	for _, name := range store.BackupCollections {
		known[name] = true
	}

	targets := opts.Collections
	if len(targets) == 0 {
		for _, name := range store.BackupCollections {
			if _, ok := backup.Data[name]; ok {
				targets = append(targets, name)
			}
		}
	} else {
		// Same check as Create: a backup must never write outside the
		// known collection set.
		for _, name := range targets {
			if !known[name] {
				return nil, models.NewValidationError("unknown collection: " + name)
			}
		}
	}

	result := &RestoreResult{Restored: map[string]int{}}

	for _, name := range targets {
		docs, ok := backup.Data[name]
		if !ok {
			result.Warnings = append(result.Warnings, "collection not present in backup: "+name)
			continue
		}

		if opts.DeleteBeforeRestore {
			deleted, err := s.store.ClearCollection(ctx, name)
			if err != nil {
				return nil, err
			}
			result.Deleted += deleted
		}

		for _, exported := range docs {
			id, doc, err := importDocument(exported)
			if err == nil {
				err = s.store.WriteDocument(ctx, name, id, doc, opts.Overwrite)
			}
			if err != nil {
				result.Failed++
				metrics.RestoreFailures.Inc()
				warning := fmt.Sprintf("%s/%v: %v", name, id, err)
				result.Warnings = append(result.Warnings, warning)
				s.log.Warnw("document failed to restore", "collection", name, "id", id, "error", err)
				continue
			}
			result.Restored[name]++
		}
	}

	return result, nil
}

// exportDocument flattens a stored document into the backup shape: the
// _id becomes "id" and all native timestamps become ISO-8601 strings.
func exportDocument(doc bson.M) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == "_id" {
			out["id"] = exportValue(v)
			continue
		}
		out[k] = exportValue(v)
	}
	return out
}

func exportValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = exportValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = exportValue(item)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = exportValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = exportValue(item)
		}
		return out
	default:
		return v
	}
}

// isoDatePattern is deliberately strict: only full ISO-8601 timestamps are
// revived, never plain date-looking strings inside user content.
var isoDatePattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// dateFields are known to carry timestamps regardless of formatting quirks.
var dateFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"editedAt":  true,
}

// importDocument turns a backup entry back into a storable document,
// reviving object ids and timestamps.
func importDocument(exported map[string]interface{}) (interface{}, bson.M, error) {
	rawID, ok := exported["id"]
	if !ok {
		return nil, nil, fmt.Errorf("document has no id")
	}
	id := reviveID(rawID)

	doc := bson.M{"_id": id}
	for k, v := range exported {
		if k == "id" {
			continue
		}
		doc[k] = importValue(k, v)
	}
	return id, doc, nil
}

func reviveID(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return oid
		}
		return s
	}
	return v
}

func importValue(key string, v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if isoDatePattern.MatchString(val) || dateFields[key] {
			if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
				return t.UTC()
			}
		}
		// Reference fields point at other documents by object id.
		if key == "postId" {
			if oid, err := primitive.ObjectIDFromHex(val); err == nil {
				return oid
			}
		}
		return val
	case map[string]interface{}:
		out := bson.M{}
		for k, item := range val {
			out[k] = importValue(k, item)
		}
		return out
	case []interface{}:
		out := bson.A{}
		for _, item := range val {
			out = append(out, importValue("", item))
		}
		return out
	default:
		return v
	}
}
