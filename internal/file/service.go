package file

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/azatkul/docvault/internal/blob"
	"github.com/azatkul/docvault/internal/enrich"
	"github.com/azatkul/docvault/internal/filecrypt"
	"github.com/azatkul/docvault/internal/search"
)

var (
	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_uploads_total",
		Help: "Total successful uploads.",
	})
	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_searches_total",
		Help: "Total semantic search requests.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docvault_search_duration_seconds",
		Help:    "Semantic search latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// catalogStore abstracts the metadata catalog.
type catalogStore interface {
	Create(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	ListByOwner(ctx context.Context, owner string) ([]Record, error)
	ListSharedWith(ctx context.Context, principal string) ([]Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id uuid.UUID) (Record, error)
	SumSizeByOwner(ctx context.Context, owner string) (int64, error)
}

// Enricher derives optional embedding/keyword/summary fields from content.
type Enricher interface {
	Enrich(ctx context.Context, data []byte, contentType string) enrich.Bundle
}

// Embedder vectorizes a search query.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Options carries the optional service collaborators and tuning knobs.
type Options struct {
	// Enricher may be nil; uploads then skip enrichment entirely.
	Enricher Enricher
	// Embedder may be nil; semantic search then reports unavailable.
	Embedder Embedder
	Ranker   search.Ranker
	// Cache sizing for record lookups.
	CacheEntries int
	CacheTTL     time.Duration
	Logger       *zap.Logger
}

// Service orchestrates the file lifecycle: quota check, encryption, blob
// persistence, enrichment, catalog writes, sharing, and semantic search.
type Service struct {
	repo     catalogStore
	blobs    blob.Store
	quota    *Quota
	enricher Enricher
	embedder Embedder
	ranker   search.Ranker
	cache    *recordCache
	logger   *zap.Logger
}

// NewService constructs the orchestrator. Configuration is fixed at
// construction; the service holds no mutable global state.
func NewService(repo catalogStore, blobs blob.Store, quota *Quota, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	entries := opts.CacheEntries
	if entries <= 0 {
		entries = 512
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		repo:     repo,
		blobs:    blobs,
		quota:    quota,
		enricher: opts.Enricher,
		embedder: opts.Embedder,
		ranker:   opts.Ranker,
		cache:    newRecordCache(entries, ttl),
		logger:   logger,
	}
}

// Upload encrypts and persists a new file for the owner. Quota rejection and
// blob/catalog failures abort with no record created; enrichment failures do
// not.
func (s *Service) Upload(ctx context.Context, owner, displayName, contentType string, data []byte) (Record, error) {
	size := int64(len(data))
	if err := s.quota.CheckAndReserve(ctx, owner, size); err != nil {
		return Record{}, err
	}

	displayName = sanitizeFilename(displayName)
	storedName := fmt.Sprintf("%s_%s", uuid.New().String(), displayName)

	key, err := filecrypt.GenerateKey()
	if err != nil {
		return Record{}, fmt.Errorf("generate file key: %w", err)
	}
	ciphertext, err := filecrypt.Encrypt(data, key)
	if err != nil {
		return Record{}, fmt.Errorf("encrypt payload: %w", err)
	}

	if err := s.blobs.Put(ctx, storedName, ciphertext, contentType); err != nil {
		return Record{}, fmt.Errorf("store blob: %w", err)
	}

	var bundle enrich.Bundle
	if s.enricher != nil {
		bundle = s.enricher.Enrich(ctx, data, contentType)
	}

	rec := Record{
		ID:            uuid.New(),
		StoredName:    storedName,
		DisplayName:   displayName,
		ContentType:   contentType,
		SizeBytes:     size,
		BlobKey:       storedName,
		OwnerEmail:    owner,
		EncryptionKey: key,
		SharedWith:    []string{},
		Embedding:     bundle.Embedding,
		Keywords:      bundle.Keywords,
		Summary:       bundle.Summary,
	}

	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		// No catalog row may reference a blob and vice versa: undo the write.
		if delErr := s.blobs.Delete(ctx, storedName); delErr != nil {
			s.logger.Error("orphaned blob after failed catalog write",
				zap.String("blob_key", storedName), zap.Error(delErr))
		}
		return Record{}, fmt.Errorf("create file record: %w", err)
	}

	uploadsTotal.Inc()
	s.cache.Set(stored)
	s.logger.Info("file uploaded",
		zap.String("file_id", stored.ID.String()),
		zap.String("owner", owner),
		zap.Int64("size_bytes", size),
		zap.Bool("enriched", stored.Embedding != nil),
	)
	return stored, nil
}

// Download returns the decrypted payload and its record. Access control for
// downloads is delegated to the boundary layer.
func (s *Service) Download(ctx context.Context, fileID uuid.UUID) (Record, []byte, error) {
	rec, err := s.getRecord(ctx, fileID)
	if err != nil {
		return Record{}, nil, err
	}

	ciphertext, err := s.blobs.Get(ctx, rec.BlobKey)
	if err != nil {
		return Record{}, nil, fmt.Errorf("fetch blob: %w", err)
	}

	plaintext, err := filecrypt.Decrypt(ciphertext, rec.EncryptionKey)
	if err != nil {
		return Record{}, nil, fmt.Errorf("decrypt payload: %w", err)
	}
	return rec, plaintext, nil
}

// Delete removes the blob, then the catalog row. When blob deletion fails the
// row is kept: an orphaned blob is inert, while a row without a blob breaks
// every later download.
func (s *Service) Delete(ctx context.Context, fileID uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, rec.BlobKey); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}

	if _, err := s.repo.Delete(ctx, fileID); err != nil {
		return err
	}

	s.cache.Invalidate(fileID.String())
	s.logger.Info("file deleted", zap.String("file_id", fileID.String()))
	return nil
}

// Share grants read access to the grantee. Only the owner may share; a
// duplicate grant is rejected, and the owner never appears in the grant set.
func (s *Service) Share(ctx context.Context, fileID uuid.UUID, grantee, requester string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return Record{}, err
	}

	if !rec.IsOwner(requester) {
		return Record{}, ErrPermissionDenied
	}
	// The owner already has access; a grant would violate the invariant that
	// shared_with never contains the owner.
	if grantee == rec.OwnerEmail || rec.IsSharedWith(grantee) {
		return Record{}, ErrAlreadyShared
	}

	rec.SharedWith = append(rec.SharedWith, grantee)
	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	s.cache.Invalidate(fileID.String())
	s.cache.Set(updated)
	return updated, nil
}

// Rename changes the display name. Owner-gated like Share.
func (s *Service) Rename(ctx context.Context, fileID uuid.UUID, newName, requester string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return Record{}, err
	}

	if !rec.IsOwner(requester) {
		return Record{}, ErrPermissionDenied
	}

	rec.DisplayName = sanitizeFilename(newName)
	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	s.cache.Invalidate(fileID.String())
	s.cache.Set(updated)
	return updated, nil
}

// List returns the principal's owned records followed by records shared with
// them. The two sets are disjoint: a record's owner is never in its grant set.
func (s *Service) List(ctx context.Context, principal string) ([]Record, error) {
	owned, err := s.repo.ListByOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	shared, err := s.repo.ListSharedWith(ctx, principal)
	if err != nil {
		return nil, err
	}
	return append(owned, shared...), nil
}

// Search ranks the principal's candidate set (owned plus shared-in) against
// the query text by cosine similarity. Records without embeddings are
// excluded; threshold and limit come from the ranker configuration.
func (s *Service) Search(ctx context.Context, query, principal string) ([]Record, error) {
	if s.embedder == nil {
		return nil, ErrSearchUnavailable
	}

	start := time.Now()
	searchesTotal.Inc()

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	candidates, err := s.List(ctx, principal)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Record, len(candidates))
	scored := make([]search.Candidate, 0, len(candidates))
	for _, rec := range candidates {
		if len(rec.Embedding) == 0 {
			continue
		}
		id := rec.ID.String()
		byID[id] = rec
		scored = append(scored, search.Candidate{ID: id, Embedding: rec.Embedding})
	}

	matches := s.ranker.Rank(queryVector, scored)
	results := make([]Record, 0, len(matches))
	for _, m := range matches {
		results = append(results, byID[m.ID])
	}

	searchDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("semantic search completed",
		zap.String("principal", principal),
		zap.Int("candidates", len(scored)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (s *Service) getRecord(ctx context.Context, fileID uuid.UUID) (Record, error) {
	if rec, ok := s.cache.Get(fileID.String()); ok {
		return rec, nil
	}

	rec, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return Record{}, err
	}
	s.cache.Set(rec)
	return rec, nil
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return name
}
