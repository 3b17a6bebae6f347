package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
)

type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database, collection string) *ReportRepository {
	if collection == "" {
		collection = "audit_reports"
	}
	return &ReportRepository{col: db.Collection(collection)}
}

// Save inserts one report document. Insert-only: re-parsing the same PDF
// gets a fresh ID, so duplicates are possible and accepted.
func (r *ReportRepository) Save(ctx context.Context, rep *domain.AuditReport) error {
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now()
	}
	if _, err := r.col.InsertOne(ctx, rep); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get by ID + Tenant
func (r *ReportRepository) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.AuditReport, error) {
	var rep domain.AuditReport
	err := r.col.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenant}).Decode(&rep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &rep, nil
}

// Latest reports per tenant
func (r *ReportRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.AuditReport, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"tenant_id": tenant}, opts)
	if err != nil {
		return nil, fmt.Errorf("latest reports: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.AuditReport
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return out, nil
}

// Paginate returns a page of reports ordered by created_at desc plus the
// total count.
func (r *ReportRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.AuditReport, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	filter := bson.M{"tenant_id": tenant}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("paginate reports: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.AuditReport
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode reports: %w", err)
	}
	return out, total, nil
}

// Search matches the keyword case-insensitively against each finding's
// title/disposition/regulation/description. The $elemMatch filter narrows
// candidates server-side; the per-finding grouping is done in process with
// the same pattern so only matching findings come back.
func (r *ReportRepository) Search(ctx context.Context, tenant, keyword string) ([]*domain.SearchResult, error) {
	pattern := domain.KeywordPattern(keyword)
	rx := primitive.Regex{Pattern: pattern, Options: "i"}
	filter := bson.M{
		"tenant_id": tenant,
		"findings": bson.M{
			"$elemMatch": bson.M{
				"$or": bson.A{
					bson.M{"title": rx},
					bson.M{"disposition": rx},
					bson.M{"regulation": rx},
					bson.M{"description": rx},
				},
			},
		},
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}
	defer cur.Close(ctx)

	re := domain.CompileKeyword(keyword)
	var out []*domain.SearchResult
	for cur.Next(ctx) {
		var rep domain.AuditReport
		if err := cur.Decode(&rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		if hit := domain.MatchFindings(&rep, re); hit != nil {
			out = append(out, hit)
		}
	}
	return out, cur.Err()
}

// Summary counts reports and findings since N days
func (r *ReportRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	since := time.Now().AddDate(0, 0, -sinceDays)

	cur, err := r.col.Find(ctx, bson.M{
		"tenant_id":  tenant,
		"created_at": bson.M{"$gte": since},
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summary reports: %w", err)
	}
	defer cur.Close(ctx)

	var list []*domain.AuditReport
	if err := cur.All(ctx, &list); err != nil {
		return domain.Summary{}, fmt.Errorf("decode reports: %w", err)
	}

	counts := domain.CountsByReport(list)
	return domain.Summary{Reports: len(list), Findings: counts.Total, Counts: counts}, nil
}
