package vectorindex

import (
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// PgIndex serves nearest-neighbor queries from a pgvector column instead of
// the in-memory flat index. One table per embedding space, columns:
// product_id (int) and embedding (vector). The table is pre-built by the
// indexing job; this side only reads.
type PgIndex struct {
	db    *gorm.DB
	table string
	dim   int
}

var _ Index = &PgIndex{}

func NewPgIndex(db *gorm.DB, table string, dim int) *PgIndex {
	return &PgIndex{
		db:    db,
		table: table,
		dim:   dim,
	}
}

func (x *PgIndex) Dim() int {
	return x.dim
}

func (x *PgIndex) Size() int {
	var count int64
	if err := x.db.Table(x.table).Count(&count).Error; err != nil {
		return 0
	}
	return int(count)
}

func (x *PgIndex) Search(query []float32, topK int) ([]Result, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, index dim %d", ErrDimensionMismatch, len(query), x.dim)
	}
	if topK <= 0 {
		return []Result{}, nil
	}

	var rows []struct {
		ProductId int
		Distance  float32
	}
	// <-> is pgvector L2 distance, matching the flat index metric.
	err := x.db.Table(x.table).
		Select("product_id, embedding <-> ? AS distance", pgvector.NewVector(query)).
		Order("distance ASC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector search on %s: %w", x.table, err)
	}

	results := make([]Result, len(rows))
	for i, r := range rows {
		results[i] = Result{Id: r.ProductId, Distance: r.Distance}
	}
	return results, nil
}
