package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// UnassignedFace is the slim projection the clustering pipeline pulls per
// batch: identifier, detector confidence and the raw embedding blob.
type UnassignedFace struct {
	ID            uint
	Confidence    float64
	EmbeddingData []byte
}

// ListUnassignedFaces selects a bounded batch of unassigned, non-ignored
// faces with valid embeddings. The default order is confidence descending;
// randomize swaps it for a random order and offset shifts the window, both
// used to diversify which faces a batch examines.
func ListUnassignedFaces(db Querier, limit, offset int, randomize bool) ([]UnassignedFace, error) {
	queryBuilder := psql.Select("id", "confidence", "embedding_data").
		From("faces").
		Where(sq.Eq{"person_id": nil}).
		Where(sq.Eq{"ignored": false}).
		Where(sq.Eq{"has_embedding": true}).
		Where(sq.Eq{"deleted_at": nil})

	if randomize {
		queryBuilder = queryBuilder.OrderBy("RANDOM()")
	} else {
		queryBuilder = queryBuilder.OrderBy("confidence DESC", "id ASC")
	}
	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}
	if offset > 0 {
		queryBuilder = queryBuilder.Offset(uint64(offset))
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListUnassignedFaces: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListUnassignedFaces query: %w", err)
	}
	defer rows.Close()

	var faces []UnassignedFace
	for rows.Next() {
		var f UnassignedFace
		var confidence sql.NullFloat64
		if err := rows.Scan(&f.ID, &confidence, &f.EmbeddingData); err != nil {
			return nil, fmt.Errorf("failed to scan unassigned face row: %w", err)
		}
		if confidence.Valid {
			f.Confidence = confidence.Float64
		}
		faces = append(faces, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unassigned face rows: %w", err)
	}
	return faces, nil
}

// CountUnassignedFaces counts the faces still eligible for a clustering
// batch, the number a continuous job drives toward its target.
func CountUnassignedFaces(db Querier) (int64, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From("faces").
		Where(sq.Eq{"person_id": nil}).
		Where(sq.Eq{"ignored": false}).
		Where(sq.Eq{"has_embedding": true}).
		Where(sq.Eq{"deleted_at": nil})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for CountUnassignedFaces: %w", err)
	}

	var count int64
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to execute CountUnassignedFaces query: %w", err)
	}
	return count, nil
}
