package redis

import (
	"context"

	"github.com/soycharroup/memoryreel/internal/db"
)

// StreamAdd appends an entry to a stream via XADD with an auto-generated ID.
func (s *Store) StreamAdd(ctx context.Context, stream string, fields map[string]string) error {
	b := s.b().Xadd().Key(stream).Id("*").FieldValue()
	for k, v := range fields {
		b = b.FieldValue(k, v)
	}
	if err := s.do(ctx, b.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpXAdd, Err: err}
	}
	return nil
}
