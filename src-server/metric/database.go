package metric

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"calendar/src-server/model"
)

func database(ctx context.Context, db bun.IDB) (time.Duration, error) {
	start := time.Now()
	if _, err := db.NewSelect().
		Model((*model.Person)(nil)).
		Where("id = ?", 0).
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
