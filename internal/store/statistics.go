package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
)

type Statistics struct{ s *Store }

func (n noteSchema) statisticQuery() string {
	return fmt.Sprintf(`SELECT n.%[1]s AS note_id, n.employee_id, n.%[2]s AS partner_id, n.%[3]s AS note_date,
                d.medicine_id, d.quantity, d.price
                FROM %[4]s n
                JOIN %[5]s d ON d.%[1]s = n.%[1]s
                WHERE n.%[3]s >= ? AND n.%[3]s < ?
                ORDER BY n.%[3]s, n.%[1]s, d.medicine_id`, n.idCol, n.partnerCol, n.dateCol, n.table, n.detailTable)
}

// Rows returns the received (input) and delivered (output) detail lines
// whose note date falls in [from, to).
func (r *Statistics) Rows(ctx context.Context, from, to time.Time) (input, output []domain.StatisticRow, err error) {
	input, output = []domain.StatisticRow{}, []domain.StatisticRow{}
	lo, hi := domain.NewTimestamp(from), domain.NewTimestamp(to)
	err = r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if err := sel(ctx, tx, &input, receivedNotes.statisticQuery(), lo, hi); err != nil {
			return err
		}
		return sel(ctx, tx, &output, deliveryNotes.statisticQuery(), lo, hi)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("statistic rows: %w", err)
	}
	return input, output, nil
}
