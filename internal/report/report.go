// Package report builds the pivoted photo-statistics table exported to
// the spreadsheet: one row per (date, city), one column per topic type,
// plus reaction totals for the production topics.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/mixelka/photoreport/internal/database"
)

// TopicTypes is the fixed column order of the report. Production goes
// last so the reaction columns follow it.
var TopicTypes = []string{
	"Списание Продуктов",
	"Чистота",
	"Выручка и закупки",
	"Заготовки",
	"Обсуждение",
	"Брендированная упаковка",
	database.ProductionTopicType,
}

// ReactionColumns follow the topic-type columns.
var ReactionColumns = []string{
	"Лайки",
	"Дизлайки",
}

// Table is the assembled report: a header and data rows of equal width.
type Table struct {
	Headers []string
	Rows    [][]any
}

// Builder reads the counter store and assembles report tables.
type Builder struct {
	db *database.DB
}

// NewBuilder creates a report builder backed by the counter store.
func NewBuilder(db *database.DB) *Builder {
	return &Builder{db: db}
}

// Headers returns the report header row.
func Headers() []string {
	headers := []string{"Дата", "Город"}
	headers = append(headers, TopicTypes...)
	headers = append(headers, ReactionColumns...)
	return headers
}

// FormatDate converts a stored YYYY-MM-DD date to the DD.MM.YYYY display
// form. Unparseable input is passed through unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

// Build assembles the full table. For each date with recorded counts,
// one row is emitted per city that has typed-topic activity that day;
// type columns with no activity are zero-filled.
func (b *Builder) Build(ctx context.Context) (*Table, error) {
	dates, err := b.db.GetUniqueDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}

	table := &Table{Headers: Headers()}

	for _, date := range dates {
		cities, err := b.db.GetCitiesWithDataForDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to list cities for %s: %w", date, err)
		}

		for _, city := range cities {
			row := make([]any, 0, len(table.Headers))
			row = append(row, FormatDate(date), city)

			for _, topicType := range TopicTypes {
				count, err := b.db.GetImageCountByCityTypeDate(ctx, city, topicType, date)
				if err != nil {
					return nil, fmt.Errorf("failed to sum %s/%s/%s: %w", city, topicType, date, err)
				}
				row = append(row, count)
			}

			positive, negative, err := b.db.GetReactionCountByCityDate(ctx, city, date)
			if err != nil {
				return nil, fmt.Errorf("failed to sum reactions for %s/%s: %w", city, date, err)
			}
			row = append(row, positive, negative)

			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

// ValidTopicType reports whether the label is one of the fixed report
// columns.
func ValidTopicType(label string) bool {
	for _, t := range TopicTypes {
		if t == label {
			return true
		}
	}
	return false
}
