package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCron — cron-выражение не разобрано.
var ErrInvalidCron = errors.New("invalid cron expression")

// cronParser — парсер cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule — разобранное cron-выражение с timezone.
type Schedule struct {
	expr     string
	schedule cron.Schedule
	loc      *time.Location
}

// Parse разбирает cron-выражение.
// Невалидный timezone заменяется на UTC, пустой тоже означает UTC.
func Parse(expr, timezone string) (*Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		// Fallback на UTC если timezone невалидный
		loc = time.UTC
	}

	return &Schedule{expr: expr, schedule: schedule, loc: loc}, nil
}

// Next возвращает следующий момент запуска строго после from (в UTC).
// ok=false, если в ближайшие пять лет выражение не срабатывает
// (например, "0 0 30 2 *").
func (s *Schedule) Next(from time.Time) (next time.Time, ok bool) {
	next = s.schedule.Next(from.In(s.loc))
	if next.IsZero() {
		return time.Time{}, false
	}
	return next.UTC(), true
}

// String возвращает исходное выражение.
func (s *Schedule) String() string {
	return s.expr
}

// Validate проверяет валидность cron-выражения.
// Выражение, которое никогда не срабатывает, тоже невалидно.
func Validate(expr string) error {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}
	if schedule.Next(time.Now()).IsZero() {
		return fmt.Errorf("%w %q: never fires", ErrInvalidCron, expr)
	}
	return nil
}
