//go:generate go run go.uber.org/mock/mockgen -source=stats.go -destination=../mocks/mock_stats_repository.go -package=mocks
package repositories

import (
	"encoding/binary"
	"errors"
	"fmt"
	"letter-lab/domain/event"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	statsPrefix = "stats:"
	dayLayout   = "20060102"
	maxRetries  = 3
)

type IStatsRepository interface {
	Increment(kind event.Kind, at time.Time) error
	GetStats() ([]DailyCount, error)
}

// StatsRepository keeps daily usage counters.
// Letters are never written to disk, only how many were composed or opened.
type StatsRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStatsRepository(db *badger.DB, log *slog.Logger) StatsRepository {
	return StatsRepository{db: db, log: log}
}

type DailyCount struct {
	Day   string
	Kind  event.Kind
	Count uint64
}

// Increment adds one to the counter of the given kind for the UTC day of at.
// The key is formatted as "stats:{kind}:{yyyymmdd}" so a prefix scan per kind stays sorted by day.
func (s StatsRepository) Increment(kind event.Kind, at time.Time) error {
	key := []byte(fmt.Sprintf("%s%s:%s", statsPrefix, kind, at.UTC().Format(dayLayout)))

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			var current uint64
			item, err := txn.Get(key)
			switch {
			case err == nil:
				if err = item.Value(func(val []byte) error {
					current = decodeCount(val)
					return nil
				}); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			return txn.Set(key, encodeCount(current+1))
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("Stats transaction conflict, retrying", "key", string(key), "attempt", attempt+1)
	}
	return err
}

// GetStats returns every counter, sorted by day then by kind.
func (s StatsRepository) GetStats() ([]DailyCount, error) {
	var counts []DailyCount
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(statsPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			kind, day, ok := parseKey(string(item.Key()))
			if !ok {
				s.log.Warn("Skipping unexpected stats key", "key", string(item.Key()))
				continue
			}
			err := item.Value(func(val []byte) error {
				counts = append(counts, DailyCount{Day: day, Kind: kind, Count: decodeCount(val)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kinds := event.Kinds()
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Day != counts[j].Day {
			return counts[i].Day < counts[j].Day
		}
		return lo.IndexOf(kinds, counts[i].Kind) < lo.IndexOf(kinds, counts[j].Kind)
	})
	return counts, nil
}

// Totals sums daily counters per kind.
func Totals(counts []DailyCount) map[event.Kind]uint64 {
	totals := make(map[event.Kind]uint64, len(event.Kinds()))
	for _, c := range counts {
		totals[c.Kind] += c.Count
	}
	return totals
}

func parseKey(key string) (event.Kind, string, bool) {
	parts := strings.Split(strings.TrimPrefix(key, statsPrefix), ":")
	if len(parts) != 2 {
		return "", "", false
	}
	if _, err := time.Parse(dayLayout, parts[1]); err != nil {
		return "", "", false
	}
	return event.Kind(parts[0]), parts[1], true
}

func encodeCount(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func decodeCount(val []byte) uint64 {
	if len(val) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(val)
}
