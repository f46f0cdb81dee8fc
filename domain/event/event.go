package event

import (
	"letter-lab/domain"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindComposed       Kind = "composed"
	KindOpenedCompact  Kind = "opened_compact"
	KindOpenedLegacy   Kind = "opened_legacy"
	KindOpenedFallback Kind = "opened_fallback"
)

// Kinds lists every counter kind, in display order.
func Kinds() []Kind {
	return []Kind{KindComposed, KindOpenedCompact, KindOpenedLegacy, KindOpenedFallback}
}

// Event carries usage facts only. It never holds letter content.
type Event struct {
	ID   uuid.UUID
	Kind Kind
	At   time.Time
}

func NewComposed(at time.Time) Event {
	return Event{ID: uuid.New(), Kind: KindComposed, At: at}
}

func NewOpened(format domain.Format, at time.Time) Event {
	return Event{ID: uuid.New(), Kind: OpenedKind(format), At: at}
}

func OpenedKind(format domain.Format) Kind {
	switch format {
	case domain.FormatCompact:
		return KindOpenedCompact
	case domain.FormatLegacy:
		return KindOpenedLegacy
	default:
		return KindOpenedFallback
	}
}
