package workers

import (
	"context"
	"fmt"
	"letter-lab/domain"
	"letter-lab/domain/event"
	"letter-lab/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStatsRecorder_RecordsUntilChannelClosed(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIStatsRepository(ctrl)

	at := time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC)
	events := make(chan event.Event, 3)
	events <- event.NewComposed(at)
	events <- event.NewOpened(domain.FormatLegacy, at)
	events <- event.NewOpened(domain.FormatFallback, at)
	close(events)

	gomock.InOrder(
		repository.EXPECT().Increment(event.KindComposed, at).Return(nil),
		repository.EXPECT().Increment(event.KindOpenedLegacy, at).Return(nil),
		// A storage failure is logged, never fatal
		repository.EXPECT().Increment(event.KindOpenedFallback, at).Return(fmt.Errorf("disk full")),
	)

	err := NewStatsRecorder(log, repository, events).Run(context.Background())
	req.NoError(err)
}

func TestStatsRecorder_DrainsOnCancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIStatsRepository(ctrl)

	events := make(chan event.Event, 2)
	events <- event.NewOpened(domain.FormatCompact, time.Now())
	events <- event.NewOpened(domain.FormatCompact, time.Now())

	repository.EXPECT().Increment(event.KindOpenedCompact, gomock.Any()).Return(nil).Times(2)

	// Given a context already canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder := NewStatsRecorder(slog.Default(), repository, events)
	err := recorder.Run(ctx)

	// Then buffered events are still recorded
	req.ErrorIs(err, context.Canceled)
	req.Empty(events)
}
