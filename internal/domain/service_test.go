package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 3, 18, 45, 12, 345678901, time.UTC)
}

func TestLogManualRejectsEmptyName(t *testing.T) {
	svc := NewService(NewSessionLog(), WithClock(fixedClock))

	session, err := svc.LogManual(context.Background(), ManualEntryInput{Name: "", Duration: "10"})
	require.Nil(t, session)
	require.ErrorIs(t, err, ErrInvalidSession)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, map[string]string{"name": MsgRequired}, verr.Fields)
	require.Equal(t, 0, svc.Log().Len())
}

func TestLogManualRejectsBothFields(t *testing.T) {
	svc := NewService(NewSessionLog())

	_, err := svc.LogManual(context.Background(), ManualEntryInput{Name: "   ", Duration: "ten"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgRequired, verr.Fields["name"])
	require.Equal(t, MsgInvalidNumber, verr.Fields["duration"])
	require.Contains(t, err.Error(), "name: Required")
}

func TestLogManualRejectsNonNumericDurations(t *testing.T) {
	svc := NewService(NewSessionLog())

	for _, raw := range []string{"", "-5", "2.5", "+", "++5", "+-5", "5+", "99999999999999999999999"} {
		_, err := svc.LogManual(context.Background(), ManualEntryInput{Name: "Yoga", Duration: raw})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "duration %q", raw)
		require.Equal(t, map[string]string{"duration": MsgInvalidNumber}, verr.Fields)
	}
	require.Equal(t, 0, svc.Log().Len())
}

func TestLogManualCreatesSession(t *testing.T) {
	svc := NewService(NewSessionLog(), WithClock(fixedClock))

	session, err := svc.LogManual(context.Background(), ManualEntryInput{Name: " Yoga ", Duration: " 30 "})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, "Yoga", session.Name)
	require.Equal(t, 30, session.DurationMin)
	require.Equal(t, IconYoga, session.Icon)
	require.NotEqual(t, IconDefault, session.Icon)
	require.Equal(t, SourceManual, session.Source)
	require.Equal(t, fixedClock().UnixMilli(), session.TimestampMillis())

	list := svc.Log().List()
	require.Len(t, list, 1)
	require.Equal(t, session.ID, list[0].ID)
}

func TestLogManualAcceptsLeadingPlus(t *testing.T) {
	svc := NewService(NewSessionLog())

	session, err := svc.LogManual(context.Background(), ManualEntryInput{Name: "run", Duration: "+5"})
	require.NoError(t, err)
	require.Equal(t, 5, session.DurationMin)
}

func TestRecordLiveDefaultsName(t *testing.T) {
	svc := NewService(NewSessionLog(), WithDefaultLiveName("Tracked"))

	session, err := svc.RecordLive(context.Background(), "", 20)
	require.NoError(t, err)
	require.Equal(t, "Tracked", session.Name)
	require.Equal(t, 20, session.DurationMin)
	require.Equal(t, SourceLive, session.Source)
	require.Equal(t, IconDefault, session.Icon)

	session, err = svc.RecordLive(context.Background(), "run", 3)
	require.NoError(t, err)
	require.Equal(t, IconRun, session.Icon)

	_, err = svc.RecordLive(context.Background(), "run", -1)
	require.ErrorIs(t, err, ErrNegativeDuration)
	require.Equal(t, 2, svc.Log().Len())
}

func TestListSessionsHonoursCancelledContext(t *testing.T) {
	svc := NewService(NewSessionLog())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.ListSessions(ctx, nil, 10)
	require.ErrorIs(t, err, context.Canceled)
}
