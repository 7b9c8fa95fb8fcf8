package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationStatus_Next(t *testing.T) {
	tests := []struct {
		from    ReservationStatus
		event   ReservationEvent
		want    ReservationStatus
		wantErr bool
	}{
		{ReservationPending, EventConfirm, ReservationConfirmed, false},
		{ReservationConfirmed, EventConfirm, ReservationConfirmed, true},
		{ReservationPending, EventCancel, ReservationCancelled, false},
		{ReservationConfirmed, EventCancel, ReservationCancelled, false},
		{ReservationCancelled, EventCancel, ReservationCancelled, true},
		{ReservationPendingCancellation, EventCancel, ReservationPendingCancellation, true},
		{ReservationPendingModification, EventCancel, ReservationPendingModification, true},
		{ReservationPending, EventRequestCancellation, ReservationPendingCancellation, false},
		{ReservationConfirmed, EventRequestCancellation, ReservationPendingCancellation, false},
		{ReservationPendingCancellation, EventRequestCancellation, ReservationPendingCancellation, true},
		{ReservationCancelled, EventRequestCancellation, ReservationCancelled, true},
		{ReservationPendingCancellation, EventApproveCancellation, ReservationCancelled, false},
		{ReservationPending, EventApproveCancellation, ReservationPending, true},
		{ReservationConfirmed, EventRequestModification, ReservationPendingModification, false},
		{ReservationCancelled, EventRequestModification, ReservationCancelled, true},
		{ReservationPendingModification, EventApproveModification, ReservationConfirmed, false},
		{ReservationPendingModification, EventRejectModification, ReservationConfirmed, false},
		{ReservationConfirmed, EventRejectModification, ReservationConfirmed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.event), func(t *testing.T) {
			got, err := tt.from.Next(tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReservation_ApplyModification(t *testing.T) {
	start := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	newStart := start.AddDate(0, 0, 10)
	newEnd := newStart.AddDate(0, 0, 3)

	r := &Reservation{Status: ReservationPendingModification, Start: start, End: &end, NewStart: &newStart, NewEnd: &newEnd}
	require.NoError(t, r.Apply(EventApproveModification))

	assert.Equal(t, ReservationConfirmed, r.Status)
	assert.Equal(t, newStart, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, newEnd, *r.End)
	assert.Nil(t, r.NewStart)
	assert.Nil(t, r.NewEnd)
}

func TestReservation_ApplyModificationKeepsEndWhenNoneProposed(t *testing.T) {
	start := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	newStart := start.Add(48 * time.Hour)

	r := &Reservation{Status: ReservationPendingModification, Start: start, NewStart: &newStart}
	require.NoError(t, r.Apply(EventApproveModification))

	assert.Equal(t, newStart, r.Start)
	assert.Nil(t, r.End)
}

func TestReservation_RejectModificationDiscardsProposal(t *testing.T) {
	start := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	newStart := start.Add(24 * time.Hour)

	r := &Reservation{Status: ReservationPendingModification, Start: start, NewStart: &newStart}
	require.NoError(t, r.Apply(EventRejectModification))

	assert.Equal(t, ReservationConfirmed, r.Status)
	assert.Equal(t, start, r.Start)
	assert.Nil(t, r.NewStart)
}

func TestReservation_ApplyInvalidLeavesStatus(t *testing.T) {
	r := &Reservation{Status: ReservationCancelled}
	assert.ErrorIs(t, r.Apply(EventConfirm), ErrInvalidTransition)
	assert.Equal(t, ReservationCancelled, r.Status)
}

func TestService_MinPriceAndCapacity(t *testing.T) {
	s := &Service{}
	assert.Equal(t, int64(0), s.MinPrice())
	assert.Equal(t, 0, s.MaxCapacity())

	s.Options = []ServiceOption{{Price: 300, Capacity: 2}, {Price: 120, Capacity: 6}, {Price: 250, Capacity: 4}}
	assert.Equal(t, int64(120), s.MinPrice())
	assert.Equal(t, 6, s.MaxCapacity())
}

func TestServiceOption_Validate(t *testing.T) {
	from := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	o := &ServiceOption{AvailableFrom: &from, AvailableTo: &to}
	assert.ErrorIs(t, o.Validate(), ErrInvalidAvailabilityWindow)

	o.AvailableTo = &from
	assert.NoError(t, o.Validate())
}
