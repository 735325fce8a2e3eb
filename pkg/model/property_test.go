package model

import "testing"

func TestRoomTypeOccupancy(t *testing.T) {
	cases := []struct {
		rt   RoomType
		want int
	}{
		{RoomSingle, 1},
		{RoomDouble, 2},
		{RoomTriple, 3},
		{RoomType("quad"), 0},
	}
	for _, tc := range cases {
		if got := tc.rt.Occupancy(); got != tc.want {
			t.Errorf("%s: expected occupancy %d, got %d", tc.rt, tc.want, got)
		}
	}
}

func TestRoomTypeValid(t *testing.T) {
	for _, rt := range RoomTypes {
		if !rt.Valid() {
			t.Errorf("%s should be valid", rt)
		}
	}
	if RoomType("penthouse").Valid() {
		t.Errorf("unknown tag should be invalid")
	}
	if RoomType("").Valid() {
		t.Errorf("empty tag should be invalid")
	}
}

func TestFreshBedsSummary(t *testing.T) {
	rc := RoomConfig{
		Single: RoomOption{Rooms: 3, Price: 10000},
		Double: RoomOption{Rooms: 2, Price: 8000},
		Triple: RoomOption{Rooms: 1, Price: 6000},
	}

	bs := rc.FreshBedsSummary()

	cases := []struct {
		rt    RoomType
		total int
	}{
		{RoomSingle, 3},
		{RoomDouble, 4},
		{RoomTriple, 3},
	}
	for _, tc := range cases {
		got := bs.ForType(tc.rt)
		if got.Total != tc.total {
			t.Errorf("%s: expected total %d, got %d", tc.rt, tc.total, got.Total)
		}
		if got.Available != tc.total {
			t.Errorf("%s: new summary must start fully available, got %d/%d", tc.rt, got.Available, got.Total)
		}
	}
}

func TestRebasePreservesOccupancy(t *testing.T) {
	bs := BedsSummary{
		Double: BedSummary{Total: 6, Available: 4}, // 2 occupied
	}

	grown := bs.Rebase(RoomConfig{Double: RoomOption{Rooms: 5}})
	if grown.Double.Total != 10 || grown.Double.Available != 8 {
		t.Errorf("grow: expected 8/10, got %d/%d", grown.Double.Available, grown.Double.Total)
	}
}

func TestRebaseClampsWhenShrunkBelowOccupancy(t *testing.T) {
	bs := BedsSummary{
		Double: BedSummary{Total: 6, Available: 1}, // 5 occupied
	}

	shrunk := bs.Rebase(RoomConfig{Double: RoomOption{Rooms: 2}})
	if shrunk.Double.Total != 4 {
		t.Errorf("expected total 4, got %d", shrunk.Double.Total)
	}
	if shrunk.Double.Available != 0 {
		t.Errorf("available must clamp at 0, got %d", shrunk.Double.Available)
	}
}

func TestRebaseRemovedTypeGoesToZero(t *testing.T) {
	bs := BedsSummary{
		Single: BedSummary{Total: 2, Available: 2},
	}

	rebased := bs.Rebase(RoomConfig{})
	if rebased.Single.Total != 0 || rebased.Single.Available != 0 {
		t.Errorf("expected 0/0 after removing the type, got %d/%d", rebased.Single.Available, rebased.Single.Total)
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, status := range []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled} {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
	}
	if BookingStatus("archived").Valid() {
		t.Errorf("unknown status should be invalid")
	}
}
