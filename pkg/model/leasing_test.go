package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from LeasingStatus
		to   LeasingStatus
		want bool
	}{
		{StatusOpen, StatusReserved, true},
		{StatusOpen, StatusRejected, true},
		{StatusOpen, StatusCancelled, true},
		{StatusReserved, StatusCancelled, true},

		{StatusReserved, StatusRejected, false},
		{StatusReserved, StatusOpen, false},
		{StatusRejected, StatusOpen, false},
		{StatusRejected, StatusCancelled, false},
		{StatusCancelled, StatusOpen, false},
		{StatusCancelled, StatusReserved, false},
		{StatusOpen, StatusOpen, false},
		{StatusOpen, LeasingStatus("UNKNOWN"), false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for status, terminal := range map[LeasingStatus]bool{
		StatusOpen:      false,
		StatusReserved:  false,
		StatusRejected:  true,
		StatusCancelled: true,
	} {
		if got := status.Terminal(); got != terminal {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, terminal)
		}
	}
}

func TestPeriodInDays(t *testing.T) {
	l := &Leasing{
		From: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
	}

	if got := l.PeriodInDays(); got != 6 {
		t.Errorf("PeriodInDays() = %d, want 6", got)
	}
}

func TestBlocks(t *testing.T) {
	tests := []struct {
		name      string
		status    LeasingStatus
		userID    string
		requester string
		want      bool
	}{
		{"reserved blocks everyone", StatusReserved, "u1", "u2", true},
		{"reserved blocks its creator", StatusReserved, "u1", "u1", true},
		{"open blocks its creator", StatusOpen, "u1", "u1", true},
		{"open does not block other users", StatusOpen, "u1", "u2", false},
		{"rejected never blocks", StatusRejected, "u1", "u1", false},
		{"cancelled never blocks", StatusCancelled, "u1", "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Leasing{Status: tt.status, UserID: tt.userID}
			if got := l.Blocks(tt.requester); got != tt.want {
				t.Errorf("Blocks(%s) = %v, want %v", tt.requester, got, tt.want)
			}
		})
	}
}

func TestQuoteCents(t *testing.T) {
	p := &Plot{SizeM2: 20, PricePerM2: 0.5}

	if got := p.QuoteCents(6); got != 6000 {
		t.Errorf("QuoteCents(6) = %d, want 6000", got)
	}
}
