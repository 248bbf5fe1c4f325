package vehicle

import (
	"context"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
)

// Messages returned by SecureDoors.
const (
	MsgDoorsOpen     = "Doors open. Please check your vehicle."
	MsgDoorsUnlocked = "Some doors were unlocked. Will attempt to lock."
	MsgDoorsOK       = "Doors seem ok."
	MsgWindowsOpen   = " Windows were open."
)

// SecureDoors inspects a fresh status snapshot and locks the vehicle unless a door is open.
//
// An open door ends the check with MsgDoorsOpen and no lock command. Otherwise the message
// describes the lock state, MsgWindowsOpen is appended if any window is open, and exactly one
// LockDoors is sent through s. A failed lock is returned as the error.
func SecureDoors(ctx context.Context, s Session, vid string) (string, error) {
	status, err := s.GetStatus(ctx, vid)
	if err != nil {
		return "", err
	}

	if status.AnyDoorOpen() {
		log.Info("Vehicle %s has open doors; not locking", vid)
		return MsgDoorsOpen, nil
	}

	msg := MsgDoorsOK
	if status.AnyDoorUnlocked() {
		msg = MsgDoorsUnlocked
	}
	if status.AnyWindowOpen() {
		msg += MsgWindowsOpen
	}

	log.Debug("Locking %s after door check", vid)
	if err := s.LockDoors(ctx, vid); err != nil {
		return "", err
	}
	return msg, nil
}
