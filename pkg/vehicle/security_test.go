package vehicle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/remote-vehicle/vehicle-gateway/mocks"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

const vid = "JM3KFBDM1P0000001"

func TestSecureDoors(t *testing.T) {
	tests := []struct {
		name    string
		status  vehicle.Status
		locks   int
		message string
	}{
		{
			name:    "door open",
			status:  vehicle.Status{Doors: map[string]bool{"front": true}},
			locks:   0,
			message: vehicle.MsgDoorsOpen,
		},
		{
			name: "door open with window open",
			status: vehicle.Status{
				Doors:     map[string]bool{"front": false, "rear": true},
				DoorLocks: map[string]bool{"front": true},
				Windows:   map[string]bool{"front": true},
			},
			locks:   0,
			message: vehicle.MsgDoorsOpen,
		},
		{
			name: "door unlocked",
			status: vehicle.Status{
				Doors:     map[string]bool{"front": false},
				DoorLocks: map[string]bool{"front": true},
				Windows:   map[string]bool{"front": false},
			},
			locks:   1,
			message: "Some doors were unlocked. Will attempt to lock.",
		},
		{
			name: "all closed",
			status: vehicle.Status{
				Doors:     map[string]bool{"front": false},
				DoorLocks: map[string]bool{"front": false},
				Windows:   map[string]bool{"front": false},
			},
			locks:   1,
			message: "Doors seem ok.",
		},
		{
			name: "window open, doors locked",
			status: vehicle.Status{
				Doors:     map[string]bool{"front": false},
				DoorLocks: map[string]bool{"front": false},
				Windows:   map[string]bool{"rearLeft": true},
			},
			locks:   1,
			message: "Doors seem ok. Windows were open.",
		},
		{
			name: "window open, door unlocked",
			status: vehicle.Status{
				DoorLocks: map[string]bool{"front": true},
				Windows:   map[string]bool{"rearLeft": true},
			},
			locks:   1,
			message: "Some doors were unlocked. Will attempt to lock. Windows were open.",
		},
		{
			name:    "empty status",
			status:  vehicle.Status{},
			locks:   1,
			message: vehicle.MsgDoorsOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			session := mocks.NewSession(ctrl)
			status := test.status
			session.EXPECT().GetStatus(gomock.Any(), vid).Return(&status, nil)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(nil).Times(test.locks)

			msg, err := vehicle.SecureDoors(context.Background(), session, vid)
			require.NoError(t, err)
			assert.Equal(t, test.message, msg)
		})
	}
}

func TestSecureDoorsStatusFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mocks.NewSession(ctrl)
	session.EXPECT().GetStatus(gomock.Any(), vid).Return(nil, protocol.NewNetworkError(errors.New("connection reset"), false))

	_, err := vehicle.SecureDoors(context.Background(), session, vid)
	assert.ErrorIs(t, err, protocol.ErrNetwork)
}

func TestSecureDoorsLockFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mocks.NewSession(ctrl)
	session.EXPECT().GetStatus(gomock.Any(), vid).Return(&vehicle.Status{DoorLocks: map[string]bool{"front": true}}, nil)
	session.EXPECT().LockDoors(gomock.Any(), vid).Return(protocol.NewRemoteCommandError("vehicle busy"))

	msg, err := vehicle.SecureDoors(context.Background(), session, vid)
	assert.ErrorIs(t, err, protocol.ErrRemoteCommand)
	assert.Empty(t, msg)
}
