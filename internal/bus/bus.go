// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bus implements the IPC collaborator (spec §6):
// notifyObservers, a fire-and-forget signal with no payload emitted
// after every successful re-plan.
package bus

import "context"

// topic is the single channel every planner notification is
// published on. The collaborator contract carries no payload and no
// routing, so one fixed topic is enough.
const topic = "reservations.replanned"

// Bus is the IPC collaborator contract. Publish is fire-and-forget:
// callers do not wait for or inspect delivery.
type Bus interface {
	Publish(ctx context.Context)
	Subscribe(ctx context.Context) (<-chan struct{}, func())
}
