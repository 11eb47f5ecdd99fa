package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Corrected reports the current wall-clock time shifted by a fixed offset
// measured against the server. The offset is established once per session by
// SyncOffset and never re-measured.
type Corrected struct {
	clock  clockwork.Clock
	offset time.Duration
}

// NewCorrected wraps clk with a constant additive offset.
func NewCorrected(clk clockwork.Clock, offset time.Duration) *Corrected {
	return &Corrected{clock: clk, offset: offset}
}

// Now returns the corrected current time.
func (c *Corrected) Now() time.Time {
	return c.clock.Now().Add(c.offset)
}

// Offset returns the fixed correction applied to every Now read.
func (c *Corrected) Offset() time.Duration {
	return c.offset
}

// ServerTimer is the one-time clock-sync handshake against the server.
type ServerTimer interface {
	ServerTime(ctx context.Context) (time.Time, error)
}

// SyncOffset performs the clock-sync handshake and returns the offset to apply
// to local reads: the server time is compared against the midpoint of the
// request round trip, which cancels symmetric network latency.
func SyncOffset(ctx context.Context, api ServerTimer, clk clockwork.Clock) (time.Duration, error) {
	send := clk.Now()
	serverTime, err := api.ServerTime(ctx)
	if err != nil {
		return 0, err
	}
	recv := clk.Now()

	mid := send.Add(recv.Sub(send) / 2)
	offset := serverTime.Sub(mid)

	log.Debug().
		Dur("offset", offset).
		Dur("round_trip", recv.Sub(send)).
		Msg("clock sync complete")

	return offset, nil
}
