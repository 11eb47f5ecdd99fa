package lobby

import (
	"github.com/rs/zerolog/log"

	"github.com/dancras/tv-quiz-party-sub000/go/internal/command"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/models"
	"github.com/dancras/tv-quiz-party-sub000/go/internal/stream"
)

// ComposeActive turns the latest-lobby-snapshot stream into the current Lobby
// entity stream. A new Lobby is emitted only when the incoming snapshot's id
// differs from the current entity's id, including the absent transitions;
// same-id snapshots flow into the existing entity's private feed instead.
// Every observer of the returned stream shares the one Lobby instance per
// identity window, so commands issued through any of them are equivalent.
//
// When the id changes, the superseded lobby's feed is fenced before the new
// entity exists: no value from the new identity window can ever reach it.
func ComposeActive(snapshots *stream.Value[*models.LobbySnapshot], sink command.Sink) (*stream.Value[*Lobby], func()) {
	out := stream.NewValue[*Lobby]()

	var cur *Lobby
	var feed *stream.Value[models.LobbySnapshot]
	emitted := false

	retire := func() {
		feed.Close()
		cur.Close()
		cur = nil
	}

	cancel := snapshots.Subscribe(func(snap *models.LobbySnapshot) {
		if snap == nil {
			if cur != nil {
				log.Debug().Str("lobby_id", cur.ID).Msg("lobby retired")
				retire()
				out.Emit(nil)
			} else if !emitted {
				emitted = true
				out.Emit(nil)
			}
			return
		}

		if cur != nil && cur.ID == snap.ID {
			feed.Emit(*snap)
			return
		}

		if cur != nil {
			log.Debug().Str("lobby_id", cur.ID).Str("next_lobby_id", snap.ID).Msg("lobby superseded")
			retire()
		}

		feed = stream.NewValueOf(*snap)
		cur = New(feed, sink)
		emitted = true
		log.Debug().Str("lobby_id", cur.ID).Msg("lobby constructed")
		out.Emit(cur)
	})

	return out, func() {
		cancel()
		if cur != nil {
			retire()
		}
		out.Close()
	}
}
