package ingest

import (
	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

func (d *Dispatcher) applyMessage(e wire.Event) error {
	switch e.Type {
	case wire.MessageReceived:
		w, err := wire.DecodeEntity[wire.Message](e, "message")
		if err != nil {
			return err
		}
		m := w.Canonical()
		ch := channelOf(e, m.ChannelID)
		d.mutate(session.TopicMessages, e, ch, []string{m.ID}, func(st *session.State) bool {
			_, known := st.Messages.Message(m.ID)
			if !st.Messages.Ingest(ch, m) {
				return false
			}
			if !known {
				st.Channels.RecordMessage(ch)
				st.Channels.IncrementUnread(ch)
			}
			return true
		})

	case wire.MessageBackfilled:
		list, err := wire.Messages(e.Data)
		if err != nil {
			return err
		}
		for ch, batch := range groupByChannel(e, list) {
			ids := make([]string, 0, len(batch))
			for _, m := range batch {
				ids = append(ids, m.ID)
			}
			d.mutate(session.TopicMessages, e, ch, ids, func(st *session.State) bool {
				return st.Messages.IngestBatch(ch, batch) > 0
			})
		}

	case wire.MessageUpdated:
		u, err := wire.Decode[wire.Update](e)
		if err != nil {
			return err
		}
		p := models.MessagePatch{}
		if u.Content != nil {
			content := (wire.Message{Content: *u.Content}).Canonical().Content
			p.Content = &content
		}
		if u.Type != "" {
			t := models.MessageType(u.Type)
			p.Type = &t
		}
		d.mutateMessage(e, u.MessageID, "", func(st *session.State, ch string) bool {
			return st.Messages.Update(ch, u.MessageID, p)
		})

	case wire.MessageReaction:
		r, err := wire.Decode[wire.Reaction](e)
		if err != nil {
			return err
		}
		d.mutateMessage(e, r.MessageID, "", func(st *session.State, _ string) bool {
			return st.Messages.React(r.MessageID, r.Emoji, r.Member(), r.Add())
		})

	case wire.MessageDeleted:
		ref, err := wire.Decode[wire.MessageRef](e)
		if err != nil {
			return err
		}
		d.mutateMessage(e, ref.ID(), ref.Channel(), func(st *session.State, ch string) bool {
			return st.Messages.SoftDelete(ch, ref.ID())
		})

	case wire.MessagePinned:
		ref, err := wire.Decode[wire.MessageRef](e)
		if err != nil {
			return err
		}
		id := ref.ID()
		d.mutateMessage(e, id, ref.Channel(), func(st *session.State, ch string) bool {
			m, ok := st.Messages.Message(id)
			if !ok {
				m = models.Message{ID: id}
				if ref.Message != nil {
					m = ref.Message.Canonical()
				}
			}
			return st.Messages.Pin(ch, m)
		})

	case wire.MessageUnpinned:
		ref, err := wire.Decode[wire.MessageRef](e)
		if err != nil {
			return err
		}
		d.mutateMessage(e, ref.ID(), ref.Channel(), func(st *session.State, ch string) bool {
			return st.Messages.Unpin(ch, ref.ID())
		})

	case wire.MessagesCleared:
		d.mutate(session.TopicMessages, e, e.ChannelID, nil, func(st *session.State) bool {
			st.Messages.Clear(e.ChannelID)
			return true
		})
	}
	return nil
}

// mutateMessage resolves the channel of id from the event, then the ledger,
// then hint (the channel the payload itself names), then runs fn. The owning
// channel of an id never changes, so resolving it ahead of the mutation is
// safe.
func (d *Dispatcher) mutateMessage(e wire.Event, id, hint string, fn func(st *session.State, ch string) bool) {
	ch := e.ChannelID
	if ch == "" {
		ch = channelOf(e, hint)
		d.S.Read(func(st *session.State) {
			if m, ok := st.Messages.Message(id); ok {
				ch = m.ChannelID
			}
		})
	}
	d.mutate(session.TopicMessages, e, ch, []string{id}, func(st *session.State) bool {
		return fn(st, ch)
	})
}

func groupByChannel(e wire.Event, list []models.Message) map[string][]models.Message {
	out := map[string][]models.Message{}
	for _, m := range list {
		ch := channelOf(e, m.ChannelID)
		out[ch] = append(out[ch], m)
	}
	return out
}
