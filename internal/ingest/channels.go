package ingest

import (
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

func (d *Dispatcher) applyChannel(e wire.Event) error {
	switch e.Type {
	case wire.ChannelJoined:
		j, err := wire.DecodeEntity[wire.Joined](e, "channel")
		if err != nil {
			return err
		}
		d.mutate(session.TopicChannels, e, j.ID, nil, func(st *session.State) bool {
			st.Channels.SetCurrentChannel(j.Patch())
			return true
		})

	case wire.ChannelSync:
		list, err := wire.Channels(e.Data)
		if err != nil {
			return err
		}
		d.mutate(session.TopicChannels, e, "", nil, func(st *session.State) bool {
			st.Channels.SetSubChannels(list)
			return true
		})

	case wire.ChannelCreated:
		w, err := wire.DecodeEntity[wire.Channel](e, "channel")
		if err != nil {
			return err
		}
		ch := w.Canonical()
		d.mutate(session.TopicChannels, e, ch.ID, []string{ch.ID}, func(st *session.State) bool {
			return st.Channels.AddChannel(ch)
		})

	case wire.ChannelUpdated:
		w, err := wire.DecodeEntity[wire.Channel](e, "channel")
		if err != nil {
			return err
		}
		id := channelOf(e, w.ID)
		d.mutate(session.TopicChannels, e, id, []string{id}, func(st *session.State) bool {
			return st.Channels.UpdateChannel(id, w.Patch())
		})

	case wire.ChannelRemoved:
		ref, err := wire.Decode[wire.Ref](e)
		if err != nil {
			return err
		}
		id := ref.Channel()
		d.mutate(session.TopicChannels, e, id, []string{id}, func(st *session.State) bool {
			if !st.Channels.RemoveChannel(id) {
				return false
			}
			st.Messages.Clear(id)
			return true
		})
	}
	return nil
}
