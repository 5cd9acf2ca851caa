package ingest

import (
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

func (d *Dispatcher) applyMember(e wire.Event) error {
	switch e.Type {
	case wire.MemberRoster:
		list, err := wire.Members(e.Data)
		if err != nil {
			return err
		}
		d.mutate(session.TopicMembers, e, "", nil, func(st *session.State) bool {
			st.Members.SetMembers(list)
			return true
		})

	case wire.MemberJoined:
		w, err := wire.DecodeEntity[wire.Member](e, "member")
		if err != nil {
			return err
		}
		m := w.Canonical()
		d.mutate(session.TopicMembers, e, "", []string{m.ID}, func(st *session.State) bool {
			return st.Members.Add(m)
		})

	case wire.MemberLeft:
		ref, err := wire.Decode[wire.Ref](e)
		if err != nil {
			return err
		}
		id := ref.Member()
		d.mutate(session.TopicMembers, e, "", []string{id}, func(st *session.State) bool {
			return st.Members.Remove(id)
		})

	case wire.MemberUpdated:
		w, err := wire.DecodeEntity[wire.Member](e, "member")
		if err != nil {
			return err
		}
		d.mutate(session.TopicMembers, e, "", []string{w.ID}, func(st *session.State) bool {
			return st.Members.Update(w.ID, w.Patch())
		})

	case wire.MemberTaskChanged:
		t, err := wire.Decode[wire.MemberTask](e)
		if err != nil {
			return err
		}
		d.mutate(session.TopicMembers, e, "", []string{t.MemberID}, func(st *session.State) bool {
			return st.Members.UpdateTask(t.MemberID, t.Task.Canonical())
		})

	case wire.StatusChanged:
		s, err := wire.Decode[wire.Status](e)
		if err != nil {
			return err
		}
		id := s.Member()
		d.mutate(session.TopicMembers, e, "", []string{id}, func(st *session.State) bool {
			return st.Members.UpdateStatus(id, s.Value())
		})
	}
	return nil
}
