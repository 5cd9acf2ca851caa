package ingest

import (
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

func (d *Dispatcher) applyChallenge(e wire.Event) error {
	switch e.Type {
	case wire.ChallengeSync:
		list, err := wire.Challenges(e.Data)
		if err != nil {
			return err
		}
		d.mutate(session.TopicChallenges, e, "", nil, func(st *session.State) bool {
			st.Challenges.SetChallenges(list)
			return true
		})

	case wire.ChallengeCreated:
		w, err := wire.DecodeEntity[wire.Challenge](e, "challenge")
		if err != nil {
			return err
		}
		c := w.Canonical()
		d.mutate(session.TopicChallenges, e, "", []string{c.ID}, func(st *session.State) bool {
			return st.Challenges.Add(c)
		})

	case wire.ChallengeUpdated:
		w, err := wire.DecodeEntity[wire.Challenge](e, "challenge")
		if err != nil {
			return err
		}
		d.mutate(session.TopicChallenges, e, "", []string{w.ID}, func(st *session.State) bool {
			return st.Challenges.Update(w.ID, w.Patch())
		})

	case wire.ChallengeRemoved:
		ref, err := wire.Decode[wire.Ref](e)
		if err != nil {
			return err
		}
		id := ref.Challenge()
		d.mutate(session.TopicChallenges, e, "", []string{id}, func(st *session.State) bool {
			return st.Challenges.Remove(id)
		})

	case wire.ChallengeAssigned:
		a, err := wire.Decode[wire.Assign](e)
		if err != nil {
			return err
		}
		d.mutate(session.TopicChallenges, e, "", []string{a.ChallengeID}, func(st *session.State) bool {
			return st.Challenges.Assign(a.ChallengeID, a.IDs())
		})

	case wire.ChallengeProgress:
		p, err := wire.Decode[wire.Progress](e)
		if err != nil {
			return err
		}
		d.mutate(session.TopicChallenges, e, "", []string{p.ChallengeID}, func(st *session.State) bool {
			return st.Challenges.UpdateProgress(p.ChallengeID, p.Progress)
		})

	case wire.ChallengeSubmission:
		w, err := wire.DecodeEntity[wire.Submission](e, "submission")
		if err != nil {
			return err
		}
		s := w.Canonical()
		d.mutate(session.TopicChallenges, e, "", []string{s.ChallengeID}, func(st *session.State) bool {
			return st.Challenges.ApplySubmissionResult(s)
		})
	}
	return nil
}
