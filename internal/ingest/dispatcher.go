// Package ingest applies remote events to the session registries.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sirdesai22/crosswire-replica/internal/metrics"
	"github.com/sirdesai22/crosswire-replica/internal/models"
	"github.com/sirdesai22/crosswire-replica/internal/session"
	"github.com/sirdesai22/crosswire-replica/internal/wire"
)

// ErrUnknownEvent is returned for event types no handler claims.
var ErrUnknownEvent = errors.New("unknown event type")

type Dispatcher struct {
	S    *session.Session
	Dead *DeadLetters
}

func NewDispatcher(s *session.Session, dead *DeadLetters) *Dispatcher {
	return &Dispatcher{S: s, Dead: dead}
}

// Apply decodes e and applies it. Events for unknown ids are silent no-ops;
// only unknown types and undecodable payloads fail, and those are parked as
// dead letters.
func (d *Dispatcher) Apply(ctx context.Context, e wire.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.applyEvent(e); err != nil {
		d.Reject(e, err)
		return err
	}
	metrics.ProcessedEvents.WithLabelValues(e.Type).Inc()
	return nil
}

// Reject parks e as a dead letter without applying it. Sources call it
// directly for frames that never parsed into an event.
func (d *Dispatcher) Reject(e wire.Event, err error) {
	label := e.Type
	if label == "" || errors.Is(err, ErrUnknownEvent) {
		label = "unknown"
	}
	metrics.FailedEvents.WithLabelValues(label).Inc()
	d.Dead.Put(e, err.Error())
	log.Printf("💀 dead letter seq=%d type=%s: %v", e.Seq, e.Type, err)
}

func (d *Dispatcher) applyEvent(e wire.Event) error {
	switch e.Type {
	case wire.MessageReceived, wire.MessageBackfilled, wire.MessageUpdated, wire.MessageReaction,
		wire.MessageDeleted, wire.MessagePinned, wire.MessageUnpinned, wire.MessagesCleared:
		return d.applyMessage(e)

	case wire.ChannelJoined, wire.ChannelSync, wire.ChannelCreated, wire.ChannelUpdated, wire.ChannelRemoved:
		return d.applyChannel(e)

	case wire.ChallengeSync, wire.ChallengeCreated, wire.ChallengeUpdated, wire.ChallengeRemoved,
		wire.ChallengeAssigned, wire.ChallengeProgress, wire.ChallengeSubmission:
		return d.applyChallenge(e)

	case wire.MemberRoster, wire.MemberJoined, wire.MemberLeft, wire.MemberUpdated,
		wire.MemberTaskChanged, wire.StatusChanged:
		return d.applyMember(e)

	case wire.FileList, wire.FileUploadStarted, wire.FileUploadProgress, wire.FileUploadCompleted,
		wire.FileUploadFailed, wire.FileUploadCancelled, wire.FileDownloadStarted,
		wire.FileDownloadProgress, wire.FileDownloadCompleted, wire.FileDownloadFailed,
		wire.FileDownloadCancelled:
		return d.applyFile(e)

	case wire.SessionDisconnected:
		d.S.Reset()
		log.Printf("🔌 session reset on disconnect")
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
}

func (d *Dispatcher) mutate(topic session.Topic, e wire.Event, channelID string, ids []string, fn func(st *session.State) bool) {
	d.S.Mutate(session.Change{Topic: topic, Event: e.Type, ChannelID: channelID, IDs: ids}, fn)
}

// channelOf picks the event's channel, then the payload's, then main.
func channelOf(e wire.Event, fromPayload string) string {
	switch {
	case e.ChannelID != "":
		return e.ChannelID
	case fromPayload != "":
		return fromPayload
	}
	return models.MainChannelID
}
