package invites

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"hangout-backend/models"

	"github.com/google/uuid"
)

// Confirmation kinds shown to the user while the confirm window runs.
const (
	ConfirmAccepted        = "accepted"
	ConfirmDeclined        = "declined"
	ConfirmCounterProposed = "counter_proposed"
)

// DefaultConfirmWindow is how long the undo banner stays up before the
// pending action commits.
const DefaultConfirmWindow = 3 * time.Second

var (
	ErrNotFound          = errors.New("invite not found")
	ErrWrongCategory     = errors.New("operation not allowed for this invite category")
	ErrEmptyParticipants = errors.New("invite must keep at least one participant")
	ErrAlreadyConfirming = errors.New("confirmation already in flight for this invite")
	ErrMeetupNotFound    = errors.New("linked meetup not found")
	ErrClosed            = errors.New("session closed")
)

// EventPayload is handed to the upcoming-event sink when an accept
// commits.
type EventPayload struct {
	SourceInviteID         uuid.UUID            `json:"source_invite_id"`
	Title                  string               `json:"title"`
	PrimaryParticipantName string               `json:"primary_participant_name"`
	Place                  string               `json:"place"`
	Date                   string               `json:"date"`
	Time                   string               `json:"time"`
	ImageCategory          string               `json:"image_category"`
	Participants           []models.Participant `json:"participants"`
}

// EventSink receives exactly one payload per committed accept.
type EventSink interface {
	CreateUpcomingEvent(payload EventPayload)
}

// MeetupLedger resolves the meetup a review request links to. Read-only.
type MeetupLedger interface {
	FindMeetup(id uuid.UUID) (models.Meetup, bool)
}

// ReviewSink persists reviews, keyed by meetup id, last write wins.
type ReviewSink interface {
	SaveReview(review models.Review)
}

// Persistence mirrors in-memory mutations to durable storage. Optional;
// a nil Persistence leaves the coordinator fully in-memory.
type Persistence interface {
	InviteUpdated(inv models.Invite)
	InviteRemoved(id uuid.UUID)
}

// ScheduleFunc runs fn once after d and returns a cancel func. Injected
// so tests can fire timers by hand.
type ScheduleFunc func(d time.Duration, fn func()) (cancel func())

func afterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Confirmation is the transient banner state for one invite.
type Confirmation struct {
	InviteID   uuid.UUID `json:"invite_id"`
	Kind       string    `json:"kind"`
	SenderName string    `json:"sender_name,omitempty"` // set for counter-proposals
}

type pendingConfirm struct {
	confirmation Confirmation
	cancel       func()
}

// EditChanges carries the mutable fields of an edit. Empty strings leave
// the field unchanged.
type EditChanges struct {
	Place              string
	Date               string
	Time               string
	AddParticipants    []models.Participant
	RemoveParticipants []uuid.UUID
}

// Config wires a Coordinator to its collaborators.
type Config struct {
	Store         *Store
	Events        EventSink
	Ledger        MeetupLedger
	Reviews       ReviewSink
	Persistence   Persistence   // optional
	OnInboxCount  func(int)     // optional, single subscriber
	ConfirmWindow time.Duration // 0 means DefaultConfirmWindow
	Schedule      ScheduleFunc  // nil means time.AfterFunc
}

// Coordinator turns user intents into store transitions plus side
// effects, and runs the timed confirm window for accept/decline/counter.
// Accept and decline defer their mutation to timer expiry; a
// counter-proposal writes the edit immediately and only the banner is
// timed. One pending confirmation per invite id at a time; different
// invites confirm independently.
type Coordinator struct {
	mu       sync.Mutex
	store    *Store
	events   EventSink
	ledger   MeetupLedger
	reviews  ReviewSink
	persist  Persistence
	onCount  func(int)
	window   time.Duration
	schedule ScheduleFunc
	inFlight map[uuid.UUID]*pendingConfirm
	closed   bool
}

func NewCoordinator(cfg Config) *Coordinator {
	window := cfg.ConfirmWindow
	if window == 0 {
		window = DefaultConfirmWindow
	}
	schedule := cfg.Schedule
	if schedule == nil {
		schedule = afterFunc
	}
	return &Coordinator{
		store:    cfg.Store,
		events:   cfg.Events,
		ledger:   cfg.Ledger,
		reviews:  cfg.Reviews,
		persist:  cfg.Persistence,
		onCount:  cfg.OnInboxCount,
		window:   window,
		schedule: schedule,
		inFlight: make(map[uuid.UUID]*pendingConfirm),
	}
}

// AddInvite feeds a newly composed or delivered invite into the session.
func (c *Coordinator) AddInvite(inv models.Invite) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.store.Add(inv)
	count := c.store.CountInbound()
	c.mu.Unlock()

	c.publishCount(count)
	return nil
}

// RequestAccept opens the confirm window for a received invite. The
// upcoming event is created and the invite removed only when the window
// expires; CancelConfirmation undoes it before then.
func (c *Coordinator) RequestAccept(id uuid.UUID) (Confirmation, error) {
	return c.requestResponse(id, ConfirmAccepted)
}

// RequestDecline opens the confirm window for declining a received
// invite. No upcoming event is created on commit.
func (c *Coordinator) RequestDecline(id uuid.UUID) (Confirmation, error) {
	return c.requestResponse(id, ConfirmDeclined)
}

func (c *Coordinator) requestResponse(id uuid.UUID, kind string) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Confirmation{}, ErrClosed
	}
	if _, busy := c.inFlight[id]; busy {
		return Confirmation{}, ErrAlreadyConfirming
	}
	inv, ok := c.store.Get(id)
	if !ok {
		return Confirmation{}, ErrNotFound
	}
	if inv.Category != models.CategoryReceived {
		return Confirmation{}, ErrWrongCategory
	}

	conf := Confirmation{InviteID: id, Kind: kind}
	pending := &pendingConfirm{confirmation: conf}
	c.inFlight[id] = pending
	pending.cancel = c.schedule(c.window, func() { c.commitResponse(id, kind) })
	return conf, nil
}

func (c *Coordinator) commitResponse(id uuid.UUID, kind string) {
	c.mu.Lock()
	if _, ok := c.inFlight[id]; !ok || c.closed {
		// Cancelled or torn down before the timer fired.
		c.mu.Unlock()
		return
	}
	delete(c.inFlight, id)

	inv, ok := c.store.Get(id)
	if !ok {
		c.mu.Unlock()
		return
	}
	var payload EventPayload
	if kind == ConfirmAccepted {
		payload = buildEventPayload(inv)
	}
	c.store.Remove(id)
	count := c.store.CountInbound()
	c.mu.Unlock()

	if kind == ConfirmAccepted {
		c.events.CreateUpcomingEvent(payload)
	}
	if c.persist != nil {
		c.persist.InviteRemoved(id)
	}
	c.publishCount(count)
}

// SubmitEdit applies field changes to an invite and recomputes its note.
// Editing a received invite is a counter-proposal: the edit commits
// immediately and the returned Confirmation (naming the original sender)
// runs on the confirm window purely as feedback. Sent edits are silent
// and return a nil Confirmation.
func (c *Coordinator) SubmitEdit(id uuid.UUID, changes EditChanges) (*Confirmation, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if _, busy := c.inFlight[id]; busy {
		c.mu.Unlock()
		return nil, ErrAlreadyConfirming
	}
	inv, ok := c.store.Get(id)
	if !ok {
		c.mu.Unlock()
		return nil, ErrNotFound
	}
	if inv.Category == models.CategoryReviewRequest {
		c.mu.Unlock()
		return nil, ErrWrongCategory
	}
	senderName := ""
	if len(inv.Participants) > 0 {
		senderName = inv.Participants[0].DisplayName
	}

	updated, err := applyEdit(inv, changes)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.store.Replace(id, func(models.Invite) models.Invite { return updated })

	var conf *Confirmation
	if inv.Category == models.CategoryReceived {
		pending := &pendingConfirm{confirmation: Confirmation{
			InviteID:   id,
			Kind:       ConfirmCounterProposed,
			SenderName: senderName,
		}}
		c.inFlight[id] = pending
		pending.cancel = c.schedule(c.window, func() { c.clearConfirmation(id) })
		conf = &pending.confirmation
	}
	count := c.store.CountInbound()
	c.mu.Unlock()

	if c.persist != nil {
		c.persist.InviteUpdated(updated)
	}
	c.publishCount(count)
	return conf, nil
}

func (c *Coordinator) clearConfirmation(id uuid.UUID) {
	c.mu.Lock()
	delete(c.inFlight, id)
	c.mu.Unlock()
}

func applyEdit(inv models.Invite, changes EditChanges) (models.Invite, error) {
	if changes.Place != "" {
		inv.Place = changes.Place
	}
	if changes.Date != "" {
		inv.Date = changes.Date
	}
	if changes.Time != "" {
		inv.Time = changes.Time
	}

	if len(changes.RemoveParticipants) > 0 {
		drop := make(map[uuid.UUID]bool, len(changes.RemoveParticipants))
		for _, pid := range changes.RemoveParticipants {
			drop[pid] = true
		}
		kept := inv.Participants[:0:0]
		for _, p := range inv.Participants {
			if !drop[p.ID] {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			return models.Invite{}, ErrEmptyParticipants
		}
		inv.Participants = kept
	}

	// New participants go to the end; existing order is never reshuffled.
	for _, p := range changes.AddParticipants {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.InviteID = inv.ID
		if p.ResponseStatus == "" {
			p.ResponseStatus = models.ResponsePending
		}
		inv.Participants = append(inv.Participants, p)
	}
	for i := range inv.Participants {
		inv.Participants[i].Position = i
	}

	switch inv.Category {
	case models.CategorySent:
		inv.Note = fmt.Sprintf("Updated: Let's meet at %s on %s at %s!", inv.Place, inv.Date, inv.Time)
	case models.CategoryReceived:
		inv.Note = fmt.Sprintf("How about %s on %s at %s instead?", inv.Place, inv.Date, inv.Time)
	}
	return inv, nil
}

// OpenReviewRequest resolves the meetup a review request links to. A
// missing meetup is surfaced, not swallowed: the caller has to navigate
// back instead of rendering a review flow for nothing.
func (c *Coordinator) OpenReviewRequest(id uuid.UUID) (models.Meetup, error) {
	c.mu.Lock()
	inv, ok := c.store.Get(id)
	c.mu.Unlock()

	if !ok {
		return models.Meetup{}, ErrNotFound
	}
	if inv.Category != models.CategoryReviewRequest || inv.LinkedMeetupID == nil {
		return models.Meetup{}, ErrWrongCategory
	}
	meetup, found := c.ledger.FindMeetup(*inv.LinkedMeetupID)
	if !found {
		return models.Meetup{}, ErrMeetupNotFound
	}
	return meetup, nil
}

// SubmitReview saves the review (last write wins) and clears every
// review request linked to the meetup, normally exactly one.
func (c *Coordinator) SubmitReview(meetupID uuid.UUID, review models.Review) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	var removed []uuid.UUID
	for _, inv := range c.store.All() {
		if inv.LinkedMeetupID != nil && *inv.LinkedMeetupID == meetupID {
			c.store.Remove(inv.ID)
			removed = append(removed, inv.ID)
		}
	}
	count := c.store.CountInbound()
	c.mu.Unlock()

	review.MeetupID = meetupID
	c.reviews.SaveReview(review)
	if c.persist != nil {
		for _, id := range removed {
			c.persist.InviteRemoved(id)
		}
	}
	c.publishCount(count)
	return nil
}

// CancelConfirmation undoes a pending accept/decline (the deferred
// mutation never applies) or dismisses a counter-proposal banner (the
// edit stays, it already committed). Returns false when nothing was
// pending.
func (c *Coordinator) CancelConfirmation(id uuid.UUID) bool {
	c.mu.Lock()
	pending, ok := c.inFlight[id]
	if ok {
		delete(c.inFlight, id)
	}
	c.mu.Unlock()

	if ok {
		pending.cancel()
	}
	return ok
}

// PendingConfirmation reports the banner state for one invite.
func (c *Coordinator) PendingConfirmation(id uuid.UUID) (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending, ok := c.inFlight[id]
	if !ok {
		return Confirmation{}, false
	}
	return pending.confirmation, true
}

// InboxCount recomputes the badge count from the live collection.
func (c *Coordinator) InboxCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.CountInbound()
}

// Partition snapshots the two inbox tabs.
func (c *Coordinator) Partition() (sent, inbox []models.Invite) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Partition()
}

// Get snapshots a single invite.
func (c *Coordinator) Get(id uuid.UUID) (models.Invite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

// Close cancels every pending timer and rejects further operations.
// Deferred accept/decline mutations that have not fired yet never apply,
// so tearing down the UI mid-confirmation leaves the invite untouched.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.inFlight
	c.inFlight = make(map[uuid.UUID]*pendingConfirm)
	c.mu.Unlock()

	for _, p := range pending {
		p.cancel()
	}
}

func (c *Coordinator) publishCount(count int) {
	if c.onCount != nil {
		c.onCount(count)
	}
}

func buildEventPayload(inv models.Invite) EventPayload {
	primary := ""
	if len(inv.Participants) > 0 {
		primary = inv.Participants[0].DisplayName
	}
	participants := make([]models.Participant, len(inv.Participants))
	copy(participants, inv.Participants)
	return EventPayload{
		SourceInviteID:         inv.ID,
		Title:                  EventTitle(inv.Place, primary),
		PrimaryParticipantName: primary,
		Place:                  inv.Place,
		Date:                   inv.Date,
		Time:                   inv.Time,
		ImageCategory:          ClassifyPlace(inv.Place),
		Participants:           participants,
	}
}
