package invites

import (
	"testing"
	"time"

	"hangout-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler queues timer callbacks so tests fire the confirm
// window by hand instead of sleeping.
type manualScheduler struct {
	pending []func()
}

func (m *manualScheduler) Schedule(d time.Duration, fn func()) func() {
	idx := len(m.pending)
	m.pending = append(m.pending, fn)
	return func() { m.pending[idx] = nil }
}

func (m *manualScheduler) Fire() {
	fns := m.pending
	m.pending = nil
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

type fakeEventSink struct {
	payloads []EventPayload
}

func (f *fakeEventSink) CreateUpcomingEvent(payload EventPayload) {
	f.payloads = append(f.payloads, payload)
}

type fakeLedger struct {
	meetups map[uuid.UUID]models.Meetup
}

func (f *fakeLedger) FindMeetup(id uuid.UUID) (models.Meetup, bool) {
	m, ok := f.meetups[id]
	return m, ok
}

type fakeReviewSink struct {
	reviews map[uuid.UUID]models.Review
}

func (f *fakeReviewSink) SaveReview(review models.Review) {
	if f.reviews == nil {
		f.reviews = make(map[uuid.UUID]models.Review)
	}
	f.reviews[review.MeetupID] = review
}

type fakePersistence struct {
	updated []models.Invite
	removed []uuid.UUID
}

func (f *fakePersistence) InviteUpdated(inv models.Invite) { f.updated = append(f.updated, inv) }
func (f *fakePersistence) InviteRemoved(id uuid.UUID)      { f.removed = append(f.removed, id) }

type harness struct {
	coordinator *Coordinator
	store       *Store
	scheduler   *manualScheduler
	events      *fakeEventSink
	ledger      *fakeLedger
	reviews     *fakeReviewSink
	persist     *fakePersistence
	counts      []int
}

func newHarness(t *testing.T, initial ...models.Invite) *harness {
	t.Helper()
	h := &harness{
		store:     NewStore(initial),
		scheduler: &manualScheduler{},
		events:    &fakeEventSink{},
		ledger:    &fakeLedger{meetups: make(map[uuid.UUID]models.Meetup)},
		reviews:   &fakeReviewSink{},
		persist:   &fakePersistence{},
	}
	h.coordinator = NewCoordinator(Config{
		Store:        h.store,
		Events:       h.events,
		Ledger:       h.ledger,
		Reviews:      h.reviews,
		Persistence:  h.persist,
		OnInboxCount: func(count int) { h.counts = append(h.counts, count) },
		Schedule:     h.scheduler.Schedule,
	})
	return h
}

func receivedInvite(place, date, timeOfDay, senderName string) models.Invite {
	id := uuid.New()
	return models.Invite{
		ID:       id,
		Category: models.CategoryReceived,
		Place:    place,
		Date:     date,
		Time:     timeOfDay,
		Participants: []models.Participant{{
			ID:             uuid.New(),
			InviteID:       id,
			DisplayName:    senderName,
			ResponseStatus: models.ResponsePending,
		}},
	}
}

func sentInvite(place string, names ...string) models.Invite {
	id := uuid.New()
	inv := models.Invite{ID: id, Category: models.CategorySent, Place: place, Date: "Saturday", Time: "noon"}
	for i, name := range names {
		inv.Participants = append(inv.Participants, models.Participant{
			ID:             uuid.New(),
			InviteID:       id,
			DisplayName:    name,
			ResponseStatus: models.ResponsePending,
			Position:       i,
		})
	}
	return inv
}

func reviewRequestInvite(meetupID uuid.UUID, name string) models.Invite {
	id := uuid.New()
	return models.Invite{
		ID:             id,
		Category:       models.CategoryReviewRequest,
		LinkedMeetupID: &meetupID,
		Participants: []models.Participant{{
			ID:          uuid.New(),
			InviteID:    id,
			DisplayName: name,
		}},
	}
}

func TestAcceptCommitsAfterConfirmWindow(t *testing.T) {
	inv := receivedInvite("Tartine Bakery", "Friday", "5:30pm", "Marcus")
	h := newHarness(t, inv)

	conf, err := h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfirmAccepted, conf.Kind)

	// Nothing commits until the timer fires.
	_, stillThere := h.coordinator.Get(inv.ID)
	assert.True(t, stillThere)
	assert.Empty(t, h.events.payloads)

	h.scheduler.Fire()

	_, stillThere = h.coordinator.Get(inv.ID)
	assert.False(t, stillThere)
	require.Len(t, h.events.payloads, 1)
	payload := h.events.payloads[0]
	assert.Equal(t, inv.ID, payload.SourceInviteID)
	assert.Equal(t, "bakery", payload.ImageCategory)
	assert.Equal(t, "Pastries with Marcus", payload.Title)
	assert.Equal(t, "Marcus", payload.PrimaryParticipantName)
	assert.Equal(t, 0, h.coordinator.InboxCount())
	require.NotEmpty(t, h.counts)
	assert.Equal(t, 0, h.counts[len(h.counts)-1])
	assert.Equal(t, []uuid.UUID{inv.ID}, h.persist.removed)
}

func TestDeclineRemovesWithoutEvent(t *testing.T) {
	inv := receivedInvite("Dolores Park", "Sunday", "2pm", "Ana")
	h := newHarness(t, inv)

	_, err := h.coordinator.RequestDecline(inv.ID)
	require.NoError(t, err)
	h.scheduler.Fire()

	_, stillThere := h.coordinator.Get(inv.ID)
	assert.False(t, stillThere)
	assert.Empty(t, h.events.payloads)
	assert.Equal(t, 0, h.coordinator.InboxCount())
}

func TestDoubleAcceptCreatesOneEvent(t *testing.T) {
	inv := receivedInvite("Blue Bottle Coffee", "Monday", "9am", "Sam")
	h := newHarness(t, inv)

	_, err := h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
	_, err = h.coordinator.RequestAccept(inv.ID)
	assert.ErrorIs(t, err, ErrAlreadyConfirming)

	h.scheduler.Fire()
	assert.Len(t, h.events.payloads, 1)
}

func TestAcceptPreconditions(t *testing.T) {
	sent := sentInvite("somewhere", "Riley")
	meetupID := uuid.New()
	review := reviewRequestInvite(meetupID, "Jo")
	h := newHarness(t, sent, review)

	_, err := h.coordinator.RequestAccept(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.coordinator.RequestAccept(sent.ID)
	assert.ErrorIs(t, err, ErrWrongCategory)

	_, err = h.coordinator.RequestDecline(review.ID)
	assert.ErrorIs(t, err, ErrWrongCategory)
}

func TestUndoCancelsPendingAccept(t *testing.T) {
	inv := receivedInvite("some cafe", "Tuesday", "4pm", "Lee")
	h := newHarness(t, inv)

	_, err := h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
	assert.True(t, h.coordinator.CancelConfirmation(inv.ID))
	h.scheduler.Fire()

	_, stillThere := h.coordinator.Get(inv.ID)
	assert.True(t, stillThere)
	assert.Empty(t, h.events.payloads)

	// A fresh accept works once the previous one is undone.
	_, err = h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
}

func TestCloseDropsPendingMutations(t *testing.T) {
	inv := receivedInvite("anywhere", "Thursday", "6pm", "Kim")
	h := newHarness(t, inv)

	_, err := h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
	h.coordinator.Close()
	h.scheduler.Fire()

	assert.Empty(t, h.events.payloads)
	_, err = h.coordinator.RequestAccept(inv.ID)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCounterProposalCommitsImmediately(t *testing.T) {
	inv := receivedInvite("Tartine Bakery", "Friday", "5:30pm", "Marcus")
	h := newHarness(t, inv)

	conf, err := h.coordinator.SubmitEdit(inv.ID, EditChanges{Place: "Golden Gate Park", Time: "3pm"})
	require.NoError(t, err)
	require.NotNil(t, conf)
	assert.Equal(t, ConfirmCounterProposed, conf.Kind)
	assert.Equal(t, "Marcus", conf.SenderName)

	// The edit is already written, before the banner expires. A
	// counter-proposal stays a received invite; the source app never
	// flips it to sent, intentional even if it reads odd.
	got, ok := h.coordinator.Get(inv.ID)
	require.True(t, ok)
	assert.Equal(t, models.CategoryReceived, got.Category)
	assert.Equal(t, "Golden Gate Park", got.Place)
	assert.Equal(t, "How about Golden Gate Park on Friday at 3pm instead?", got.Note)
	assert.Equal(t, 1, h.coordinator.InboxCount())
	require.Len(t, h.persist.updated, 1)

	h.scheduler.Fire()
	_, pending := h.coordinator.PendingConfirmation(inv.ID)
	assert.False(t, pending)
	got, ok = h.coordinator.Get(inv.ID)
	require.True(t, ok)
	assert.Equal(t, "Golden Gate Park", got.Place)
}

func TestSentEditIsSilent(t *testing.T) {
	inv := sentInvite("the park", "Dana")
	h := newHarness(t, inv)

	conf, err := h.coordinator.SubmitEdit(inv.ID, EditChanges{Date: "Sunday"})
	require.NoError(t, err)
	assert.Nil(t, conf)

	got, ok := h.coordinator.Get(inv.ID)
	require.True(t, ok)
	assert.Equal(t, "Updated: Let's meet at the park on Sunday at noon!", got.Note)
	_, pending := h.coordinator.PendingConfirmation(inv.ID)
	assert.False(t, pending)
}

func TestEditCannotEmptyParticipants(t *testing.T) {
	inv := receivedInvite("a diner", "Friday", "7pm", "Max")
	h := newHarness(t, inv)

	_, err := h.coordinator.SubmitEdit(inv.ID, EditChanges{
		RemoveParticipants: []uuid.UUID{inv.Participants[0].ID},
	})
	assert.ErrorIs(t, err, ErrEmptyParticipants)

	got, ok := h.coordinator.Get(inv.ID)
	require.True(t, ok)
	assert.Len(t, got.Participants, 1)
	assert.Equal(t, inv.Note, got.Note)
}

func TestEditAppendsParticipantsAtEnd(t *testing.T) {
	inv := receivedInvite("brunch spot", "Saturday", "11am", "Noor")
	h := newHarness(t, inv)

	_, err := h.coordinator.SubmitEdit(inv.ID, EditChanges{
		AddParticipants: []models.Participant{{DisplayName: "Ira"}},
	})
	require.NoError(t, err)

	got, ok := h.coordinator.Get(inv.ID)
	require.True(t, ok)
	require.Len(t, got.Participants, 2)
	assert.Equal(t, "Noor", got.Participants[0].DisplayName)
	assert.Equal(t, "Ira", got.Participants[1].DisplayName)
	assert.Equal(t, 1, got.Participants[1].Position)
	assert.Equal(t, models.ResponsePending, got.Participants[1].ResponseStatus)
	// Adding people to a received invite still does not change category.
	assert.Equal(t, models.CategoryReceived, got.Category)
}

func TestEditRejectedWhileConfirming(t *testing.T) {
	inv := receivedInvite("cafe", "Friday", "5pm", "Bo")
	h := newHarness(t, inv)

	_, err := h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
	_, err = h.coordinator.SubmitEdit(inv.ID, EditChanges{Place: "elsewhere"})
	assert.ErrorIs(t, err, ErrAlreadyConfirming)
}

func TestEditReviewRequestRejected(t *testing.T) {
	inv := reviewRequestInvite(uuid.New(), "Pat")
	h := newHarness(t, inv)

	_, err := h.coordinator.SubmitEdit(inv.ID, EditChanges{Place: "anywhere"})
	assert.ErrorIs(t, err, ErrWrongCategory)
}

func TestOpenReviewRequest(t *testing.T) {
	meetupID := uuid.New()
	inv := reviewRequestInvite(meetupID, "Vic")
	h := newHarness(t, inv)
	h.ledger.meetups[meetupID] = models.Meetup{ID: meetupID, Title: "Dinner at Foreign Cinema"}

	meetup, err := h.coordinator.OpenReviewRequest(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dinner at Foreign Cinema", meetup.Title)

	// Dangling link: surface the inconsistency, leave the invite alone.
	dangling := reviewRequestInvite(uuid.New(), "Ash")
	require.NoError(t, h.coordinator.AddInvite(dangling))
	_, err = h.coordinator.OpenReviewRequest(dangling.ID)
	assert.ErrorIs(t, err, ErrMeetupNotFound)
	_, stillThere := h.coordinator.Get(dangling.ID)
	assert.True(t, stillThere)

	received := receivedInvite("cafe", "Friday", "1pm", "Uma")
	require.NoError(t, h.coordinator.AddInvite(received))
	_, err = h.coordinator.OpenReviewRequest(received.ID)
	assert.ErrorIs(t, err, ErrWrongCategory)
}

func TestSubmitReviewClearsLinkedInvites(t *testing.T) {
	meetupID := uuid.New()
	inv := reviewRequestInvite(meetupID, "Gail")
	other := receivedInvite("cafe", "Monday", "8am", "Tom")
	h := newHarness(t, inv, other)

	require.NoError(t, h.coordinator.SubmitReview(meetupID, models.Review{
		Mood:        "great",
		CommentText: "lovely evening",
	}))

	_, stillThere := h.coordinator.Get(inv.ID)
	assert.False(t, stillThere)
	_, otherThere := h.coordinator.Get(other.ID)
	assert.True(t, otherThere)
	assert.Equal(t, 1, h.coordinator.InboxCount())

	saved, ok := h.reviews.reviews[meetupID]
	require.True(t, ok)
	assert.Equal(t, "lovely evening", saved.CommentText)

	// Last write wins on resubmission.
	require.NoError(t, h.coordinator.SubmitReview(meetupID, models.Review{Mood: "okay"}))
	assert.Equal(t, "okay", h.reviews.reviews[meetupID].Mood)
}

func TestIndependentInvitesConfirmConcurrently(t *testing.T) {
	a := receivedInvite("cafe one", "Friday", "5pm", "A")
	b := receivedInvite("cafe two", "Friday", "6pm", "B")
	h := newHarness(t, a, b)

	_, err := h.coordinator.RequestAccept(a.ID)
	require.NoError(t, err)
	_, err = h.coordinator.RequestDecline(b.ID)
	require.NoError(t, err)

	h.scheduler.Fire()
	assert.Len(t, h.events.payloads, 1)
	assert.Equal(t, 0, h.coordinator.InboxCount())
}

func TestInboxCountTracksEveryMutation(t *testing.T) {
	inv := receivedInvite("cafe", "Friday", "5pm", "Zed")
	h := newHarness(t, inv)

	recount := func() int {
		count := 0
		for _, i := range h.store.All() {
			if i.IsInbound() {
				count++
			}
		}
		return count
	}

	require.NoError(t, h.coordinator.AddInvite(sentInvite("park", "Quinn")))
	require.NoError(t, h.coordinator.AddInvite(receivedInvite("bakery", "Sunday", "10am", "Ines")))
	assert.Equal(t, recount(), h.counts[len(h.counts)-1])

	_, err := h.coordinator.SubmitEdit(inv.ID, EditChanges{Time: "7pm"})
	require.NoError(t, err)
	assert.Equal(t, recount(), h.counts[len(h.counts)-1])
	h.scheduler.Fire() // expire the counter-proposal banner

	_, err = h.coordinator.RequestAccept(inv.ID)
	require.NoError(t, err)
	h.scheduler.Fire()
	assert.Equal(t, recount(), h.counts[len(h.counts)-1])
	assert.Equal(t, h.coordinator.InboxCount(), recount())
}
