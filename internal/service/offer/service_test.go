package offer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozziework/contracts-backend-go/internal/domain/application"
	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/notification"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/domain/party"
	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/applock"
	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
)

// ==================== FAKES ====================

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAppRepo struct {
	apps map[string]application.Application
}

func (f *fakeAppRepo) GetByID(_ context.Context, id string) (application.Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return application.Application{}, contract.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeAppRepo) UpdateStatus(_ context.Context, id string, status application.Status) error {
	a := f.apps[id]
	a.Status = status
	f.apps[id] = a
	return nil
}

func (f *fakeAppRepo) SetLastPaidAt(_ context.Context, id string, paidAt time.Time) error {
	a := f.apps[id]
	a.LastPaidAt = &paidAt
	f.apps[id] = a
	return nil
}

type fakePartyRepo struct {
	parties map[string]party.Party
}

func (f *fakePartyRepo) GetByID(_ context.Context, id string) (party.Party, error) {
	p, ok := f.parties[id]
	if !ok {
		return party.Party{}, party.ErrPartyNotFound
	}
	return p, nil
}

func (f *fakePartyRepo) SetSuspended(_ context.Context, id string, suspended bool) error {
	p := f.parties[id]
	p.IsSuspended = suspended
	f.parties[id] = p
	return nil
}

func (f *fakePartyRepo) HasOverduePayslips(context.Context, string) (bool, error) {
	return false, nil
}

type fakeOfferRepo struct {
	byApp        map[string]offer.Offer
	activeOnJob  bool
}

func (f *fakeOfferRepo) GetByApplicationID(_ context.Context, applicationID string) (offer.Offer, error) {
	o, ok := f.byApp[applicationID]
	if !ok {
		return offer.Offer{}, offer.ErrOfferNotFound
	}
	return o, nil
}

func (f *fakeOfferRepo) Create(_ context.Context, o offer.Offer) (offer.Offer, error) {
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	f.byApp[o.ApplicationID] = o
	return o, nil
}

func (f *fakeOfferRepo) UpdateTerms(_ context.Context, o offer.Offer) (offer.Offer, error) {
	o.UpdatedAt = time.Now()
	f.byApp[o.ApplicationID] = o
	return o, nil
}

func (f *fakeOfferRepo) UpdateStatus(_ context.Context, id string, status offer.Status) error {
	for appID, o := range f.byApp {
		if o.ID == id {
			o.Status = status
			f.byApp[appID] = o
		}
	}
	return nil
}

func (f *fakeOfferRepo) JobHasActiveOffer(context.Context, string, string) (bool, error) {
	return f.activeOnJob, nil
}

type fakeTimesheetRepo struct {
	byApp         map[string]timesheet.Timesheet
	lockedEntries bool
}

func (f *fakeTimesheetRepo) GetByApplicationID(_ context.Context, applicationID string) (timesheet.Timesheet, error) {
	t, ok := f.byApp[applicationID]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return t, nil
}

func (f *fakeTimesheetRepo) Create(_ context.Context, t timesheet.Timesheet) (timesheet.Timesheet, error) {
	f.byApp[t.ApplicationID] = t
	return t, nil
}

func (f *fakeTimesheetRepo) ReplaceUnlockedEntries(context.Context, string, []timesheet.Entry) error {
	return nil
}

func (f *fakeTimesheetRepo) UpdateHeader(context.Context, timesheet.Timesheet) error { return nil }
func (f *fakeTimesheetRepo) LockEntries(context.Context, string) error               { return nil }

func (f *fakeTimesheetRepo) SelectPayableForUpdate(context.Context, string) ([]timesheet.Entry, error) {
	return nil, nil
}

func (f *fakeTimesheetRepo) MarkEntriesPaid(context.Context, []string, timesheet.PaymentStatus) error {
	return nil
}

func (f *fakeTimesheetRepo) UpdateEntryPaymentStatus(context.Context, string, []timesheet.PaymentStatus, timesheet.PaymentStatus) error {
	return nil
}

func (f *fakeTimesheetRepo) HasLockedEntries(context.Context, string) (bool, error) {
	return f.lockedEntries, nil
}

type fakeNotifier struct {
	events []notification.Event
}

func (f *fakeNotifier) Queue(e notification.Event) { f.events = append(f.events, e) }

func (f *fakeNotifier) GetNotifications(context.Context, string, int, int, bool) (*notification.ListResponse, error) {
	return &notification.ListResponse{}, nil
}

func (f *fakeNotifier) GetUnreadCount(context.Context, string) (int, error) { return 0, nil }

func (f *fakeNotifier) MarkAsRead(context.Context, string, notification.MarkAsReadRequest) error {
	return nil
}

func (f *fakeNotifier) MarkAllAsRead(context.Context, string) error { return nil }

func (f *fakeNotifier) Subscribe(context.Context, string) (<-chan notification.SSEEvent, func()) {
	return make(chan notification.SSEEvent), func() {}
}

func (f *fakeNotifier) Stop() {}

// ==================== FIXTURE ====================

const (
	appID       = "app-1"
	jobID       = "job-1"
	employerID  = "emp-1"
	travellerID = "trav-1"
)

type fixture struct {
	svc       offer.OfferService
	locks     *applock.Registry
	apps      *fakeAppRepo
	parties   *fakePartyRepo
	offers    *fakeOfferRepo
	sheets    *fakeTimesheetRepo
	notifier  *fakeNotifier
	employer  contract.Actor
	traveller contract.Actor
}

func newFixture() *fixture {
	f := &fixture{
		locks: applock.NewRegistry(),
		apps: &fakeAppRepo{apps: map[string]application.Application{
			appID: {ID: appID, JobID: jobID, EmployerID: employerID, TravellerID: travellerID, Status: application.StatusSubmitted},
		}},
		parties: &fakePartyRepo{parties: map[string]party.Party{
			employerID:  {ID: employerID, Role: contract.RoleEmployer, CompanyName: "Harvest Farms"},
			travellerID: {ID: travellerID, Role: contract.RoleTraveller, Name: "Alex Walker"},
		}},
		offers:    &fakeOfferRepo{byApp: map[string]offer.Offer{}},
		sheets:    &fakeTimesheetRepo{byApp: map[string]timesheet.Timesheet{}},
		notifier:  &fakeNotifier{},
		employer:  contract.Actor{UserID: employerID, Role: contract.RoleEmployer},
		traveller: contract.Actor{UserID: travellerID, Role: contract.RoleTraveller},
	}
	f.svc = NewOfferService(f.locks, fakeTx{}, f.apps, f.parties, f.offers, f.sheets, f.notifier)
	return f
}

func validTerms() offer.TermsRequest {
	return offer.TermsRequest{
		StartDate:    "2026-04-01",
		RateType:     "hourly",
		RateAmount:   decimal.RequireFromString("25.00"),
		RateCurrency: "AUD",
	}
}

// ==================== TESTS ====================

func TestCreateOrUpdate_CreatesPendingOffer(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	assert.Equal(t, string(offer.StatusPending), resp.Status)
	assert.Equal(t, string(offer.ContractCasual), resp.ContractType)
	assert.Equal(t, application.StatusOfferSent, f.apps.apps[appID].Status)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypeOfferCreated, f.notifier.events[0].Type)
	assert.Equal(t, travellerID, f.notifier.events[0].RecipientID)
}

func TestCreateOrUpdate_TravellerForbidden(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrUpdate(context.Background(), f.traveller, appID, validTerms())
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestCreateOrUpdate_SuspendedEmployerBlocked(t *testing.T) {
	f := newFixture()
	p := f.parties.parties[employerID]
	p.IsSuspended = true
	f.parties.parties[employerID] = p

	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	assert.ErrorIs(t, err, contract.ErrEmployerSuspended)
}

func TestCreateOrUpdate_ReplacesPendingTerms(t *testing.T) {
	f := newFixture()

	first, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	terms := validTerms()
	terms.RateAmount = decimal.RequireFromString("30.00")
	second, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, terms)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.RateAmount.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, notification.TypeOfferUpdated, f.notifier.events[1].Type)
}

func TestCreateOrUpdate_RejectsAfterAcceptance(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)
	_, err = f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "accepted"})
	require.NoError(t, err)

	_, err = f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	assert.ErrorIs(t, err, offer.ErrOfferNotPending)
}

func TestCreateOrUpdate_JobAlreadyHasActiveOffer(t *testing.T) {
	f := newFixture()
	f.offers.activeOnJob = true

	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	assert.ErrorIs(t, err, offer.ErrJobHasActiveOffer)
}

func TestCreateOrUpdate_ValidatesTerms(t *testing.T) {
	f := newFixture()

	req := offer.TermsRequest{StartDate: "not a date", RateType: "weekly", RateCurrency: ""}
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	details := verrs.ToMap()
	assert.Contains(t, details, "start_date")
	assert.Contains(t, details, "rate_type")
	assert.Contains(t, details, "rate_amount")
	assert.Contains(t, details, "rate_currency")
}

func TestCreateOrUpdate_ConcurrentCommandRejected(t *testing.T) {
	f := newFixture()
	release, ok := f.locks.Acquire(appID)
	require.True(t, ok)
	defer release()

	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	assert.ErrorIs(t, err, contract.ErrConcurrentModification)
}

func TestRespond_AcceptCreatesDraftTimesheet(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	resp, err := f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "accepted"})
	require.NoError(t, err)

	assert.Equal(t, string(offer.StatusAccepted), resp.Status)
	assert.Equal(t, application.StatusOfferAccepted, f.apps.apps[appID].Status)

	ts, ok := f.sheets.byApp[appID]
	require.True(t, ok, "accepting must create the timesheet")
	assert.Equal(t, timesheet.StatusDraft, ts.Status)
	assert.Empty(t, ts.Entries)
}

func TestRespond_DeclineLeavesNoTimesheet(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	resp, err := f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "declined"})
	require.NoError(t, err)

	assert.Equal(t, string(offer.StatusDeclined), resp.Status)
	assert.Equal(t, application.StatusOfferDeclined, f.apps.apps[appID].Status)
	_, ok := f.sheets.byApp[appID]
	assert.False(t, ok)
}

func TestRespond_EmployerForbidden(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), f.employer, appID, offer.RespondRequest{Decision: "accepted"})
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestRespond_SecondDecisionRejected(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)
	_, err = f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "accepted"})
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "declined"})
	assert.ErrorIs(t, err, offer.ErrOfferNotPending)
}

func TestRespond_InvalidDecision(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	var verrs validator.ValidationErrors
	_, err = f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "maybe"})
	assert.ErrorAs(t, err, &verrs)
}

func TestCancel_PendingOffer(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	resp, err := f.svc.Cancel(context.Background(), f.employer, appID)
	require.NoError(t, err)

	assert.Equal(t, string(offer.StatusCancelled), resp.Status)
	assert.Equal(t, application.StatusCancelled, f.apps.apps[appID].Status)
}

func TestCancel_BlockedByApprovedHours(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)
	_, err = f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "accepted"})
	require.NoError(t, err)
	f.sheets.lockedEntries = true

	_, err = f.svc.Cancel(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, offer.ErrOfferLocked)
}

func TestCancel_TerminalOfferRejected(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)
	_, err = f.svc.Respond(context.Background(), f.traveller, appID, offer.RespondRequest{Decision: "declined"})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, offer.ErrOfferNotPending)
}

func TestGet_EitherPartyCanRead(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrUpdate(context.Background(), f.employer, appID, validTerms())
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), f.employer, appID)
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), f.traveller, appID)
	assert.NoError(t, err)

	stranger := contract.Actor{UserID: "someone-else", Role: contract.RoleEmployer}
	_, err = f.svc.Get(context.Background(), stranger, appID)
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestGet_UnknownApplication(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Get(context.Background(), f.employer, "missing")
	assert.ErrorIs(t, err, contract.ErrApplicationNotFound)
}
