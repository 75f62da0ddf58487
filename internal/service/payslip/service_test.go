package payslip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozziework/contracts-backend-go/internal/config"
	"github.com/ozziework/contracts-backend-go/internal/domain/application"
	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/notification"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/domain/party"
	"github.com/ozziework/contracts-backend-go/internal/domain/payslip"
	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/applock"
	"github.com/ozziework/contracts-backend-go/internal/service/payroll"
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
	overdue bool
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
	return f.overdue, nil
}

type fakeOfferRepo struct {
	byApp map[string]offer.Offer
}

func (f *fakeOfferRepo) GetByApplicationID(_ context.Context, applicationID string) (offer.Offer, error) {
	o, ok := f.byApp[applicationID]
	if !ok {
		return offer.Offer{}, offer.ErrOfferNotFound
	}
	return o, nil
}

func (f *fakeOfferRepo) Create(_ context.Context, o offer.Offer) (offer.Offer, error) {
	f.byApp[o.ApplicationID] = o
	return o, nil
}

func (f *fakeOfferRepo) UpdateTerms(_ context.Context, o offer.Offer) (offer.Offer, error) {
	f.byApp[o.ApplicationID] = o
	return o, nil
}

func (f *fakeOfferRepo) UpdateStatus(context.Context, string, offer.Status) error { return nil }

func (f *fakeOfferRepo) JobHasActiveOffer(context.Context, string, string) (bool, error) {
	return false, nil
}

type fakeTimesheetRepo struct {
	byApp map[string]*timesheet.Timesheet
}

func (f *fakeTimesheetRepo) GetByApplicationID(_ context.Context, applicationID string) (timesheet.Timesheet, error) {
	t, ok := f.byApp[applicationID]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return *t, nil
}

func (f *fakeTimesheetRepo) Create(_ context.Context, t timesheet.Timesheet) (timesheet.Timesheet, error) {
	f.byApp[t.ApplicationID] = &t
	return t, nil
}

func (f *fakeTimesheetRepo) ReplaceUnlockedEntries(context.Context, string, []timesheet.Entry) error {
	return nil
}

func (f *fakeTimesheetRepo) UpdateHeader(context.Context, timesheet.Timesheet) error { return nil }

func (f *fakeTimesheetRepo) LockEntries(_ context.Context, timesheetID string) error {
	t := f.find(timesheetID)
	for i := range t.Entries {
		t.Entries[i].IsLocked = true
	}
	return nil
}

func (f *fakeTimesheetRepo) SelectPayableForUpdate(_ context.Context, timesheetID string) ([]timesheet.Entry, error) {
	t := f.find(timesheetID)
	var out []timesheet.Entry
	for _, e := range t.Entries {
		if e.Payable() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimesheetRepo) MarkEntriesPaid(_ context.Context, entryIDs []string, status timesheet.PaymentStatus) error {
	ids := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		ids[id] = true
	}
	for _, t := range f.byApp {
		for i := range t.Entries {
			if ids[t.Entries[i].ID] && !t.Entries[i].IsPaid {
				t.Entries[i].IsPaid = true
				t.Entries[i].PaymentStatus = status
			}
		}
	}
	return nil
}

func (f *fakeTimesheetRepo) UpdateEntryPaymentStatus(_ context.Context, timesheetID string, from []timesheet.PaymentStatus, to timesheet.PaymentStatus) error {
	t := f.find(timesheetID)
	for i := range t.Entries {
		for _, s := range from {
			if t.Entries[i].PaymentStatus == s {
				t.Entries[i].PaymentStatus = to
			}
		}
	}
	return nil
}

func (f *fakeTimesheetRepo) HasLockedEntries(_ context.Context, applicationID string) (bool, error) {
	t, ok := f.byApp[applicationID]
	if !ok {
		return false, nil
	}
	return t.HasLockedEntries(), nil
}

func (f *fakeTimesheetRepo) find(timesheetID string) *timesheet.Timesheet {
	for _, t := range f.byApp {
		if t.ID == timesheetID {
			return t
		}
	}
	return nil
}

type fakePayslipRepo struct {
	byID  map[string]payslip.Payslip
	order []string
}

func (f *fakePayslipRepo) Create(_ context.Context, p payslip.Payslip) (payslip.Payslip, error) {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
	return p, nil
}

func (f *fakePayslipRepo) GetByID(_ context.Context, id string) (payslip.Payslip, error) {
	p, ok := f.byID[id]
	if !ok {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	return p, nil
}

func (f *fakePayslipRepo) GetLatestByApplicationID(_ context.Context, applicationID string) (payslip.Payslip, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		if p := f.byID[f.order[i]]; p.ApplicationID == applicationID {
			return p, nil
		}
	}
	return payslip.Payslip{}, payslip.ErrPayslipNotFound
}

func (f *fakePayslipRepo) Complete(_ context.Context, id string, pdfPath, abaPath string, abaGeneratedAt time.Time, metadata payslip.Metadata) error {
	p, ok := f.byID[id]
	if !ok || p.Status != payslip.StatusProcessing {
		return payslip.ErrPayslipNotFound
	}
	p.Status = payslip.StatusCompleted
	p.InstructionsStatus = payslip.InstructionsGenerated
	p.PDFPath = pdfPath
	p.ABAPath = abaPath
	p.ABAGeneratedAt = &abaGeneratedAt
	p.Metadata = metadata
	f.byID[id] = p
	return nil
}

func (f *fakePayslipRepo) MarkFailed(_ context.Context, id string) error {
	p, ok := f.byID[id]
	if ok && p.Status == payslip.StatusProcessing {
		p.Status = payslip.StatusFailed
		f.byID[id] = p
	}
	return nil
}

func (f *fakePayslipRepo) UpdateInstructionsStatus(_ context.Context, id string, from []payslip.InstructionsStatus, to payslip.InstructionsStatus) error {
	p := f.byID[id]
	for _, s := range from {
		if p.InstructionsStatus == s {
			p.InstructionsStatus = to
			f.byID[id] = p
			return nil
		}
	}
	return payslip.ErrInstructionsNotOpen
}

func (f *fakePayslipRepo) UpdateStatus(_ context.Context, id string, status payslip.Status) error {
	p := f.byID[id]
	p.Status = status
	f.byID[id] = p
	return nil
}

func (f *fakePayslipRepo) ListStaleProcessing(_ context.Context, cutoff time.Time) ([]payslip.Payslip, error) {
	return f.list(func(p payslip.Payslip) bool {
		return p.Status == payslip.StatusProcessing && p.CreatedAt.Before(cutoff)
	}), nil
}

func (f *fakePayslipRepo) ListOverdueCandidates(_ context.Context, cutoff time.Time) ([]payslip.Payslip, error) {
	return f.list(func(p payslip.Payslip) bool {
		open := p.InstructionsStatus == payslip.InstructionsGenerated ||
			p.InstructionsStatus == payslip.InstructionsAwaitingBankImport
		return p.Status == payslip.StatusCompleted && open && p.PayPeriodEnd.Before(cutoff)
	}), nil
}

func (f *fakePayslipRepo) list(match func(payslip.Payslip) bool) []payslip.Payslip {
	var out []payslip.Payslip
	for _, id := range f.order {
		if p := f.byID[id]; match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type fakeFiles struct {
	failUploads bool
	bankFiles   map[string]string
}

func (f *fakeFiles) StorePayslipPDF(_ context.Context, payslipID string, data []byte) (string, error) {
	if f.failUploads {
		return "", errors.New("store unavailable")
	}
	return "payslips/" + payslipID + ".pdf", nil
}

func (f *fakeFiles) StoreBankFile(_ context.Context, payslipID string, content string) (string, error) {
	if f.failUploads {
		return "", errors.New("store unavailable")
	}
	path := "bank-files/" + payslipID + ".aba"
	f.bankFiles[path] = content
	return path, nil
}

func (f *fakeFiles) DeleteFile(context.Context, string) error { return nil }

func (f *fakeFiles) GetFileURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "http://files.local/" + path, nil
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
	employerID  = "emp-1"
	travellerID = "trav-1"
	timesheetID = "ts-1"
)

type fixture struct {
	svc       payslip.PayslipService
	locks     *applock.Registry
	apps      *fakeAppRepo
	parties   *fakePartyRepo
	sheets    *fakeTimesheetRepo
	payslips  *fakePayslipRepo
	files     *fakeFiles
	notifier  *fakeNotifier
	employer  contract.Actor
	traveller contract.Actor
}

func newFixture() *fixture {
	f := &fixture{
		locks: applock.NewRegistry(),
		apps: &fakeAppRepo{apps: map[string]application.Application{
			appID: {ID: appID, JobID: "job-1", EmployerID: employerID, TravellerID: travellerID, Status: application.StatusOfferAccepted},
		}},
		parties: &fakePartyRepo{parties: map[string]party.Party{
			employerID: {
				ID: employerID, Role: contract.RoleEmployer, CompanyName: "Harvest Farms Pty Ltd",
				ABN: "51824753556", BankName: "CBA", BankBSB: "062-000", BankAccount: "12345678",
			},
			travellerID: {
				ID: travellerID, Role: contract.RoleTraveller, Name: "Alex Walker",
				TFN: "123456782", BankName: "Westpac", BankBSB: "733000", BankAccount: "987654",
			},
		}},
		sheets:    &fakeTimesheetRepo{byApp: map[string]*timesheet.Timesheet{}},
		payslips:  &fakePayslipRepo{byID: map[string]payslip.Payslip{}},
		files:     &fakeFiles{bankFiles: map[string]string{}},
		notifier:  &fakeNotifier{},
		employer:  contract.Actor{UserID: employerID, Role: contract.RoleEmployer},
		traveller: contract.Actor{UserID: travellerID, Role: contract.RoleTraveller},
	}

	offers := &fakeOfferRepo{byApp: map[string]offer.Offer{
		appID: {
			ID: "offer-1", ApplicationID: appID, EmployerID: employerID, TravellerID: travellerID,
			Status: offer.StatusAccepted, RateType: offer.RateHourly,
			RateAmount: decimal.RequireFromString("25.00"), RateCurrency: "AUD",
		},
	}}

	f.sheets.byApp[appID] = &timesheet.Timesheet{
		ID: timesheetID, OfferID: "offer-1", ApplicationID: appID,
		Status: timesheet.StatusApproved,
		Entries: []timesheet.Entry{
			lockedEntry("e-1", "2026-04-01", "8"),
			lockedEntry("e-2", "2026-04-02", "8"),
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewPayslipService(
		f.locks, fakeTx{}, f.apps, f.parties, offers, f.sheets, f.payslips,
		payroll.NewEngine(), f.files, f.notifier,
		config.PlatformConfig{BankName: "OzzieWork Pty Ltd", BankBSB: "082-001", BankAccount: "55566677"},
		config.PayrollConfig{ArtifactTimeout: 5 * time.Second, OverdueAfter: 168 * time.Hour},
		logger,
	)
	return f
}

func lockedEntry(id, date, hours string) timesheet.Entry {
	d, _ := time.Parse("2006-01-02", date)
	return timesheet.Entry{
		ID: id, TimesheetID: timesheetID, EntryDate: d,
		HoursWorked: decimal.RequireFromString(hours),
		IsLocked:    true, PaymentStatus: timesheet.PaymentUnpaid,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ==================== TESTS ====================

func TestRunPayroll_ComputesBreakdownAndPaysEntries(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	// 16 hours at 25.00
	assert.True(t, resp.GrossAmount.Equal(d("400.00")), "gross = %s", resp.GrossAmount)
	assert.True(t, resp.CommissionAmount.Equal(d("4.00")))
	assert.True(t, resp.SuperAmount.Equal(d("44.00")))
	assert.True(t, resp.TaxWithheld.Equal(d("60.00")))
	assert.True(t, resp.NetPayment.Equal(d("292.00")))
	assert.Equal(t, string(payslip.StatusCompleted), resp.Status)
	assert.Equal(t, string(payslip.InstructionsGenerated), resp.InstructionsStatus)
	assert.Equal(t, "2026-04-01", resp.PayPeriodStart)
	assert.Equal(t, "2026-04-02", resp.PayPeriodEnd)
	assert.Equal(t, "Harvest Farms Pty Ltd", resp.EmployerName)
	assert.Equal(t, "Alex Walker", resp.TravellerName)
	assert.NotEmpty(t, resp.PDFURL)

	for _, e := range f.sheets.byApp[appID].Entries {
		assert.True(t, e.IsPaid)
		assert.Equal(t, timesheet.PaymentInstructionsGenerated, e.PaymentStatus)
	}

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypePayslipReady, f.notifier.events[0].Type)
	assert.Equal(t, travellerID, f.notifier.events[0].RecipientID)
}

func TestRunPayroll_BankFileCarriesCommissionNetAndTax(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	content := f.files.bankFiles["bank-files/"+resp.ID+".aba"]
	require.NotEmpty(t, content)
	assert.Contains(t, content, "0000000400") // commission in cents
	assert.Contains(t, content, "0000029200") // net payment in cents
	assert.Contains(t, content, "0000006000") // withheld tax in cents
	assert.Contains(t, content, "WH TAX")
	assert.Contains(t, content, "082-001")    // platform account
	assert.Contains(t, content, "733-000")    // traveller account
	assert.Contains(t, content, "062-000")    // employer account, tax remittance
	assert.Contains(t, content, "0000035600") // file total covers all three details

	require.Len(t, resp.Metadata.ABARecords, 3)
	assert.Equal(t, "OzzieWork Pty Ltd", resp.Metadata.ABARecords[0].AccountName)
	assert.Equal(t, "Alex Walker", resp.Metadata.ABARecords[1].AccountName)
	assert.Equal(t, "Harvest Farms Pty Ltd", resp.Metadata.ABARecords[2].AccountName)
	assert.Equal(t, "60.00", resp.Metadata.ABARecords[2].Amount)
}

func TestRunPayroll_SecondRunHasNothingToPay(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	_, err = f.svc.RunPayroll(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, payslip.ErrNothingToPay)
}

func TestRunPayroll_PaysOnlyNewHoursInSecondCycle(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	// A later approval cycle locks one more day.
	ts := f.sheets.byApp[appID]
	ts.Entries = append(ts.Entries, lockedEntry("e-3", "2026-04-08", "4"))

	resp, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	// 4 hours at 25.00, not 20
	assert.True(t, resp.GrossAmount.Equal(d("100.00")), "gross = %s", resp.GrossAmount)
	assert.Equal(t, "2026-04-08", resp.PayPeriodStart)
	assert.Equal(t, "2026-04-08", resp.PayPeriodEnd)
	require.Len(t, resp.Metadata.Entries, 1)
}

func TestRunPayroll_RequiresApprovedTimesheet(t *testing.T) {
	f := newFixture()
	f.sheets.byApp[appID].Status = timesheet.StatusSubmitted

	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, payslip.ErrTimesheetNotApproved)
}

func TestRunPayroll_TravellerForbidden(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RunPayroll(context.Background(), f.traveller, appID)
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestRunPayroll_MissingBankDetails(t *testing.T) {
	f := newFixture()
	p := f.parties.parties[travellerID]
	p.BankBSB = ""
	f.parties.parties[travellerID] = p

	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, party.ErrMissingBankDetails)

	// Nothing was paid and no completed payslip exists.
	for _, e := range f.sheets.byApp[appID].Entries {
		assert.False(t, e.IsPaid)
	}
}

func TestRunPayroll_ArtifactFailureLeavesEntriesUnpaid(t *testing.T) {
	f := newFixture()
	f.files.failUploads = true

	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, payslip.ErrArtifactGeneration)

	failed, err := f.payslips.GetLatestByApplicationID(context.Background(), appID)
	require.NoError(t, err)
	assert.Equal(t, payslip.StatusFailed, failed.Status)

	for _, e := range f.sheets.byApp[appID].Entries {
		assert.False(t, e.IsPaid, "a failed run must not consume the hours")
	}

	// The store recovers and the same hours pay out cleanly.
	f.files.failUploads = false
	resp, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)
	assert.True(t, resp.GrossAmount.Equal(d("400.00")))
}

func TestRunPayroll_ConcurrentCommandRejected(t *testing.T) {
	f := newFixture()
	release, ok := f.locks.Acquire(appID)
	require.True(t, ok)
	defer release()

	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, contract.ErrConcurrentModification)
}

func TestDownloadABA_AdvancesSubState(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	resp, err := f.svc.DownloadABA(context.Background(), f.employer, appID)
	require.NoError(t, err)

	assert.Contains(t, resp.URL, ".aba")
	assert.Equal(t, string(payslip.InstructionsAwaitingBankImport), resp.InstructionsStatus)
	for _, e := range f.sheets.byApp[appID].Entries {
		assert.Equal(t, timesheet.PaymentAwaitingBankImport, e.PaymentStatus)
	}

	// Repeat downloads serve the file without another transition.
	resp, err = f.svc.DownloadABA(context.Background(), f.employer, appID)
	require.NoError(t, err)
	assert.Equal(t, string(payslip.InstructionsAwaitingBankImport), resp.InstructionsStatus)
}

func TestDownloadABA_ConcurrentCommandRejected(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	release, ok := f.locks.Acquire(appID)
	require.True(t, ok)
	defer release()

	_, err = f.svc.DownloadABA(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, contract.ErrConcurrentModification)
}

func TestDownloadABA_AfterConfirmStaysCompleted(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)
	_, err = f.svc.ConfirmSettlement(context.Background(), f.employer, appID)
	require.NoError(t, err)

	// A late download serves the file but never moves the sub-state backward.
	resp, err := f.svc.DownloadABA(context.Background(), f.employer, appID)
	require.NoError(t, err)
	assert.Equal(t, string(payslip.InstructionsCompleted), resp.InstructionsStatus)

	latest, err := f.payslips.GetLatestByApplicationID(context.Background(), appID)
	require.NoError(t, err)
	assert.Equal(t, payslip.InstructionsCompleted, latest.InstructionsStatus)
}

func TestDownloadABA_TravellerForbidden(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	_, err = f.svc.DownloadABA(context.Background(), f.traveller, appID)
	assert.ErrorIs(t, err, contract.ErrForbidden)
}

func TestDownloadABA_NoPayslip(t *testing.T) {
	f := newFixture()

	_, err := f.svc.DownloadABA(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)
}

func TestConfirmSettlement_ClosesTheRun(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)
	_, err = f.svc.DownloadABA(context.Background(), f.employer, appID)
	require.NoError(t, err)

	resp, err := f.svc.ConfirmSettlement(context.Background(), f.employer, appID)
	require.NoError(t, err)

	assert.Equal(t, string(payslip.StatusCompleted), resp.Status)
	assert.Equal(t, string(payslip.InstructionsCompleted), resp.InstructionsStatus)
	assert.NotNil(t, f.apps.apps[appID].LastPaidAt)
	for _, e := range f.sheets.byApp[appID].Entries {
		assert.Equal(t, timesheet.PaymentPaid, e.PaymentStatus)
	}

	last := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, notification.TypeSettlementConfirmed, last.Type)

	// A second confirmation has nothing open.
	_, err = f.svc.ConfirmSettlement(context.Background(), f.employer, appID)
	assert.ErrorIs(t, err, payslip.ErrInstructionsNotOpen)
}

func TestConfirmSettlement_WithoutDownloadStillAllowed(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	resp, err := f.svc.ConfirmSettlement(context.Background(), f.employer, appID)
	require.NoError(t, err)
	assert.Equal(t, string(payslip.InstructionsCompleted), resp.InstructionsStatus)
}

func TestConfirmSettlement_LiftsSuspension(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	p := f.parties.parties[employerID]
	p.IsSuspended = true
	f.parties.parties[employerID] = p

	_, err = f.svc.ConfirmSettlement(context.Background(), f.employer, appID)
	require.NoError(t, err)

	assert.False(t, f.parties.parties[employerID].IsSuspended)
}

func TestConfirmSettlement_SuspensionStaysWhileOtherPayslipsOverdue(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	p := f.parties.parties[employerID]
	p.IsSuspended = true
	f.parties.parties[employerID] = p
	f.parties.overdue = true

	_, err = f.svc.ConfirmSettlement(context.Background(), f.employer, appID)
	require.NoError(t, err)

	assert.True(t, f.parties.parties[employerID].IsSuspended)
}

func TestMonitorOverdue_SuspendsDelinquentEmployer(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	// Age the run past the grace window.
	latest, err := f.payslips.GetLatestByApplicationID(context.Background(), appID)
	require.NoError(t, err)
	latest.PayPeriodEnd = time.Now().Add(-240 * time.Hour)
	f.payslips.byID[latest.ID] = latest

	require.NoError(t, f.svc.MonitorOverdue(context.Background()))

	updated, _ := f.payslips.GetByID(context.Background(), latest.ID)
	assert.Equal(t, payslip.StatusOverdue, updated.Status)
	assert.True(t, f.parties.parties[employerID].IsSuspended)
}

func TestMonitorOverdue_IgnoresFreshRuns(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	require.NoError(t, f.svc.MonitorOverdue(context.Background()))

	latest, _ := f.payslips.GetLatestByApplicationID(context.Background(), appID)
	assert.Equal(t, payslip.StatusCompleted, latest.Status)
	assert.False(t, f.parties.parties[employerID].IsSuspended)
}

func TestReconcileStale_FailsStuckRuns(t *testing.T) {
	f := newFixture()

	stale := payslip.Payslip{ID: "stuck-1", ApplicationID: appID, Status: payslip.StatusProcessing}
	_, err := f.payslips.Create(context.Background(), stale)
	require.NoError(t, err)
	p := f.payslips.byID["stuck-1"]
	p.CreatedAt = time.Now().Add(-time.Hour)
	f.payslips.byID["stuck-1"] = p

	require.NoError(t, f.svc.ReconcileStale(context.Background()))

	updated, _ := f.payslips.GetByID(context.Background(), "stuck-1")
	assert.Equal(t, payslip.StatusFailed, updated.Status)
}

func TestGet_EitherPartyCanRead(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RunPayroll(context.Background(), f.employer, appID)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), f.employer, appID)
	assert.NoError(t, err)
	got, err := f.svc.Get(context.Background(), f.traveller, appID)
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("http://files.local/payslips/%s.pdf", got.ID), got.PDFURL)

	stranger := contract.Actor{UserID: "intruder", Role: contract.RoleTraveller}
	_, err = f.svc.Get(context.Background(), stranger, appID)
	assert.ErrorIs(t, err, contract.ErrForbidden)
}
