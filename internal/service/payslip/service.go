package payslip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ozziework/contracts-backend-go/internal/config"
	"github.com/ozziework/contracts-backend-go/internal/domain/application"
	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/notification"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/domain/party"
	"github.com/ozziework/contracts-backend-go/internal/domain/payslip"
	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/aba"
	"github.com/ozziework/contracts-backend-go/internal/pkg/applock"
	"github.com/ozziework/contracts-backend-go/internal/pkg/pdf"
	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
	"github.com/ozziework/contracts-backend-go/internal/service/file"
	"github.com/ozziework/contracts-backend-go/internal/service/payroll"
)

const pdfURLExpiry = 24 * time.Hour

type payslipServiceImpl struct {
	locks         *applock.Registry
	txm           contract.TxManager
	appRepo       application.Repository
	partyRepo     party.Repository
	offerRepo     offer.Repository
	timesheetRepo timesheet.Repository
	payslipRepo   payslip.Repository
	engine        *payroll.Engine
	files         file.FileService
	notifier      notification.Service
	platform      config.PlatformConfig
	payrollCfg    config.PayrollConfig
	logger        *slog.Logger
}

func NewPayslipService(
	locks *applock.Registry,
	txm contract.TxManager,
	appRepo application.Repository,
	partyRepo party.Repository,
	offerRepo offer.Repository,
	timesheetRepo timesheet.Repository,
	payslipRepo payslip.Repository,
	engine *payroll.Engine,
	files file.FileService,
	notifier notification.Service,
	platform config.PlatformConfig,
	payrollCfg config.PayrollConfig,
	logger *slog.Logger,
) payslip.PayslipService {
	return &payslipServiceImpl{
		locks:         locks,
		txm:           txm,
		appRepo:       appRepo,
		partyRepo:     partyRepo,
		offerRepo:     offerRepo,
		timesheetRepo: timesheetRepo,
		payslipRepo:   payslipRepo,
		engine:        engine,
		files:         files,
		notifier:      notifier,
		platform:      platform,
		payrollCfg:    payrollCfg,
		logger:        logger,
	}
}

// RunPayroll pays every locked, unpaid hour of the approved timesheet. The
// payslip row is created in processing state before the artifacts are
// rendered, and the entries are only marked paid inside the same transaction
// that completes the payslip, so a crash at any point leaves either an unpaid
// timesheet or a processing payslip the reconcile job can fail, never a paid
// entry without its completed payslip.
func (s *payslipServiceImpl) RunPayroll(ctx context.Context, actor contract.Actor, applicationID string) (payslip.Response, error) {
	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return payslip.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	if !actor.IsEmployer() || actor.UserID != app.EmployerID {
		return payslip.Response{}, contract.ErrForbidden
	}

	o, err := s.offerRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	if o.Status != offer.StatusAccepted {
		return payslip.Response{}, offer.ErrOfferNotAccepted
	}

	ts, err := s.timesheetRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	if ts.Status != timesheet.StatusApproved {
		return payslip.Response{}, payslip.ErrTimesheetNotApproved
	}

	payable := ts.PayableEntries()
	if len(payable) == 0 {
		return payslip.Response{}, payslip.ErrNothingToPay
	}

	totalHours := decimal.Zero
	periodStart, periodEnd := payable[0].EntryDate, payable[0].EntryDate
	for _, e := range payable {
		totalHours = totalHours.Add(e.HoursWorked)
		if e.EntryDate.Before(periodStart) {
			periodStart = e.EntryDate
		}
		if e.EntryDate.After(periodEnd) {
			periodEnd = e.EntryDate
		}
	}

	breakdown, err := s.engine.Compute(totalHours, o.RateAmount)
	if err != nil {
		return payslip.Response{}, err
	}

	employer, err := s.partyRepo.GetByID(ctx, app.EmployerID)
	if err != nil {
		return payslip.Response{}, err
	}
	traveller, err := s.partyRepo.GetByID(ctx, app.TravellerID)
	if err != nil {
		return payslip.Response{}, err
	}

	employerAcct, err := bankAccount(employer)
	if err != nil {
		return payslip.Response{}, err
	}
	travellerAcct, err := bankAccount(traveller)
	if err != nil {
		return payslip.Response{}, err
	}

	metadata := payslip.Metadata{
		CommissionRate: payroll.CommissionRate.String(),
		SuperRate:      payroll.SuperRate.String(),
		TaxRate:        payroll.TaxRate.String(),
	}
	for _, e := range payable {
		metadata.Entries = append(metadata.Entries, payslip.MetadataEntry{
			EntryDate:   e.EntryDate.Format("2006-01-02"),
			HoursWorked: e.HoursWorked.String(),
		})
	}

	p := payslip.Payslip{
		ID:            uuid.New().String(),
		TimesheetID:   ts.ID,
		OfferID:       o.ID,
		ApplicationID: app.ID,
		EmployerID:    app.EmployerID,
		TravellerID:   app.TravellerID,

		HourCount:        breakdown.HourCount,
		RateAmount:       breakdown.RateAmount,
		RateCurrency:     o.RateCurrency,
		GrossAmount:      breakdown.Gross,
		CommissionAmount: breakdown.Commission,
		NetBeforeTax:     breakdown.NetBeforeTax,
		TaxWithheld:      breakdown.Tax,
		SuperAmount:      breakdown.Super,
		NetPayment:       breakdown.Net,

		PayPeriodStart: periodStart,
		PayPeriodEnd:   periodEnd,
		PaymentMethod:  "bank_transfer",

		EmployerName:     employer.DisplayName(),
		EmployerAddress:  employer.Address(),
		EmployerABN:      employer.ABN,
		TravellerName:    traveller.DisplayName(),
		TravellerAddress: traveller.Address(),
		TravellerTFN:     traveller.TFN,

		Status:             payslip.StatusProcessing,
		InstructionsStatus: payslip.InstructionsPending,
		Metadata:           metadata,
	}

	p, err = s.payslipRepo.Create(ctx, p)
	if err != nil {
		return payslip.Response{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	pdfPath, abaPath, bankFile, err := s.generateArtifacts(ctx, p, employerAcct, travellerAcct)
	if err != nil {
		if failErr := s.payslipRepo.MarkFailed(ctx, p.ID); failErr != nil {
			s.logger.Error("failed to mark payslip failed", "payslip_id", p.ID, "error", failErr)
		}
		return payslip.Response{}, fmt.Errorf("%w: %v", payslip.ErrArtifactGeneration, err)
	}

	for _, r := range bankFile.Records {
		p.Metadata.ABARecords = append(p.Metadata.ABARecords, payslip.ABARecord{
			AccountName:   r.AccountName,
			BSB:           r.BSB,
			AccountNumber: r.AccountNumber,
			Amount:        r.Amount,
			Description:   r.Description,
		})
	}

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		entries, err := s.timesheetRepo.SelectPayableForUpdate(ctx, ts.ID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return payslip.ErrNothingToPay
		}
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := s.timesheetRepo.MarkEntriesPaid(ctx, ids, timesheet.PaymentInstructionsGenerated); err != nil {
			return err
		}
		return s.payslipRepo.Complete(ctx, p.ID, pdfPath, abaPath, bankFile.GeneratedAt, p.Metadata)
	})
	if err != nil {
		return payslip.Response{}, err
	}

	now := bankFile.GeneratedAt
	p.Status = payslip.StatusCompleted
	p.InstructionsStatus = payslip.InstructionsGenerated
	p.PDFPath = pdfPath
	p.ABAPath = abaPath
	p.ABAGeneratedAt = &now

	actorID := actor.UserID
	s.notifier.Queue(notification.Event{
		ApplicationID: app.ID,
		RecipientID:   app.TravellerID,
		SenderID:      &actorID,
		Type:          notification.TypePayslipReady,
		Title:         "Payslip ready",
		Message:       fmt.Sprintf("A payslip for %s %s has been generated.", p.NetPayment.StringFixed(2), p.RateCurrency),
	})

	return s.toResponse(ctx, p)
}

// DownloadABA resolves the bank file URL. The first download moves the
// settlement sub-state to awaiting_bank_import; repeat downloads are served
// without another transition.
func (s *payslipServiceImpl) DownloadABA(ctx context.Context, actor contract.Actor, applicationID string) (payslip.ABADownloadResponse, error) {
	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return payslip.ABADownloadResponse{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return payslip.ABADownloadResponse{}, err
	}
	if !actor.IsEmployer() || actor.UserID != app.EmployerID {
		return payslip.ABADownloadResponse{}, contract.ErrForbidden
	}

	p, err := s.payslipRepo.GetLatestByApplicationID(ctx, applicationID)
	if err != nil {
		return payslip.ABADownloadResponse{}, err
	}
	if p.ABAPath == "" {
		return payslip.ABADownloadResponse{}, payslip.ErrNoABAArtifact
	}

	url, err := s.files.GetFileURL(ctx, p.ABAPath, time.Hour)
	if err != nil {
		return payslip.ABADownloadResponse{}, fmt.Errorf("failed to resolve bank file url: %w", err)
	}

	if p.InstructionsStatus == payslip.InstructionsGenerated {
		err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.payslipRepo.UpdateInstructionsStatus(ctx, p.ID,
				[]payslip.InstructionsStatus{payslip.InstructionsGenerated},
				payslip.InstructionsAwaitingBankImport); err != nil {
				return err
			}
			return s.timesheetRepo.UpdateEntryPaymentStatus(ctx, p.TimesheetID,
				[]timesheet.PaymentStatus{timesheet.PaymentInstructionsGenerated},
				timesheet.PaymentAwaitingBankImport)
		})
		if err != nil {
			return payslip.ABADownloadResponse{}, err
		}
		p.InstructionsStatus = payslip.InstructionsAwaitingBankImport
	}

	return payslip.ABADownloadResponse{
		URL:                url,
		InstructionsStatus: string(p.InstructionsStatus),
	}, nil
}

// ConfirmSettlement is the employer's attestation that the transfers in the
// bank file were executed. It closes the settlement sub-workflow, stamps the
// application's last payment, and lifts a suspension once nothing else is
// overdue.
func (s *payslipServiceImpl) ConfirmSettlement(ctx context.Context, actor contract.Actor, applicationID string) (payslip.Response, error) {
	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return payslip.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	if !actor.IsEmployer() || actor.UserID != app.EmployerID {
		return payslip.Response{}, contract.ErrForbidden
	}

	p, err := s.payslipRepo.GetLatestByApplicationID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	if p.ABAPath == "" {
		return payslip.Response{}, payslip.ErrNoABAArtifact
	}
	if !p.InstructionsStatus.CanAdvanceTo(payslip.InstructionsCompleted) ||
		p.InstructionsStatus == payslip.InstructionsPending {
		return payslip.Response{}, payslip.ErrInstructionsNotOpen
	}

	now := time.Now()
	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.payslipRepo.UpdateInstructionsStatus(ctx, p.ID,
			[]payslip.InstructionsStatus{payslip.InstructionsGenerated, payslip.InstructionsAwaitingBankImport},
			payslip.InstructionsCompleted); err != nil {
			return err
		}
		if err := s.payslipRepo.UpdateStatus(ctx, p.ID, payslip.StatusCompleted); err != nil {
			return err
		}
		if err := s.timesheetRepo.UpdateEntryPaymentStatus(ctx, p.TimesheetID,
			[]timesheet.PaymentStatus{timesheet.PaymentInstructionsGenerated, timesheet.PaymentAwaitingBankImport},
			timesheet.PaymentPaid); err != nil {
			return err
		}
		return s.appRepo.SetLastPaidAt(ctx, app.ID, now)
	})
	if err != nil {
		return payslip.Response{}, err
	}
	p.Status = payslip.StatusCompleted
	p.InstructionsStatus = payslip.InstructionsCompleted

	s.maybeUnsuspend(ctx, app.EmployerID)

	actorID := actor.UserID
	s.notifier.Queue(notification.Event{
		ApplicationID: app.ID,
		RecipientID:   app.TravellerID,
		SenderID:      &actorID,
		Type:          notification.TypeSettlementConfirmed,
		Title:         "Payment confirmed",
		Message:       "The employer confirmed your payment was sent.",
	})

	return s.toResponse(ctx, p)
}

func (s *payslipServiceImpl) Get(ctx context.Context, actor contract.Actor, applicationID string) (payslip.Response, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	if !app.IsParty(actor.UserID) {
		return payslip.Response{}, contract.ErrForbidden
	}

	p, err := s.payslipRepo.GetLatestByApplicationID(ctx, applicationID)
	if err != nil {
		return payslip.Response{}, err
	}
	return s.toResponse(ctx, p)
}

// ReconcileStale fails payroll runs stuck in processing longer than twice the
// artifact budget. Their timesheet entries were never marked paid, so the
// employer can simply run payroll again.
func (s *payslipServiceImpl) ReconcileStale(ctx context.Context) error {
	cutoff := time.Now().Add(-2 * s.payrollCfg.ArtifactTimeout)
	stale, err := s.payslipRepo.ListStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, p := range stale {
		if err := s.payslipRepo.MarkFailed(ctx, p.ID); err != nil {
			s.logger.Error("failed to reconcile stale payslip", "payslip_id", p.ID, "error", err)
			continue
		}
		s.logger.Warn("marked stale processing payslip as failed", "payslip_id", p.ID, "application_id", p.ApplicationID)
	}
	return nil
}

// MonitorOverdue marks unconfirmed instruction sets overdue once their pay
// period has aged past the grace window, and suspends the employer from
// sending new offers until they settle.
func (s *payslipServiceImpl) MonitorOverdue(ctx context.Context) error {
	cutoff := time.Now().Add(-s.payrollCfg.OverdueAfter)
	candidates, err := s.payslipRepo.ListOverdueCandidates(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, p := range candidates {
		if err := s.payslipRepo.UpdateStatus(ctx, p.ID, payslip.StatusOverdue); err != nil {
			s.logger.Error("failed to mark payslip overdue", "payslip_id", p.ID, "error", err)
			continue
		}
		if err := s.partyRepo.SetSuspended(ctx, p.EmployerID, true); err != nil {
			s.logger.Error("failed to suspend employer", "employer_id", p.EmployerID, "error", err)
			continue
		}
		s.logger.Warn("payslip overdue, employer suspended",
			"payslip_id", p.ID, "employer_id", p.EmployerID, "pay_period_end", p.PayPeriodEnd)
	}
	return nil
}

// generateArtifacts renders the PDF and ABA artifacts under a bounded timeout
// so a hung store cannot hold the payroll lock indefinitely.
func (s *payslipServiceImpl) generateArtifacts(ctx context.Context, p payslip.Payslip, employerAcct, travellerAcct aba.Account) (string, string, aba.File, error) {
	ctx, cancel := context.WithTimeout(ctx, s.payrollCfg.ArtifactTimeout)
	defer cancel()

	pdfBytes, err := pdf.RenderPayslip(p)
	if err != nil {
		return "", "", aba.File{}, err
	}
	pdfPath, err := s.files.StorePayslipPDF(ctx, p.ID, pdfBytes)
	if err != nil {
		return "", "", aba.File{}, err
	}

	platformAcct := aba.Account{
		AccountName:   s.platform.BankName,
		BSBDigits:     validator.CleanDigits(s.platform.BankBSB),
		AccountNumber: validator.CleanDigits(s.platform.BankAccount),
	}
	// Super is remitted to the fund out of band; the batch covers the
	// commission, the worker's net, and the withheld tax routed back to the
	// employer's account for remittance.
	reference := "PAY " + shortID(p.ID)
	transfers := []aba.Transfer{
		{Recipient: platformAcct, Amount: p.CommissionAmount, Description: "OZZIEWORK COMM"},
		{Recipient: travellerAcct, Amount: p.NetPayment, Description: "NET PAYMENT"},
		{Recipient: employerAcct, Amount: p.TaxWithheld, Description: "WH TAX"},
	}

	bankFile := aba.Build(reference, employerAcct, transfers, time.Now())
	abaPath, err := s.files.StoreBankFile(ctx, p.ID, bankFile.Content)
	if err != nil {
		return "", "", aba.File{}, err
	}

	return pdfPath, abaPath, bankFile, nil
}

func (s *payslipServiceImpl) maybeUnsuspend(ctx context.Context, employerID string) {
	employer, err := s.partyRepo.GetByID(ctx, employerID)
	if err != nil || !employer.IsSuspended {
		return
	}
	overdue, err := s.partyRepo.HasOverduePayslips(ctx, employerID)
	if err != nil {
		s.logger.Error("failed to check overdue payslips", "employer_id", employerID, "error", err)
		return
	}
	if overdue {
		return
	}
	if err := s.partyRepo.SetSuspended(ctx, employerID, false); err != nil {
		s.logger.Error("failed to unsuspend employer", "employer_id", employerID, "error", err)
		return
	}
	s.logger.Info("employer suspension lifted", "employer_id", employerID)
}

func (s *payslipServiceImpl) toResponse(ctx context.Context, p payslip.Payslip) (payslip.Response, error) {
	var pdfURL string
	if p.PDFPath != "" {
		url, err := s.files.GetFileURL(ctx, p.PDFPath, pdfURLExpiry)
		if err != nil {
			s.logger.Error("failed to resolve payslip pdf url", "payslip_id", p.ID, "error", err)
		} else {
			pdfURL = url
		}
	}
	return payslip.ToResponse(p, pdfURL), nil
}

// bankAccount extracts and normalizes the party's transfer coordinates.
func bankAccount(p party.Party) (aba.Account, error) {
	bsb := validator.CleanDigits(p.BankBSB)
	acct := validator.CleanDigits(p.BankAccount)
	if !validator.IsValidBSB(bsb) || !validator.IsValidBankAccount(acct) {
		return aba.Account{}, fmt.Errorf("%w: %s", party.ErrMissingBankDetails, p.DisplayName())
	}
	return aba.Account{
		AccountName:   p.DisplayName(),
		BankName:      p.BankName,
		BSBDigits:     bsb,
		AccountNumber: acct,
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
